package ratings

import "strings"

// accentReplacer folds the accented characters that appear in schedule
// names down to ASCII and strips NUL bytes the extractor occasionally
// leaks, so names compare cleanly against the rating service.
var accentReplacer = strings.NewReplacer(
	"é", "e",
	"É", "E",
	"è", "e",
	"â", "a",
	"ç", "c",
	"à", "a",
	"\x00", "",
)

// NormalizeName returns s with accents folded and NUL bytes removed.
func NormalizeName(s string) string {
	return accentReplacer.Replace(s)
}
