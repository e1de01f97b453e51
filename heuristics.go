package coursegrid

import (
	"regexp"
	"strings"
)

// titleWrapMarker terminates the accumulated title after every line that
// contributed title text, so a flush can tell how many visual lines the
// title spanned.
const titleWrapMarker = ";"

// professorNamePattern matches the document's surname-comma-given-name
// convention, e.g. "Lupien, Jennifer".
var professorNamePattern = regexp.MustCompile(`^[A-Z].+, [A-Z].+$`)

// NameClassifier decides whether a candidate string is a professor name.
// The parser only ever consults it through this interface so alternative
// strategies (a known-name index, a remote classifier) can be swapped in
// without touching the state machine.
type NameClassifier interface {
	Classify(candidate string) bool
}

// PatternClassifier is the deterministic default: a candidate is a name if
// it carries the to-be-announced prefix or matches the surname-comma-given
// shape used throughout the schedule.
type PatternClassifier struct{}

func (PatternClassifier) Classify(candidate string) bool {
	return strings.HasPrefix(candidate, "TBA-") || professorNamePattern.MatchString(candidate)
}

// resolveTitle recovers an occurrence's final title and, when possible, a
// professor name the document omitted.
//
// The accumulated title is split on the wrap marker into one segment per
// visual line. When the title wrapped, no professor was seen and no
// Lecture/Laboratory keyword ever appeared, the document most likely
// dropped the keyword line and left the professor's name as the final
// title segment; if the classifier accepts that segment it becomes the
// professor and the remaining segments the title. In every other case the
// segments are simply rejoined, a best-effort miss rather than an error.
func resolveTitle(l *LecLab, classify NameClassifier) {
	trimmed := strings.TrimSuffix(l.Title, titleWrapMarker)
	segments := strings.Split(trimmed, titleWrapMarker)
	for i := range segments {
		segments[i] = strings.TrimSpace(segments[i])
	}

	if len(segments) > 1 && l.Professor == "" && l.Kind == KindUnknown {
		last := segments[len(segments)-1]
		if classify.Classify(last) {
			l.Professor = last
			l.Title = strings.Join(segments[:len(segments)-1], " ")
			return
		}
	}

	l.Title = strings.Join(segments, " ")
}
