package coursegrid

import (
	"log/slog"
	"strconv"
	"strings"
)

// TimeMap maps a weekday letter set (e.g. "TR") to the "HHMM-HHMM" ranges
// an occurrence meets on those days.
type TimeMap map[string][]string

// Update appends ranges under day and then re-checks every key for
// overlapping ranges. Overlaps are logged, never rejected or coalesced:
// the raw ranges stay in the map verbatim and downstream consumers decide
// how to deal with them.
func (t TimeMap) Update(day string, ranges []string, log *slog.Logger) {
	t[day] = append(t[day], ranges...)

	for d, rs := range t {
		for i, r1 := range rs {
			s1, e1, ok1 := splitRange(r1)
			if !ok1 {
				continue
			}
			for _, r2 := range rs[i+1:] {
				s2, e2, ok2 := splitRange(r2)
				if !ok2 {
					continue
				}
				if s1 > e2 || s2 > e1 {
					continue
				}
				log.Warn("overlapping times", "day", d, "range1", r1, "range2", r2)
			}
		}
	}
}

// splitRange parses "HHMM-HHMM" into start and end minutes-of-day style
// integers. Malformed ranges are reported as not ok and skipped by the
// overlap check.
func splitRange(r string) (start, end int, ok bool) {
	parts := strings.SplitN(r, "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	start, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	end, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false
	}
	return start, end, true
}
