package store

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/coursegrid/coursegrid"
)

// Filter narrows a section listing. Code and Title are substring matches;
// Course, Domain and Teacher are prefix matches, as are the blended and
// honours notes designations. Rating bounds apply to the stored ratings
// of the section's professors.
// DaysOff and the time window cannot be expressed over the JSONB time
// maps, so they are applied in Go by MatchesSchedule after the SQL pass.
type Filter struct {
	Q       string
	Course  string
	Domain  string
	Code    string
	Title   string
	Teacher string

	Blended bool
	Honours bool

	MinRating *float64
	MaxRating *float64
	MinScore  *float64
	MaxScore  *float64

	// DaysOff lists weekday letters (MTWRF) that must be meeting-free.
	DaysOff string
	// TimeStart and TimeEnd bound meeting times as HHMM; zero means
	// unbounded on that side.
	TimeStart int
	TimeEnd   int
}

// BuildQuery renders the SQL-expressible part of the filter as a query
// over sections with positional args.
func (f Filter) BuildQuery() (string, []any) {
	var conds []string
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	contains := func(v string) string {
		return arg("%" + v + "%")
	}
	prefix := func(v string) string {
		return arg(v + "%")
	}

	if f.Q != "" {
		conds = append(conds, fmt.Sprintf(
			"(s.title ILIKE %s OR s.course ILIKE %s OR s.domain ILIKE %s OR s.code ILIKE %s)",
			contains(f.Q), prefix(f.Q), prefix(f.Q), contains(f.Q)))
	}
	if f.Course != "" {
		conds = append(conds, fmt.Sprintf("s.course ILIKE %s", prefix(f.Course)))
	}
	if f.Domain != "" {
		conds = append(conds, fmt.Sprintf("s.domain ILIKE %s", prefix(f.Domain)))
	}
	if f.Code != "" {
		conds = append(conds, fmt.Sprintf("s.code ILIKE %s", contains(f.Code)))
	}
	if f.Title != "" {
		conds = append(conds, fmt.Sprintf("s.title ILIKE %s", contains(f.Title)))
	}
	if f.Teacher != "" {
		conds = append(conds, fmt.Sprintf("l.professor ILIKE %s", prefix(f.Teacher)))
	}
	// Both designations live in the free-text notes, at the start of a
	// notes line.
	if f.Blended {
		conds = append(conds, "s.more ILIKE 'BLENDED%'")
	}
	if f.Honours {
		conds = append(conds, "s.more ILIKE 'For Honours%'")
	}
	if f.MinRating != nil {
		conds = append(conds, fmt.Sprintf("r.avg >= %s", arg(*f.MinRating)))
	}
	if f.MaxRating != nil {
		conds = append(conds, fmt.Sprintf("r.avg <= %s", arg(*f.MaxRating)))
	}
	if f.MinScore != nil {
		conds = append(conds, fmt.Sprintf("r.score >= %s", arg(*f.MinScore)))
	}
	if f.MaxScore != nil {
		conds = append(conds, fmt.Sprintf("r.score <= %s", arg(*f.MaxScore)))
	}

	query := `SELECT DISTINCT s.id, s.course, s.section, s.domain, s.code, s.title, s.more, s.view_grid
FROM sections s
LEFT JOIN leclabs l ON l.section_id = s.id
LEFT JOIN ratings r ON r.professor = l.professor`
	if len(conds) > 0 {
		query += "\nWHERE " + strings.Join(conds, " AND ")
	}
	query += "\nORDER BY s.id"

	return query, args
}

// MatchesSchedule applies the time-of-day constraints: no meeting on a
// day listed in DaysOff, and every meeting inside the [TimeStart,
// TimeEnd] window. Malformed stored ranges never match a constraint.
func (f Filter) MatchesSchedule(s coursegrid.Section) bool {
	if f.DaysOff == "" && f.TimeStart == 0 && f.TimeEnd == 0 {
		return true
	}

	for _, l := range s.LecLabs {
		for day, ranges := range l.Time {
			// Day keys are letter sets ("TR" meets Tuesday and
			// Thursday); any one letter on a day off excludes the
			// section.
			if f.DaysOff != "" && strings.ContainsAny(day, f.DaysOff) {
				return false
			}
			for _, r := range ranges {
				start, end, ok := parseRange(r)
				if !ok {
					continue
				}
				if f.TimeStart != 0 && start < f.TimeStart {
					return false
				}
				if f.TimeEnd != 0 && end > f.TimeEnd {
					return false
				}
			}
		}
	}
	return true
}

func parseRange(r string) (start, end int, ok bool) {
	a, b, found := strings.Cut(r, "-")
	if !found {
		return 0, 0, false
	}
	start, err1 := strconv.Atoi(a)
	end, err2 := strconv.Atoi(b)
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return start, end, true
}
