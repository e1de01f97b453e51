package coursegrid

import (
	"fmt"
	"regexp"
	"sort"
)

var (
	dayLettersPattern = regexp.MustCompile(`^[MTWRF]{1,5}$`)
	timeRangePattern  = regexp.MustCompile(`^\d{4}-\d{4}$`)
)

// CalibrationError means the column boundaries could not be derived from
// the document. Parsing cannot proceed without them; callers must treat
// this as fatal rather than guess a layout.
type CalibrationError struct {
	Reason string
}

func (e *CalibrationError) Error() string {
	return fmt.Sprintf("column calibration failed: %s", e.Reason)
}

// CalibrateColumns derives the six column x-coordinates from the first
// header row and the first record row that follows it.
//
// The header row is the first line whose leading word is "SECTION". The
// SECTION and DISC labels give their columns directly; the two COURSE
// labels resolve by position, leftmost being the course number column and
// rightmost the course title column. The day and time columns are read
// from the trailing two words of the next line, which in a well-formed
// document is the first real record row.
func CalibrateColumns(lines Lines) (ColumnBounds, error) {
	headerIdx := -1
	for i, line := range lines {
		if len(line.Words) > 0 && line.Words[0].Text == "SECTION" {
			headerIdx = i
			break
		}
	}
	if headerIdx == -1 {
		return ColumnBounds{}, &CalibrationError{Reason: `no header row starting with "SECTION"`}
	}

	labelXs := make(map[string][]int)
	for _, w := range lines[headerIdx].Words {
		labelXs[w.Text] = append(labelXs[w.Text], w.X0)
	}

	sectionXs := labelXs["SECTION"]
	discXs := labelXs["DISC"]
	courseXs := labelXs["COURSE"]
	if len(sectionXs) == 0 || len(discXs) == 0 {
		return ColumnBounds{}, &CalibrationError{Reason: "header row is missing the SECTION or DISC label"}
	}
	if len(courseXs) < 2 {
		return ColumnBounds{}, &CalibrationError{Reason: fmt.Sprintf("expected two COURSE labels in the header row, found %d", len(courseXs))}
	}
	sort.Ints(courseXs)

	if headerIdx+1 >= len(lines) {
		return ColumnBounds{}, &CalibrationError{Reason: "no record row after the header row"}
	}
	record := lines[headerIdx+1]
	if len(record.Words) < 2 {
		return ColumnBounds{}, &CalibrationError{Reason: "first record row has fewer than two words"}
	}

	timeWord := record.Words[len(record.Words)-1]
	dayWord := record.Words[len(record.Words)-2]
	if !timeRangePattern.MatchString(timeWord.Text) {
		return ColumnBounds{}, &CalibrationError{Reason: fmt.Sprintf("trailing word %q of the first record row is not an HHMM-HHMM range", timeWord.Text)}
	}
	if !dayLettersPattern.MatchString(dayWord.Text) {
		return ColumnBounds{}, &CalibrationError{Reason: fmt.Sprintf("word %q before the time range is not a weekday letter set", dayWord.Text)}
	}

	return ColumnBounds{
		Section:      sectionXs[len(sectionXs)-1],
		Disc:         discXs[len(discXs)-1],
		CourseNumber: courseXs[0],
		CourseTitle:  courseXs[1],
		Day:          dayWord.X0,
		Time:         timeWord.X0,
	}, nil
}
