package coursegrid

import "strings"

// Word is a single positioned token extracted from the schedule document.
// Coordinates are rounded to whole pixels at extraction time; Top is
// page-relative and DocTop is document-relative.
type Word struct {
	Text       string `json:"text"`
	X0         int    `json:"x0"`
	Top        int    `json:"top"`
	DocTop     int    `json:"doctop"`
	PageNumber int    `json:"page_number"`
}

// Line is an ordered run of words sharing the same rounded vertical
// position, left to right.
type Line struct {
	Y     int    `json:"y"`
	Words []Word `json:"words"`
}

// Text joins the line's words with single spaces.
func (l Line) Text() string {
	parts := make([]string, len(l.Words))
	for i, w := range l.Words {
		parts[i] = w.Text
	}
	return strings.Join(parts, " ")
}

// Lines is the ordered line mapping for a whole document: slice order is
// document order (page order, then top to bottom within a page).
type Lines []Line

// ColumnBounds holds the six x-coordinates separating the schedule's
// semantic columns, derived from the header row of the first page.
type ColumnBounds struct {
	Section      int `json:"section"`
	Disc         int `json:"disc"`
	CourseNumber int `json:"course_number"`
	CourseTitle  int `json:"course_title"`
	Day          int `json:"day"`
	Time         int `json:"time"`
}

// MeetingKind tags an occurrence as a lecture or a laboratory. The zero
// value means the document never said which.
type MeetingKind int

const (
	KindUnknown MeetingKind = iota
	KindLecture
	KindLaboratory
)

func (k MeetingKind) String() string {
	switch k {
	case KindLecture:
		return "lecture"
	case KindLaboratory:
		return "laboratory"
	default:
		return ""
	}
}

// ParseMeetingKind maps a stored kind string back to its MeetingKind.
// Unrecognized strings map to KindUnknown.
func ParseMeetingKind(s string) MeetingKind {
	switch s {
	case "lecture":
		return KindLecture
	case "laboratory":
		return KindLaboratory
	default:
		return KindUnknown
	}
}

// LecLab is one lecture or laboratory meeting pattern within a section.
type LecLab struct {
	SectionID int         `json:"section_id"`
	Title     string      `json:"title"`
	Kind      MeetingKind `json:"kind"`
	Professor string      `json:"professor"`
	Time      TimeMap     `json:"time"`
}

// clear resets the accumulator in place after a flush.
func (l *LecLab) clear() {
	l.SectionID = 0
	l.Title = ""
	l.Kind = KindUnknown
	l.Professor = ""
	l.Time = TimeMap{}
}

// ViewEntry places one day/time range on the display grid: Column is the
// weekday (Mon=1..Fri=5) and RowRange holds the 1-based start/end slots.
type ViewEntry struct {
	Column   int    `json:"column"`
	RowRange [2]int `json:"row_range"`
}

// Section is one finalized course offering. A section is immutable once it
// has been flushed to the parser's output list.
type Section struct {
	ID       int         `json:"id"`
	Course   string      `json:"course"`
	Section  string      `json:"section"`
	Domain   string      `json:"domain"`
	Code     string      `json:"code"`
	Title    string      `json:"title"`
	More     string      `json:"more"`
	LecLabs  []LecLab    `json:"leclabs"`
	ViewGrid []ViewEntry `json:"view_grid"`
}
