package coursegrid

import (
	"sort"
	"strings"
)

// weekdayColumns orders the teaching days; a weekday's 1-based position
// here is its column on the display grid.
const weekdayColumns = "MTWRF"

// gridRows is the number of 30-minute display slots in a teaching day.
const gridRows = 21

// slotStarts returns the HHMM integer at which each of the 21 grid slots
// begins. The document's periods alternate between 50 and 20 minute gaps,
// so even slots land on the hour (i*50+800) and odd slots on the half hour
// ((i/2)*100+830), covering 0800 through 1800.
func slotStarts() [gridRows]int {
	var rows [gridRows]int
	for i := range rows {
		if i%2 == 0 {
			rows[i] = i*50 + 800
		} else {
			rows[i] = (i/2)*100 + 830
		}
	}
	return rows
}

// BuildViewGrid projects a section's occurrences onto display-grid
// coordinates. Every day/time range of every occurrence contributes one
// entry per weekday letter in its day key; Saturday ("S") carries no
// column and is skipped. Unmatched start times clamp to row 1 and
// unmatched end times to the last row.
func BuildViewGrid(leclabs []LecLab) []ViewEntry {
	rows := slotStarts()

	days := make(map[string][]string)
	var dayOrder []string
	for _, l := range leclabs {
		keys := make([]string, 0, len(l.Time))
		for d := range l.Time {
			keys = append(keys, d)
		}
		sort.Strings(keys)
		for _, d := range keys {
			if _, seen := days[d]; !seen {
				dayOrder = append(dayOrder, d)
			}
			days[d] = append(days[d], l.Time[d]...)
		}
	}

	var grid []ViewEntry
	for _, day := range dayOrder {
		for _, r := range days[day] {
			start, end, ok := splitRange(r)
			if !ok {
				continue
			}

			rowStart := 1
			rowEnd := gridRows
			for i, s := range rows {
				if s == start {
					rowStart = i + 1
				}
				if s == end {
					rowEnd = i + 1
				}
			}

			for _, letter := range day {
				if letter == 'S' {
					continue
				}
				col := strings.IndexRune(weekdayColumns, letter)
				if col == -1 {
					continue
				}
				grid = append(grid, ViewEntry{
					Column:   col + 1,
					RowRange: [2]int{rowStart, rowEnd},
				})
			}
		}
	}

	return grid
}
