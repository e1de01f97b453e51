package coursegrid

import "sort"

// BuildLines reconstructs ordered text lines from an unordered word stream.
// Words are sorted by (doctop, x0) and a new line starts whenever the
// rounded document-relative vertical position changes, so sub-pixel jitter
// between words of the same visual row collapses into one line. No word is
// dropped or duplicated.
func BuildLines(words []Word) Lines {
	if len(words) == 0 {
		return nil
	}

	sorted := make([]Word, len(words))
	copy(sorted, words)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].DocTop != sorted[j].DocTop {
			return sorted[i].DocTop < sorted[j].DocTop
		}
		return sorted[i].X0 < sorted[j].X0
	})

	var lines Lines
	current := Line{Y: sorted[0].DocTop}

	for _, w := range sorted {
		if w.DocTop != current.Y {
			lines = append(lines, current)
			current = Line{Y: w.DocTop}
		}
		current.Words = append(current.Words, w)
	}
	lines = append(lines, current)

	return lines
}
