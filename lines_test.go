package coursegrid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildLines_GroupsByVerticalPosition(t *testing.T) {
	words := []Word{
		{Text: "German", X0: 176, DocTop: 120, PageNumber: 1},
		{Text: "00001", X0: 27, DocTop: 120, PageNumber: 1},
		{Text: "Lecture", X0: 106, DocTop: 134, PageNumber: 1},
		{Text: "I", X0: 210, DocTop: 120, PageNumber: 1},
	}

	lines := BuildLines(words)
	require.Len(t, lines, 2)

	assert.Equal(t, 120, lines[0].Y)
	assert.Equal(t, "00001 German I", lines[0].Text())
	assert.Equal(t, 134, lines[1].Y)
	assert.Equal(t, "Lecture", lines[1].Text())
}

func TestBuildLines_DocumentOrderAcrossPages(t *testing.T) {
	// DocTop is monotone across pages, so page order falls out of the
	// sort.
	words := []Word{
		{Text: "second-page", X0: 27, Top: 40, DocTop: 840, PageNumber: 2},
		{Text: "first-page", X0: 27, Top: 40, DocTop: 40, PageNumber: 1},
		{Text: "first-page-bottom", X0: 27, Top: 780, DocTop: 780, PageNumber: 1},
	}

	lines := BuildLines(words)
	require.Len(t, lines, 3)
	assert.Equal(t, "first-page", lines[0].Text())
	assert.Equal(t, "first-page-bottom", lines[1].Text())
	assert.Equal(t, "second-page", lines[2].Text())
}

func TestBuildLines_NoWordDroppedOrDuplicated(t *testing.T) {
	var words []Word
	for i := 0; i < 50; i++ {
		words = append(words, Word{Text: "w", X0: i * 7 % 300, DocTop: i % 9})
	}

	lines := BuildLines(words)

	total := 0
	for _, line := range lines {
		for i := 1; i < len(line.Words); i++ {
			assert.LessOrEqual(t, line.Words[i-1].X0, line.Words[i].X0)
		}
		total += len(line.Words)
	}
	assert.Equal(t, len(words), total)
}

func TestBuildLines_Empty(t *testing.T) {
	assert.Nil(t, BuildLines(nil))
}
