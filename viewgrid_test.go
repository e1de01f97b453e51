package coursegrid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotStarts(t *testing.T) {
	rows := slotStarts()

	assert.Equal(t, 800, rows[0])
	assert.Equal(t, 830, rows[1])
	assert.Equal(t, 900, rows[2])
	assert.Equal(t, 930, rows[3])
	assert.Equal(t, 1800, rows[gridRows-1])

	for i := 1; i < gridRows; i++ {
		assert.Greater(t, rows[i], rows[i-1])
	}
}

func TestBuildViewGrid_SingleRange(t *testing.T) {
	leclabs := []LecLab{
		{Time: TimeMap{"M": {"0900-1000"}}},
	}

	grid := BuildViewGrid(leclabs)
	require.Len(t, grid, 1)
	assert.Equal(t, ViewEntry{Column: 1, RowRange: [2]int{3, 5}}, grid[0])
}

func TestBuildViewGrid_MultiDayKeyFansOut(t *testing.T) {
	leclabs := []LecLab{
		{Time: TimeMap{"TR": {"1300-1430"}}},
	}

	grid := BuildViewGrid(leclabs)
	require.Len(t, grid, 2)
	// 1300 is slot 11, 1430 is slot 14.
	assert.Equal(t, ViewEntry{Column: 2, RowRange: [2]int{11, 14}}, grid[0])
	assert.Equal(t, ViewEntry{Column: 4, RowRange: [2]int{11, 14}}, grid[1])
}

func TestBuildViewGrid_SaturdayIsSkipped(t *testing.T) {
	leclabs := []LecLab{
		{Time: TimeMap{"S": {"0900-1000"}}},
		{Time: TimeMap{"FS": {"0900-1000"}}},
	}

	grid := BuildViewGrid(leclabs)
	require.Len(t, grid, 1)
	assert.Equal(t, 5, grid[0].Column)
}

func TestBuildViewGrid_UnmatchedTimesClamp(t *testing.T) {
	leclabs := []LecLab{
		{Time: TimeMap{"W": {"0715-2355"}}},
	}

	grid := BuildViewGrid(leclabs)
	require.Len(t, grid, 1)
	assert.Equal(t, ViewEntry{Column: 3, RowRange: [2]int{1, gridRows}}, grid[0])
}

func TestBuildViewGrid_BoundsInvariant(t *testing.T) {
	leclabs := []LecLab{
		{Time: TimeMap{"MTWRF": {"0800-1800", "1030-1130"}}},
		{Time: TimeMap{"TR": {"0001-2359"}}},
	}

	for _, entry := range BuildViewGrid(leclabs) {
		assert.GreaterOrEqual(t, entry.Column, 1)
		assert.LessOrEqual(t, entry.Column, 5)
		assert.GreaterOrEqual(t, entry.RowRange[0], 1)
		assert.LessOrEqual(t, entry.RowRange[0], gridRows)
		assert.GreaterOrEqual(t, entry.RowRange[1], 1)
		assert.LessOrEqual(t, entry.RowRange[1], gridRows)
	}
}
