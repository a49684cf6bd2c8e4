package booking

import (
	"github.com/smilecare/booking-api/internal/model"
)

// AvailableStarts returns the grid positions from which a booking of
// blocksNeeded consecutive blocks fits: every block in the run must
// exist on the grid and sit strictly below capacity. The result
// preserves grid order.
func AvailableStarts(grid []model.TimeOfDay, usage map[model.TimeOfDay]int, capacity, blocksNeeded int) []model.TimeOfDay {
	if capacity <= 0 || blocksNeeded < 1 {
		return nil
	}

	onGrid := make(map[model.TimeOfDay]bool, len(grid))
	for _, block := range grid {
		onGrid[block] = true
	}

	var starts []model.TimeOfDay
	for _, start := range grid {
		if runFits(start, blocksNeeded, onGrid, usage, capacity) {
			starts = append(starts, start)
		}
	}
	return starts
}

func runFits(start model.TimeOfDay, blocksNeeded int, onGrid map[model.TimeOfDay]bool, usage map[model.TimeOfDay]int, capacity int) bool {
	cursor := start
	for i := 0; i < blocksNeeded; i++ {
		if !onGrid[cursor] || usage[cursor] >= capacity {
			return false
		}
		cursor = cursor.AddMinutes(model.BlockMinutes)
	}
	return true
}

// firstConflict reports the earliest block of a run that is at or over
// capacity, for error messages naming the contested block.
func firstConflict(start model.TimeOfDay, blocksNeeded int, usage map[model.TimeOfDay]int, capacity int) (model.TimeOfDay, bool) {
	cursor := start
	for i := 0; i < blocksNeeded; i++ {
		if usage[cursor] >= capacity {
			return cursor, true
		}
		cursor = cursor.AddMinutes(model.BlockMinutes)
	}
	return 0, false
}
