package schedule

import (
	"github.com/smilecare/booking-api/internal/model"
)

// BuildGrid produces the ordered 30-minute block starts between open and
// close. A block belongs to the grid only when it fits entirely inside
// business hours: start + 30min <= close. Empty when open >= close.
func BuildGrid(open, close model.TimeOfDay) []model.TimeOfDay {
	var grid []model.TimeOfDay
	for cursor := open; cursor.AddMinutes(model.BlockMinutes) <= close; cursor = cursor.AddMinutes(model.BlockMinutes) {
		grid = append(grid, cursor)
	}
	return grid
}

// GridForDay builds the grid for a resolved day, empty when closed.
func GridForDay(day *model.DaySchedule) []model.TimeOfDay {
	if day == nil || !day.IsOpen {
		return nil
	}
	return BuildGrid(day.OpenTime, day.CloseTime)
}
