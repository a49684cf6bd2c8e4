package booking

import (
	"github.com/smilecare/booking-api/internal/model"
)

// ComputeUsage folds a day's appointments into per-block occupancy.
// Only statuses that hold capacity count; rows with a malformed
// time_slot are skipped rather than poisoning the whole day.
func ComputeUsage(appointments []*model.Appointment) map[model.TimeOfDay]int {
	usage := make(map[model.TimeOfDay]int)
	for _, appt := range appointments {
		if !appt.Status.CountsTowardUsage() {
			continue
		}
		start, end, err := model.ParseTimeSlot(appt.TimeSlot)
		if err != nil {
			continue
		}
		for cursor := start; cursor < end; cursor = cursor.AddMinutes(model.BlockMinutes) {
			usage[cursor]++
		}
	}
	return usage
}

// PeakConcurrent is the highest occupancy across all blocks of a day.
// Zero for an empty or all-released day.
func PeakConcurrent(usage map[model.TimeOfDay]int) int {
	peak := 0
	for _, n := range usage {
		if n > peak {
			peak = n
		}
	}
	return peak
}
