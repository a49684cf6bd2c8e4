package model

import (
	"fmt"
	"strings"
)

// BlockMinutes is the width of one schedulable block.
const BlockMinutes = 30

// TimeOfDay is a clock time expressed as minutes since midnight. All
// block arithmetic happens on this type; the HH:MM string form exists
// only at the I/O boundary.
type TimeOfDay int

// ParseTimeOfDay parses "HH:MM" or "HH:MM:SS" (seconds are discarded).
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("invalid time of day %q", s)
	}

	var hh, mm int
	if _, err := fmt.Sscanf(parts[0]+":"+parts[1], "%d:%d", &hh, &mm); err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	if hh < 0 || hh > 23 || mm < 0 || mm > 59 {
		return 0, fmt.Errorf("time of day %q out of range", s)
	}
	return TimeOfDay(hh*60 + mm), nil
}

// String formats as zero-padded 24-hour "HH:MM".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// AddMinutes returns the time shifted forward by m minutes.
func (t TimeOfDay) AddMinutes(m int) TimeOfDay {
	return t + TimeOfDay(m)
}

// OnBlockBoundary reports whether t is aligned to the block grid
// anchored at open.
func (t TimeOfDay) OnBlockBoundary(open TimeOfDay) bool {
	if t < open {
		return false
	}
	return (int(t)-int(open))%BlockMinutes == 0
}

// ParseTimeSlot parses a stored "HH:MM-HH:MM" interval. Either side may
// carry seconds; they are normalized away.
func ParseTimeSlot(slot string) (start, end TimeOfDay, err error) {
	left, right, found := strings.Cut(slot, "-")
	if !found {
		return 0, 0, fmt.Errorf("invalid time slot %q", slot)
	}
	if start, err = ParseTimeOfDay(left); err != nil {
		return 0, 0, err
	}
	if end, err = ParseTimeOfDay(right); err != nil {
		return 0, 0, err
	}
	if start >= end {
		return 0, 0, fmt.Errorf("time slot %q has non-positive duration", slot)
	}
	return start, end, nil
}

// FormatTimeSlot renders the canonical stored form of an interval.
func FormatTimeSlot(start, end TimeOfDay) string {
	return start.String() + "-" + end.String()
}
