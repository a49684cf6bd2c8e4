package model

import (
	"time"
)

// ScheduleSource identifies which configuration layer produced a
// resolved day.
type ScheduleSource string

const (
	ScheduleSourceOverride ScheduleSource = "override"
	ScheduleSourceWeekly   ScheduleSource = "weekly"
	ScheduleSourceNone     ScheduleSource = "none"
)

// WeeklyScheduleEntry is the per-weekday fallback configuration. One row
// per weekday 0 (Sunday) through 6 (Saturday).
type WeeklyScheduleEntry struct {
	ID           int64     `db:"id" json:"id"`
	Weekday      int       `db:"weekday" json:"weekday"`
	IsOpen       bool      `db:"is_open" json:"is_open"`
	OpenTime     *string   `db:"open_time" json:"open_time,omitempty"`
	CloseTime    *string   `db:"close_time" json:"close_time,omitempty"`
	DentistCount int       `db:"dentist_count" json:"dentist_count"`
	MaxPerSlot   *int      `db:"max_per_slot" json:"max_per_slot,omitempty"`
	Note         *string   `db:"note" json:"note,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// CalendarOverride is a per-date exception. Human-authored rows
// (is_generated=false) own the full day: open flag, hours, dentist count.
// Generated rows (is_generated=true) carry only a capacity cap and note
// and never alter the open flag or hours.
type CalendarOverride struct {
	ID                  int64     `db:"id" json:"id"`
	Date                string    `db:"date" json:"date"`
	IsOpen              bool      `db:"is_open" json:"is_open"`
	OpenTime            *string   `db:"open_time" json:"open_time,omitempty"`
	CloseTime           *string   `db:"close_time" json:"close_time,omitempty"`
	DentistCount        int       `db:"dentist_count" json:"dentist_count"`
	MaxPerBlockOverride *int      `db:"max_per_block_override" json:"max_per_block_override,omitempty"`
	IsGenerated         bool      `db:"is_generated" json:"is_generated"`
	Note                *string   `db:"note" json:"note,omitempty"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time `db:"updated_at" json:"updated_at"`
}

// DaySchedule is the resolved snapshot for one calendar date. Never
// persisted. When IsOpen is false the remaining fields are meaningless.
type DaySchedule struct {
	Date      string         `json:"date"`
	IsOpen    bool           `json:"is_open"`
	OpenTime  TimeOfDay      `json:"-"`
	CloseTime TimeOfDay      `json:"-"`
	Capacity  int            `json:"effective_capacity"`
	Source    ScheduleSource `json:"source"`
	Note      *string        `json:"note,omitempty"`
}

// Bookable reports whether the day can accept any appointment at all.
func (d *DaySchedule) Bookable() bool {
	return d.IsOpen && d.Capacity > 0
}

// DaySchedulePayload is the JSON shape of a resolved day with times in
// their wire form.
type DaySchedulePayload struct {
	Date      string         `json:"date"`
	IsOpen    bool           `json:"is_open"`
	OpenTime  string         `json:"open_time,omitempty"`
	CloseTime string         `json:"close_time,omitempty"`
	Capacity  int            `json:"effective_capacity"`
	Source    ScheduleSource `json:"source"`
	Note      *string        `json:"note,omitempty"`
}

// Payload converts the resolved snapshot to its wire form.
func (d *DaySchedule) Payload() DaySchedulePayload {
	p := DaySchedulePayload{
		Date:     d.Date,
		IsOpen:   d.IsOpen,
		Capacity: d.Capacity,
		Source:   d.Source,
		Note:     d.Note,
	}
	if d.IsOpen {
		p.OpenTime = d.OpenTime.String()
		p.CloseTime = d.CloseTime.String()
	}
	return p
}

// UpdateWeeklyScheduleRequest updates one weekday entry.
type UpdateWeeklyScheduleRequest struct {
	IsOpen       *bool   `json:"is_open" binding:"required"`
	OpenTime     *string `json:"open_time"`
	CloseTime    *string `json:"close_time"`
	DentistCount *int    `json:"dentist_count" binding:"required,min=0,max=20"`
	MaxPerSlot   *int    `json:"max_per_slot" binding:"omitempty,min=1,max=20"`
	Note         *string `json:"note" binding:"omitempty,max=255"`
}

// CreateCalendarOverrideRequest creates a human override (holiday,
// special hours).
type CreateCalendarOverrideRequest struct {
	Date                string  `json:"date" binding:"required,dateformat"`
	IsOpen              *bool   `json:"is_open" binding:"required"`
	OpenTime            *string `json:"open_time"`
	CloseTime           *string `json:"close_time"`
	DentistCount        *int    `json:"dentist_count" binding:"omitempty,min=0,max=20"`
	MaxPerBlockOverride *int    `json:"max_per_block_override" binding:"omitempty,min=1,max=50"`
	Note                *string `json:"note" binding:"omitempty,max=255"`
}

// UpdateCalendarOverrideRequest edits an existing human override.
type UpdateCalendarOverrideRequest struct {
	IsOpen              *bool   `json:"is_open" binding:"required"`
	OpenTime            *string `json:"open_time"`
	CloseTime           *string `json:"close_time"`
	DentistCount        *int    `json:"dentist_count" binding:"omitempty,min=0,max=20"`
	MaxPerBlockOverride *int    `json:"max_per_block_override" binding:"omitempty,min=1,max=50"`
	Note                *string `json:"note" binding:"omitempty,max=255"`
}

// UpsertCapacityRequest is the capacity-planner payload for one date.
// A nil MaxParallel clears the generated cap.
type UpsertCapacityRequest struct {
	MaxParallel *int    `json:"max_parallel" binding:"omitempty,min=0"`
	Note        *string `json:"note" binding:"omitempty,max=255"`
}

// DailyCapacity is one row of the capacity-planner view.
type DailyCapacity struct {
	Date           string  `json:"date"`
	ActiveDentists int     `json:"active_dentists"`
	MaxParallel    *int    `json:"max_parallel"`
	IsClosed       bool    `json:"is_closed"`
	Note           *string `json:"note"`
}

// PreviewDay is one row of the admin preview-calendar view.
type PreviewDay struct {
	Date                string         `json:"date"`
	IsOpen              bool           `json:"is_open"`
	OpenTime            string         `json:"open_time,omitempty"`
	CloseTime           string         `json:"close_time,omitempty"`
	EffectiveCapacity   int            `json:"effective_capacity"`
	Source              ScheduleSource `json:"source"`
	BookableForPatients bool           `json:"bookable_for_patients"`
}
