package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/smilecare/booking-api/internal/model"
	"github.com/smilecare/booking-api/internal/repository"
)

// DateFormat is the wire and storage form of calendar dates.
const DateFormat = "2006-01-02"

// Resolver merges the calendar override and weekly default layers into
// one authoritative snapshot per date. It only ever reads configuration.
type Resolver struct {
	repo repository.ScheduleRepository
}

func NewResolver(repo repository.ScheduleRepository) *Resolver {
	return &Resolver{repo: repo}
}

// stageInput is everything a resolution stage may consult.
type stageInput struct {
	date     string
	override *model.CalendarOverride
	weekly   *model.WeeklyScheduleEntry
}

// A stage either returns a definitive DaySchedule or defers to the next
// stage in the pipeline.
type stage struct {
	name    string
	resolve func(in stageInput) (*model.DaySchedule, bool)
}

var pipeline = []stage{
	{name: "human-override", resolve: humanOverrideStage},
	{name: "weekly-default", resolve: weeklyDefaultStage},
	{name: "unconfigured", resolve: unconfiguredStage},
}

// Resolve returns the authoritative day snapshot for a date. Pure given
// fixed configuration: no clock, no side effects. A date with no
// override and no weekly entry resolves closed with Source "none".
func (r *Resolver) Resolve(ctx context.Context, date string) (*model.DaySchedule, error) {
	day, err := time.Parse(DateFormat, date)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, err)
	}

	override, err := r.repo.GetOverride(ctx, date)
	if err != nil {
		return nil, err
	}

	weekly, err := r.repo.GetWeeklyEntry(ctx, int(day.Weekday()))
	if err != nil {
		return nil, err
	}

	in := stageInput{date: date, override: override, weekly: weekly}

	var resolved *model.DaySchedule
	for _, s := range pipeline {
		if ds, ok := s.resolve(in); ok {
			resolved = ds
			break
		}
	}

	// A generated capacity row caps whatever the base layers produced.
	// It never touches the open flag or hours, and it never applies on
	// top of a human override (the human row is authoritative and any
	// cap it carries was already applied by its own stage).
	if resolved.IsOpen && override != nil && override.IsGenerated && override.MaxPerBlockOverride != nil {
		if *override.MaxPerBlockOverride < resolved.Capacity {
			resolved.Capacity = *override.MaxPerBlockOverride
		}
		if resolved.Note == nil {
			resolved.Note = override.Note
		}
	}

	return resolved, nil
}

// humanOverrideStage: an admin-authored override owns the whole day.
func humanOverrideStage(in stageInput) (*model.DaySchedule, bool) {
	ov := in.override
	if ov == nil || ov.IsGenerated {
		return nil, false
	}

	if !ov.IsOpen {
		return closedDay(in.date, model.ScheduleSourceOverride, ov.Note), true
	}

	open, close, ok := parseHours(ov.OpenTime, ov.CloseTime)
	if !ok {
		// Open without usable hours is a data defect; fail safe.
		return closedDay(in.date, model.ScheduleSourceOverride, ov.Note), true
	}

	capacity := ov.DentistCount
	if ov.MaxPerBlockOverride != nil && *ov.MaxPerBlockOverride < capacity {
		capacity = *ov.MaxPerBlockOverride
	}

	return &model.DaySchedule{
		Date:      in.date,
		IsOpen:    true,
		OpenTime:  open,
		CloseTime: close,
		Capacity:  capacity,
		Source:    model.ScheduleSourceOverride,
		Note:      ov.Note,
	}, true
}

// weeklyDefaultStage: fall back to the weekday's standing configuration.
func weeklyDefaultStage(in stageInput) (*model.DaySchedule, bool) {
	w := in.weekly
	if w == nil {
		return nil, false
	}

	if !w.IsOpen {
		return closedDay(in.date, model.ScheduleSourceWeekly, w.Note), true
	}

	open, close, ok := parseHours(w.OpenTime, w.CloseTime)
	if !ok {
		return closedDay(in.date, model.ScheduleSourceWeekly, w.Note), true
	}

	capacity := w.DentistCount
	if w.MaxPerSlot != nil && *w.MaxPerSlot < capacity {
		capacity = *w.MaxPerSlot
	}

	return &model.DaySchedule{
		Date:      in.date,
		IsOpen:    true,
		OpenTime:  open,
		CloseTime: close,
		Capacity:  capacity,
		Source:    model.ScheduleSourceWeekly,
		Note:      w.Note,
	}, true
}

// unconfiguredStage: no layer knows this date. Closed, marked "none" so
// callers can tell an unconfigured day from a deliberate closure.
func unconfiguredStage(in stageInput) (*model.DaySchedule, bool) {
	return closedDay(in.date, model.ScheduleSourceNone, nil), true
}

func closedDay(date string, source model.ScheduleSource, note *string) *model.DaySchedule {
	return &model.DaySchedule{
		Date:   date,
		IsOpen: false,
		Source: source,
		Note:   note,
	}
}

func parseHours(openStr, closeStr *string) (open, close model.TimeOfDay, ok bool) {
	if openStr == nil || closeStr == nil {
		return 0, 0, false
	}
	open, err := model.ParseTimeOfDay(*openStr)
	if err != nil {
		return 0, 0, false
	}
	close, err = model.ParseTimeOfDay(*closeStr)
	if err != nil {
		return 0, 0, false
	}
	if open >= close {
		return 0, 0, false
	}
	return open, close, true
}
