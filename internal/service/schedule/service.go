package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/smilecare/booking-api/internal/model"
	"github.com/smilecare/booking-api/internal/repository"
	"github.com/smilecare/booking-api/internal/service/audit"
	"github.com/smilecare/booking-api/pkg/clock"
	apperrors "github.com/smilecare/booking-api/pkg/errors"
)

// UsageReader reports current appointment load; implemented by the
// booking service. Declared here so capacity edits can warn about peak
// usage without an import cycle.
type UsageReader interface {
	PeakConcurrentUsage(ctx context.Context, date string) (int, error)
}

// Service carries the admin-facing schedule operations: weekly default
// edits, calendar overrides, and the generated capacity planner.
type Service struct {
	repo     repository.ScheduleRepository
	resolver *Resolver
	usage    UsageReader
	auditor  *audit.Service
	clock    clock.Clock

	patientWindowDays      int
	capacityEditWindowDays int
}

func NewService(
	repo repository.ScheduleRepository,
	resolver *Resolver,
	usage UsageReader,
	auditor *audit.Service,
	clk clock.Clock,
	patientWindowDays int,
	capacityEditWindowDays int,
) *Service {
	return &Service{
		repo:                   repo,
		resolver:               resolver,
		usage:                  usage,
		auditor:                auditor,
		clock:                  clk,
		patientWindowDays:      patientWindowDays,
		capacityEditWindowDays: capacityEditWindowDays,
	}
}

// Resolver exposes the resolution pipeline for read-only callers.
func (s *Service) Resolver() *Resolver {
	return s.resolver
}

func (s *Service) ResolveDay(ctx context.Context, date string) (*model.DaySchedule, error) {
	day, err := s.resolver.Resolve(ctx, date)
	if err != nil {
		return nil, apperrors.BadRequest("invalid date", err)
	}
	return day, nil
}

func (s *Service) ListWeekly(ctx context.Context) ([]*model.WeeklyScheduleEntry, error) {
	entries, err := s.repo.ListWeeklyEntries(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return entries, nil
}

// UpdateWeekly edits one weekday entry. A closed day carries no
// max_per_slot; an open day's max_per_slot may not exceed the dentist
// count.
func (s *Service) UpdateWeekly(ctx context.Context, userID *int64, weekday int, req *model.UpdateWeeklyScheduleRequest) (*model.WeeklyScheduleEntry, error) {
	if weekday < 0 || weekday > 6 {
		return nil, apperrors.BadRequest("weekday must be between 0 and 6", nil)
	}

	entry, err := s.repo.GetWeeklyEntry(ctx, weekday)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if entry == nil {
		return nil, apperrors.NotFound("weekly schedule entry", nil)
	}

	entry.IsOpen = *req.IsOpen
	entry.DentistCount = *req.DentistCount
	entry.Note = req.Note

	if !entry.IsOpen {
		entry.MaxPerSlot = nil
	} else {
		if req.OpenTime == nil || req.CloseTime == nil {
			return nil, apperrors.BadRequest("open and close times are required for an open day", nil)
		}
		if err := validateHours(*req.OpenTime, *req.CloseTime); err != nil {
			return nil, err
		}
		entry.OpenTime = req.OpenTime
		entry.CloseTime = req.CloseTime

		maxPerSlot := 1
		if req.MaxPerSlot != nil {
			maxPerSlot = *req.MaxPerSlot
		}
		if maxPerSlot > entry.DentistCount {
			return nil, apperrors.BadRequest("max per slot cannot exceed number of dentists", nil)
		}
		entry.MaxPerSlot = &maxPerSlot
	}

	if err := s.repo.UpdateWeeklyEntry(ctx, entry); err != nil {
		return nil, apperrors.Internal(err)
	}

	s.auditor.Record(ctx, userID, "schedule", "weekly_updated",
		fmt.Sprintf("Weekly schedule for weekday %d updated", weekday),
		entry)

	return entry, nil
}

func (s *Service) ListOverrides(ctx context.Context) ([]*model.CalendarOverride, error) {
	overrides, err := s.repo.ListHumanOverrides(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return overrides, nil
}

// CreateOverride records a human-authored full-day exception (holiday,
// special hours).
func (s *Service) CreateOverride(ctx context.Context, userID *int64, req *model.CreateCalendarOverrideRequest) (*model.CalendarOverride, error) {
	if _, err := time.Parse(DateFormat, req.Date); err != nil {
		return nil, apperrors.BadRequest("date must be YYYY-MM-DD", err)
	}

	existing, err := s.repo.GetOverride(ctx, req.Date)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if existing != nil && !existing.IsGenerated {
		return nil, apperrors.BadRequest("an override already exists for this date", nil)
	}
	if existing != nil {
		// A generated capacity row gives way to the human override.
		if err := s.repo.DeleteOverride(ctx, existing.ID); err != nil {
			return nil, apperrors.Internal(err)
		}
	}

	override := &model.CalendarOverride{
		Date:        req.Date,
		IsOpen:      *req.IsOpen,
		IsGenerated: false,
		Note:        req.Note,
	}
	if err := applyOverrideFields(override, req.IsOpen, req.OpenTime, req.CloseTime, req.DentistCount, req.MaxPerBlockOverride); err != nil {
		return nil, err
	}

	if err := s.repo.CreateOverride(ctx, override); err != nil {
		return nil, apperrors.Internal(err)
	}

	s.auditor.Record(ctx, userID, "calendar", "override_created",
		fmt.Sprintf("Calendar override created for %s", override.Date),
		override)

	return override, nil
}

func (s *Service) UpdateOverride(ctx context.Context, userID *int64, id int64, req *model.UpdateCalendarOverrideRequest) (*model.CalendarOverride, error) {
	override, err := s.repo.GetOverrideByID(ctx, id)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if override == nil || override.IsGenerated {
		return nil, apperrors.NotFound("calendar override", nil)
	}

	override.Note = req.Note
	if err := applyOverrideFields(override, req.IsOpen, req.OpenTime, req.CloseTime, req.DentistCount, req.MaxPerBlockOverride); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateOverride(ctx, override); err != nil {
		return nil, apperrors.Internal(err)
	}

	s.auditor.Record(ctx, userID, "calendar", "override_updated",
		fmt.Sprintf("Calendar override updated for %s", override.Date),
		override)

	return override, nil
}

func (s *Service) DeleteOverride(ctx context.Context, userID *int64, id int64) error {
	override, err := s.repo.GetOverrideByID(ctx, id)
	if err != nil {
		return apperrors.Internal(err)
	}
	if override == nil || override.IsGenerated {
		return apperrors.NotFound("calendar override", nil)
	}

	if err := s.repo.DeleteOverride(ctx, id); err != nil {
		return apperrors.Internal(err)
	}

	s.auditor.Record(ctx, userID, "calendar", "override_deleted",
		fmt.Sprintf("Calendar override removed for %s", override.Date),
		override)

	return nil
}

// UpsertCapacity is the capacity planner write path. Edits are limited
// to a rolling window from today, a human override is never touched or
// converted, and lowering a cap below current peak usage produces a
// warning instead of cancelling anything.
func (s *Service) UpsertCapacity(ctx context.Context, userID *int64, date string, req *model.UpsertCapacityRequest) (warning string, err error) {
	if _, err := time.Parse(DateFormat, date); err != nil {
		return "", apperrors.BadRequest("date must be YYYY-MM-DD", err)
	}

	// Compared as calendar dates in the clock's zone, same as the
	// patient booking window.
	now := s.clock.Now()
	minDate := now.Format(DateFormat)
	maxDate := now.AddDate(0, 0, s.capacityEditWindowDays-1).Format(DateFormat)
	if date < minDate || date > maxDate {
		return "", apperrors.BadRequest(
			fmt.Sprintf("capacity can only be edited for the next %d days", s.capacityEditWindowDays), nil)
	}

	existing, err := s.repo.GetOverride(ctx, date)
	if err != nil {
		return "", apperrors.Internal(err)
	}
	if existing != nil && !existing.IsGenerated {
		// Holidays and special hours stay under human control.
		return "manual override exists; capacity not applied", nil
	}

	if req.MaxParallel != nil {
		peak, err := s.usage.PeakConcurrentUsage(ctx, date)
		if err != nil {
			return "", apperrors.Internal(err)
		}
		if peak > *req.MaxParallel {
			warning = fmt.Sprintf(
				"existing bookings peak at %d, higher than new cap %d; no cancellations were made",
				peak, *req.MaxParallel)
		}
	}

	if err := s.repo.UpsertGeneratedCap(ctx, date, req.MaxParallel, req.Note); err != nil {
		return "", apperrors.Internal(err)
	}

	s.auditor.Record(ctx, userID, "calendar", "capacity_updated",
		fmt.Sprintf("Capacity cap updated for %s", date),
		map[string]interface{}{"date": date, "max_parallel": req.MaxParallel, "note": req.Note})

	return warning, nil
}

// Preview resolves the next days for the admin calendar view, flagging
// which fall inside the patient booking window.
func (s *Service) Preview(ctx context.Context, days int) ([]*model.PreviewDay, error) {
	if days < 1 {
		days = 1
	}
	if days > 14 {
		days = 14
	}

	start := startOfDay(s.clock.Now())
	out := make([]*model.PreviewDay, 0, days)
	for i := 0; i < days; i++ {
		date := start.AddDate(0, 0, i).Format(DateFormat)
		day, err := s.resolver.Resolve(ctx, date)
		if err != nil {
			return nil, apperrors.Internal(err)
		}

		p := &model.PreviewDay{
			Date:                date,
			IsOpen:              day.IsOpen,
			EffectiveCapacity:   day.Capacity,
			Source:              day.Source,
			BookableForPatients: i >= 1 && i <= s.patientWindowDays,
		}
		if day.IsOpen {
			p.OpenTime = day.OpenTime.String()
			p.CloseTime = day.CloseTime.String()
		}
		out = append(out, p)
	}
	return out, nil
}

// Daily is the capacity-planner read view over an arbitrary range.
func (s *Service) Daily(ctx context.Context, from string, days int) ([]*model.DailyCapacity, error) {
	if days < 1 {
		days = 1
	}
	if days > 31 {
		days = 31
	}

	start := startOfDay(s.clock.Now())
	if from != "" {
		parsed, err := time.Parse(DateFormat, from)
		if err != nil {
			return nil, apperrors.BadRequest("from must be YYYY-MM-DD", err)
		}
		start = parsed
	}

	out := make([]*model.DailyCapacity, 0, days)
	for i := 0; i < days; i++ {
		date := start.AddDate(0, 0, i).Format(DateFormat)
		day, err := s.resolver.Resolve(ctx, date)
		if err != nil {
			return nil, apperrors.Internal(err)
		}

		override, err := s.repo.GetOverride(ctx, date)
		if err != nil {
			return nil, apperrors.Internal(err)
		}

		row := &model.DailyCapacity{
			Date:     date,
			IsClosed: !day.IsOpen,
		}
		if override != nil {
			row.MaxParallel = override.MaxPerBlockOverride
			row.Note = override.Note
		}
		if day.IsOpen {
			row.ActiveDentists = day.Capacity
		}
		out = append(out, row)
	}
	return out, nil
}

func applyOverrideFields(override *model.CalendarOverride, isOpen *bool, openTime, closeTime *string, dentistCount, maxPerBlock *int) error {
	override.IsOpen = *isOpen
	override.MaxPerBlockOverride = maxPerBlock

	if !override.IsOpen {
		override.OpenTime = nil
		override.CloseTime = nil
		override.DentistCount = 0
		return nil
	}

	if openTime == nil || closeTime == nil {
		return apperrors.BadRequest("open and close times are required for an open day", nil)
	}
	if err := validateHours(*openTime, *closeTime); err != nil {
		return err
	}
	override.OpenTime = openTime
	override.CloseTime = closeTime

	if dentistCount != nil {
		override.DentistCount = *dentistCount
	} else if override.DentistCount == 0 {
		override.DentistCount = 1
	}
	return nil
}

func validateHours(openStr, closeStr string) error {
	open, err := model.ParseTimeOfDay(openStr)
	if err != nil {
		return apperrors.BadRequest("open_time must be HH:MM", err)
	}
	close, err := model.ParseTimeOfDay(closeStr)
	if err != nil {
		return apperrors.BadRequest("close_time must be HH:MM", err)
	}
	if open >= close {
		return apperrors.BadRequest("open_time must be before close_time", nil)
	}
	return nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
