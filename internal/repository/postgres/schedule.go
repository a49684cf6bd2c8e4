package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/smilecare/booking-api/internal/model"
)

const weeklyScheduleColumns = `
	id, weekday, is_open, open_time::text AS open_time,
	close_time::text AS close_time, dentist_count, max_per_slot, note,
	created_at, updated_at`

const calendarOverrideColumns = `
	id, date::text AS date, is_open, open_time::text AS open_time,
	close_time::text AS close_time, dentist_count, max_per_block_override,
	is_generated, note, created_at, updated_at`

func (r *scheduleRepository) GetWeeklyEntry(ctx context.Context, weekday int) (*model.WeeklyScheduleEntry, error) {
	query := `SELECT ` + weeklyScheduleColumns + `
		FROM clinic_weekly_schedules
		WHERE weekday = $1`

	var entry model.WeeklyScheduleEntry
	err := r.db.GetContext(ctx, &entry, query, weekday)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get weekly schedule entry: %w", err)
	}
	return &entry, nil
}

func (r *scheduleRepository) ListWeeklyEntries(ctx context.Context) ([]*model.WeeklyScheduleEntry, error) {
	query := `SELECT ` + weeklyScheduleColumns + `
		FROM clinic_weekly_schedules
		ORDER BY weekday ASC`

	var entries []*model.WeeklyScheduleEntry
	if err := r.db.SelectContext(ctx, &entries, query); err != nil {
		return nil, fmt.Errorf("failed to list weekly schedule entries: %w", err)
	}
	return entries, nil
}

func (r *scheduleRepository) UpdateWeeklyEntry(ctx context.Context, entry *model.WeeklyScheduleEntry) error {
	query := `
		UPDATE clinic_weekly_schedules
		SET is_open = $1, open_time = $2, close_time = $3,
			dentist_count = $4, max_per_slot = $5, note = $6, updated_at = $7
		WHERE id = $8
	`
	entry.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		entry.IsOpen,
		entry.OpenTime,
		entry.CloseTime,
		entry.DentistCount,
		entry.MaxPerSlot,
		entry.Note,
		entry.UpdatedAt,
		entry.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update weekly schedule entry: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("weekly schedule entry not found")
	}

	return nil
}

func (r *scheduleRepository) GetOverride(ctx context.Context, date string) (*model.CalendarOverride, error) {
	query := `SELECT ` + calendarOverrideColumns + `
		FROM clinic_calendar
		WHERE date = $1::date`

	var override model.CalendarOverride
	err := r.db.GetContext(ctx, &override, query, date)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get calendar override: %w", err)
	}
	return &override, nil
}

func (r *scheduleRepository) GetOverrideByID(ctx context.Context, id int64) (*model.CalendarOverride, error) {
	query := `SELECT ` + calendarOverrideColumns + `
		FROM clinic_calendar
		WHERE id = $1`

	var override model.CalendarOverride
	err := r.db.GetContext(ctx, &override, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get calendar override: %w", err)
	}
	return &override, nil
}

func (r *scheduleRepository) ListHumanOverrides(ctx context.Context) ([]*model.CalendarOverride, error) {
	query := `SELECT ` + calendarOverrideColumns + `
		FROM clinic_calendar
		WHERE is_generated = false
		ORDER BY date ASC`

	var overrides []*model.CalendarOverride
	if err := r.db.SelectContext(ctx, &overrides, query); err != nil {
		return nil, fmt.Errorf("failed to list calendar overrides: %w", err)
	}
	return overrides, nil
}

func (r *scheduleRepository) CreateOverride(ctx context.Context, override *model.CalendarOverride) error {
	query := `
		INSERT INTO clinic_calendar (
			date, is_open, open_time, close_time, dentist_count,
			max_per_block_override, is_generated, note, created_at, updated_at
		) VALUES ($1::date, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	override.CreatedAt = time.Now()
	override.UpdatedAt = time.Now()

	err := r.db.QueryRowContext(ctx, query,
		override.Date,
		override.IsOpen,
		override.OpenTime,
		override.CloseTime,
		override.DentistCount,
		override.MaxPerBlockOverride,
		override.IsGenerated,
		override.Note,
		override.CreatedAt,
		override.UpdatedAt,
	).Scan(&override.ID)
	if err != nil {
		return fmt.Errorf("failed to create calendar override: %w", err)
	}
	return nil
}

func (r *scheduleRepository) UpdateOverride(ctx context.Context, override *model.CalendarOverride) error {
	query := `
		UPDATE clinic_calendar
		SET is_open = $1, open_time = $2, close_time = $3, dentist_count = $4,
			max_per_block_override = $5, note = $6, updated_at = $7
		WHERE id = $8
	`
	override.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		override.IsOpen,
		override.OpenTime,
		override.CloseTime,
		override.DentistCount,
		override.MaxPerBlockOverride,
		override.Note,
		override.UpdatedAt,
		override.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update calendar override: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("calendar override not found")
	}

	return nil
}

func (r *scheduleRepository) DeleteOverride(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM clinic_calendar WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete calendar override: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("calendar override not found")
	}

	return nil
}

// UpsertGeneratedCap writes the capacity-planner row for a date. The
// caller has already verified no human override exists; the is_generated
// guard here keeps a race from ever converting one.
func (r *scheduleRepository) UpsertGeneratedCap(ctx context.Context, date string, maxParallel *int, note *string) error {
	query := `
		INSERT INTO clinic_calendar (
			date, is_generated, max_per_block_override, note, created_at, updated_at
		) VALUES ($1::date, true, $2, $3, now(), now())
		ON CONFLICT (date) DO UPDATE
		SET max_per_block_override = EXCLUDED.max_per_block_override,
			note = EXCLUDED.note,
			updated_at = now()
		WHERE clinic_calendar.is_generated = true
	`
	if _, err := r.db.ExecContext(ctx, query, date, maxParallel, note); err != nil {
		return fmt.Errorf("failed to upsert generated capacity: %w", err)
	}
	return nil
}
