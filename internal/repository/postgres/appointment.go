package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/smilecare/booking-api/internal/model"
	"github.com/smilecare/booking-api/internal/repository"
)

const appointmentColumns = `
	id, patient_id, service_id, date::text AS date, time_slot,
	reference_code, status, payment_method, payment_status, notes,
	canceled_at, reminded_at, created_at, updated_at`

func (r *appointmentRepository) Get(ctx context.Context, id int64) (*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE id = $1`

	var appointment model.Appointment
	err := r.db.GetContext(ctx, &appointment, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) ListForDate(ctx context.Context, date string) ([]*model.Appointment, error) {
	return listForDate(ctx, r.db, date)
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE 1=1`
	args := []interface{}{}
	argCount := 1

	if filters != nil {
		if filters.Status != "" {
			query += fmt.Sprintf(" AND status = $%d", argCount)
			args = append(args, filters.Status)
			argCount++
		}
		if filters.PatientID != 0 {
			query += fmt.Sprintf(" AND patient_id = $%d", argCount)
			args = append(args, filters.PatientID)
			argCount++
		}
		if filters.StartDate != "" && filters.EndDate != "" {
			query += fmt.Sprintf(" AND date BETWEEN $%d::date AND $%d::date", argCount, argCount+1)
			args = append(args, filters.StartDate, filters.EndDate)
			argCount += 2
		}
	}

	query += " ORDER BY created_at DESC"

	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) ListForPatient(ctx context.Context, patientID int64, page, pageSize int) ([]*model.Appointment, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM appointments WHERE patient_id = $1`
	if err := r.db.GetContext(ctx, &total, countQuery, patientID); err != nil {
		return nil, 0, fmt.Errorf("failed to count patient appointments: %w", err)
	}

	query := `SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE patient_id = $1
		ORDER BY date DESC, created_at DESC
		LIMIT $2 OFFSET $3`

	var appointments []*model.Appointment
	err := r.db.SelectContext(ctx, &appointments, query, patientID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list patient appointments: %w", err)
	}
	return appointments, total, nil
}

func (r *appointmentRepository) UpdateStatus(ctx context.Context, appointment *model.Appointment) error {
	query := `
		UPDATE appointments
		SET status = $1, notes = $2, canceled_at = $3, updated_at = $4
		WHERE id = $5
	`
	appointment.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		appointment.Status,
		appointment.Notes,
		appointment.CanceledAt,
		appointment.UpdatedAt,
		appointment.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update appointment status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("appointment not found")
	}

	return nil
}

func (r *appointmentRepository) GetByReferenceCode(ctx context.Context, code string, status model.AppointmentStatus) (*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE reference_code = $1 AND status = $2`

	var appointment model.Appointment
	err := r.db.GetContext(ctx, &appointment, query, code, status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment by reference code: %w", err)
	}
	return &appointment, nil
}

// WithDateLock serializes booking transactions per calendar date. The
// advisory lock covers the usage scan and the insert so no concurrent
// transaction can slip a row in between check and write.
func (r *appointmentRepository) WithDateLock(ctx context.Context, date string, fn func(tx repository.AppointmentTx) error) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext('appointments:' || $1))`, date); err != nil {
			return fmt.Errorf("failed to acquire date lock: %w", err)
		}
		return fn(&appointmentTx{tx: tx})
	})
}

type appointmentTx struct {
	tx *sqlx.Tx
}

func (a *appointmentTx) ListForDate(ctx context.Context, date string) ([]*model.Appointment, error) {
	return listForDate(ctx, a.tx, date)
}

func (a *appointmentTx) Create(ctx context.Context, appointment *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			patient_id, service_id, date, time_slot, reference_code,
			status, payment_method, payment_status, created_at, updated_at
		) VALUES ($1, $2, $3::date, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	appointment.CreatedAt = time.Now()
	appointment.UpdatedAt = time.Now()

	err := a.tx.QueryRowContext(ctx, query,
		appointment.PatientID,
		appointment.ServiceID,
		appointment.Date,
		appointment.TimeSlot,
		appointment.ReferenceCode,
		appointment.Status,
		appointment.PaymentMethod,
		appointment.PaymentStatus,
		appointment.CreatedAt,
		appointment.UpdatedAt,
	).Scan(&appointment.ID)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (a *appointmentTx) CreateSystemLog(ctx context.Context, log *model.SystemLog) error {
	return insertSystemLog(ctx, a.tx, log)
}

func (a *appointmentTx) CreateOutboxEvent(ctx context.Context, event *model.OutboxEvent) error {
	return insertOutboxEvent(ctx, a.tx, event)
}

func listForDate(ctx context.Context, q sqlx.QueryerContext, date string) ([]*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE date = $1::date
		ORDER BY time_slot ASC, id ASC`

	var appointments []*model.Appointment
	if err := sqlx.SelectContext(ctx, q, &appointments, query, date); err != nil {
		return nil, fmt.Errorf("failed to list appointments for date: %w", err)
	}
	return appointments, nil
}
