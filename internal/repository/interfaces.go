package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/smilecare/booking-api/internal/model"
)

// All repository interfaces in one file
type (
	// ScheduleRepository reads the weekly defaults and calendar
	// overrides. The booking core only reads these tables; mutation is
	// admin-facing.
	ScheduleRepository interface {
		GetWeeklyEntry(ctx context.Context, weekday int) (*model.WeeklyScheduleEntry, error)
		ListWeeklyEntries(ctx context.Context) ([]*model.WeeklyScheduleEntry, error)
		UpdateWeeklyEntry(ctx context.Context, entry *model.WeeklyScheduleEntry) error
		GetOverride(ctx context.Context, date string) (*model.CalendarOverride, error)
		GetOverrideByID(ctx context.Context, id int64) (*model.CalendarOverride, error)
		ListHumanOverrides(ctx context.Context) ([]*model.CalendarOverride, error)
		CreateOverride(ctx context.Context, override *model.CalendarOverride) error
		UpdateOverride(ctx context.Context, override *model.CalendarOverride) error
		DeleteOverride(ctx context.Context, id int64) error
		UpsertGeneratedCap(ctx context.Context, date string, maxParallel *int, note *string) error
	}

	// AppointmentTx is the view of the appointments table inside a
	// date-locked booking transaction.
	AppointmentTx interface {
		ListForDate(ctx context.Context, date string) ([]*model.Appointment, error)
		Create(ctx context.Context, appointment *model.Appointment) error
		CreateSystemLog(ctx context.Context, log *model.SystemLog) error
		CreateOutboxEvent(ctx context.Context, event *model.OutboxEvent) error
	}

	AppointmentRepository interface {
		Get(ctx context.Context, id int64) (*model.Appointment, error)
		ListForDate(ctx context.Context, date string) ([]*model.Appointment, error)
		List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
		ListForPatient(ctx context.Context, patientID int64, page, pageSize int) ([]*model.Appointment, int, error)
		UpdateStatus(ctx context.Context, appointment *model.Appointment) error
		GetByReferenceCode(ctx context.Context, code string, status model.AppointmentStatus) (*model.Appointment, error)
		// WithDateLock runs fn inside a transaction holding an exclusive
		// per-date lock, serializing the capacity check against
		// concurrent inserts for the same date.
		WithDateLock(ctx context.Context, date string, fn func(tx AppointmentTx) error) error
	}

	// ServiceRepository is the service catalog: duration per service.
	ServiceRepository interface {
		Get(ctx context.Context, id int64) (*model.Service, error)
		List(ctx context.Context) ([]*model.Service, error)
	}

	// PatientRepository is the patient registry: identity lookup only.
	PatientRepository interface {
		Get(ctx context.Context, id int64) (*model.Patient, error)
		GetByUserID(ctx context.Context, userID int64) (*model.Patient, error)
	}

	// SystemLogRepository is the write-only audit log sink.
	SystemLogRepository interface {
		Create(ctx context.Context, log *model.SystemLog) error
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errorMessage *string) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)
