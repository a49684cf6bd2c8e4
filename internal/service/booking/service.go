package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/smilecare/booking-api/internal/model"
	"github.com/smilecare/booking-api/internal/repository"
	"github.com/smilecare/booking-api/internal/service/audit"
	"github.com/smilecare/booking-api/internal/service/schedule"
	"github.com/smilecare/booking-api/pkg/clock"
	apperrors "github.com/smilecare/booking-api/pkg/errors"
	"github.com/smilecare/booking-api/pkg/logger"
	"github.com/smilecare/booking-api/pkg/refcode"
)

const uniqueViolation = "23505"

// Service owns the booking lifecycle: availability queries, the booking
// transaction, and the staff status flows.
type Service struct {
	appointments repository.AppointmentRepository
	services     repository.ServiceRepository
	patients     repository.PatientRepository
	resolver     *schedule.Resolver
	auditor      *audit.Service
	clock        clock.Clock
	logger       *logger.Logger

	patientWindowDays int
}

func NewService(
	appointments repository.AppointmentRepository,
	services repository.ServiceRepository,
	patients repository.PatientRepository,
	resolver *schedule.Resolver,
	auditor *audit.Service,
	clk clock.Clock,
	log *logger.Logger,
	patientWindowDays int,
) *Service {
	return &Service{
		appointments:      appointments,
		services:          services,
		patients:          patients,
		resolver:          resolver,
		auditor:           auditor,
		clock:             clk,
		logger:            log,
		patientWindowDays: patientWindowDays,
	}
}

// ListAvailableStarts returns the start times from which the given
// service fits on the given date, in grid order.
func (s *Service) ListAvailableStarts(ctx context.Context, date string, serviceID int64) (*model.SlotListing, error) {
	svc, err := s.activeService(ctx, serviceID)
	if err != nil {
		return nil, err
	}

	day, err := s.resolver.Resolve(ctx, date)
	if err != nil {
		return nil, apperrors.BadRequest("invalid date", err)
	}

	listing := &model.SlotListing{
		Slots:           []string{},
		DurationMinutes: svc.BlocksNeeded() * model.BlockMinutes,
	}
	if !day.Bookable() {
		return listing, nil
	}

	appts, err := s.appointments.ListForDate(ctx, date)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	grid := schedule.GridForDay(day)
	usage := ComputeUsage(appts)
	for _, start := range AvailableStarts(grid, usage, day.Capacity, svc.BlocksNeeded()) {
		listing.Slots = append(listing.Slots, start.String())
	}
	return listing, nil
}

// CreateBooking runs the full precondition chain and inserts the
// appointment under the per-date lock. The capacity check and the
// insert sit in the same locked transaction, so two racing requests for
// the last opening cannot both succeed. A reference-code collision gets
// one transparent retry.
func (s *Service) CreateBooking(ctx context.Context, userID int64, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	patient, err := s.patients.GetByUserID(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if patient == nil {
		return nil, apperrors.UnlinkedPatient()
	}

	if err := s.checkBookingWindow(req.Date); err != nil {
		return nil, err
	}

	day, err := s.resolver.Resolve(ctx, req.Date)
	if err != nil {
		return nil, apperrors.BadRequest("invalid date", err)
	}
	if !day.Bookable() {
		if day.Source == model.ScheduleSourceNone {
			return nil, apperrors.UnconfiguredDay(req.Date)
		}
		return nil, apperrors.ClinicClosed(req.Date)
	}

	start, err := model.ParseTimeOfDay(req.StartTime)
	if err != nil {
		return nil, apperrors.BadRequest("start_time must be HH:MM", err)
	}
	if !start.OnBlockBoundary(day.OpenTime) {
		return nil, apperrors.InvalidTimeAlignment(start.String())
	}

	svc, err := s.activeService(ctx, req.ServiceID)
	if err != nil {
		return nil, err
	}

	blocksNeeded := svc.BlocksNeeded()
	end := start.AddMinutes(blocksNeeded * model.BlockMinutes)
	if start < day.OpenTime || end > day.CloseTime {
		return nil, apperrors.OutsideBusinessHours(fmt.Sprintf(
			"a %d-minute appointment starting at %s does not fit within business hours %s-%s",
			blocksNeeded*model.BlockMinutes, start, day.OpenTime, day.CloseTime))
	}

	appointment := &model.Appointment{
		PatientID:     patient.ID,
		ServiceID:     svc.ID,
		Date:          req.Date,
		TimeSlot:      model.FormatTimeSlot(start, end),
		Status:        model.AppointmentStatusPending,
		PaymentMethod: model.PaymentMethod(req.PaymentMethod),
		PaymentStatus: model.InitialPaymentStatus(model.PaymentMethod(req.PaymentMethod)),
	}

	err = s.insertLocked(ctx, appointment, patient, start, blocksNeeded, day.Capacity)
	if isUniqueViolation(err) {
		// Reference code collision; regenerate and retry once.
		err = s.insertLocked(ctx, appointment, patient, start, blocksNeeded, day.Capacity)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("appointment booked",
		"appointment_id", appointment.ID,
		"date", appointment.Date,
		"time_slot", appointment.TimeSlot,
		"reference_code", appointment.ReferenceCode,
	)
	return appointment, nil
}

// insertLocked re-reads the day's usage and inserts the appointment,
// audit row, and outbox event in one date-locked transaction.
func (s *Service) insertLocked(ctx context.Context, appointment *model.Appointment, patient *model.Patient, start model.TimeOfDay, blocksNeeded, capacity int) error {
	code, err := refcode.New()
	if err != nil {
		return apperrors.Internal(err)
	}
	appointment.ReferenceCode = code

	return s.appointments.WithDateLock(ctx, appointment.Date, func(tx repository.AppointmentTx) error {
		existing, err := tx.ListForDate(ctx, appointment.Date)
		if err != nil {
			return apperrors.Internal(err)
		}

		usage := ComputeUsage(existing)
		if block, conflict := firstConflict(start, blocksNeeded, usage, capacity); conflict {
			return apperrors.SlotFull(block.String())
		}

		if err := tx.Create(ctx, appointment); err != nil {
			return err
		}

		payload, err := json.Marshal(appointment)
		if err != nil {
			return apperrors.Internal(err)
		}

		if err := tx.CreateSystemLog(ctx, &model.SystemLog{
			UserID:   patient.UserID,
			Category: "appointment",
			Action:   "booked",
			Message:  fmt.Sprintf("Appointment %s booked for %s %s", appointment.ReferenceCode, appointment.Date, appointment.TimeSlot),
			Context:  payload,
		}); err != nil {
			return apperrors.Internal(err)
		}

		return tx.CreateOutboxEvent(ctx, &model.OutboxEvent{
			EventType: "appointment.booked",
			Payload:   payload,
			Status:    model.OutboxStatusPending,
		})
	})
}

func (s *Service) checkBookingWindow(date string) error {
	if _, err := time.Parse(schedule.DateFormat, date); err != nil {
		return apperrors.BadRequest("date must be YYYY-MM-DD", err)
	}

	// The request date carries no zone, so the window is compared as
	// calendar dates in the clock's zone. ISO dates order lexically.
	now := s.clock.Now()
	min := now.AddDate(0, 0, 1).Format(schedule.DateFormat)
	max := now.AddDate(0, 0, s.patientWindowDays).Format(schedule.DateFormat)
	if date < min || date > max {
		return apperrors.OutsideBookingWindow(fmt.Sprintf(
			"bookings are accepted between %s and %s", min, max))
	}
	return nil
}

func (s *Service) activeService(ctx context.Context, id int64) (*model.Service, error) {
	svc, err := s.services.Get(ctx, id)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if svc == nil || !svc.IsActive {
		return nil, apperrors.NotFound("service", nil)
	}
	return svc, nil
}

// Get returns one appointment for staff.
func (s *Service) Get(ctx context.Context, id int64) (*model.Appointment, error) {
	appt, err := s.appointments.Get(ctx, id)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if appt == nil {
		return nil, apperrors.NotFound("appointment", nil)
	}
	return appt, nil
}

func (s *Service) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	appts, err := s.appointments.List(ctx, filters)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return appts, nil
}

// ListOwn returns the calling patient's appointments, newest first.
func (s *Service) ListOwn(ctx context.Context, userID int64, page, pageSize int) ([]*model.Appointment, int, error) {
	patient, err := s.patients.GetByUserID(ctx, userID)
	if err != nil {
		return nil, 0, apperrors.Internal(err)
	}
	if patient == nil {
		return nil, 0, apperrors.UnlinkedPatient()
	}
	appts, total, err := s.appointments.ListForPatient(ctx, patient.ID, page, pageSize)
	if err != nil {
		return nil, 0, apperrors.Internal(err)
	}
	return appts, total, nil
}

// Approve moves a pending appointment to approved.
func (s *Service) Approve(ctx context.Context, staffID int64, id int64) (*model.Appointment, error) {
	return s.transition(ctx, &staffID, id, model.AppointmentStatusApproved, "approved", nil)
}

// Reject moves a pending appointment to rejected, stapling the
// mandatory staff note.
func (s *Service) Reject(ctx context.Context, staffID int64, id int64, note string) (*model.Appointment, error) {
	return s.transition(ctx, &staffID, id, model.AppointmentStatusRejected, "rejected", &note)
}

// Complete closes out an approved appointment after the visit.
func (s *Service) Complete(ctx context.Context, staffID int64, id int64) (*model.Appointment, error) {
	return s.transition(ctx, &staffID, id, model.AppointmentStatusCompleted, "completed", nil)
}

// CancelOwn lets a patient withdraw their own pending appointment.
func (s *Service) CancelOwn(ctx context.Context, userID int64, id int64) (*model.Appointment, error) {
	patient, err := s.patients.GetByUserID(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if patient == nil {
		return nil, apperrors.UnlinkedPatient()
	}

	appt, err := s.appointments.Get(ctx, id)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if appt == nil || appt.PatientID != patient.ID {
		return nil, apperrors.NotFound("appointment", nil)
	}

	return s.applyTransition(ctx, &userID, appt, model.AppointmentStatusCancelled, "cancelled", nil)
}

func (s *Service) transition(ctx context.Context, actorID *int64, id int64, next model.AppointmentStatus, action string, note *string) (*model.Appointment, error) {
	appt, err := s.appointments.Get(ctx, id)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if appt == nil {
		return nil, apperrors.NotFound("appointment", nil)
	}
	return s.applyTransition(ctx, actorID, appt, next, action, note)
}

func (s *Service) applyTransition(ctx context.Context, actorID *int64, appt *model.Appointment, next model.AppointmentStatus, action string, note *string) (*model.Appointment, error) {
	if !appt.Status.CanTransitionTo(next) {
		return nil, apperrors.InvalidStateTransition(string(appt.Status), string(next))
	}

	appt.Status = next
	if note != nil {
		appt.Notes = note
	}
	if next == model.AppointmentStatusCancelled {
		now := s.clock.Now()
		appt.CanceledAt = &now
	}

	if err := s.appointments.UpdateStatus(ctx, appt); err != nil {
		return nil, apperrors.Internal(err)
	}

	s.auditor.Record(ctx, actorID, "appointment", action,
		fmt.Sprintf("Appointment %s %s", appt.ReferenceCode, action), appt)

	return appt, nil
}

// ResolveReferenceCode finds a pending appointment by its normalized
// reference code, for staff check-in.
func (s *Service) ResolveReferenceCode(ctx context.Context, code string) (*model.ReferenceLookup, error) {
	normalized := refcode.Normalize(code)
	if len(normalized) != refcode.Length {
		return nil, apperrors.NotFound("appointment", nil)
	}

	appt, err := s.appointments.GetByReferenceCode(ctx, normalized, model.AppointmentStatusPending)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if appt == nil {
		return nil, apperrors.NotFound("appointment", nil)
	}

	lookup := &model.ReferenceLookup{
		ID:       appt.ID,
		Date:     appt.Date,
		TimeSlot: appt.TimeSlot,
	}
	if patient, err := s.patients.Get(ctx, appt.PatientID); err == nil && patient != nil {
		lookup.PatientName = patient.FullName()
	}
	if svc, err := s.services.Get(ctx, appt.ServiceID); err == nil && svc != nil {
		lookup.ServiceName = svc.Name
	}
	return lookup, nil
}

// PeakConcurrentUsage is the highest per-block occupancy on a date.
func (s *Service) PeakConcurrentUsage(ctx context.Context, date string) (int, error) {
	if _, err := time.Parse(schedule.DateFormat, date); err != nil {
		return 0, apperrors.BadRequest("date must be YYYY-MM-DD", err)
	}
	appts, err := s.appointments.ListForDate(ctx, date)
	if err != nil {
		return 0, apperrors.Internal(err)
	}
	return PeakConcurrent(ComputeUsage(appts)), nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
