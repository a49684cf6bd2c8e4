package model

import (
	"time"
)

type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusApproved  AppointmentStatus = "approved"
	AppointmentStatusRejected  AppointmentStatus = "rejected"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
)

// CountsTowardUsage reports whether an appointment in this status
// occupies capacity on its blocks.
func (s AppointmentStatus) CountsTowardUsage() bool {
	return s == AppointmentStatusPending || s == AppointmentStatusApproved
}

// CanTransitionTo implements the appointment state machine:
// pending -> approved|rejected|cancelled, approved -> completed.
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	switch s {
	case AppointmentStatusPending:
		return next == AppointmentStatusApproved ||
			next == AppointmentStatusRejected ||
			next == AppointmentStatusCancelled
	case AppointmentStatusApproved:
		return next == AppointmentStatusCompleted
	default:
		return false
	}
}

type PaymentMethod string

const (
	PaymentMethodCash PaymentMethod = "cash"
	PaymentMethodMaya PaymentMethod = "maya"
	PaymentMethodHMO  PaymentMethod = "hmo"
)

type PaymentStatus string

const (
	PaymentStatusUnpaid          PaymentStatus = "unpaid"
	PaymentStatusAwaitingPayment PaymentStatus = "awaiting_payment"
	PaymentStatusPaid            PaymentStatus = "paid"
)

// InitialPaymentStatus derives the payment status a new booking starts
// in. Maya bookings wait for the gateway; everything else settles at the
// clinic.
func InitialPaymentStatus(method PaymentMethod) PaymentStatus {
	if method == PaymentMethodMaya {
		return PaymentStatusAwaitingPayment
	}
	return PaymentStatusUnpaid
}

// Appointment is one booked visit. TimeSlot is stored as
// "HH:MM-HH:MM" and is immutable once created; cancellation only
// excludes the row from usage counts via its status.
type Appointment struct {
	ID            int64             `db:"id" json:"id"`
	PatientID     int64             `db:"patient_id" json:"patient_id"`
	ServiceID     int64             `db:"service_id" json:"service_id"`
	Date          string            `db:"date" json:"date"`
	TimeSlot      string            `db:"time_slot" json:"time_slot"`
	ReferenceCode string            `db:"reference_code" json:"reference_code"`
	Status        AppointmentStatus `db:"status" json:"status"`
	PaymentMethod PaymentMethod     `db:"payment_method" json:"payment_method"`
	PaymentStatus PaymentStatus     `db:"payment_status" json:"payment_status"`
	Notes         *string           `db:"notes" json:"notes,omitempty"`
	CanceledAt    *time.Time        `db:"canceled_at" json:"canceled_at,omitempty"`
	RemindedAt    *time.Time        `db:"reminded_at" json:"reminded_at,omitempty"`
	CreatedAt     time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time         `db:"updated_at" json:"updated_at"`
}

// CreateAppointmentRequest is the patient booking payload.
type CreateAppointmentRequest struct {
	ServiceID     int64  `json:"service_id" binding:"required"`
	Date          string `json:"date" binding:"required,dateformat"`
	StartTime     string `json:"start_time" binding:"required"`
	PaymentMethod string `json:"payment_method" binding:"required,oneof=cash maya hmo"`
}

// RejectAppointmentRequest carries the mandatory staff note.
type RejectAppointmentRequest struct {
	Note string `json:"note" binding:"required,max=1000"`
}

// AppointmentFilters narrows staff appointment listings.
type AppointmentFilters struct {
	Status    AppointmentStatus
	StartDate string
	EndDate   string
	PatientID int64
}

// SlotListing is the response of the available-starts query.
type SlotListing struct {
	Slots           []string `json:"slots"`
	DurationMinutes int      `json:"duration_minutes"`
}

// ReferenceLookup is the staff view of a pending appointment found by
// reference code.
type ReferenceLookup struct {
	ID          int64  `json:"id"`
	PatientName string `json:"patient_name"`
	ServiceName string `json:"service_name"`
	Date        string `json:"date"`
	TimeSlot    string `json:"time_slot"`
}
