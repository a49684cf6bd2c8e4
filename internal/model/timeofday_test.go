package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    TimeOfDay
		wantErr bool
	}{
		{"plain", "08:00", 480, false},
		{"with seconds", "08:00:00", 480, false},
		{"afternoon", "13:30", 810, false},
		{"midnight", "00:00", 0, false},
		{"end of day", "23:59", 1439, false},
		{"padded input", " 09:30 ", 570, false},
		{"hour out of range", "24:00", 0, true},
		{"minute out of range", "10:61", 0, true},
		{"garbage", "eight", 0, true},
		{"empty", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimeOfDay(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTimeOfDayString(t *testing.T) {
	assert.Equal(t, "08:00", TimeOfDay(480).String())
	assert.Equal(t, "00:05", TimeOfDay(5).String())
	assert.Equal(t, "23:30", TimeOfDay(1410).String())
}

func TestTimeOfDayRoundTrip(t *testing.T) {
	// Seconds must normalize away on the round trip.
	got, err := ParseTimeOfDay("14:30:00")
	require.NoError(t, err)
	assert.Equal(t, "14:30", got.String())
}

func TestOnBlockBoundary(t *testing.T) {
	open := TimeOfDay(480) // 08:00

	aligned, _ := ParseTimeOfDay("09:30")
	offGrid, _ := ParseTimeOfDay("08:15")
	beforeOpen, _ := ParseTimeOfDay("07:30")

	assert.True(t, aligned.OnBlockBoundary(open))
	assert.True(t, open.OnBlockBoundary(open))
	assert.False(t, offGrid.OnBlockBoundary(open))
	assert.False(t, beforeOpen.OnBlockBoundary(open))
}

func TestParseTimeSlot(t *testing.T) {
	start, end, err := ParseTimeSlot("08:00-09:00")
	require.NoError(t, err)
	assert.Equal(t, TimeOfDay(480), start)
	assert.Equal(t, TimeOfDay(540), end)

	start, end, err = ParseTimeSlot("08:00:00-09:30:00")
	require.NoError(t, err)
	assert.Equal(t, "08:00-09:30", FormatTimeSlot(start, end))

	_, _, err = ParseTimeSlot("08:00")
	assert.Error(t, err)

	_, _, err = ParseTimeSlot("09:00-08:00")
	assert.Error(t, err)
}

func TestServiceBlocksNeeded(t *testing.T) {
	tests := []struct {
		minutes int
		want    int
	}{
		{30, 1},
		{45, 2},
		{60, 2},
		{90, 3},
		{1, 1},
		{0, 1},
	}

	for _, tt := range tests {
		svc := &Service{EstimatedMinutes: tt.minutes}
		assert.Equal(t, tt.want, svc.BlocksNeeded(), "minutes=%d", tt.minutes)
	}
}

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		from AppointmentStatus
		to   AppointmentStatus
		ok   bool
	}{
		{AppointmentStatusPending, AppointmentStatusApproved, true},
		{AppointmentStatusPending, AppointmentStatusRejected, true},
		{AppointmentStatusPending, AppointmentStatusCancelled, true},
		{AppointmentStatusPending, AppointmentStatusCompleted, false},
		{AppointmentStatusApproved, AppointmentStatusCompleted, true},
		{AppointmentStatusApproved, AppointmentStatusCancelled, false},
		{AppointmentStatusRejected, AppointmentStatusApproved, false},
		{AppointmentStatusCancelled, AppointmentStatusPending, false},
		{AppointmentStatusCompleted, AppointmentStatusApproved, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.ok, tt.from.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestInitialPaymentStatus(t *testing.T) {
	assert.Equal(t, PaymentStatusAwaitingPayment, InitialPaymentStatus(PaymentMethodMaya))
	assert.Equal(t, PaymentStatusUnpaid, InitialPaymentStatus(PaymentMethodCash))
	assert.Equal(t, PaymentStatusUnpaid, InitialPaymentStatus(PaymentMethodHMO))
}
