package appointment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smilecare/booking-api/internal/middleware"
	"github.com/smilecare/booking-api/internal/model"
	"github.com/smilecare/booking-api/internal/repository"
	"github.com/smilecare/booking-api/internal/service/audit"
	"github.com/smilecare/booking-api/internal/service/booking"
	"github.com/smilecare/booking-api/internal/service/schedule"
	"github.com/smilecare/booking-api/pkg/clock"
	"github.com/smilecare/booking-api/pkg/logger"
	"github.com/smilecare/booking-api/pkg/validator"
)

// Minimal in-memory stores backing a real booking service.

type memStore struct {
	appointments []*model.Appointment
	nextID       int64
	logs         []*model.SystemLog
	events       []*model.OutboxEvent
}

type memAppointments struct{ s *memStore }

func (m *memAppointments) Get(_ context.Context, id int64) (*model.Appointment, error) {
	for _, a := range m.s.appointments {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, nil
}

func (m *memAppointments) ListForDate(_ context.Context, date string) ([]*model.Appointment, error) {
	var out []*model.Appointment
	for _, a := range m.s.appointments {
		if a.Date == date {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memAppointments) List(_ context.Context, _ *model.AppointmentFilters) ([]*model.Appointment, error) {
	return m.s.appointments, nil
}

func (m *memAppointments) ListForPatient(_ context.Context, patientID int64, _, _ int) ([]*model.Appointment, int, error) {
	var out []*model.Appointment
	for _, a := range m.s.appointments {
		if a.PatientID == patientID {
			out = append(out, a)
		}
	}
	return out, len(out), nil
}

func (m *memAppointments) UpdateStatus(_ context.Context, appt *model.Appointment) error {
	for i, a := range m.s.appointments {
		if a.ID == appt.ID {
			m.s.appointments[i] = appt
		}
	}
	return nil
}

func (m *memAppointments) GetByReferenceCode(_ context.Context, code string, status model.AppointmentStatus) (*model.Appointment, error) {
	for _, a := range m.s.appointments {
		if a.ReferenceCode == code && a.Status == status {
			return a, nil
		}
	}
	return nil, nil
}

func (m *memAppointments) WithDateLock(_ context.Context, _ string, fn func(tx repository.AppointmentTx) error) error {
	return fn(&memTx{s: m.s})
}

type memTx struct{ s *memStore }

func (t *memTx) ListForDate(_ context.Context, date string) ([]*model.Appointment, error) {
	var out []*model.Appointment
	for _, a := range t.s.appointments {
		if a.Date == date {
			out = append(out, a)
		}
	}
	return out, nil
}

func (t *memTx) Create(_ context.Context, a *model.Appointment) error {
	t.s.nextID++
	a.ID = t.s.nextID
	t.s.appointments = append(t.s.appointments, a)
	return nil
}

func (t *memTx) CreateSystemLog(_ context.Context, l *model.SystemLog) error {
	t.s.logs = append(t.s.logs, l)
	return nil
}

func (t *memTx) CreateOutboxEvent(_ context.Context, e *model.OutboxEvent) error {
	t.s.events = append(t.s.events, e)
	return nil
}

type memServices struct{}

func (memServices) Get(_ context.Context, id int64) (*model.Service, error) {
	if id == 1 {
		return &model.Service{ID: 1, Name: "Cleaning", EstimatedMinutes: 30, IsActive: true}, nil
	}
	return nil, nil
}

func (memServices) List(_ context.Context) ([]*model.Service, error) {
	return []*model.Service{{ID: 1, Name: "Cleaning", EstimatedMinutes: 30, IsActive: true}}, nil
}

type memPatients struct{}

func (memPatients) Get(_ context.Context, id int64) (*model.Patient, error) {
	if id == 1 {
		return &model.Patient{ID: 1, FirstName: "Ana", LastName: "Reyes"}, nil
	}
	return nil, nil
}

func (memPatients) GetByUserID(_ context.Context, userID int64) (*model.Patient, error) {
	if userID == 100 {
		uid := userID
		return &model.Patient{ID: 1, UserID: &uid, FirstName: "Ana", LastName: "Reyes"}, nil
	}
	return nil, nil
}

type memSchedule struct{}

func (memSchedule) GetWeeklyEntry(_ context.Context, _ int) (*model.WeeklyScheduleEntry, error) {
	open, close := "08:00", "12:00"
	max := 2
	return &model.WeeklyScheduleEntry{
		IsOpen: true, OpenTime: &open, CloseTime: &close, DentistCount: 2, MaxPerSlot: &max,
	}, nil
}

func (memSchedule) ListWeeklyEntries(context.Context) ([]*model.WeeklyScheduleEntry, error) {
	return nil, nil
}
func (memSchedule) UpdateWeeklyEntry(context.Context, *model.WeeklyScheduleEntry) error { return nil }
func (memSchedule) GetOverride(context.Context, string) (*model.CalendarOverride, error) {
	return nil, nil
}
func (memSchedule) GetOverrideByID(context.Context, int64) (*model.CalendarOverride, error) {
	return nil, nil
}
func (memSchedule) ListHumanOverrides(context.Context) ([]*model.CalendarOverride, error) {
	return nil, nil
}
func (memSchedule) CreateOverride(context.Context, *model.CalendarOverride) error   { return nil }
func (memSchedule) UpdateOverride(context.Context, *model.CalendarOverride) error   { return nil }
func (memSchedule) DeleteOverride(context.Context, int64) error                     { return nil }
func (memSchedule) UpsertGeneratedCap(context.Context, string, *int, *string) error { return nil }

type noopLogs struct{}

func (noopLogs) Create(context.Context, *model.SystemLog) error { return nil }

type noopOutbox struct{ repository.OutboxRepository }

func (noopOutbox) Create(context.Context, *model.OutboxEvent) error { return nil }

var handlerNow = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func newTestRouter(t *testing.T) (*gin.Engine, *memStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, validator.Register())

	store := &memStore{}
	log := logger.NewLogger(nil)
	auditor := audit.NewService(noopLogs{}, noopOutbox{}, log)
	svc := booking.NewService(
		&memAppointments{s: store}, memServices{}, memPatients{},
		schedule.NewResolver(memSchedule{}),
		auditor, clock.Fixed{T: handlerNow}, log, 7,
	)

	h := NewHandler(svc)
	engine := gin.New()
	api := engine.Group("/api/v1")
	h.RegisterPublicRoutes(api.Group("/appointments"))

	authed := api.Group("/appointments")
	authed.Use(middleware.RequireIdentity())
	h.RegisterPatientRoutes(authed)

	staff := api.Group("/staff")
	staff.Use(middleware.RequireIdentity())
	h.RegisterStaffRoutes(staff)

	return engine, store
}

func doRequest(engine *gin.Engine, method, path, body string, userID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestListSlotsRequiresParams(t *testing.T) {
	engine, _ := newTestRouter(t)

	w := doRequest(engine, http.MethodGet, "/api/v1/appointments/slots", "", "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestListSlotsReturnsGrid(t *testing.T) {
	engine, _ := newTestRouter(t)

	w := doRequest(engine, http.MethodGet, "/api/v1/appointments/slots?date=2025-06-16&service_id=1", "", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool              `json:"success"`
		Data    model.SlotListing `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 30, resp.Data.DurationMinutes)
	assert.Len(t, resp.Data.Slots, 8)
}

func TestCreateRequiresIdentity(t *testing.T) {
	engine, _ := newTestRouter(t)

	body := `{"service_id":1,"date":"2025-06-16","start_time":"09:00","payment_method":"cash"}`
	w := doRequest(engine, http.MethodPost, "/api/v1/appointments", body, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateBookingRoundTrip(t *testing.T) {
	engine, store := newTestRouter(t)

	body := `{"service_id":1,"date":"2025-06-16","start_time":"09:00","payment_method":"cash"}`
	w := doRequest(engine, http.MethodPost, "/api/v1/appointments", body, "100")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Data model.Appointment `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "09:00-09:30", resp.Data.TimeSlot)
	assert.Len(t, resp.Data.ReferenceCode, 8)
	require.Len(t, store.appointments, 1)

	// The staff lookup resolves the code the patient received.
	w = doRequest(engine, http.MethodGet, "/api/v1/staff/reference/"+resp.Data.ReferenceCode, "", "1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Ana Reyes")
}

func TestCreateRejectsMalformedDate(t *testing.T) {
	engine, _ := newTestRouter(t)

	body := `{"service_id":1,"date":"16-06-2025","start_time":"09:00","payment_method":"cash"}`
	w := doRequest(engine, http.MethodPost, "/api/v1/appointments", body, "100")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestCreateRejectsUnknownPaymentMethod(t *testing.T) {
	engine, _ := newTestRouter(t)

	body := `{"service_id":1,"date":"2025-06-16","start_time":"09:00","payment_method":"check"}`
	w := doRequest(engine, http.MethodPost, "/api/v1/appointments", body, "100")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestSlotConflictMapsTo409(t *testing.T) {
	engine, _ := newTestRouter(t)

	body := `{"service_id":1,"date":"2025-06-16","start_time":"09:00","payment_method":"cash"}`
	for i := 0; i < 2; i++ {
		w := doRequest(engine, http.MethodPost, "/api/v1/appointments", body, "100")
		require.Equal(t, http.StatusCreated, w.Code, fmt.Sprintf("booking %d", i))
	}

	w := doRequest(engine, http.MethodPost, "/api/v1/appointments", body, "100")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "09:00")
}

func TestUnlinkedAccountMapsTo403(t *testing.T) {
	engine, _ := newTestRouter(t)

	body := `{"service_id":1,"date":"2025-06-16","start_time":"09:00","payment_method":"cash"}`
	w := doRequest(engine, http.MethodPost, "/api/v1/appointments", body, "999")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestApproveFlowOverHTTP(t *testing.T) {
	engine, store := newTestRouter(t)

	body := `{"service_id":1,"date":"2025-06-16","start_time":"10:00","payment_method":"cash"}`
	w := doRequest(engine, http.MethodPost, "/api/v1/appointments", body, "100")
	require.Equal(t, http.StatusCreated, w.Code)
	id := store.appointments[0].ID

	w = doRequest(engine, http.MethodPost, fmt.Sprintf("/api/v1/staff/appointments/%d/approve", id), "", "1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"approved"`)

	// A second approve is an invalid transition.
	w = doRequest(engine, http.MethodPost, fmt.Sprintf("/api/v1/staff/appointments/%d/approve", id), "", "1")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestRejectRequiresNote(t *testing.T) {
	engine, store := newTestRouter(t)

	body := `{"service_id":1,"date":"2025-06-16","start_time":"10:00","payment_method":"cash"}`
	w := doRequest(engine, http.MethodPost, "/api/v1/appointments", body, "100")
	require.Equal(t, http.StatusCreated, w.Code)
	id := store.appointments[0].ID

	w = doRequest(engine, http.MethodPost, fmt.Sprintf("/api/v1/staff/appointments/%d/reject", id), `{}`, "1")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = doRequest(engine, http.MethodPost, fmt.Sprintf("/api/v1/staff/appointments/%d/reject", id), `{"note":"schedule conflict"}`, "1")
	assert.Equal(t, http.StatusOK, w.Code)
}
