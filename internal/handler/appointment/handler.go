package appointment

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/smilecare/booking-api/internal/middleware"
	"github.com/smilecare/booking-api/internal/model"
	"github.com/smilecare/booking-api/internal/service/booking"
	apperrors "github.com/smilecare/booking-api/pkg/errors"
	"github.com/smilecare/booking-api/pkg/httputil"
)

type Handler struct {
	bookings *booking.Service
}

func NewHandler(bookings *booking.Service) *Handler {
	return &Handler{bookings: bookings}
}

// RegisterPublicRoutes mounts the unauthenticated slot browser.
func (h *Handler) RegisterPublicRoutes(r *gin.RouterGroup) {
	r.GET("/slots", h.ListSlots)
}

// RegisterPatientRoutes mounts the identity-bound booking surface.
func (h *Handler) RegisterPatientRoutes(r *gin.RouterGroup) {
	r.POST("", h.Create)
	r.GET("", h.ListOwn)
	r.POST("/:id/cancel", h.CancelOwn)
}

// RegisterStaffRoutes mounts the staff appointment surface.
func (h *Handler) RegisterStaffRoutes(r *gin.RouterGroup) {
	appointments := r.Group("/appointments")
	appointments.GET("", h.List)
	appointments.GET("/:id", h.Get)
	appointments.POST("/:id/approve", h.Approve)
	appointments.POST("/:id/reject", h.Reject)
	appointments.POST("/:id/complete", h.Complete)

	// Check-in by the code patients receive at booking time.
	r.GET("/reference/:code", h.LookupReferenceCode)
}

func (h *Handler) ListSlots(c *gin.Context) {
	date := c.Query("date")
	serviceID, err := strconv.ParseInt(c.Query("service_id"), 10, 64)
	if date == "" || err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("date and service_id are required", err))
		return
	}

	listing, err := h.bookings.ListAvailableStarts(c.Request.Context(), date, serviceID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, listing)
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	appt, err := h.bookings.CreateBooking(c.Request.Context(), middleware.UserID(c), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, appt)
}

func (h *Handler) ListOwn(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	appts, total, err := h.bookings.ListOwn(c.Request.Context(), middleware.UserID(c), page, pageSize)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithPagination(c, appts, page, pageSize, total)
}

func (h *Handler) CancelOwn(c *gin.Context) {
	id, err := h.appointmentID(c)
	if err != nil {
		return
	}

	appt, err := h.bookings.CancelOwn(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, appt)
}

func (h *Handler) List(c *gin.Context) {
	filters := &model.AppointmentFilters{
		Status:    model.AppointmentStatus(c.Query("status")),
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
	}
	if patientID, err := strconv.ParseInt(c.Query("patient_id"), 10, 64); err == nil {
		filters.PatientID = patientID
	}

	appts, err := h.bookings.List(c.Request.Context(), filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, appts)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := h.appointmentID(c)
	if err != nil {
		return
	}

	appt, err := h.bookings.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, appt)
}

func (h *Handler) Approve(c *gin.Context) {
	id, err := h.appointmentID(c)
	if err != nil {
		return
	}

	appt, err := h.bookings.Approve(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, appt)
}

func (h *Handler) Reject(c *gin.Context) {
	id, err := h.appointmentID(c)
	if err != nil {
		return
	}

	var req model.RejectAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("a rejection note is required", err))
		return
	}

	appt, err := h.bookings.Reject(c.Request.Context(), middleware.UserID(c), id, req.Note)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, appt)
}

func (h *Handler) Complete(c *gin.Context) {
	id, err := h.appointmentID(c)
	if err != nil {
		return
	}

	appt, err := h.bookings.Complete(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, appt)
}

func (h *Handler) LookupReferenceCode(c *gin.Context) {
	lookup, err := h.bookings.ResolveReferenceCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, lookup)
}

func (h *Handler) appointmentID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid appointment id", err))
		return 0, err
	}
	return id, nil
}
