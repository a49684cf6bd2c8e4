package calendar

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/smilecare/booking-api/internal/middleware"
	"github.com/smilecare/booking-api/internal/model"
	"github.com/smilecare/booking-api/internal/service/schedule"
	apperrors "github.com/smilecare/booking-api/pkg/errors"
	"github.com/smilecare/booking-api/pkg/httputil"
)

// Handler exposes clinic-hours resolution and the admin calendar
// surfaces: weekly defaults, overrides, and the capacity planner.
type Handler struct {
	schedules *schedule.Service
	usage     schedule.UsageReader
}

func NewHandler(schedules *schedule.Service, usage schedule.UsageReader) *Handler {
	return &Handler{schedules: schedules, usage: usage}
}

// RegisterRoutes mounts the read-only calendar surface.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/resolve", h.ResolveDay)
	r.GET("/peak", h.PeakUsage)
}

// RegisterAdminRoutes mounts the staff calendar surface.
func (h *Handler) RegisterAdminRoutes(r *gin.RouterGroup) {
	r.GET("/preview", h.Preview)
	r.GET("/daily", h.Daily)
	r.PUT("/capacity/:date", h.UpsertCapacity)

	r.GET("/weekly", h.ListWeekly)
	r.PUT("/weekly/:weekday", h.UpdateWeekly)

	r.GET("/overrides", h.ListOverrides)
	r.POST("/overrides", h.CreateOverride)
	r.PUT("/overrides/:id", h.UpdateOverride)
	r.DELETE("/overrides/:id", h.DeleteOverride)
}

func (h *Handler) ResolveDay(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		httputil.RespondWithError(c, apperrors.BadRequest("date is required", nil))
		return
	}

	day, err := h.schedules.ResolveDay(c.Request.Context(), date)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, day.Payload())
}

func (h *Handler) PeakUsage(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		httputil.RespondWithError(c, apperrors.BadRequest("date is required", nil))
		return
	}

	peak, err := h.usage.PeakConcurrentUsage(c.Request.Context(), date)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"date": date, "peak_concurrent": peak})
}

func (h *Handler) Preview(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "14"))

	preview, err := h.schedules.Preview(c.Request.Context(), days)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, preview)
}

func (h *Handler) Daily(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "14"))

	rows, err := h.schedules.Daily(c.Request.Context(), c.Query("from"), days)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, rows)
}

func (h *Handler) UpsertCapacity(c *gin.Context) {
	var req model.UpsertCapacityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	userID := middleware.UserID(c)
	warning, err := h.schedules.UpsertCapacity(c.Request.Context(), &userID, c.Param("date"), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	if warning != "" {
		httputil.RespondWithWarning(c, gin.H{"date": c.Param("date")}, warning)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"date": c.Param("date")})
}

func (h *Handler) ListWeekly(c *gin.Context) {
	entries, err := h.schedules.ListWeekly(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, entries)
}

func (h *Handler) UpdateWeekly(c *gin.Context) {
	weekday, err := strconv.Atoi(c.Param("weekday"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("weekday must be a number", err))
		return
	}

	var req model.UpdateWeeklyScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	userID := middleware.UserID(c)
	entry, err := h.schedules.UpdateWeekly(c.Request.Context(), &userID, weekday, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, entry)
}

func (h *Handler) ListOverrides(c *gin.Context) {
	overrides, err := h.schedules.ListOverrides(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, overrides)
}

func (h *Handler) CreateOverride(c *gin.Context) {
	var req model.CreateCalendarOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	userID := middleware.UserID(c)
	override, err := h.schedules.CreateOverride(c.Request.Context(), &userID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, override)
}

func (h *Handler) UpdateOverride(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid override id", err))
		return
	}

	var req model.UpdateCalendarOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	userID := middleware.UserID(c)
	override, err := h.schedules.UpdateOverride(c.Request.Context(), &userID, id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, override)
}

func (h *Handler) DeleteOverride(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid override id", err))
		return
	}

	userID := middleware.UserID(c)
	if err := h.schedules.DeleteOverride(c.Request.Context(), &userID, id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"deleted": id})
}
