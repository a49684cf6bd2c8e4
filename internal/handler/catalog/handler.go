package catalog

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/smilecare/booking-api/internal/service/catalog"
	apperrors "github.com/smilecare/booking-api/pkg/errors"
	"github.com/smilecare/booking-api/pkg/httputil"
)

type Handler struct {
	services *catalog.Service
}

func NewHandler(services *catalog.Service) *Handler {
	return &Handler{services: services}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("", h.List)
	r.GET("/:id", h.Get)
}

func (h *Handler) List(c *gin.Context) {
	services, err := h.services.List(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, services)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid service id", err))
		return
	}

	svc, err := h.services.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, svc)
}
