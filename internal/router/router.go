package router

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/smilecare/booking-api/internal/handler/appointment"
	"github.com/smilecare/booking-api/internal/handler/calendar"
	"github.com/smilecare/booking-api/internal/handler/catalog"
	"github.com/smilecare/booking-api/internal/handler/health"
	"github.com/smilecare/booking-api/internal/middleware"
	"github.com/smilecare/booking-api/pkg/validator"
)

type Router struct {
	engine       *gin.Engine
	healthH      *health.Handler
	calendarH    *calendar.Handler
	appointmentH *appointment.Handler
	catalogH     *catalog.Handler
	metrics      *routerMetrics
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	errorTotal      *prometheus.CounterVec
}

type Config struct {
	RateLimitRPS   float64
	RateLimitBurst int
	Timeout        time.Duration
	CORS           middleware.CORSConfig
	MetricsPrefix  string
}

func NewRouter(
	healthH *health.Handler,
	calendarH *calendar.Handler,
	appointmentH *appointment.Handler,
	catalogH *catalog.Handler,
	config Config,
) *Router {
	gin.SetMode(gin.ReleaseMode)

	if err := validator.Register(); err != nil {
		panic(fmt.Sprintf("failed to register validations: %v", err))
	}

	engine := gin.New()

	r := &Router{
		engine:       engine,
		healthH:      healthH,
		calendarH:    calendarH,
		appointmentH: appointmentH,
		catalogH:     catalogH,
		metrics:      initRouterMetrics(config.MetricsPrefix),
	}

	engine.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.ErrorHandler(),
		r.metricsMiddleware(),
		middleware.Timeout(middleware.TimeoutConfig{Duration: config.Timeout}),
	)

	engine.Use(middleware.CORS(config.CORS))

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		RPS:   config.RateLimitRPS,
		Burst: config.RateLimitBurst,
	})
	engine.Use(rateLimiter.RateLimit())

	return r
}

func (r *Router) Setup() {
	api := r.engine.Group("/api/v1")

	r.healthH.RegisterRoutes(api.Group("/health"))

	// Public surface: hours, slot browsing, catalog.
	r.calendarH.RegisterRoutes(api.Group("/calendar"))
	r.appointmentH.RegisterPublicRoutes(api.Group("/appointments"))
	r.catalogH.RegisterRoutes(api.Group("/services"))

	// Patient surface: identity required, linkage enforced downstream.
	patient := api.Group("/appointments")
	patient.Use(middleware.RequireIdentity())
	r.appointmentH.RegisterPatientRoutes(patient)

	// Staff surface: role enforcement happens at the gateway.
	staff := api.Group("/staff")
	staff.Use(middleware.RequireIdentity())
	r.appointmentH.RegisterStaffRoutes(staff)
	r.calendarH.RegisterAdminRoutes(staff.Group("/calendar"))
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func initRouterMetrics(prefix string) *routerMetrics {
	return &routerMetrics{
		requestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: prefix + "_request_duration_seconds",
				Help: "Duration of HTTP requests in seconds",
			},
			[]string{"method", "path", "status"},
		),
		requestTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		errorTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_errors_total",
				Help: "Total number of HTTP errors",
			},
			[]string{"method", "path", "type"},
		),
	}
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()

		c.Next()

		status := fmt.Sprintf("%d", c.Writer.Status())
		duration := time.Since(start).Seconds()

		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(duration)
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()

		if c.Writer.Status() >= 400 {
			r.metrics.errorTotal.WithLabelValues(c.Request.Method, path, "http").Inc()
		}
	}
}
