package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gobarber/middleware"
)

// HandlerBundle groups all your endpoint handlers into one struct.
type HandlerBundle struct {
	Logger          *zap.Logger
	JWTSecret       []byte
	RateLimitPerMin int
	HTTPMetrics     *middleware.HTTPMetrics // optional
	MetricsHandler  http.Handler            // optional, served at /metrics

	// Appointment endpoints
	ListAppointmentsHandler  gin.HandlerFunc
	BookAppointmentHandler   gin.HandlerFunc
	CancelAppointmentHandler gin.HandlerFunc
	ListScheduleHandler      gin.HandlerFunc

	// Notification endpoints
	ListNotificationsHandler    gin.HandlerFunc
	MarkNotificationReadHandler gin.HandlerFunc

	HealthHandler gin.HandlerFunc
}
