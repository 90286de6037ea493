package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"gobarber/handlers"
	"gobarber/middleware"
	"gobarber/utils"
)

// NewRouter builds the gin engine with global middleware and every route.
func NewRouter(hb *handlers.HandlerBundle) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(hb.Logger))
	router.Use(utils.ErrorHandler(hb.Logger))
	if hb.HTTPMetrics != nil {
		router.Use(hb.HTTPMetrics.Middleware())
	}
	RegisterRoutes(router, hb)
	return router
}

// RegisterAppointmentRoutes registers the scheduling endpoints.
func RegisterAppointmentRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("")
	{
		api.Use(middleware.RateLimitMiddleware(hb.RateLimitPerMin, hb.Logger))
		api.Use(middleware.JWTAuthMiddleware(hb.JWTSecret, hb.Logger))

		api.GET("/appointments", hb.ListAppointmentsHandler)
		api.POST("/appointments", hb.BookAppointmentHandler)
		api.DELETE("/appointments/:id", hb.CancelAppointmentHandler)
		api.GET("/schedule", hb.ListScheduleHandler)

		api.GET("/notifications", hb.ListNotificationsHandler)
		api.PUT("/notifications/:id", hb.MarkNotificationReadHandler)
	}
}

// RegisterHealthRoute registers the health-check and metrics endpoints.
func RegisterHealthRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	if hb.HealthHandler != nil {
		r.GET("/health", hb.HealthHandler)
	} else {
		r.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Hi, I'm GoBarber"})
		})
	}
	if hb.MetricsHandler != nil {
		r.GET("/metrics", gin.WrapH(hb.MetricsHandler))
	}
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders:   []string{"Content-Length", "X-Request-ID"},
		MaxAge:          12 * time.Hour,
	}))

	RegisterHealthRoute(r, hb)
	RegisterAppointmentRoutes(r, hb)
}
