package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gobarber/utils"
)

// HealthHandler reports the monitor's latest snapshot, 503 when any service is down.
func HealthHandler(monitor *utils.HealthMonitor) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := monitor.Status()
		code := http.StatusOK
		state := "ok"
		if !status.Healthy() {
			code = http.StatusServiceUnavailable
			state = "degraded"
		}
		c.JSON(code, gin.H{"status": state, "services": status.Services, "checkedAt": status.CheckedAt})
	}
}
