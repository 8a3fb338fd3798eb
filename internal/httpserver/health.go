package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	pkgRedis "telegram-task-relay/pkg/redis"
	"telegram-task-relay/pkg/response"
)

// Health response constants (single source for version and service identity).
const (
	HealthMessage = "Relaying chats to tasks"
	HealthVersion = "1.0.0"
	ServiceName   = "telegram-task-relay"
)

// healthCheck handles health check requests
// @Summary Health Check
// @Description Check if the API is healthy
// @Tags Health
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{} "API is healthy"
// @Router /health [get]
func (srv HTTPServer) healthCheck(c *gin.Context) {
	response.OK(c, gin.H{
		"status":  "healthy",
		"message": HealthMessage,
		"version": HealthVersion,
		"service": ServiceName,
	})
}

// readyCheck reports ready once the pending store answers.
// @Summary Readiness Check
// @Description Check if the API is ready to serve traffic (pings Redis when configured)
// @Tags Health
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{} "API is ready"
// @Failure 503 {object} response.Resp "Pending store unreachable"
// @Router /ready [get]
func (srv HTTPServer) readyCheck(c *gin.Context) {
	ctx := c.Request.Context()

	store := "memory"
	if srv.redis != nil {
		store = "redis"
		if err := pkgRedis.Ping(ctx, srv.redis); err != nil {
			srv.l.Warnf(ctx, "httpserver.readyCheck: %v", err)
			c.JSON(http.StatusServiceUnavailable, response.Resp{
				ErrorCode: response.InternalServerErrorCode,
				Message:   "pending store unreachable",
			})
			return
		}
	}

	response.OK(c, gin.H{
		"status":  "ready",
		"store":   store,
		"message": HealthMessage,
		"version": HealthVersion,
		"service": ServiceName,
	})
}

// liveCheck handles liveness check requests
// @Summary Liveness Check
// @Description Check if the API is alive
// @Tags Health
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{} "API is alive"
// @Router /live [get]
func (srv HTTPServer) liveCheck(c *gin.Context) {
	response.OK(c, gin.H{
		"status":  "alive",
		"message": HealthMessage,
		"version": HealthVersion,
		"service": ServiceName,
	})
}
