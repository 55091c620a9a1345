package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AI2HU/bookapp/internal/logger"
	"github.com/AI2HU/bookapp/internal/models"
)

// healthCheck handles GET /health
func (s *Server) healthCheck(c *gin.Context) {
	ctx := c.Request.Context()
	if s.backendTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.backendTimeout)
		defer cancel()
	}

	response := models.HealthResponse{
		Status:  "healthy",
		Time:    time.Now().UTC().Format(time.RFC3339),
		Version: Version,
		Checks:  make(map[string]string),
	}

	status := http.StatusOK
	for name, err := range s.database.Check(ctx) {
		if err != nil {
			logger.Warning("Health check: %s unreachable: %v", name, err)
			response.Checks[name] = "unreachable"
			response.Status = "unhealthy"
			status = http.StatusServiceUnavailable
			continue
		}
		response.Checks[name] = "ok"
	}

	if s.probe != nil {
		response.LastProbe = make(map[string]string)
		for name, up := range s.probe.Status() {
			if up {
				response.LastProbe[name] = "ok"
			} else {
				response.LastProbe[name] = "unreachable"
			}
		}
	}

	c.JSON(status, response)
}
