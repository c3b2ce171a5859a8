package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/studyhub/backend/internal/infrastructure/persistence"
)

// SystemHandler handles health and liveness endpoints
type SystemHandler struct {
	BaseHandler
	db        *persistence.Database
	startedAt time.Time
}

// NewSystemHandler creates a new system handler
func NewSystemHandler(db *persistence.Database) *SystemHandler {
	return &SystemHandler{db: db, startedAt: time.Now()}
}

// Health reports service health, database connectivity, and pool pressure
func (h *SystemHandler) Health(c *gin.Context) {
	status := "ok"
	dbStatus := "ok"

	body := gin.H{
		"uptime":    time.Since(h.startedAt).Round(time.Second).String(),
		"timestamp": time.Now().UTC(),
	}

	switch {
	case h.db == nil:
		dbStatus = "not configured"
	case h.db.Ping(c.Request.Context()) != nil:
		status = "degraded"
		dbStatus = "unreachable"
	default:
		if stats, err := h.db.Stats(); err == nil {
			body["pool"] = gin.H{
				"open":   stats.OpenConnections,
				"in_use": stats.InUse,
				"idle":   stats.Idle,
			}
		}
	}

	body["status"] = status
	body["database"] = dbStatus

	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, body)
}
