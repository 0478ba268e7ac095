// internal/handlers/health/health_handler.go
package health

import (
	"context"
	"net/http"
	"time"

	"qarilive-service/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Clock is anything that can report the database's current time.
type Clock interface {
	Now(ctx context.Context) (time.Time, error)
}

type HealthHandler struct {
	db     Clock
	logger *zap.Logger
}

func NewHealthHandler(db Clock, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		db:     db,
		logger: logger,
	}
}

// Check round-trips to the database and echoes its clock.
func (h *HealthHandler) Check(c *gin.Context) {
	now, err := h.db.Now(c.Request.Context())
	if err != nil {
		h.logger.Error("database health check failed", zap.Error(err))
		response.FromError(c, err, "Database unavailable")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"db_time": now.UTC().Format(time.RFC3339Nano)})
}
