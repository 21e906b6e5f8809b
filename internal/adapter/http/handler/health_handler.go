package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// PingFunc checks the database. (*sql.DB).PingContext and
// (*pgxpool.Pool).Ping both fit.
type PingFunc func(ctx context.Context) error

type HealthHandler struct {
	db      PingFunc
	service string
}

func NewHealthHandler(db PingFunc, service string) *HealthHandler {
	return &HealthHandler{db: db, service: service}
}

func (h *HealthHandler) Health(c *gin.Context) {
	code := http.StatusOK
	status := "ok"
	database := "ok"

	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := h.db(ctx); err != nil {
			code = http.StatusServiceUnavailable
			status = "degraded"
			database = "unavailable"
		}
	}

	c.JSON(code, gin.H{
		"status":   status,
		"service":  h.service,
		"database": database,
		"time":     time.Now().UTC(),
	})
}
