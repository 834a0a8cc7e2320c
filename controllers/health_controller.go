package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const healthPingTimeout = 2 * time.Second

type healthStatus struct {
	Status  string `json:"status"`
	DB      string `json:"db"`
	Sockets int    `json:"sockets"`
}

// HealthCheck godoc
// @Summary Liveness and database reachability
// @Tags health
// @Produce json
// @Success 200 {object} healthStatus
// @Failure 503 {object} healthStatus
// @Router /health [get]
func (h *Handler) HealthCheck(c *gin.Context) {
	st := healthStatus{Status: "ok", DB: "ok"}
	if h.Hub != nil {
		st.Sockets = h.Hub.Len()
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), healthPingTimeout)
	defer cancel()

	if err := h.pingDB(ctx); err != nil {
		log.Warn().Err(err).Msg("health: database unreachable")
		st.Status, st.DB = "degraded", "unreachable"
		c.JSON(http.StatusServiceUnavailable, st)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *Handler) pingDB(ctx context.Context) error {
	sqlDB, err := h.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
