package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	statusOK = "ok"

	errNoSnapshot = "no tick has run yet"
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	resp := gin.H{"status": statusOK}
	if h.services.Monitoring != nil {
		if snap, ok := h.services.Monitoring.Latest(); ok {
			resp["tick"] = snap.Tick
			resp["last_tick_at"] = snap.At
		}
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary      Latest sensor snapshot
// @Description  Values produced by the most recent tick, one reading per sensor.
// @Tags         sensors
// @Produce      json
// @Success      200  {object}  models.Snapshot
// @Failure      401  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/v1/sensors [get]
// @Security     BearerAuth
func (h *Handler) getSensors(c *gin.Context) {
	snap, ok := h.services.Monitoring.Latest()
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": errNoSnapshot})
		return
	}
	c.JSON(http.StatusOK, snap)
}
