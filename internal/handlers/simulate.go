package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"sensor_simulator/internal/metrics"
	"sensor_simulator/internal/report"
	"sensor_simulator/internal/service"

	"github.com/gin-gonic/gin"
)

const formatJSON = "json"

// @Summary      Offline batch simulation
// @Description  Runs fresh sensors for 'ticks' steps and returns the series as JSON or as a chart report.
// @Tags         simulate
// @Produce      json
// @Produce      application/pdf
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        ticks   query  int     false  "Number of ticks (default 1440)"
// @Param        seed    query  int     false  "Random seed; 0 picks one"
// @Param        format  query  string  false  "Output format"  Enums(json,xlsx,pdf)
// @Success      200  {object}  service.Series
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/simulate [post]
// @Security     BearerAuth
func (h *Handler) simulate(c *gin.Context) {
	ticks := h.batchTicks
	if qs := c.Query("ticks"); qs != "" {
		v, err := strconv.Atoi(qs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'ticks'"})
			return
		}
		ticks = v
	}
	var seed uint64
	if qs := c.Query("seed"); qs != "" {
		v, err := strconv.ParseUint(qs, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'seed'"})
			return
		}
		seed = v
	}
	format := strings.ToLower(strings.TrimSpace(c.DefaultQuery("format", formatJSON)))
	if format != formatJSON && format != report.FormatXLSX && format != report.FormatPDF {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'format'; use json, xlsx or pdf"})
		return
	}

	series, err := h.services.Batch.Simulate(ticks, seed)
	if err != nil {
		if errors.Is(err, service.ErrInvalidTicks) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, "simulation failed", "batch_simulate_failed", err, "ticks", ticks)
		return
	}
	if format == formatJSON {
		c.JSON(http.StatusOK, series)
		return
	}

	body, contentType, err := report.Render(format, series)
	if err != nil {
		metrics.IncBatchExport(format, metrics.ResultError)
		h.logAndJSONError(c, http.StatusInternalServerError, "report rendering failed", "batch_render_failed", err, "format", format)
		return
	}
	metrics.IncBatchExport(format, metrics.ResultSuccess)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="simulation-%d.%s"`, ticks, format))
	c.Data(http.StatusOK, contentType, body)
}
