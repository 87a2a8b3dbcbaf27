package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"sensor_simulator/internal/models"
	"sensor_simulator/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	errFromInvalid    = "invalid 'from' time; use RFC3339 or YYYY-MM-DD"
	errToInvalid      = "invalid 'to' time; use RFC3339 or YYYY-MM-DD"
	errLimitInvalid   = "invalid 'limit'; use a positive integer"
	errSuccessInvalid = "invalid 'success'; use true or false"

	layoutDateTime = "2006-01-02 15:04:05"
	layoutDate     = "2006-01-02"
)

// isDateOnly reports whether the query string represents a date without time component.
func isDateOnly(s string) bool {
	return !strings.ContainsAny(s, "T ")
}

// @Summary      List readings
// @Description  Recorded sensor values, newest first. A date-only 'to' covers the whole day.
// @Tags         history
// @Produce      json
// @Param        from       query  string  false  "Start of range (RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD')"  example(2025-08-01)
// @Param        to         query  string  false  "End of range, inclusive"  example(2025-08-31)
// @Param        sensor_id  query  string  false  "Sensor id"
// @Param        limit      query  int     false  "Maximum rows (default 500, max 5000)"
// @Success      200  {object}  map[string]interface{}  "count, readings"
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/readings [get]
// @Security     BearerAuth
func (h *Handler) getReadings(c *gin.Context) {
	from, to, limit, ok := h.parseRangeQuery(c)
	if !ok {
		return
	}
	readings, err := h.services.History.Readings(c.Request.Context(), models.ReadingFilter{
		From:     from,
		To:       to,
		SensorID: c.Query("sensor_id"),
		Limit:    limit,
	})
	if err != nil {
		h.historyError(c, "readings_list_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":    len(readings),
		"readings": readings,
	})
}

// @Summary      List deliveries
// @Description  Recorded outcome of every delivery attempt, newest first.
// @Tags         history
// @Produce      json
// @Param        from     query  string  false  "Start of range"
// @Param        to       query  string  false  "End of range, inclusive"
// @Param        sink     query  string  false  "Sink name"  Enums(http,mqtt,kafka)
// @Param        success  query  bool    false  "Only successful (true) or failed (false) attempts"
// @Param        limit    query  int     false  "Maximum rows (default 500, max 5000)"
// @Success      200  {object}  map[string]interface{}  "count, deliveries"
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/deliveries [get]
// @Security     BearerAuth
func (h *Handler) getDeliveries(c *gin.Context) {
	from, to, limit, ok := h.parseRangeQuery(c)
	if !ok {
		return
	}
	var success *bool
	if qs := c.Query("success"); qs != "" {
		v, err := strconv.ParseBool(qs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errSuccessInvalid})
			return
		}
		success = &v
	}
	deliveries, err := h.services.History.Deliveries(c.Request.Context(), models.DeliveryFilter{
		From:    from,
		To:      to,
		Sink:    c.Query("sink"),
		Success: success,
		Limit:   limit,
	})
	if err != nil {
		h.historyError(c, "deliveries_list_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":      len(deliveries),
		"deliveries": deliveries,
	})
}

// parseRangeQuery reads from/to/limit and writes a 400 itself when ok is false.
func (h *Handler) parseRangeQuery(c *gin.Context) (from, to time.Time, limit int, ok bool) {
	var err error
	if qs := c.Query("from"); qs != "" {
		if from, err = parseQueryTime(qs); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errFromInvalid})
			return
		}
	}
	if qs := c.Query("to"); qs != "" {
		if to, err = parseQueryTime(qs); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errToInvalid})
			return
		}
		if isDateOnly(qs) {
			to = to.Add(24*time.Hour - time.Nanosecond).UTC()
		}
	}
	if qs := c.Query("limit"); qs != "" {
		if limit, err = strconv.Atoi(qs); err != nil || limit <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": errLimitInvalid})
			return
		}
	}
	return from, to, limit, true
}

func (h *Handler) historyError(c *gin.Context, logKey string, err error) {
	if errors.Is(err, service.ErrInvalidTimeRange) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "'from' must be <= 'to'"})
		return
	}
	h.logAndJSONError(c, http.StatusInternalServerError, "failed to load history", logKey, err)
}

func parseQueryTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, layoutDateTime, layoutDate} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time format %q", s)
}
