package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bot608/duocortex-accounts-page/pkg/logger"
)

// LogsHandler exposes the durable log store for debugging. Only mounted
// when log storage is enabled.
type LogsHandler struct {
	writer *logger.SQLiteWriter
}

// NewLogsHandler creates a new logs handler.
func NewLogsHandler(writer *logger.SQLiteWriter) *LogsHandler {
	return &LogsHandler{writer: writer}
}

// List returns stored log entries, newest first.
// GET /api/logs?level=warn&search=withdrawal&limit=50&offset=0
func (h *LogsHandler) List(c *gin.Context) {
	filter := logger.QueryFilter{
		Level:  c.Query("level"),
		Search: c.Query("search"),
		Limit:  50,
	}

	if limit := c.Query("limit"); limit != "" {
		if l, err := strconv.Atoi(limit); err == nil && l > 0 && l <= 200 {
			filter.Limit = l
		}
	}
	if offset := c.Query("offset"); offset != "" {
		if o, err := strconv.Atoi(offset); err == nil && o >= 0 {
			filter.Offset = o
		}
	}
	if since := c.Query("since"); since != "" {
		if t, err := time.Parse(time.RFC3339, since); err == nil {
			filter.Since = &t
		}
	}

	entries, total, err := h.writer.Query(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":             "server_error",
			"error_description": "log query failed",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"entries": entries,
		"total":   total,
		"limit":   filter.Limit,
		"offset":  filter.Offset,
	})
}
