package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/plastimar/rolltrack/internal/service/waste"
)

const queryDateLayout = "2006-01-02"

// WasteHandler exposes the waste summary query over HTTP.
type WasteHandler struct {
	svc    *waste.Service
	logger *zap.Logger
}

// NewWasteHandler constructs the HTTP handler adapter.
func NewWasteHandler(svc *waste.Service, logger *zap.Logger) *WasteHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WasteHandler{svc: svc, logger: logger}
}

// Summary serves GET /waste/summary?groupBy=&from=&to=.
func (h *WasteHandler) Summary(c *gin.Context) {
	from, err := time.Parse(queryDateLayout, c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from must be a YYYY-MM-DD date"})
		return
	}
	to, err := time.Parse(queryDateLayout, c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "to must be a YYYY-MM-DD date"})
		return
	}
	if to.Before(from) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "to must not be before from"})
		return
	}
	// The window is inclusive of both days.
	to = to.Add(24*time.Hour - time.Nanosecond)

	groupBy := c.DefaultQuery("groupBy", "day")
	summaries, err := h.svc.Summaries(c.Request.Context(), groupBy, from, to)
	if err != nil {
		if errors.Is(err, waste.ErrUnknownGrouping) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("failed building waste summaries", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"group_by":  groupBy,
		"from":      from.Format(queryDateLayout),
		"to":        to.Format(queryDateLayout),
		"summaries": summaries,
	})
}
