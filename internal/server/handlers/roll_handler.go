package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/plastimar/rolltrack/internal/domain/models"
	"github.com/plastimar/rolltrack/internal/engine"
	"github.com/plastimar/rolltrack/internal/repository/mongodb"
	"github.com/plastimar/rolltrack/internal/service/production"
)

// RollHandler exposes the roll workflow commands over HTTP.
type RollHandler struct {
	svc    *production.Service
	logger *zap.Logger
}

// NewRollHandler constructs the HTTP handler adapter.
func NewRollHandler(svc *production.Service, logger *zap.Logger) *RollHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RollHandler{svc: svc, logger: logger}
}

type startRollRequest struct {
	JobOrderID string `json:"job_order_id" binding:"required"`
	OperatorID string `json:"operator_id" binding:"required"`
	Section    string `json:"section" binding:"required"`
}

type stageRequest struct {
	OperatorID string   `json:"operator_id" binding:"required"`
	QuantityKg *float64 `json:"quantity_kg" binding:"required"`
	Overwrite  bool     `json:"overwrite"`
	NextStatus string   `json:"next_status"`
}

type receiveRequest struct {
	OperatorID string `json:"operator_id" binding:"required"`
	Notes      string `json:"notes"`
}

// Create opens a new roll against a job order.
func (h *RollHandler) Create(c *gin.Context) {
	var req startRollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid start roll payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	roll, err := h.svc.StartRoll(c.Request.Context(), production.StartRollRequest{
		JobOrderID: req.JobOrderID,
		OperatorID: req.OperatorID,
		Section:    req.Section,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, roll)
}

// RecordStage applies one stage command to a roll.
func (h *RollHandler) RecordStage(c *gin.Context) {
	stage, err := models.ParseStage(c.Param("stage"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req stageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid stage payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.svc.RecordStage(c.Request.Context(), c.Param("id"), stage, production.StageRequest{
		OperatorID: req.OperatorID,
		QuantityKg: *req.QuantityKg,
		Overwrite:  req.Overwrite,
		NextStatus: models.RollStatus(req.NextStatus),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Receive moves a roll into its terminal received state.
func (h *RollHandler) Receive(c *gin.Context) {
	var req receiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid receive payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.svc.Receive(c.Request.Context(), c.Param("id"), req.OperatorID, req.Notes)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Get returns a single roll.
func (h *RollHandler) Get(c *gin.Context) {
	roll, err := h.svc.GetRoll(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, roll)
}

// Balance returns the remaining authorized quantity of a job order.
func (h *RollHandler) Balance(c *gin.Context) {
	report, err := h.svc.RemainingBalance(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// respondError maps the engine's and repositories' error kinds onto HTTP
// status codes. Validation failures are the caller's to correct; nothing is
// retried here.
func (h *RollHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, mongodb.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, production.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, engine.ErrInvalidTransition), errors.Is(err, mongodb.ErrVersionConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, engine.ErrInvalidQuantity),
		errors.Is(err, engine.ErrStageAlreadyRecorded),
		errors.Is(err, engine.ErrExceedsUpstream),
		errors.Is(err, engine.ErrExceedsJobOrderBalance):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		h.logger.Error("workflow command failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
