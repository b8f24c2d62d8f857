package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/toxzak-svg/Axievale/internal/models"
	"github.com/toxzak-svg/Axievale/internal/services"
)

// Valuator is the orchestrator surface the valuation endpoints depend on.
type Valuator interface {
	ValuateByID(ctx context.Context, axieID string) (*models.Axie, *models.Valuation, error)
	ValuateBatch(ctx context.Context, axieIDs []string) []models.BatchItem
	BatchLimit() int
}

type ValuationHandler struct {
	valuator Valuator
}

func NewValuationHandler(valuator Valuator) *ValuationHandler {
	return &ValuationHandler{valuator: valuator}
}

// GetValuation returns the full valuation for one Axie.
func (h *ValuationHandler) GetValuation(c *gin.Context) {
	axie, valuation, err := h.valuator.ValuateByID(c.Request.Context(), c.Param("id"))
	if errors.Is(err, services.ErrAxieNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Axie not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"axie":      axie,
			"valuation": valuation,
		},
	})
}

type batchRequest struct {
	AxieIDs []string `json:"axieIds"`
}

// BatchValuation values a bounded list of ids, preserving input order and
// capturing per-item failures inline.
func (h *ValuationHandler) BatchValuation(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "axieIds must be an array"})
		return
	}
	if len(req.AxieIDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "axieIds must be a non-empty array"})
		return
	}
	if limit := h.valuator.BatchLimit(); len(req.AxieIDs) > limit {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   fmt.Sprintf("Maximum %d Axies per batch request", limit),
		})
		return
	}

	items := h.valuator.ValuateBatch(c.Request.Context(), req.AxieIDs)

	c.JSON(http.StatusOK, gin.H{"success": true, "data": items})
}
