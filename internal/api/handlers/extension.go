package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/toxzak-svg/Axievale/internal/models"
	"github.com/toxzak-svg/Axievale/internal/services"
)

// Admission header names for registered extension users.
const (
	headerUserID    = "x-user-id"
	headerUserKey   = "x-user-key"
	headerExtSecret = "x-extension-secret"
)

// Admitter gates a resolved caller identity.
type Admitter interface {
	Admit(caller *models.CallerIdentity) error
}

// ExtensionHandler serves the high-traffic extension valuation endpoint:
// admission control in front, response cache behind it, orchestrator last.
type ExtensionHandler struct {
	valuator Valuator
	cache    *services.ValuationCache
	policy   Admitter
	secret   string
}

func NewExtensionHandler(valuator Valuator, cache *services.ValuationCache, policy Admitter, secret string) *ExtensionHandler {
	return &ExtensionHandler{
		valuator: valuator,
		cache:    cache,
		policy:   policy,
		secret:   secret,
	}
}

type extensionRequest struct {
	AxieID       string   `json:"axieId"`
	ListingPrice *float64 `json:"listingPrice"`
}

// Valuate handles POST /api/extension/valuation.
func (h *ExtensionHandler) Valuate(c *gin.Context) {
	if h.secret != "" && c.GetHeader(headerExtSecret) != h.secret {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "invalid extension secret"})
		return
	}

	var req extensionRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.AxieID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "axieId is required"})
		return
	}

	caller := resolveCaller(c)
	if err := h.policy.Admit(caller); err != nil {
		status, message := admissionStatus(err)
		c.JSON(status, gin.H{"success": false, "error": message})
		return
	}

	key := services.CacheKey(req.AxieID, req.ListingPrice)
	if cached, ok := h.cache.Get(key); ok {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"cached":  true,
			"data": gin.H{
				"axie":      cached.Axie,
				"valuation": cached.Valuation,
				"signal":    cached.Signal,
			},
		})
		return
	}

	axie, valuation, err := h.valuator.ValuateByID(c.Request.Context(), req.AxieID)
	if errors.Is(err, services.ErrAxieNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Axie not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	signal := services.ClassifySignal(req.ListingPrice, valuation.PriceRange)
	h.cache.Set(key, services.CachedValuation{Axie: axie, Valuation: valuation, Signal: signal})

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"cached":  false,
		"data": gin.H{
			"axie":      axie,
			"valuation": valuation,
			"signal":    signal,
		},
	})
}

// resolveCaller builds the tagged caller identity from credential headers or
// the client address.
func resolveCaller(c *gin.Context) *models.CallerIdentity {
	userID := c.GetHeader(headerUserID)
	userKey := c.GetHeader(headerUserKey)
	if userID != "" && userKey != "" {
		return &models.CallerIdentity{
			Kind:   models.CallerRegistered,
			UserID: userID,
			APIKey: userKey,
		}
	}
	return &models.CallerIdentity{
		Kind:    models.CallerAnonymous,
		Address: c.ClientIP(),
	}
}

// admissionStatus maps gate errors to distinct statuses so clients can
// branch: re-authenticate (401), upgrade (402), or back off (429).
func admissionStatus(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrUnauthorized):
		return http.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, services.ErrPaymentRequired):
		return http.StatusPaymentRequired, "Trial exhausted, payment required"
	case errors.Is(err, services.ErrRateLimited):
		return http.StatusTooManyRequests, "Too many requests, retry later"
	default:
		return http.StatusInternalServerError, err.Error()
	}
}
