package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/toxzak-svg/Axievale/internal/models"
	"github.com/toxzak-svg/Axievale/internal/services"
)

// MarketBrowser is the subset of the marketplace client the browse endpoints
// need.
type MarketBrowser interface {
	GetMarketplaceListings(ctx context.Context, filters services.ListingFilters) ([]models.Axie, error)
	GetRecentSales(ctx context.Context, limit int) ([]models.SaleRecord, error)
	GetAxieDetails(ctx context.Context, axieID string) (*models.Axie, error)
}

type MarketplaceHandler struct {
	market MarketBrowser
}

func NewMarketplaceHandler(market MarketBrowser) *MarketplaceHandler {
	return &MarketplaceHandler{market: market}
}

// GetListings returns current marketplace listings.
func (h *MarketplaceHandler) GetListings(c *gin.Context) {
	filters := services.ListingFilters{
		Limit:  parseIntDefault(c.Query("limit"), 20),
		Offset: parseIntDefault(c.Query("offset"), 0),
		SortBy: c.DefaultQuery("sortBy", "PriceAsc"),
	}

	if classes := c.Query("classes"); classes != "" {
		for _, name := range strings.Split(classes, ",") {
			class := models.Class(strings.TrimSpace(name))
			if !class.IsValid() {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "unknown class: " + string(class)})
				return
			}
			filters.Classes = append(filters.Classes, class)
		}
	}

	listings, err := h.market.GetMarketplaceListings(c.Request.Context(), filters)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    listings,
		"count":   len(listings),
	})
}

// GetRecentSales returns recently settled auctions.
func (h *MarketplaceHandler) GetRecentSales(c *gin.Context) {
	limit := parseIntDefault(c.Query("limit"), 20)

	sales, err := h.market.GetRecentSales(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    sales,
		"count":   len(sales),
	})
}

// GetAxie returns details for one Axie.
func (h *MarketplaceHandler) GetAxie(c *gin.Context) {
	axie, err := h.market.GetAxieDetails(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	if axie == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Axie not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": axie})
}

func parseIntDefault(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}
