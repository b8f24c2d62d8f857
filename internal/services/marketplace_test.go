package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/toxzak-svg/Axievale/internal/models"
)

// newGraphQLServer returns a test server that answers every POST with body.
func newGraphQLServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		var req graphqlRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("Failed to decode request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
}

func TestGetAxieDetails(t *testing.T) {
	server := newGraphQLServer(t, `{
		"data": {
			"axie": {
				"id": "1234",
				"name": "Finley",
				"class": "Aquatic",
				"breedCount": 2,
				"stats": {"hp": 45, "speed": 57, "skill": 35, "morale": 21},
				"parts": [
					{"id": "tail-koi", "name": "Koi", "class": "Aquatic", "type": "tail"}
				],
				"auction": {"currentPrice": "52000000000000000000", "currentPriceUSD": "64.21"}
			}
		}
	}`)
	defer server.Close()

	service := NewMarketplaceService(server.URL, 100)
	axie, err := service.GetAxieDetails(context.Background(), "1234")
	if err != nil {
		t.Fatalf("GetAxieDetails failed: %v", err)
	}
	if axie == nil {
		t.Fatal("Expected an axie, got nil")
	}
	if axie.ID != "1234" || axie.Name != "Finley" {
		t.Errorf("Unexpected axie identity: %s / %s", axie.ID, axie.Name)
	}
	if axie.Class != models.ClassAquatic {
		t.Errorf("Expected class Aquatic, got %s", axie.Class)
	}
	if axie.Stats.Total() != 158 {
		t.Errorf("Expected stats total 158, got %d", axie.Stats.Total())
	}
	if len(axie.Parts) != 1 || axie.Parts[0].Name != "Koi" {
		t.Errorf("Unexpected parts: %+v", axie.Parts)
	}
	if axie.Auction == nil || axie.Auction.CurrentPriceUSD != "64.21" {
		t.Errorf("Unexpected auction: %+v", axie.Auction)
	}
}

func TestGetAxieDetailsNotFound(t *testing.T) {
	server := newGraphQLServer(t, `{"data": {"axie": null}}`)
	defer server.Close()

	service := NewMarketplaceService(server.URL, 100)
	axie, err := service.GetAxieDetails(context.Background(), "missing")
	if err != nil {
		t.Fatalf("Expected no error for an unknown id, got %v", err)
	}
	if axie != nil {
		t.Errorf("Expected nil axie for an unknown id, got %+v", axie)
	}
}

func TestGraphQLErrorsSurface(t *testing.T) {
	server := newGraphQLServer(t, `{"data": null, "errors": [{"message": "rate limited by gateway"}]}`)
	defer server.Close()

	service := NewMarketplaceService(server.URL, 100)
	_, err := service.GetAxieDetails(context.Background(), "1234")
	if err == nil {
		t.Fatal("Expected an error when the response carries errors")
	}
	if !strings.Contains(err.Error(), "rate limited by gateway") {
		t.Errorf("Expected the upstream message in the error, got: %v", err)
	}
}

func TestNonOKStatusIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	service := NewMarketplaceService(server.URL, 100)
	_, err := service.GetAxieDetails(context.Background(), "1234")
	if err == nil {
		t.Fatal("Expected an error on HTTP 502")
	}
}

func listingJSON(id, priceUSD string) string {
	auction := "null"
	if priceUSD != "" {
		auction = `{"currentPrice": "0", "currentPriceUSD": "` + priceUSD + `"}`
	}
	return `{"id": "` + id + `", "class": "Beast", "breedCount": 1, "auction": ` + auction + `}`
}

func TestGetMarketStats(t *testing.T) {
	listings := []string{
		listingJSON("a", "10"),
		listingJSON("b", "20"),
		listingJSON("c", "60"),
		listingJSON("d", ""), // unpriced, excluded from stats
	}
	server := newGraphQLServer(t, `{
		"data": {"axies": {"total": 4, "results": [`+strings.Join(listings, ",")+`]}}
	}`)
	defer server.Close()

	service := NewMarketplaceService(server.URL, 100)
	axie := &models.Axie{ID: "x", Class: models.ClassBeast, BreedCount: 1}
	stats, err := service.GetMarketStats(context.Background(), axie)
	if err != nil {
		t.Fatalf("GetMarketStats failed: %v", err)
	}
	if stats == nil {
		t.Fatal("Expected market stats, got nil")
	}
	if stats.Count != 3 {
		t.Errorf("Expected 3 priced comparables, got %d", stats.Count)
	}
	if stats.MinPrice != 10 || stats.MaxPrice != 60 {
		t.Errorf("Expected min 10 max 60, got %f / %f", stats.MinPrice, stats.MaxPrice)
	}
	if stats.AvgPrice != 30 {
		t.Errorf("Expected avg 30, got %f", stats.AvgPrice)
	}
	if stats.MedianPrice != 20 {
		t.Errorf("Expected median 20, got %f", stats.MedianPrice)
	}
	if stats.Class != models.ClassBeast || stats.BreedCount != 1 {
		t.Errorf("Stats are not tagged with the subject's cohort: %+v", stats)
	}
}

func TestGetMarketStatsNoPricedComparables(t *testing.T) {
	server := newGraphQLServer(t, `{
		"data": {"axies": {"total": 1, "results": [`+listingJSON("a", "")+`]}}
	}`)
	defer server.Close()

	service := NewMarketplaceService(server.URL, 100)
	axie := &models.Axie{ID: "x", Class: models.ClassBeast}
	stats, err := service.GetMarketStats(context.Background(), axie)
	if err != nil {
		t.Fatalf("GetMarketStats failed: %v", err)
	}
	if stats != nil {
		t.Errorf("Expected nil stats without priced comparables, got %+v", stats)
	}
}

func TestGetRecentSales(t *testing.T) {
	server := newGraphQLServer(t, `{
		"data": {
			"settledAuctions": {
				"axies": {
					"total": 2,
					"results": [
						{
							"id": "9001",
							"class": "Plant",
							"transferHistory": {"results": [
								{"timestamp": 1756700000, "withPriceUsd": 41.5, "from": "0xaaa", "to": "0xbbb"}
							]}
						},
						{"id": "9002", "class": "Bird", "transferHistory": {"results": []}}
					]
				}
			}
		}
	}`)
	defer server.Close()

	service := NewMarketplaceService(server.URL, 100)
	sales, err := service.GetRecentSales(context.Background(), 10)
	if err != nil {
		t.Fatalf("GetRecentSales failed: %v", err)
	}
	if len(sales) != 1 {
		t.Fatalf("Expected 1 sale (empty histories skipped), got %d", len(sales))
	}
	sale := sales[0]
	if sale.AxieID != "9001" || sale.Class != models.ClassPlant {
		t.Errorf("Unexpected sale identity: %+v", sale)
	}
	if sale.PriceUSD != 41.5 || sale.Timestamp != 1756700000 {
		t.Errorf("Unexpected sale values: %+v", sale)
	}
}
