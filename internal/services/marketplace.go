package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/toxzak-svg/Axievale/internal/metrics"
	"github.com/toxzak-svg/Axievale/internal/models"
)

const (
	marketplaceDefaultTimeout = 10 * time.Second
	comparableSampleSize      = 50
)

// MarketplaceService is the GraphQL client for the Axie marketplace gateway.
// Upstream errors are surfaced as-is; this service never retries.
type MarketplaceService struct {
	client   *http.Client
	endpoint string
	limiter  *rate.Limiter
}

// ListingFilters narrows a marketplace listings query.
type ListingFilters struct {
	Limit      int
	Offset     int
	Classes    []models.Class
	BreedCount *int
	SortBy     string
}

// NewMarketplaceService creates a marketplace client. requestsPerSec bounds
// outbound call rate to stay under the gateway's tolerance.
func NewMarketplaceService(endpoint string, requestsPerSec float64) *MarketplaceService {
	if requestsPerSec <= 0 {
		requestsPerSec = 5
	}
	return &MarketplaceService{
		client:   &http.Client{Timeout: marketplaceDefaultTimeout},
		endpoint: endpoint,
		limiter:  rate.NewLimiter(rate.Limit(requestsPerSec), int(requestsPerSec)+1),
	}
}

const axieDetailQuery = `
query GetAxieDetail($axieId: ID!) {
  axie(axieId: $axieId) {
    id
    name
    class
    breedCount
    genes
    image
    stats { hp speed skill morale }
    parts { id name class type specialGenes }
    auction { currentPrice currentPriceUSD startingPrice duration }
  }
}`

const axieBriefListQuery = `
query GetAxieBriefList($from: Int!, $size: Int!, $sort: SortBy!, $auctionType: AuctionType, $criteria: AxieSearchCriteria) {
  axies(from: $from, size: $size, sort: $sort, auctionType: $auctionType, criteria: $criteria) {
    total
    results {
      id
      name
      class
      breedCount
      genes
      image
      stats { hp speed skill morale }
      parts { id name class type specialGenes }
      auction { currentPrice currentPriceUSD }
    }
  }
}`

const recentSalesQuery = `
query GetRecentlyAxieSold($from: Int!, $size: Int!) {
  settledAuctions {
    axies(from: $from, size: $size) {
      total
      results {
        id
        class
        transferHistory {
          results { timestamp withPriceUsd from to }
        }
      }
    }
  }
}`

type graphqlRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type graphqlError struct {
	Message string `json:"message"`
}

// wire types for the marketplace responses

type wireStats struct {
	HP     int `json:"hp"`
	Speed  int `json:"speed"`
	Skill  int `json:"skill"`
	Morale int `json:"morale"`
}

type wirePart struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Class        string `json:"class"`
	Type         string `json:"type"`
	SpecialGenes string `json:"specialGenes"`
}

type wireAuction struct {
	CurrentPrice    string `json:"currentPrice"`
	CurrentPriceUSD string `json:"currentPriceUSD"`
	StartingPrice   string `json:"startingPrice"`
	Duration        int64  `json:"duration"`
}

type wireTransfer struct {
	Timestamp    int64   `json:"timestamp"`
	WithPriceUSD float64 `json:"withPriceUsd"`
	From         string  `json:"from"`
	To           string  `json:"to"`
}

type wireAxie struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	Class           string       `json:"class"`
	BreedCount      int          `json:"breedCount"`
	Genes           string       `json:"genes"`
	Image           string       `json:"image"`
	Stats           *wireStats   `json:"stats"`
	Parts           []wirePart   `json:"parts"`
	Auction         *wireAuction `json:"auction"`
	TransferHistory *struct {
		Results []wireTransfer `json:"results"`
	} `json:"transferHistory"`
}

// GetAxieDetails fetches a single Axie by id. Returns (nil, nil) when the
// marketplace has no record for the id.
func (s *MarketplaceService) GetAxieDetails(ctx context.Context, axieID string) (*models.Axie, error) {
	var payload struct {
		Axie *wireAxie `json:"axie"`
	}
	err := s.query(ctx, "axie_detail", axieDetailQuery, map[string]interface{}{"axieId": axieID}, &payload)
	if err != nil {
		return nil, err
	}
	if payload.Axie == nil {
		return nil, nil
	}
	return convertAxie(payload.Axie), nil
}

// GetMarketplaceListings fetches active sale listings matching the filters.
func (s *MarketplaceService) GetMarketplaceListings(ctx context.Context, filters ListingFilters) ([]models.Axie, error) {
	if filters.Limit <= 0 {
		filters.Limit = 20
	}
	if filters.SortBy == "" {
		filters.SortBy = "PriceAsc"
	}

	criteria := map[string]interface{}{}
	if len(filters.Classes) > 0 {
		criteria["classes"] = filters.Classes
	}
	if filters.BreedCount != nil {
		criteria["breedCount"] = []int{*filters.BreedCount, *filters.BreedCount}
	}

	vars := map[string]interface{}{
		"from":        filters.Offset,
		"size":        filters.Limit,
		"sort":        filters.SortBy,
		"auctionType": "Sale",
	}
	if len(criteria) > 0 {
		vars["criteria"] = criteria
	} else {
		vars["criteria"] = nil
	}

	var payload struct {
		Axies struct {
			Total   int        `json:"total"`
			Results []wireAxie `json:"results"`
		} `json:"axies"`
	}
	if err := s.query(ctx, "listings", axieBriefListQuery, vars, &payload); err != nil {
		return nil, err
	}

	listings := make([]models.Axie, 0, len(payload.Axies.Results))
	for i := range payload.Axies.Results {
		listings = append(listings, *convertAxie(&payload.Axies.Results[i]))
	}
	return listings, nil
}

// GetRecentSales fetches recently settled auctions.
func (s *MarketplaceService) GetRecentSales(ctx context.Context, limit int) ([]models.SaleRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	var payload struct {
		SettledAuctions struct {
			Axies struct {
				Results []wireAxie `json:"results"`
			} `json:"axies"`
		} `json:"settledAuctions"`
	}
	vars := map[string]interface{}{"from": 0, "size": limit}
	if err := s.query(ctx, "recent_sales", recentSalesQuery, vars, &payload); err != nil {
		return nil, err
	}

	var sales []models.SaleRecord
	for _, a := range payload.SettledAuctions.Axies.Results {
		if a.TransferHistory == nil || len(a.TransferHistory.Results) == 0 {
			continue
		}
		last := a.TransferHistory.Results[0]
		sales = append(sales, models.SaleRecord{
			AxieID:      a.ID,
			Class:       models.Class(a.Class),
			PriceUSD:    last.WithPriceUSD,
			Timestamp:   last.Timestamp,
			FromAddress: last.From,
			ToAddress:   last.To,
		})
	}
	return sales, nil
}

// GetMarketStats samples comparable active listings (same class, same breed
// count) and derives price statistics. Returns nil when no priced comparables
// exist; callers treat that as a valid terminal state.
func (s *MarketplaceService) GetMarketStats(ctx context.Context, axie *models.Axie) (*models.MarketStats, error) {
	breed := axie.BreedCount
	listings, err := s.GetMarketplaceListings(ctx, ListingFilters{
		Limit:      comparableSampleSize,
		Classes:    []models.Class{axie.Class},
		BreedCount: &breed,
	})
	if err != nil {
		return nil, err
	}
	if len(listings) == 0 {
		return nil, nil
	}

	var prices []float64
	for _, listing := range listings {
		if listing.Auction == nil || listing.Auction.CurrentPriceUSD == "" {
			continue
		}
		price, err := strconv.ParseFloat(listing.Auction.CurrentPriceUSD, 64)
		if err != nil {
			continue
		}
		prices = append(prices, price)
	}
	if len(prices) == 0 {
		return nil, nil
	}

	sort.Float64s(prices)

	sum := 0.0
	for _, p := range prices {
		sum += p
	}

	return &models.MarketStats{
		Count:       len(prices),
		MinPrice:    prices[0],
		MaxPrice:    prices[len(prices)-1],
		AvgPrice:    sum / float64(len(prices)),
		MedianPrice: prices[len(prices)/2],
		Class:       axie.Class,
		BreedCount:  axie.BreedCount,
	}, nil
}

// query executes one GraphQL operation and decodes the data payload into out.
func (s *MarketplaceService) query(ctx context.Context, operation, gql string, vars map[string]interface{}, out interface{}) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("marketplace limiter: %w", err)
	}

	start := time.Now()
	err := s.doQuery(ctx, gql, vars, out)
	metrics.MarketplaceLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.MarketplaceRequestsTotal.WithLabelValues(operation, "error").Inc()
		return err
	}
	metrics.MarketplaceRequestsTotal.WithLabelValues(operation, "ok").Inc()
	return nil
}

func (s *MarketplaceService) doQuery(ctx context.Context, gql string, vars map[string]interface{}, out interface{}) error {
	reqJSON, err := json.Marshal(graphqlRequest{Query: gql, Variables: vars})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.endpoint, bytes.NewReader(reqJSON))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("marketplace request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("marketplace API error: status %d", resp.StatusCode)
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []graphqlError  `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if len(envelope.Errors) > 0 {
		return fmt.Errorf("marketplace API error: %s", envelope.Errors[0].Message)
	}
	if len(envelope.Data) == 0 {
		return fmt.Errorf("marketplace API returned empty data")
	}

	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("failed to decode data payload: %w", err)
	}
	return nil
}

func convertAxie(w *wireAxie) *models.Axie {
	axie := &models.Axie{
		ID:         w.ID,
		Name:       w.Name,
		Class:      models.Class(w.Class),
		BreedCount: w.BreedCount,
		Genes:      w.Genes,
		Image:      w.Image,
	}
	if w.Stats != nil {
		axie.Stats = models.Stats{
			HP:     w.Stats.HP,
			Speed:  w.Stats.Speed,
			Skill:  w.Stats.Skill,
			Morale: w.Stats.Morale,
		}
	}
	for _, p := range w.Parts {
		axie.Parts = append(axie.Parts, models.Part{
			ID:           p.ID,
			Name:         p.Name,
			Class:        models.Class(p.Class),
			Type:         p.Type,
			SpecialGenes: p.SpecialGenes,
		})
	}
	if w.Auction != nil {
		axie.Auction = &models.Auction{
			CurrentPrice:    w.Auction.CurrentPrice,
			CurrentPriceUSD: w.Auction.CurrentPriceUSD,
			StartingPrice:   w.Auction.StartingPrice,
			Duration:        w.Auction.Duration,
		}
	}
	return axie
}
