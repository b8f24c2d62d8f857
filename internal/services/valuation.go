package services

import (
	"context"
	"errors"
	"log"
	"math"
	"sync"
	"time"

	"github.com/toxzak-svg/Axievale/internal/metrics"
	"github.com/toxzak-svg/Axievale/internal/models"
)

// ErrAxieNotFound is returned when the marketplace has no record of an id.
var ErrAxieNotFound = errors.New("axie not found")

const recentSalesSample = 20

// MarketDataSource is the marketplace collaborator the orchestrator reads
// from. Implemented by MarketplaceService; faked in tests.
type MarketDataSource interface {
	GetAxieDetails(ctx context.Context, axieID string) (*models.Axie, error)
	GetMarketStats(ctx context.Context, axie *models.Axie) (*models.MarketStats, error)
	GetRecentSales(ctx context.Context, limit int) ([]models.SaleRecord, error)
}

// InsightGenerator produces an optional narrative for a valuation. A nil
// result with a nil error means the generator is disabled.
type InsightGenerator interface {
	GenerateInsight(ctx context.Context, axie *models.Axie, stats *models.MarketStats, analysis models.TraitScorecard) (*models.Insight, error)
}

// ValuationService composes trait analysis, market data, and optional AI
// insights into valuations.
type ValuationService struct {
	market     MarketDataSource
	insights   InsightGenerator
	batchLimit int
}

// NewValuationService creates a valuation service. insights may be nil.
func NewValuationService(market MarketDataSource, insights InsightGenerator, batchLimit int) *ValuationService {
	return &ValuationService{
		market:     market,
		insights:   insights,
		batchLimit: batchLimit,
	}
}

// BatchLimit returns the maximum number of ids accepted per batch request.
func (s *ValuationService) BatchLimit() int {
	return s.batchLimit
}

// BaseValuation is the deterministic market-anchored estimate for an Axie.
type BaseValuation struct {
	EstimatedValue *float64
	Confidence     int
	PriceRange     *models.PriceRange
}

// CalculateBaseValuation converts an Axie and its market snapshot into an
// estimated value, confidence, and price range. A nil stats or a stats with
// neither average nor median price yields the terminal "insufficient data"
// result rather than an error.
func CalculateBaseValuation(axie *models.Axie, stats *models.MarketStats, recentSales []models.SaleRecord) BaseValuation {
	if stats == nil {
		return BaseValuation{Confidence: 0}
	}

	basePrice := stats.MedianPrice
	if basePrice == 0 {
		basePrice = stats.AvgPrice
	}
	if basePrice == 0 {
		return BaseValuation{Confidence: 0}
	}

	analysis := AnalyzeTraits(axie)

	// Quality multiplier spans [0.5, 1.5] over the overall score.
	qualityMultiplier := 0.5 + float64(analysis.OverallScore)/100
	estimated := basePrice * qualityMultiplier

	if analysis.IsPure {
		estimated *= 1.3
	}

	breedAdjustment := math.Max(0.5, 1-float64(axie.BreedCount)*0.05)
	estimated *= breedAdjustment

	estimated *= 1 + float64(len(analysis.ValuableParts))*0.10

	confidence := CalculateConfidence(stats, recentSales)

	// Variance band tightens as confidence rises (±20% at zero confidence).
	variance := 0.20 * (1 - float64(confidence)/100)
	low := roundCents(estimated * (1 - variance))
	high := roundCents(estimated * (1 + variance))
	value := roundCents(estimated)

	return BaseValuation{
		EstimatedValue: &value,
		Confidence:     confidence,
		PriceRange:     &models.PriceRange{Low: low, High: high},
	}
}

// CalculateConfidence scores data quality on [0, 100]. It is monotonic
// non-decreasing in comparable count and in recent-sales count, and penalizes
// dispersion between average and median price.
func CalculateConfidence(stats *models.MarketStats, recentSales []models.SaleRecord) int {
	confidence := 50.0

	if stats != nil {
		confidence += math.Min(25, float64(stats.Count)*0.5)

		if stats.AvgPrice != 0 && stats.MedianPrice != 0 {
			spread := math.Abs(stats.AvgPrice-stats.MedianPrice) / stats.AvgPrice
			confidence += math.Max(0, 15-spread*50)
		}
	}

	confidence += math.Min(10, float64(len(recentSales)))

	if confidence > 100 {
		confidence = 100
	}
	if confidence < 0 {
		confidence = 0
	}
	return int(math.Round(confidence))
}

// ClassifySignal compares a listing price to a computed price range. The
// range is a closed interval: prices exactly at either bound are fair.
func ClassifySignal(listingPrice *float64, priceRange *models.PriceRange) models.Signal {
	if listingPrice == nil || priceRange == nil {
		return models.SignalUnknown
	}
	switch {
	case *listingPrice < priceRange.Low:
		return models.SignalUndervalued
	case *listingPrice > priceRange.High:
		return models.SignalOvervalued
	default:
		return models.SignalFair
	}
}

// Valuate composes the full valuation for an already-fetched Axie. Insight
// generation is best-effort and never fails the valuation.
func (s *ValuationService) Valuate(ctx context.Context, axie *models.Axie, stats *models.MarketStats, recentSales []models.SaleRecord) *models.Valuation {
	start := time.Now()
	analysis := AnalyzeTraits(axie)
	base := CalculateBaseValuation(axie, stats, recentSales)

	var insight *models.Insight
	if s.insights != nil {
		var err error
		insight, err = s.insights.GenerateInsight(ctx, axie, stats, analysis)
		if err != nil {
			log.Printf("Insight generation failed for axie %s: %v", axie.ID, err)
			insight = nil
		}
	}

	comparison := models.MarketComparison{}
	if stats != nil {
		comparison.SimilarListings = stats.Count
		if stats.AvgPrice != 0 {
			avg := stats.AvgPrice
			comparison.AveragePrice = &avg
		}
		if stats.MedianPrice != 0 {
			median := stats.MedianPrice
			comparison.MedianPrice = &median
		}
	}

	if base.EstimatedValue != nil {
		metrics.ValuationsTotal.WithLabelValues("priced").Inc()
		metrics.ValuationConfidence.Observe(float64(base.Confidence))
	} else {
		metrics.ValuationsTotal.WithLabelValues("no_market_data").Inc()
	}
	metrics.ValuationDuration.Observe(time.Since(start).Seconds())

	return &models.Valuation{
		AxieID:           axie.ID,
		EstimatedValue:   base.EstimatedValue,
		Confidence:       base.Confidence,
		PriceRange:       base.PriceRange,
		Analysis:         analysis,
		MarketComparison: comparison,
		AIInsights:       insight,
		Timestamp:        time.Now().UTC(),
	}
}

// ValuateByID fetches the Axie and its market snapshot, then composes the
// valuation. A recent-sales fetch failure is tolerated; a market-stats fetch
// failure propagates.
func (s *ValuationService) ValuateByID(ctx context.Context, axieID string) (*models.Axie, *models.Valuation, error) {
	axie, err := s.market.GetAxieDetails(ctx, axieID)
	if err != nil {
		metrics.ValuationsTotal.WithLabelValues("error").Inc()
		return nil, nil, err
	}
	if axie == nil {
		return nil, nil, ErrAxieNotFound
	}

	stats, err := s.market.GetMarketStats(ctx, axie)
	if err != nil {
		metrics.ValuationsTotal.WithLabelValues("error").Inc()
		return nil, nil, err
	}

	recentSales, err := s.market.GetRecentSales(ctx, recentSalesSample)
	if err != nil {
		log.Printf("Could not fetch recent sales: %v", err)
		recentSales = nil
	}

	return axie, s.Valuate(ctx, axie, stats, recentSales), nil
}

// ValuateBatch values each id independently and returns results in input
// order. One id's failure surfaces as that item's error; it never aborts the
// batch. Recent sales are skipped for batch items to bound fan-out cost.
func (s *ValuationService) ValuateBatch(ctx context.Context, axieIDs []string) []models.BatchItem {
	items := make([]models.BatchItem, len(axieIDs))
	var wg sync.WaitGroup

	for i, id := range axieIDs {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			items[i] = s.valuateBatchItem(ctx, id)
		}(i, id)
	}

	wg.Wait()
	return items
}

func (s *ValuationService) valuateBatchItem(ctx context.Context, axieID string) models.BatchItem {
	axie, err := s.market.GetAxieDetails(ctx, axieID)
	if err != nil {
		return models.BatchItem{AxieID: axieID, Error: err.Error()}
	}
	if axie == nil {
		return models.BatchItem{AxieID: axieID, Error: "not found"}
	}

	stats, err := s.market.GetMarketStats(ctx, axie)
	if err != nil {
		return models.BatchItem{AxieID: axieID, Error: err.Error()}
	}

	return models.BatchItem{
		AxieID:    axieID,
		Axie:      axie,
		Valuation: s.Valuate(ctx, axie, stats, nil),
	}
}

// roundCents rounds a USD amount to 2 decimal places.
func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
