package models

import "time"

// MarketStats summarizes comparable active listings for an Axie. A nil
// *MarketStats means no comparables were found, which is a valid terminal
// state for valuation, not an error.
type MarketStats struct {
	Count       int     `json:"count"`
	MinPrice    float64 `json:"min_price"`
	MaxPrice    float64 `json:"max_price"`
	AvgPrice    float64 `json:"avg_price"`
	MedianPrice float64 `json:"median_price"`
	Class       Class   `json:"class"`
	BreedCount  int     `json:"breed_count"`
}

// TraitScorecard is the deterministic quality analysis of an Axie. It is a
// pure function of the Axie snapshot.
type TraitScorecard struct {
	Purity        float64 `json:"purity"`
	IsPure        bool    `json:"is_pure"`
	MatchingParts int     `json:"matching_parts"`
	ValuableParts []Part  `json:"valuable_parts"`
	TotalStats    int     `json:"total_stats"`
	BreedCount    int     `json:"breed_count"`
	BreedScore    float64 `json:"breed_score"`
	Class         Class   `json:"class"`
	OverallScore  int     `json:"overall_score"`
}

// PriceRange is the low/high band around an estimated value.
type PriceRange struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// MarketComparison summarizes the comparable data a valuation was based on.
type MarketComparison struct {
	SimilarListings int      `json:"similar_listings"`
	AveragePrice    *float64 `json:"average_price"`
	MedianPrice     *float64 `json:"median_price"`
}

// Insight is an optional LLM-generated narrative for a valuation.
type Insight struct {
	Summary     string    `json:"summary"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Valuation is the composed result for one Axie. EstimatedValue and
// PriceRange are nil when no usable market data exists; Confidence is 0 in
// that case.
type Valuation struct {
	AxieID           string           `json:"axie_id"`
	EstimatedValue   *float64         `json:"estimated_value"`
	Confidence       int              `json:"confidence"`
	PriceRange       *PriceRange      `json:"price_range"`
	Analysis         TraitScorecard   `json:"analysis"`
	MarketComparison MarketComparison `json:"market_comparison"`
	AIInsights       *Insight         `json:"ai_insights,omitempty"`
	Timestamp        time.Time        `json:"timestamp"`
}

// Signal classifies a listing price against an estimated price range.
type Signal string

const (
	SignalUndervalued Signal = "undervalued"
	SignalFair        Signal = "fair"
	SignalOvervalued  Signal = "overvalued"
	SignalUnknown     Signal = "unknown"
)

// BatchItem is one positional entry in a batch valuation response. Exactly
// one of Valuation or Error is set per item.
type BatchItem struct {
	AxieID    string     `json:"axie_id"`
	Axie      *Axie      `json:"axie,omitempty"`
	Valuation *Valuation `json:"valuation,omitempty"`
	Error     string     `json:"error,omitempty"`
}
