package services

import (
	"context"
	"log"
	"time"

	"github.com/toxzak-svg/Axievale/internal/metrics"
)

// PulseService periodically samples recent marketplace sales and exports
// summary gauges so dashboards can track market drift between requests.
type PulseService struct {
	market   MarketDataSource
	interval time.Duration
}

// NewPulseService creates a pulse worker.
func NewPulseService(market MarketDataSource, interval time.Duration) *PulseService {
	return &PulseService{
		market:   market,
		interval: interval,
	}
}

// Start runs the pulse loop until ctx is cancelled. Sampling errors are
// logged and the loop continues.
func (s *PulseService) Start(ctx context.Context) {
	log.Printf("Market pulse started: sampling recent sales every %s", s.interval)

	s.sample(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Market pulse stopping...")
			return
		case <-ticker.C:
			s.sample(ctx)
		}
	}
}

func (s *PulseService) sample(ctx context.Context) {
	sales, err := s.market.GetRecentSales(ctx, recentSalesSample)
	if err != nil {
		log.Printf("Market pulse: failed to fetch recent sales: %v", err)
		return
	}

	metrics.PulseRecentSales.Set(float64(len(sales)))

	if len(sales) > 0 {
		sum := 0.0
		for _, sale := range sales {
			sum += sale.PriceUSD
		}
		metrics.PulseAvgSalePriceUSD.Set(sum / float64(len(sales)))
	}
}
