package pricing

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/mamadbah2/repricer/internal/domain/models"
)

// SourceQuerier is one enabled competitor source's full query pipeline:
// fetch, normalize, filter, pick the minimum and apply the source's
// multipliers. A nil error with Found=false means the source has no valid
// offer this cycle.
type SourceQuerier interface {
	Tag() models.SourceTag
	Query(ctx context.Context) (models.SourcePriceResult, error)
}

// Aggregator fans a row's enabled sources out concurrently and reduces
// their answers to the global minimum.
type Aggregator struct {
	logger *zap.Logger
}

// NewAggregator builds an aggregator.
func NewAggregator(logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{logger: logger}
}

// Aggregate queries every source concurrently, waits for all of them and
// picks the cheapest strictly-positive result. A source's failure only
// empties its own slot. Ties resolve to the earliest source in the input
// order, so the outcome is deterministic regardless of completion order.
func (a *Aggregator) Aggregate(ctx context.Context, sources []SourceQuerier) (models.SourcePriceResult, []models.SourcePriceResult) {
	perSource := make([]models.SourcePriceResult, len(sources))

	var wg sync.WaitGroup
	for i, source := range sources {
		wg.Add(1)
		go func(slot int, src SourceQuerier) {
			defer wg.Done()
			result, err := src.Query(ctx)
			if err != nil {
				a.logger.Warn("source query failed",
					zap.String("source", string(src.Tag())),
					zap.Error(err))
				perSource[slot] = models.SourcePriceResult{Source: src.Tag()}
				return
			}
			result.Source = src.Tag()
			perSource[slot] = result
		}(i, source)
	}
	wg.Wait()

	var best models.SourcePriceResult
	for _, result := range perSource {
		if !result.Found || !result.Price.IsPositive() {
			continue
		}
		if !best.Found || result.Price.LessThan(best.Price) {
			best = result
		}
	}

	if best.Found {
		a.logger.Debug("competitor minimum selected",
			zap.String("source", string(best.Source)),
			zap.String("seller", best.Seller),
			zap.String("price", best.Price.String()))
	}

	return best, perSource
}
