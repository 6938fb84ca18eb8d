package pricing

import (
	"context"

	"go.uber.org/zap"

	"github.com/mamadbah2/repricer/internal/domain/models"
)

// CounterReader reads one live stock counter. Implementations are expected
// to fail independently; a failed read routes as "unknown" (-1).
type CounterReader interface {
	ReadCounter(ctx context.Context, ref models.CellRef) (int, error)
}

// StockRouter classifies a row into a stock tier from its two live
// counters.
type StockRouter struct {
	counters CounterReader
	logger   *zap.Logger
}

// NewStockRouter wires a router over the given counter reader.
func NewStockRouter(counters CounterReader, logger *zap.Logger) *StockRouter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockRouter{counters: counters, logger: logger}
}

const counterUnknown = -1

// Route reads both counters and picks the tier. The checks run in
// sequence and are independent: a deep secondary counter overrides a
// primary match, so the deepest-stocked tier available wins. Thresholds
// are inclusive.
func (r *StockRouter) Route(ctx context.Context, settings models.StockSettings) (models.StockTier, models.StockCounts) {
	counter1 := r.read(ctx, settings.Counter1, "counter1")
	counter2 := r.read(ctx, settings.Counter2, "counter2")

	counts := models.StockCounts{
		Counter1:  counter1,
		Counter2:  counter2,
		StockFake: settings.StockFake,
	}

	tier := models.TierFallback
	if counter1 != counterUnknown && counter1 >= settings.Threshold1 {
		tier = models.TierPrimary
	}
	if counter2 != counterUnknown && counter2 >= settings.Threshold2 {
		tier = models.TierSecondary
	}

	return tier, counts
}

// PublishedStock picks the stock figure uploaded with the price: the
// deepest live counter above its threshold, or the configured fake stock.
func PublishedStock(tier models.StockTier, counts models.StockCounts, settings models.StockSettings) int {
	switch tier {
	case models.TierPrimary:
		if settings.StockMax > 0 && counts.Counter1 > settings.StockMax {
			return settings.StockMax
		}
		return counts.Counter1
	case models.TierSecondary:
		if settings.StockMax > 0 && counts.Counter2 > settings.StockMax {
			return settings.StockMax
		}
		return counts.Counter2
	default:
		return settings.StockFake
	}
}

func (r *StockRouter) read(ctx context.Context, ref models.CellRef, name string) int {
	if ref.Empty() {
		return counterUnknown
	}
	value, err := r.counters.ReadCounter(ctx, ref)
	if err != nil {
		r.logger.Warn("stock counter unreadable", zap.String("counter", name), zap.String("cell", ref.A1()), zap.Error(err))
		return counterUnknown
	}
	return value
}
