package sources

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/repricer/internal/domain/models"
	"github.com/mamadbah2/repricer/internal/repository/sheets"
)

// Default bounds when a primary/secondary tier cell cannot be read. An
// unreadable min effectively disables the lower clamp and an unreadable
// max the upper one.
var (
	defaultMinBound = decimal.Zero
	defaultMaxBound = decimal.NewFromInt(999999)
)

// SheetBoundProvider resolves a tier's price corridor from the bound cells
// configured on the row.
type SheetBoundProvider struct {
	repo   sheets.Repository
	logger *zap.Logger
}

// NewSheetBoundProvider builds a bound provider over the sheets repository.
func NewSheetBoundProvider(repo sheets.Repository, logger *zap.Logger) *SheetBoundProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SheetBoundProvider{repo: repo, logger: logger}
}

// Bound reads the min/max cells for the given tier. Primary and secondary
// tiers tolerate unreadable cells and fall back to open defaults; the
// fallback tier reads strictly because its sentinel value (-1) changes the
// pricing branch and must not be guessed.
func (p *SheetBoundProvider) Bound(ctx context.Context, row *models.ProductRow, tier models.StockTier) (models.PriceBound, error) {
	cells, ok := row.BoundCells[tier]
	if !ok {
		return models.PriceBound{}, fmt.Errorf("row %d has no bound cells for tier %s", row.Index, tier)
	}

	if tier == models.TierFallback {
		min, err := p.repo.ReadCellFloat(ctx, cells.Min)
		if err != nil {
			return models.PriceBound{}, fmt.Errorf("fallback min bound: %w", err)
		}
		max, err := p.repo.ReadCellFloat(ctx, cells.Max)
		if err != nil {
			return models.PriceBound{}, fmt.Errorf("fallback max bound: %w", err)
		}
		return models.PriceBound{
			Min: decimal.NewFromFloat(min),
			Max: decimal.NewFromFloat(max),
		}, nil
	}

	bound := models.PriceBound{Min: defaultMinBound, Max: defaultMaxBound}

	if min, err := p.repo.ReadCellFloat(ctx, cells.Min); err == nil {
		bound.Min = decimal.NewFromFloat(min)
	} else {
		p.logger.Warn("min bound unreadable, using default",
			zap.Int("row", row.Index), zap.String("tier", string(tier)), zap.Error(err))
	}

	if max, err := p.repo.ReadCellFloat(ctx, cells.Max); err == nil {
		bound.Max = decimal.NewFromFloat(max)
	} else {
		p.logger.Warn("max bound unreadable, using default",
			zap.Int("row", row.Index), zap.String("tier", string(tier)), zap.Error(err))
	}

	return bound, nil
}
