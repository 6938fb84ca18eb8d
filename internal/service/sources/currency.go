package sources

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/repricer/internal/domain/models"
	"github.com/mamadbah2/repricer/internal/repository/sheets"
)

// RateProvider supplies the conversion rate for a source priced in a
// foreign currency.
type RateProvider interface {
	Rate(ctx context.Context) decimal.Decimal
}

// SheetRateProvider reads the rate from a configured spreadsheet cell.
// An unreadable cell falls back to 1 so a stale rate sheet never blocks
// the cycle.
type SheetRateProvider struct {
	repo   sheets.Repository
	ref    models.CellRef
	logger *zap.Logger
}

// NewSheetRateProvider builds a rate provider over the given cell.
func NewSheetRateProvider(repo sheets.Repository, ref models.CellRef, logger *zap.Logger) *SheetRateProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SheetRateProvider{repo: repo, ref: ref, logger: logger}
}

// Rate returns the current conversion rate, or 1 when the cell cannot be
// read.
func (p *SheetRateProvider) Rate(ctx context.Context) decimal.Decimal {
	value, err := p.repo.ReadCellFloat(ctx, p.ref)
	if err != nil {
		p.logger.Warn("currency rate unreadable, falling back to 1", zap.String("cell", p.ref.A1()), zap.Error(err))
		return decimal.NewFromInt(1)
	}
	return decimal.NewFromFloat(value)
}
