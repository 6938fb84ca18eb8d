package sources

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/repricer/internal/domain/models"
	"github.com/mamadbah2/repricer/internal/repository/sheets"
	"github.com/mamadbah2/repricer/internal/service/pricing"
)

// SheetPriceSource is a pricing source whose "offer" is a single
// configured spreadsheet cell instead of a scraped listing set. The cell
// value still runs through the source's profit and unit multipliers.
// It satisfies pricing.SourceQuerier.
type SheetPriceSource struct {
	cfg    models.SourceConfig
	ref    models.CellRef
	repo   sheets.Repository
	logger *zap.Logger
}

// NewSheetPriceSource builds a direct cell-price source.
func NewSheetPriceSource(cfg models.SourceConfig, ref models.CellRef, repo sheets.Repository, logger *zap.Logger) *SheetPriceSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SheetPriceSource{cfg: cfg, ref: ref, repo: repo, logger: logger}
}

// Tag identifies the source.
func (s *SheetPriceSource) Tag() models.SourceTag {
	return s.cfg.Tag
}

// Query reads the configured cell and converts it. An unreadable cell
// marks the source unavailable; the row continues on the other sources.
func (s *SheetPriceSource) Query(ctx context.Context) (models.SourcePriceResult, error) {
	none := models.SourcePriceResult{Source: s.cfg.Tag}

	if s.ref.Empty() {
		return none, nil
	}

	value, err := s.repo.ReadCellFloat(ctx, s.ref)
	if err != nil {
		return none, &pricing.SourceUnavailableError{Source: s.cfg.Tag, Err: err}
	}

	price := decimal.NewFromFloat(value).Mul(s.cfg.PriceMultiplier())

	return models.SourcePriceResult{
		Source: s.cfg.Tag,
		Price:  price.Round(4),
		Seller: string(s.cfg.Tag),
		Found:  true,
	}, nil
}
