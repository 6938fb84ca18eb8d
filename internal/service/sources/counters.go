package sources

import (
	"context"

	"github.com/mamadbah2/repricer/internal/domain/models"
	"github.com/mamadbah2/repricer/internal/repository/sheets"
)

// SheetCounterReader adapts the sheets repository to the stock router's
// counter reads.
type SheetCounterReader struct {
	repo sheets.Repository
}

// NewSheetCounterReader wraps the repository.
func NewSheetCounterReader(repo sheets.Repository) *SheetCounterReader {
	return &SheetCounterReader{repo: repo}
}

// ReadCounter reads one live stock counter cell.
func (r *SheetCounterReader) ReadCounter(ctx context.Context, ref models.CellRef) (int, error) {
	value, err := r.repo.ReadCellFloat(ctx, ref)
	if err != nil {
		return 0, err
	}
	return int(value), nil
}
