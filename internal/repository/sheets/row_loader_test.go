package sheets

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/repricer/internal/domain/models"
)

// fakeSheetRepo serves canned worksheet content keyed by range.
type fakeSheetRepo struct {
	rows       map[string][][]interface{}
	columns    map[string][]string
	sellers    map[string][]string
	sellersErr error
}

func (f *fakeSheetRepo) ReadRange(_ context.Context, sheetRange string) ([][]interface{}, error) {
	row, ok := f.rows[sheetRange]
	if !ok {
		return nil, errors.New("unknown range " + sheetRange)
	}
	return row, nil
}

func (f *fakeSheetRepo) ReadColumn(_ context.Context, sheetRange string) ([]string, error) {
	column, ok := f.columns[sheetRange]
	if !ok {
		return nil, errors.New("unknown range " + sheetRange)
	}
	return column, nil
}

func (f *fakeSheetRepo) ReadCellFloat(context.Context, models.CellRef) (float64, error) {
	return 0, errors.New("not used")
}

func (f *fakeSheetRepo) ReadCellStrings(_ context.Context, ref models.CellRef) ([]string, error) {
	if f.sellersErr != nil {
		return nil, f.sellersErr
	}
	return f.sellers[ref.Cell], nil
}

func (f *fakeSheetRepo) UpdateRow(context.Context, string, []interface{}) error {
	return nil
}

// rowCells builds an A:CZ row with every cell blank, settable by column
// letter.
type rowCells []interface{}

func newRowCells() rowCells {
	cells := make(rowCells, colIndex(lastColumn)+1)
	for i := range cells {
		cells[i] = ""
	}
	return cells
}

func (c rowCells) set(col, value string) rowCells {
	c[colIndex(col)] = value
	return c
}

func baseRow() rowCells {
	cells := newRowCells()
	cells.set(colCheck, "1")
	cells.set(colName, "gold-eu")
	cells.set(colProductRef, "prod-42")
	cells.set(colDiscountMin, "0.10")
	cells.set(colDiscountMax, "0.30")
	cells.set(colPrecision, "2")
	cells.set(colExcludeAds, "1")
	cells.set(colDelivery, "2 hours")
	cells.set(colMinUnit, "200")
	cells.set(colMinStock, "100")
	cells.set(colThreshold1, "20")
	cells.set(colThreshold2, "100")
	cells.set(colStockMax, "9000")
	cells.set(colStockFake, "500")
	return cells
}

func loaderFor(t *testing.T, cells rowCells, repo *fakeSheetRepo) *RowLoader {
	t.Helper()
	if repo == nil {
		repo = &fakeSheetRepo{}
	}
	if repo.rows == nil {
		repo.rows = map[string][][]interface{}{}
	}
	repo.rows["'Products'!A3:CZ3"] = [][]interface{}{cells}
	return NewRowLoader(repo, "Products", nil)
}

func TestColumnConversionRoundTrip(t *testing.T) {
	cases := map[string]int{"A": 0, "Z": 25, "AA": 26, "AK": 36, "CZ": 103}
	for col, want := range cases {
		if got := colIndex(col); got != want {
			t.Fatalf("colIndex(%s) = %d, want %d", col, got, want)
		}
		if got := columnName(want); got != col {
			t.Fatalf("columnName(%d) = %s, want %s", want, got, col)
		}
	}
}

func TestRunnableRows(t *testing.T) {
	repo := &fakeSheetRepo{columns: map[string][]string{
		"'Products'!B:B": {"", "1", "0", "1"},
	}}
	loader := NewRowLoader(repo, "Products", nil)

	indexes, err := loader.RunnableRows(context.Background())
	if err != nil {
		t.Fatalf("RunnableRows: %v", err)
	}
	if len(indexes) != 2 || indexes[0] != 2 || indexes[1] != 4 {
		t.Fatalf("indexes = %v, want [2 4]", indexes)
	}
}

func TestLoadRowMapsConfiguration(t *testing.T) {
	cells := baseRow()
	// G2G block enabled.
	cells.set("AX", "1")
	cells.set("AY", "1.05")
	cells.set("AZ", "g2g-42")
	cells.set("BA", "3")
	cells.set("BB", "50")
	cells.set("BC", "300")
	cells.set("BD", "100")
	cells.set("BE", "sat-id").set("BF", "Black").set("BG", "A1:A50")
	// BIJ block enabled, foreign currency.
	cells.set("BS", "1")
	cells.set("BU", "bij-42")
	// Sheet price block 1 enabled.
	cells.set("CC", "1")
	cells.set("CD", "1.10")
	cells.set("CE", "100")
	cells.set("CF", "price-id").set("CG", "Prices").set("CH", "D7")

	repo := &fakeSheetRepo{sellers: map[string][]string{"A1:A50": {"scalper"}}}
	loader := loaderFor(t, cells, repo)

	loaded, err := loader.LoadRow(context.Background(), 3)
	if err != nil {
		t.Fatalf("LoadRow: %v", err)
	}
	row := loaded.Row

	if row.Name != "gold-eu" || row.ProductRef != "prod-42" || !row.Check || !row.ExcludeAds {
		t.Fatalf("row header mismatch: %+v", row)
	}
	if !row.Reprice.DiscountMin.Equal(decimal.RequireFromString("0.10")) || row.Reprice.Precision != 2 {
		t.Fatalf("reprice settings mismatch: %+v", row.Reprice)
	}
	if row.OwnSource.DeliveryCeiling.Value != 2 || row.OwnSource.MinStockFloor != 100 || !row.OwnSource.UseMinStock {
		t.Fatalf("own source mismatch: %+v", row.OwnSource)
	}
	if row.Stock.Threshold1 != 20 || row.Stock.StockFake != 500 {
		t.Fatalf("stock settings mismatch: %+v", row.Stock)
	}

	var g2g models.SourceConfig
	for _, cfg := range row.Competitors {
		if cfg.Tag == models.SourceG2G {
			g2g = cfg
		}
	}
	if !g2g.Enabled || g2g.ProductRef != "g2g-42" || !g2g.Profit.Equal(decimal.RequireFromString("1.05")) {
		t.Fatalf("g2g config mismatch: %+v", g2g)
	}
	if g2g.DeliveryCeiling.Value != 3 || g2g.MinStockFloor != 50 {
		t.Fatalf("g2g filter config mismatch: %+v", g2g)
	}
	if !g2g.Blacklisted("scalper") {
		t.Fatalf("g2g blacklist not loaded")
	}

	if !loaded.ForeignCCY[models.SourceBIJ] {
		t.Fatalf("bij must be flagged as foreign currency")
	}
	if len(loaded.SheetPrices) != 1 {
		t.Fatalf("sheet prices = %+v, want one block", loaded.SheetPrices)
	}
	block := loaded.SheetPrices[0]
	if block.Config.Tag != models.SourceSheet1 || block.Cell.Cell != "D7" || block.Cell.Sheet != "Prices" {
		t.Fatalf("sheet price block mismatch: %+v", block)
	}
}

func TestLoadRowMissingProductRef(t *testing.T) {
	cells := baseRow()
	cells.set(colProductRef, "")
	loader := loaderFor(t, cells, nil)

	_, err := loader.LoadRow(context.Background(), 3)
	var confErr *models.ConfigurationError
	if !errors.As(err, &confErr) || confErr.Field != "product_ref" {
		t.Fatalf("err = %v, want product_ref configuration error", err)
	}
}

func TestLoadRowInvertedDiscountRange(t *testing.T) {
	cells := baseRow()
	cells.set(colDiscountMin, "0.30")
	cells.set(colDiscountMax, "0.10")
	loader := loaderFor(t, cells, nil)

	_, err := loader.LoadRow(context.Background(), 3)
	var confErr *models.ConfigurationError
	if !errors.As(err, &confErr) || confErr.Field != "discount_range" {
		t.Fatalf("err = %v, want discount_range configuration error", err)
	}
}

func TestLoadRowBadDeliveryTime(t *testing.T) {
	cells := baseRow()
	cells.set(colDelivery, "soonish")
	loader := loaderFor(t, cells, nil)

	_, err := loader.LoadRow(context.Background(), 3)
	var confErr *models.ConfigurationError
	if !errors.As(err, &confErr) || confErr.Field != "delivery_time" {
		t.Fatalf("err = %v, want delivery_time configuration error", err)
	}
}

func TestLoadRowEnabledSourceWithoutRef(t *testing.T) {
	cells := baseRow()
	cells.set("AX", "1") // g2g on, but no product ref at AZ
	loader := loaderFor(t, cells, nil)

	_, err := loader.LoadRow(context.Background(), 3)
	var confErr *models.ConfigurationError
	if !errors.As(err, &confErr) {
		t.Fatalf("err = %v, want configuration error", err)
	}
}

func TestLoadRowBrokenBlacklistIsEmpty(t *testing.T) {
	cells := baseRow()
	cells.set("AX", "1")
	cells.set("AZ", "g2g-42")
	cells.set("BE", "sat-id").set("BF", "Black").set("BG", "A1:A50")

	repo := &fakeSheetRepo{sellersErr: errors.New("permission denied")}
	loader := loaderFor(t, cells, repo)

	loaded, err := loader.LoadRow(context.Background(), 3)
	if err != nil {
		t.Fatalf("LoadRow: %v", err)
	}
	for _, cfg := range loaded.Row.Competitors {
		if cfg.Tag == models.SourceG2G && len(cfg.Blacklist) != 0 {
			t.Fatalf("broken blacklist must load empty, got %v", cfg.Blacklist)
		}
	}
}

func TestNoteRange(t *testing.T) {
	loader := NewRowLoader(&fakeSheetRepo{}, "Products", nil)
	if got := loader.NoteRange(12); got != "'Products'!D12:E12" {
		t.Fatalf("NoteRange = %q", got)
	}
}
