package sheets

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/repricer/internal/domain/models"
)

// Column layout of the products worksheet. Each repriced product occupies
// one row; satellite spreadsheets referenced from a row hold bounds,
// counters and blacklists.
const (
	colCheck       = "B"
	colName        = "C"
	colNote        = "D"
	colLastUpdate  = "E"
	colProductRef  = "G"
	colDiscountMin = "K"
	colDiscountMax = "L"
	colPrecision   = "M"
	colExcludeAds  = "N"
	colDelivery    = "O"
	colMinUnit     = "Q"
	colMinStock    = "R"

	lastColumn = "CZ"
)

// Bound cells per tier, three columns each (spreadsheet id, sheet, cell).
var boundCellColumns = map[models.StockTier]struct{ min, max string }{
	models.TierPrimary:   {min: "S", max: "V"},
	models.TierSecondary: {min: "Y", max: "AB"},
	models.TierFallback:  {min: "AE", max: "AH"},
}

// Stock routing columns.
const (
	colCounter1   = "AK"
	colCounter2   = "AN"
	colThreshold1 = "AQ"
	colThreshold2 = "AR"
	colStockMax   = "AS"
	colStockFake  = "AT"
	colOwnBlack   = "AU"
)

// competitorColumns describes one competitor source block: check, profit,
// product ref, delivery ceiling (hours), stock floor, min-unit ceiling,
// unit factor and a blacklist reference, laid out contiguously.
type competitorColumns struct {
	tag         models.SourceTag
	check       string
	profit      string
	discountFee string // empty when the source has no fee column
	ref         string
	delivery    string
	stockFloor  string
	minUnit     string
	unitFactor  string
	blacklist   string
	foreignCCY  bool
}

var competitorLayout = []competitorColumns{
	{tag: models.SourceG2G, check: "AX", profit: "AY", ref: "AZ", delivery: "BA", stockFloor: "BB", minUnit: "BC", unitFactor: "BD", blacklist: "BE"},
	{tag: models.SourceFUN, check: "BH", profit: "BI", discountFee: "BJ", ref: "BK", delivery: "BL", stockFloor: "BM", minUnit: "BN", unitFactor: "BO", blacklist: "BP"},
	{tag: models.SourceBIJ, check: "BS", profit: "BT", ref: "BU", delivery: "BV", stockFloor: "BW", minUnit: "BX", unitFactor: "BY", blacklist: "BZ", foreignCCY: true},
}

// sheetPriceColumns describes one direct cell-price block: check, profit,
// unit factor and the price cell reference.
type sheetPriceColumns struct {
	tag    models.SourceTag
	check  string
	profit string
	factor string
	cell   string
}

var sheetPriceLayout = []sheetPriceColumns{
	{tag: models.SourceSheet1, check: "CC", profit: "CD", factor: "CE", cell: "CF"},
	{tag: models.SourceSheet2, check: "CI", profit: "CJ", factor: "CK", cell: "CL"},
	{tag: models.SourceSheet3, check: "CO", profit: "CP", factor: "CQ", cell: "CR"},
	{tag: models.SourceSheet4, check: "CU", profit: "CV", factor: "CW", cell: "CX"},
}

// SheetPriceBlock is a parsed direct cell-price source block.
type SheetPriceBlock struct {
	Config models.SourceConfig
	Cell   models.CellRef
}

// LoadedRow bundles a mapped product row with its direct-price blocks and
// the marker of which sources price in a foreign currency.
type LoadedRow struct {
	Row         *models.ProductRow
	SheetPrices []SheetPriceBlock
	ForeignCCY  map[models.SourceTag]bool
}

// RowLoader reads and maps product rows from the products worksheet.
type RowLoader struct {
	repo      Repository
	worksheet string
	logger    *zap.Logger
}

// NewRowLoader builds a loader over the given worksheet name.
func NewRowLoader(repo Repository, worksheet string, logger *zap.Logger) *RowLoader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RowLoader{repo: repo, worksheet: worksheet, logger: logger}
}

// RunnableRows returns the 1-based indexes of rows whose check flag is set.
func (l *RowLoader) RunnableRows(ctx context.Context) ([]int, error) {
	values, err := l.repo.ReadColumn(ctx, fmt.Sprintf("'%s'!%s:%s", l.worksheet, colCheck, colCheck))
	if err != nil {
		return nil, fmt.Errorf("read check column: %w", err)
	}

	var indexes []int
	for i, value := range values {
		if value == "1" {
			indexes = append(indexes, i+1)
		}
	}
	return indexes, nil
}

// LoadRow reads one product row and materializes its full configuration,
// including the per-source blacklists.
func (l *RowLoader) LoadRow(ctx context.Context, index int) (*LoadedRow, error) {
	rows, err := l.repo.ReadRange(ctx, fmt.Sprintf("'%s'!A%d:%s%d", l.worksheet, index, lastColumn, index))
	if err != nil {
		return nil, fmt.Errorf("read row %d: %w", index, err)
	}
	if len(rows) == 0 {
		return nil, &models.ConfigurationError{Field: "row", Reason: fmt.Sprintf("row %d is empty", index)}
	}

	values := rowValues{cells: rows[0]}

	row, err := l.mapRow(index, values)
	if err != nil {
		return nil, err
	}

	loaded := &LoadedRow{Row: row, ForeignCCY: map[models.SourceTag]bool{}}

	row.OwnSource.Blacklist = l.loadBlacklist(ctx, values.cellRef(colOwnBlack))

	for _, layout := range competitorLayout {
		cfg, err := l.mapCompetitor(ctx, layout, values)
		if err != nil {
			return nil, err
		}
		row.Competitors = append(row.Competitors, cfg)
		if layout.foreignCCY {
			loaded.ForeignCCY[layout.tag] = true
		}
	}

	for _, layout := range sheetPriceLayout {
		if !values.flag(layout.check) {
			continue
		}
		loaded.SheetPrices = append(loaded.SheetPrices, SheetPriceBlock{
			Config: models.SourceConfig{
				Tag:        layout.tag,
				Enabled:    true,
				Profit:     values.decimalOr(layout.profit, decimal.NewFromInt(1)),
				UnitFactor: values.decimal(layout.factor),
			},
			Cell: values.cellRef(layout.cell),
		})
	}

	return loaded, nil
}

// NoteRange returns the audit write-back range (note + last update) for a
// row.
func (l *RowLoader) NoteRange(index int) string {
	return fmt.Sprintf("'%s'!%s%d:%s%d", l.worksheet, colNote, index, colLastUpdate, index)
}

func (l *RowLoader) mapRow(index int, values rowValues) (*models.ProductRow, error) {
	row := &models.ProductRow{
		Index:      index,
		Name:       values.str(colName),
		ProductRef: values.str(colProductRef),
		Check:      values.flag(colCheck),
		ExcludeAds: values.flag(colExcludeAds),
		BoundCells: map[models.StockTier]models.BoundCells{},
	}

	if row.ProductRef == "" {
		return nil, &models.ConfigurationError{Field: "product_ref", Reason: "missing"}
	}

	row.Reprice = models.RepriceSettings{
		DiscountMin: values.decimal(colDiscountMin),
		DiscountMax: values.decimal(colDiscountMax),
		Precision:   int32(values.intval(colPrecision)),
	}
	if row.Reprice.DiscountMax.LessThan(row.Reprice.DiscountMin) {
		return nil, &models.ConfigurationError{Field: "discount_range", Reason: "max below min"}
	}

	deliveryText := values.str(colDelivery)
	ceiling, err := models.ParseDeliveryTime(deliveryText)
	if err != nil {
		return nil, &models.ConfigurationError{Field: "delivery_time", Reason: fmt.Sprintf("unparseable %q", deliveryText)}
	}

	row.OwnSource = models.SourceConfig{
		Tag:             models.SourcePA,
		Enabled:         true,
		ProductRef:      row.ProductRef,
		DeliveryCeiling: ceiling,
		MinStockFloor:   values.intval(colMinStock),
		MinUnitCeiling:  values.intval(colMinUnit),
		UseMinStock:     true,
	}

	for tier, cols := range boundCellColumns {
		row.BoundCells[tier] = models.BoundCells{
			Min: values.cellRef(cols.min),
			Max: values.cellRef(cols.max),
		}
	}

	row.Stock = models.StockSettings{
		Counter1:   values.cellRef(colCounter1),
		Counter2:   values.cellRef(colCounter2),
		Threshold1: values.intval(colThreshold1),
		Threshold2: values.intval(colThreshold2),
		StockMax:   values.intval(colStockMax),
		StockFake:  values.intval(colStockFake),
	}

	return row, nil
}

func (l *RowLoader) mapCompetitor(ctx context.Context, layout competitorColumns, values rowValues) (models.SourceConfig, error) {
	cfg := models.SourceConfig{
		Tag:            layout.tag,
		Enabled:        values.flag(layout.check),
		ProductRef:     values.str(layout.ref),
		Profit:         values.decimalOr(layout.profit, decimal.NewFromInt(1)),
		UnitFactor:     values.decimal(layout.unitFactor),
		MinStockFloor:  values.intval(layout.stockFloor),
		MinUnitCeiling: values.intval(layout.minUnit),
	}

	if layout.discountFee != "" {
		cfg.DiscountFee = values.decimal(layout.discountFee)
	}

	if hours := values.intval(layout.delivery); hours > 0 {
		cfg.DeliveryCeiling = models.DeliveryTime{Value: hours, Unit: models.UnitHours}
	}

	if !cfg.Enabled {
		return cfg, nil
	}
	if cfg.ProductRef == "" {
		return cfg, &models.ConfigurationError{Field: string(layout.tag) + "_product_ref", Reason: "enabled source without product ref"}
	}

	cfg.Blacklist = l.loadBlacklist(ctx, values.cellRef(layout.blacklist))
	return cfg, nil
}

// loadBlacklist reads a blacklist range. An unreadable or unset reference
// yields an empty blacklist so a broken satellite sheet never stops the
// row.
func (l *RowLoader) loadBlacklist(ctx context.Context, ref models.CellRef) map[string]struct{} {
	blacklist := map[string]struct{}{}
	if ref.Empty() {
		return blacklist
	}

	sellers, err := l.repo.ReadCellStrings(ctx, ref)
	if err != nil {
		l.logger.Warn("blacklist unreadable", zap.String("cell", ref.A1()), zap.Error(err))
		return blacklist
	}

	for _, seller := range sellers {
		blacklist[seller] = struct{}{}
	}
	return blacklist
}

// rowValues wraps one row's raw cells with column-letter access.
type rowValues struct {
	cells []interface{}
}

func (r rowValues) str(col string) string {
	idx := colIndex(col)
	if idx < 0 || idx >= len(r.cells) {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(r.cells[idx]))
}

func (r rowValues) flag(col string) bool {
	return r.str(col) == "1"
}

func (r rowValues) intval(col string) int {
	value, err := strconv.Atoi(r.str(col))
	if err != nil {
		return 0
	}
	return value
}

func (r rowValues) decimal(col string) decimal.Decimal {
	value, err := decimal.NewFromString(strings.ReplaceAll(r.str(col), ",", ""))
	if err != nil {
		return decimal.Zero
	}
	return value
}

func (r rowValues) decimalOr(col string, fallback decimal.Decimal) decimal.Decimal {
	value := r.decimal(col)
	if value.IsZero() {
		return fallback
	}
	return value
}

// cellRef reads a three-column group (spreadsheet id, sheet name, cell)
// starting at col.
func (r rowValues) cellRef(col string) models.CellRef {
	start := colIndex(col)
	return models.CellRef{
		SpreadsheetID: r.str(columnName(start)),
		Sheet:         r.str(columnName(start + 1)),
		Cell:          r.str(columnName(start + 2)),
	}
}

// colIndex converts a column letter ("A", "AB") to a zero-based index.
func colIndex(col string) int {
	index := 0
	for _, c := range col {
		index = index*26 + int(c-'A') + 1
	}
	return index - 1
}

// columnName is the inverse of colIndex.
func columnName(index int) string {
	name := ""
	index++
	for index > 0 {
		index--
		name = string(rune('A'+index%26)) + name
		index /= 26
	}
	return name
}
