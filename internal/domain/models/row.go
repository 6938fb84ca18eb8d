package models

import (
	"github.com/shopspring/decimal"
)

// SourceTag identifies one external pricing source.
type SourceTag string

const (
	SourcePA     SourceTag = "pa"   // primary marketplace, owns the row's listings
	SourceG2G    SourceTag = "g2g"  // competitor marketplace
	SourceFUN    SourceTag = "fun"  // competitor marketplace
	SourceBIJ    SourceTag = "bij"  // competitor board, CNY priced
	SourceSheet1 SourceTag = "sheet1"
	SourceSheet2 SourceTag = "sheet2"
	SourceSheet3 SourceTag = "sheet3"
	SourceSheet4 SourceTag = "sheet4"
)

// SourceConfig carries one competitor source's eligibility rules and price
// multipliers for a single row. Loaded once per cycle, immutable after.
type SourceConfig struct {
	Tag             SourceTag
	Enabled         bool
	ProductRef      string
	Profit          decimal.Decimal
	UnitFactor      decimal.Decimal
	CurrencyFactor  decimal.Decimal
	DiscountFee     decimal.Decimal
	DeliveryCeiling DeliveryTime
	MinStockFloor   int
	MinUnitCeiling  int
	UseMinStock     bool
	Blacklist       map[string]struct{}
}

// Blacklisted reports whether a seller is excluded from this source.
func (c SourceConfig) Blacklisted(seller string) bool {
	_, ok := c.Blacklist[seller]
	return ok
}

// PriceMultiplier collapses profit, unit and currency factors into the
// factor applied to a source's minimum price.
func (c SourceConfig) PriceMultiplier() decimal.Decimal {
	m := c.Profit
	if !c.UnitFactor.IsZero() {
		m = m.Mul(c.UnitFactor)
	}
	if !c.DiscountFee.IsZero() {
		m = m.Mul(c.DiscountFee)
	}
	if !c.CurrencyFactor.IsZero() {
		m = m.Mul(c.CurrencyFactor)
	}
	return m
}

// CellRef addresses a single spreadsheet cell in A1 notation.
type CellRef struct {
	SpreadsheetID string
	Sheet         string
	Cell          string
}

// Empty reports whether the reference was left blank on the row.
func (r CellRef) Empty() bool {
	return r.SpreadsheetID == "" || r.Sheet == "" || r.Cell == ""
}

// A1 renders the reference in the "'Sheet'!Cell" form the Sheets API expects.
func (r CellRef) A1() string {
	return "'" + r.Sheet + "'!" + r.Cell
}

// StockSettings holds the live stock counter locations and tier thresholds
// for one row.
type StockSettings struct {
	Counter1   CellRef
	Counter2   CellRef
	Threshold1 int
	Threshold2 int
	StockMax   int
	StockFake  int
}

// RepriceSettings carries the row's knobs for the final price adjustment.
type RepriceSettings struct {
	DiscountMin decimal.Decimal
	DiscountMax decimal.Decimal
	Precision   int32
}

// ProductRow is the full configuration of one repriced product: the row's
// own listing reference, the undercut knobs, the stock routing settings,
// the per-tier bound cells and every competitor source block.
type ProductRow struct {
	Index       int
	Name        string
	ProductRef  string
	Check       bool
	ExcludeAds  bool
	Reprice     RepriceSettings
	OwnSource   SourceConfig
	Stock       StockSettings
	BoundCells  map[StockTier]BoundCells
	Competitors []SourceConfig
}

// BoundCells points at the min/max bound cells configured for one tier.
type BoundCells struct {
	Min CellRef
	Max CellRef
}
