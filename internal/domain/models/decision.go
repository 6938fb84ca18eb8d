package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockTier classifies a row by its live stock depth. Each tier carries its
// own price-bound policy.
type StockTier string

const (
	TierPrimary   StockTier = "primary"
	TierSecondary StockTier = "secondary"
	TierFallback  StockTier = "fallback"
)

// UnboundedSentinel marks a bound cell configured as "no bound in this
// direction".
var UnboundedSentinel = decimal.NewFromInt(-1)

// PriceBound is the min/max corridor a tier allows the adjusted price to
// move in. Either side may be the unbounded sentinel.
type PriceBound struct {
	Min decimal.Decimal
	Max decimal.Decimal
}

// Unbounded reports whether both sides are the sentinel, which switches the
// fallback tier to competitor-relative pricing.
func (b PriceBound) Unbounded() bool {
	return b.Min.Equal(UnboundedSentinel) && b.Max.Equal(UnboundedSentinel)
}

// StockCounts keeps the raw counter reads behind a tier decision. A count
// of -1 means the counter could not be read.
type StockCounts struct {
	Counter1  int `bson:"counter1" json:"counter1"`
	Counter2  int `bson:"counter2" json:"counter2"`
	StockFake int `bson:"stock_fake" json:"stock_fake"`
}

// SourcePriceResult is one source's converted minimum for a cycle. Found
// is false when the source contributed no valid offer.
type SourcePriceResult struct {
	Source SourceTag       `bson:"source" json:"source"`
	Price  decimal.Decimal `bson:"price" json:"price"`
	Seller string          `bson:"seller" json:"seller"`
	Found  bool            `bson:"found" json:"found"`
}

// KeepSeller is recorded as the reference seller when the undercut search
// finds nobody priced strictly above the adjusted price.
const KeepSeller = "Keep"

// PriceDecision is the immutable outcome of one row's repricing cycle.
type PriceDecision struct {
	CycleID         string              `bson:"cycle_id" json:"cycle_id"`
	RowIndex        int                 `bson:"row_index" json:"row_index"`
	ProductName     string              `bson:"product_name" json:"product_name"`
	PriceMin        decimal.Decimal     `bson:"price_min" json:"price_min"`
	PriceMax        decimal.Decimal     `bson:"price_max" json:"price_max"`
	AdjustedPrice   decimal.Decimal     `bson:"adjusted_price" json:"adjusted_price"`
	SourceOffer     Offer               `bson:"source_offer" json:"source_offer"`
	StockTier       StockTier           `bson:"stock_tier" json:"stock_tier"`
	StockCounts     StockCounts         `bson:"stock_counts" json:"stock_counts"`
	PublishedStock  int                 `bson:"published_stock" json:"published_stock"`
	ReferenceSeller string              `bson:"reference_seller" json:"reference_seller"`
	ReferencePrice  decimal.Decimal     `bson:"reference_price" json:"reference_price"`
	PerSource       []SourcePriceResult `bson:"per_source,omitempty" json:"per_source,omitempty"`
	CreatedAt       time.Time           `bson:"created_at" json:"created_at"`
}
