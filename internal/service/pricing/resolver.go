package pricing

import (
	"sort"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/repricer/internal/domain/models"
)

// ResolveInput bundles everything one price decision needs: the row
// configuration, the routed tier with its bound and raw counts, the row's
// own normalized marketplace offers and the aggregated competitor minimum.
type ResolveInput struct {
	Row       *models.ProductRow
	Tier      models.StockTier
	Counts    models.StockCounts
	Bound     models.PriceBound
	OwnOffers []models.Offer
	Best      models.SourcePriceResult
	PerSource []models.SourcePriceResult
}

// Resolver computes the final adjusted price for a routed row.
type Resolver struct {
	sampler DiscountSampler
	logger  *zap.Logger
}

// NewResolver wires a resolver over the given discount sampler.
func NewResolver(sampler DiscountSampler, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{sampler: sampler, logger: logger}
}

// Resolve runs the full decision: anchor selection, tier-dependent initial
// adjustment, clamping and the competitor undercut search. A nil decision
// with ErrNoValidOffer means the row is skipped this cycle, which is a
// normal outcome rather than a fault.
func (r *Resolver) Resolve(in ResolveInput) (*models.PriceDecision, error) {
	row := in.Row
	if row == nil {
		return nil, &models.ConfigurationError{Field: "row", Reason: "missing"}
	}

	ownFiltered := FilterOffers(in.OwnOffers, row.OwnSource)
	anchor, ok := MinOffer(ownFiltered)
	if !ok {
		return nil, ErrNoValidOffer
	}

	// The floor set in the no-bound fallback branch. The undercut search
	// must never push the price back below it.
	var floor *decimal.Decimal

	var adjusted decimal.Decimal
	switch {
	case in.Tier == models.TierFallback && in.Bound.Unbounded():
		if !in.Best.Found {
			return nil, ErrNoValidOffer
		}
		closest, ok := closestOffer(ownFiltered, in.Best.Price)
		if !ok {
			return nil, ErrNoValidOffer
		}
		adjusted = r.undercut(closest.PricePerUnit, row.Reprice)
		if adjusted.LessThan(in.Best.Price) {
			adjusted = in.Best.Price
		}
		floor = &in.Best.Price

	case in.Tier == models.TierFallback:
		if !in.Best.Found {
			return nil, ErrNoValidOffer
		}
		adjusted = r.threeWay(in.Best.Price, in.Bound, row.Reprice)

	default:
		adjusted = r.threeWay(anchor.PricePerUnit, in.Bound, row.Reprice)
	}

	adjusted = clamp(adjusted, in.Bound, floor, row.Reprice.Precision)

	referenceSeller := models.KeepSeller
	referencePrice := adjusted
	if above, ok := cheapestAbove(ownFiltered, adjusted); ok {
		referenceSeller = above.Seller.Name
		referencePrice = above.PricePerUnit
		adjusted = r.undercut(above.PricePerUnit, row.Reprice)
		adjusted = clamp(adjusted, in.Bound, floor, row.Reprice.Precision)
	}

	r.logger.Debug("price resolved",
		zap.Int("row", row.Index),
		zap.String("tier", string(in.Tier)),
		zap.String("anchor", anchor.PricePerUnit.String()),
		zap.String("adjusted", adjusted.String()),
		zap.String("reference_seller", referenceSeller))

	return &models.PriceDecision{
		RowIndex:        row.Index,
		ProductName:     row.Name,
		PriceMin:        in.Bound.Min.Round(pricePrecision),
		PriceMax:        in.Bound.Max.Round(pricePrecision),
		AdjustedPrice:   adjusted,
		SourceOffer:     anchor,
		StockTier:       in.Tier,
		StockCounts:     in.Counts,
		ReferenceSeller: referenceSeller,
		ReferencePrice:  referencePrice,
		PerSource:       in.PerSource,
	}, nil
}

// threeWay applies the clamp-or-discount rule to a reference price: below
// the corridor snaps to min, above snaps to max, inside undercuts by a
// sampled margin.
func (r *Resolver) threeWay(reference decimal.Decimal, bound models.PriceBound, settings models.RepriceSettings) decimal.Decimal {
	if !bound.Min.Equal(models.UnboundedSentinel) && reference.LessThan(bound.Min) {
		return bound.Min
	}
	if !bound.Max.Equal(models.UnboundedSentinel) && reference.GreaterThan(bound.Max) {
		return bound.Max
	}
	return r.undercut(reference, settings)
}

func (r *Resolver) undercut(price decimal.Decimal, settings models.RepriceSettings) decimal.Decimal {
	margin := r.sampler.Sample(settings.DiscountMin, settings.DiscountMax)
	return price.Sub(margin).Round(settings.Precision)
}

// clamp re-applies the bound corridor and the fallback floor, then
// re-rounds to the row's precision.
func clamp(price decimal.Decimal, bound models.PriceBound, floor *decimal.Decimal, precision int32) decimal.Decimal {
	if !bound.Min.Equal(models.UnboundedSentinel) && price.LessThan(bound.Min) {
		price = bound.Min
	}
	if !bound.Max.Equal(models.UnboundedSentinel) && price.GreaterThan(bound.Max) {
		price = bound.Max
	}
	if floor != nil && price.LessThan(*floor) {
		price = *floor
	}
	return price.Round(precision)
}

// closestOffer finds the offer whose per-unit price sits nearest the
// target, earliest offer winning distance ties.
func closestOffer(offers []models.Offer, target decimal.Decimal) (models.Offer, bool) {
	if len(offers) == 0 {
		return models.Offer{}, false
	}
	best := offers[0]
	bestDistance := best.PricePerUnit.Sub(target).Abs()
	for _, offer := range offers[1:] {
		distance := offer.PricePerUnit.Sub(target).Abs()
		if distance.LessThan(bestDistance) {
			best = offer
			bestDistance = distance
		}
	}
	return best, true
}

// cheapestAbove returns the cheapest offer priced strictly above the
// current adjusted price, if any.
func cheapestAbove(offers []models.Offer, adjusted decimal.Decimal) (models.Offer, bool) {
	sorted := make([]models.Offer, len(offers))
	copy(sorted, offers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PricePerUnit.LessThan(sorted[j].PricePerUnit)
	})
	for _, offer := range sorted {
		if offer.PricePerUnit.GreaterThan(adjusted) {
			return offer, true
		}
	}
	return models.Offer{}, false
}
