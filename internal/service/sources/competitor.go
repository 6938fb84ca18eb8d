package sources

import (
	"context"

	"go.uber.org/zap"

	"github.com/mamadbah2/repricer/internal/domain/models"
	"github.com/mamadbah2/repricer/internal/service/pricing"
	"github.com/mamadbah2/repricer/pkg/clients/market"
)

// CompetitorSource runs one competitor marketplace's query pipeline for a
// row: fetch the raw listings, normalize, filter by the row's eligibility
// rules, take the minimum and convert it with the source's multipliers.
// It satisfies pricing.SourceQuerier.
type CompetitorSource struct {
	cfg    models.SourceConfig
	feed   market.Client
	rate   RateProvider
	logger *zap.Logger
}

// NewCompetitorSource builds the pipeline for one source block of a row.
// rate may be nil for sources priced in the home currency.
func NewCompetitorSource(cfg models.SourceConfig, feed market.Client, rate RateProvider, logger *zap.Logger) *CompetitorSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CompetitorSource{cfg: cfg, feed: feed, rate: rate, logger: logger}
}

// Tag identifies the source this pipeline queries.
func (s *CompetitorSource) Tag() models.SourceTag {
	return s.cfg.Tag
}

// Query resolves the source's converted minimum price. Found=false with a
// nil error means no listing survived the filters, which is a valid
// outcome; an error marks the source unavailable for this cycle.
func (s *CompetitorSource) Query(ctx context.Context) (models.SourcePriceResult, error) {
	none := models.SourcePriceResult{Source: s.cfg.Tag}

	raws, err := s.feed.FetchRawOffers(ctx, s.cfg.ProductRef)
	if err != nil {
		return none, &pricing.SourceUnavailableError{Source: s.cfg.Tag, Err: err}
	}

	offers := pricing.NormalizeOffers(raws, func(raw models.RawOffer, err error) {
		s.logger.Debug("dropped unparseable offer",
			zap.String("source", string(s.cfg.Tag)),
			zap.String("offer_id", raw.OfferID),
			zap.Error(err))
	})

	best, ok := pricing.MinOffer(pricing.FilterOffers(offers, s.cfg))
	if !ok {
		s.logger.Debug("no valid offer", zap.String("source", string(s.cfg.Tag)))
		return none, nil
	}

	price := best.PricePerUnit.Mul(s.cfg.PriceMultiplier())
	if s.rate != nil {
		price = price.Mul(s.rate.Rate(ctx))
	}

	return models.SourcePriceResult{
		Source: s.cfg.Tag,
		Price:  price.Round(4),
		Seller: best.Seller.Name,
		Found:  true,
	}, nil
}
