package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/repricer/internal/domain/models"
	"github.com/mamadbah2/repricer/internal/repository/mongodb"
	"github.com/mamadbah2/repricer/internal/repository/sheets"
	"github.com/mamadbah2/repricer/internal/service/pricing"
	"github.com/mamadbah2/repricer/internal/service/sources"
	"github.com/mamadbah2/repricer/pkg/clients/market"
)

// Engine drives one full repricing cycle: load every run-flagged row,
// resolve its price and persist the decision. Rows are priced one at a
// time; the only concurrency is the competitor fan-out inside a row.
type Engine struct {
	loader     *sheets.RowLoader
	sheetsRepo sheets.Repository
	audit      mongodb.Repository
	feeds      map[models.SourceTag]market.Client
	rate       sources.RateProvider
	router     *pricing.StockRouter
	aggregator *pricing.Aggregator
	resolver   *pricing.Resolver
	bounds     *sources.SheetBoundProvider
	retry      RetryPolicy
	logger     *zap.Logger
	now        func() time.Time
}

// New wires a repricing engine.
func New(
	loader *sheets.RowLoader,
	sheetsRepo sheets.Repository,
	audit mongodb.Repository,
	feeds map[models.SourceTag]market.Client,
	rate sources.RateProvider,
	router *pricing.StockRouter,
	aggregator *pricing.Aggregator,
	resolver *pricing.Resolver,
	bounds *sources.SheetBoundProvider,
	retry RetryPolicy,
	logger *zap.Logger,
) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		loader:     loader,
		sheetsRepo: sheetsRepo,
		audit:      audit,
		feeds:      feeds,
		rate:       rate,
		router:     router,
		aggregator: aggregator,
		resolver:   resolver,
		bounds:     bounds,
		retry:      retry,
		logger:     logger,
		now:        time.Now,
	}
}

// CycleSummary reports what one cycle did.
type CycleSummary struct {
	CycleID  string    `json:"cycle_id"`
	Rows     int       `json:"rows"`
	Priced   int       `json:"priced"`
	Skipped  int       `json:"skipped"`
	Failed   int       `json:"failed"`
	Started  time.Time `json:"started"`
	Finished time.Time `json:"finished"`
}

// RunCycle reprices every run-flagged row once. Row failures are
// contained: a row that exhausts its retry budget is logged and skipped,
// never fatal to the cycle.
func (e *Engine) RunCycle(ctx context.Context) (CycleSummary, error) {
	summary := CycleSummary{
		CycleID: uuid.NewString(),
		Started: e.now().UTC(),
	}
	log := e.logger.With(zap.String("cycle_id", summary.CycleID))

	indexes, err := e.loader.RunnableRows(ctx)
	if err != nil {
		return summary, fmt.Errorf("list runnable rows: %w", err)
	}
	summary.Rows = len(indexes)
	log.Info("cycle started", zap.Int("rows", len(indexes)))

	for _, index := range indexes {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}

		var decision *models.PriceDecision
		err := e.retry.Do(ctx, func() error {
			var rowErr error
			decision, rowErr = e.repriceRow(ctx, index, summary.CycleID)
			return rowErr
		})

		switch {
		case errors.Is(err, pricing.ErrNoValidOffer):
			summary.Skipped++
			log.Info("row skipped, no valid offer", zap.Int("row", index))
		case err != nil:
			summary.Failed++
			log.Error("row failed after retries", zap.Int("row", index), zap.Error(err))
		case decision == nil:
			summary.Skipped++
			log.Debug("row gated off", zap.Int("row", index))
		default:
			summary.Priced++
		}
	}

	summary.Finished = e.now().UTC()
	log.Info("cycle finished",
		zap.Int("priced", summary.Priced),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed),
		zap.Duration("took", summary.Finished.Sub(summary.Started)))
	return summary, nil
}

// repriceRow resolves and persists one row. A nil decision with a nil
// error means the row was gated off; ErrNoValidOffer means it had nothing
// to price against.
func (e *Engine) repriceRow(ctx context.Context, index int, cycleID string) (*models.PriceDecision, error) {
	log := e.logger.With(zap.Int("row", index))

	loaded, err := e.loader.LoadRow(ctx, index)
	if err != nil {
		return nil, err
	}
	row := loaded.Row

	if !row.Check || !row.ExcludeAds {
		log.Debug("row gated off", zap.Bool("check", row.Check), zap.Bool("exclude_ads", row.ExcludeAds))
		return nil, nil
	}

	ownOffers, err := e.fetchOwnOffers(ctx, row)
	if err != nil {
		return nil, err
	}
	if len(pricing.FilterOffers(ownOffers, row.OwnSource)) == 0 {
		return nil, pricing.ErrNoValidOffer
	}

	tier, counts := e.router.Route(ctx, row.Stock)

	bound, err := e.bounds.Bound(ctx, row, tier)
	if err != nil {
		return nil, err
	}

	var best models.SourcePriceResult
	var perSource []models.SourcePriceResult
	if tier == models.TierFallback {
		best, perSource = e.aggregator.Aggregate(ctx, e.queriers(loaded))
	}

	decision, err := e.resolver.Resolve(pricing.ResolveInput{
		Row:       row,
		Tier:      tier,
		Counts:    counts,
		Bound:     bound,
		OwnOffers: ownOffers,
		Best:      best,
		PerSource: perSource,
	})
	if err != nil {
		return nil, err
	}

	decision.CycleID = cycleID
	decision.CreatedAt = e.now().UTC()
	decision.PublishedStock = pricing.PublishedStock(tier, counts, row.Stock)

	if err := e.audit.SavePriceDecision(ctx, *decision); err != nil {
		return nil, fmt.Errorf("persist decision: %w", err)
	}

	note := fmt.Sprintf("%s -> %s (ref %s)", decision.StockTier, decision.AdjustedPrice, decision.ReferenceSeller)
	stamp := decision.CreatedAt.Format("2006-01-02 15:04:05")
	if err := e.sheetsRepo.UpdateRow(ctx, e.loader.NoteRange(index), []interface{}{note, stamp}); err != nil {
		// The decision is already persisted; a failed write-back only
		// loses the operator-facing note.
		log.Warn("audit write-back failed", zap.Error(err))
	}

	log.Info("row priced",
		zap.String("tier", string(decision.StockTier)),
		zap.String("adjusted", decision.AdjustedPrice.String()),
		zap.String("reference_seller", decision.ReferenceSeller))
	return decision, nil
}

// fetchOwnOffers pulls and normalizes the row's own marketplace listings.
func (e *Engine) fetchOwnOffers(ctx context.Context, row *models.ProductRow) ([]models.Offer, error) {
	feed, ok := e.feeds[models.SourcePA]
	if !ok {
		return nil, &models.ConfigurationError{Field: "feeds", Reason: "primary marketplace feed not configured"}
	}

	raws, err := feed.FetchRawOffers(ctx, row.ProductRef)
	if err != nil {
		return nil, &pricing.SourceUnavailableError{Source: models.SourcePA, Err: err}
	}

	return pricing.NormalizeOffers(raws, func(raw models.RawOffer, err error) {
		e.logger.Debug("dropped unparseable own offer",
			zap.Int("row", row.Index),
			zap.String("offer_id", raw.OfferID),
			zap.Error(err))
	}), nil
}

// queriers assembles the enabled competitor pipelines for a fallback-tier
// row, in their fixed evaluation order.
func (e *Engine) queriers(loaded *sheets.LoadedRow) []pricing.SourceQuerier {
	var queriers []pricing.SourceQuerier

	for _, cfg := range loaded.Row.Competitors {
		if !cfg.Enabled {
			continue
		}
		feed, ok := e.feeds[cfg.Tag]
		if !ok {
			e.logger.Warn("enabled source has no feed client", zap.String("source", string(cfg.Tag)))
			continue
		}
		var rate sources.RateProvider
		if loaded.ForeignCCY[cfg.Tag] {
			rate = e.rate
		}
		queriers = append(queriers, sources.NewCompetitorSource(cfg, feed, rate, e.logger.Named("source."+string(cfg.Tag))))
	}

	for _, block := range loaded.SheetPrices {
		queriers = append(queriers, sources.NewSheetPriceSource(block.Config, block.Cell, e.sheetsRepo, e.logger.Named("source."+string(block.Config.Tag))))
	}

	return queriers
}
