package services

import (
	"context"
	"fmt"
	"strings"

	"personal-data-assistant/models"
	"personal-data-assistant/utils"
)

// RateCache is a key-value store for previously fetched rates.
type RateCache interface {
	// Lookup returns the cached rate and true, or false on a miss.
	Lookup(ctx context.Context, key string) (float64, bool, error)
	Store(ctx context.Context, key string, rate float64) error
}

// RateFetcher fetches a live exchange rate.
type RateFetcher interface {
	FetchRate(ctx context.Context, base, target string) (float64, error)
}

// MergeEnrichment attaches an exchange-rate lookup to the report. A failed
// lookup is recorded with a nil rate; it never aborts the pipeline.
func MergeEnrichment(report *models.Report, lookup models.RateLookup, base, target string) {
	source := lookup.Source
	rate := lookup.Rate
	if source != models.SourceCache && source != models.SourceAPI {
		source = models.SourceFailed
	}
	if source == models.SourceFailed || rate == nil {
		source, rate = models.SourceFailed, nil
	}
	report.Enrichment = &models.Enrichment{
		Type:   models.EnrichmentExchangeRate,
		Base:   base,
		Target: target,
		Rate:   rate,
		Source: source,
	}
}

// FXCacheKey builds the cache key for a currency pair, e.g. "fx_usd_eur".
func FXCacheKey(base, target string) string {
	return strings.ToLower(fmt.Sprintf("fx_%s_%s", base, target))
}

// RateEnricher resolves exchange rates cache-first, falling back to the
// fetcher on a miss and storing what it fetched.
type RateEnricher struct {
	cache   RateCache
	fetcher RateFetcher
	logger  *utils.Logger
}

// NewRateEnricher creates a RateEnricher.
func NewRateEnricher(cache RateCache, fetcher RateFetcher, logger *utils.Logger) *RateEnricher {
	return &RateEnricher{cache: cache, fetcher: fetcher, logger: logger}
}

// Lookup returns the rate for base→target. It never returns an error:
// failures degrade to models.FailedLookup.
func (e *RateEnricher) Lookup(ctx context.Context, base, target string) models.RateLookup {
	key := FXCacheKey(base, target)

	rate, ok, err := e.cache.Lookup(ctx, key)
	if err != nil {
		e.logger.Warn("[enrich] FX cache read failed for %s: %v", key, err)
	}
	if err == nil && ok {
		e.logger.Info("[enrich] FX cache hit: %s", key)
		return models.RateLookup{Rate: &rate, Source: models.SourceCache}
	}

	e.logger.Info("[enrich] FX cache miss: %s", key)
	rate, err = e.fetcher.FetchRate(ctx, base, target)
	if err != nil {
		e.logger.Error("[enrich] FX API failed: %v", err)
		return models.FailedLookup()
	}

	if err := e.cache.Store(ctx, key, rate); err != nil {
		e.logger.Warn("[enrich] FX cache write failed for %s: %v", key, err)
	}
	return models.RateLookup{Rate: &rate, Source: models.SourceAPI}
}

// Enrich looks up the rate and merges it into the report.
func (e *RateEnricher) Enrich(ctx context.Context, report *models.Report, base, target string) {
	lookup := e.Lookup(ctx, base, target)
	MergeEnrichment(report, lookup, base, target)
}
