package service

import (
	"context"
	"fmt"
	"sync"

	"currency-convert-service/internal/domain/model"
	"currency-convert-service/internal/domain/ports"
	"currency-convert-service/internal/metrics"
	"currency-convert-service/pkg/logger"

	"github.com/shopspring/decimal"
)

var _ ports.ExchangeRateProvider = (*ExchangeRateProvider)(nil)

// ExchangeRateProvider puts the symbols and rates caches in front of the
// upstream API. Cache writes after a miss run in the background and never
// hold up or fail the caller.
type ExchangeRateProvider struct {
	repository ports.RateRepository
	symbols    ports.SymbolsCache
	rates      ports.RatesCache
	metrics    *metrics.Metrics
	log        *logger.Logger

	writes sync.WaitGroup
}

func NewExchangeRateProvider(repository ports.RateRepository, symbols ports.SymbolsCache, rates ports.RatesCache, m *metrics.Metrics, log *logger.Logger) *ExchangeRateProvider {
	return &ExchangeRateProvider{
		repository: repository,
		symbols:    symbols,
		rates:      rates,
		metrics:    m,
		log:        log,
	}
}

func (p *ExchangeRateProvider) ListSupportedCurrencies(ctx context.Context) (model.Symbols, error) {
	if symbols, found := p.symbols.GetSupportedSymbols(); found {
		p.cacheLookup(metrics.CacheSymbols, true)
		return symbols, nil
	}
	p.cacheLookup(metrics.CacheSymbols, false)

	symbols, err := p.repository.FetchSymbols(ctx)
	if err != nil {
		p.log.Error("Failed to fetch supported currencies", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrExternalAPIFailure, err)
	}

	p.populate(metrics.CacheSymbols, func() {
		p.symbols.PutSymbols(symbols)
	})

	return symbols, nil
}

// ListExchangeRates always goes upstream. A full rate table is large and
// stale within seconds, so caching it costs more than it saves.
func (p *ExchangeRateProvider) ListExchangeRates(ctx context.Context, base model.Currency) (model.Rates, error) {
	list, err := p.repository.FetchLatestRates(ctx, base)
	if err != nil {
		p.log.Error("Failed to fetch exchange rates", "error", err, "base", base.String())
		return nil, fmt.Errorf("%w: %v", ErrExternalAPIFailure, err)
	}
	return list.Rates, nil
}

// ConvertCurrency returns amount expressed in target. On a cache miss the
// upstream result is returned as is and only the unit rate is cached, so
// later calls for the same pair multiply locally.
func (p *ExchangeRateProvider) ConvertCurrency(ctx context.Context, base, target model.Currency, amount decimal.Decimal) (decimal.Decimal, error) {
	pair := model.CurrencyPair{BaseCurrency: base, TargetCurrency: target}

	if rate, found := p.rates.GetCachedRate(base, target); found {
		p.cacheLookup(metrics.CacheRates, true)
		p.log.Debug("Exchange rate found in cache", "pair", pair.String())
		return rate.Mul(amount), nil
	}
	p.cacheLookup(metrics.CacheRates, false)

	p.log.Info("Fetching conversion from upstream", "pair", pair.String())
	conversion, err := p.repository.FetchConversion(ctx, pair, amount)
	if err != nil {
		p.log.Error("Failed to convert currency", "error", err, "pair", pair.String())
		return decimal.Decimal{}, fmt.Errorf("%w: %v", ErrExternalAPIFailure, err)
	}

	rate := conversion.Rate
	p.populate(metrics.CacheRates, func() {
		p.rates.PutRate(base, target, rate)
	})

	return conversion.Result, nil
}

// Wait blocks until background cache writes started so far have finished.
func (p *ExchangeRateProvider) Wait() {
	p.writes.Wait()
}

func (p *ExchangeRateProvider) populate(cache string, write func()) {
	p.writes.Add(1)
	go func() {
		defer p.writes.Done()
		defer func() {
			if r := recover(); r != nil {
				p.log.Error("Cache write failed", "cache", cache, "panic", r)
			}
		}()
		write()
	}()
}

func (p *ExchangeRateProvider) cacheLookup(cache string, hit bool) {
	if p.metrics != nil {
		p.metrics.CacheLookup(cache, hit)
	}
}
