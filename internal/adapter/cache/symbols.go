package cache

import (
	"time"

	"currency-convert-service/internal/domain/model"
	"currency-convert-service/internal/domain/ports"
	"currency-convert-service/pkg/logger"
)

// symbolsKey is the only key the symbols cache ever holds.
const symbolsKey = "symbols"

var _ ports.SymbolsCache = (*SymbolsCache)(nil)

// SymbolsCache holds the full supported-currency map in a single slot.
// The supported set changes rarely, so it is usually given a TTL of hours or days.
type SymbolsCache struct {
	cache *ExpiringCache[model.Symbols]
}

func NewSymbolsCache(ttl time.Duration, log *logger.Logger, opts ...Option) *SymbolsCache {
	return &SymbolsCache{
		cache: NewExpiringCache[model.Symbols]("symbols", ttl, log, opts...),
	}
}

func (s *SymbolsCache) GetSupportedSymbols() (model.Symbols, bool) {
	return s.cache.Get(symbolsKey)
}

func (s *SymbolsCache) PutSymbols(symbols model.Symbols) {
	if len(symbols) == 0 {
		return
	}
	s.cache.Put(symbolsKey, symbols)
}
