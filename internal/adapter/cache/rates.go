package cache

import (
	"time"

	"currency-convert-service/internal/domain/model"
	"currency-convert-service/internal/domain/ports"
	"currency-convert-service/pkg/logger"

	"github.com/shopspring/decimal"
)

var _ ports.RatesCache = (*RatesCache)(nil)

// RatesCache holds unit rates keyed by the ordered pair (base, target).
// base->target and target->base are unrelated entries.
type RatesCache struct {
	cache *ExpiringCache[decimal.Decimal]
}

func NewRatesCache(ttl time.Duration, log *logger.Logger, opts ...Option) *RatesCache {
	return &RatesCache{
		cache: NewExpiringCache[decimal.Decimal]("rates", ttl, log, opts...),
	}
}

// rateKey concatenates the two codes. This is collision free only because
// ISO 4217 codes are all three letters long; a variable-length scheme would
// need a delimiter.
func rateKey(base, target model.Currency) string {
	return string(base) + string(target)
}

func (r *RatesCache) GetCachedRate(base, target model.Currency) (decimal.Decimal, bool) {
	return r.cache.Get(rateKey(base, target))
}

// PutRate stores the unit rate for base->target. Zero rates are never cached.
func (r *RatesCache) PutRate(base, target model.Currency, rate decimal.Decimal) {
	if base == "" || target == "" || rate.IsZero() {
		return
	}
	r.cache.Put(rateKey(base, target), rate)
}
