package cache

import (
	"testing"
	"time"

	"currency-convert-service/internal/domain/model"
	"currency-convert-service/pkg/logger"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRatesCache_PairsAreIndependent(t *testing.T) {
	clock := newFakeClock()
	c := NewRatesCache(time.Minute, logger.NewNop(), WithClock(clock.Now))

	c.PutRate(model.USD, model.EUR, decimal.RequireFromString("0.91"))

	rate, found := c.GetCachedRate(model.USD, model.EUR)
	require.True(t, found)
	assert.Equal(t, "0.91", rate.String())

	_, found = c.GetCachedRate(model.EUR, model.USD)
	assert.False(t, found, "reverse pair must not be derived")

	clock.Advance(30 * time.Second)
	c.PutRate(model.EUR, model.USD, decimal.RequireFromString("1.0989"))

	clock.Advance(30 * time.Second)
	_, found = c.GetCachedRate(model.USD, model.EUR)
	assert.False(t, found)

	rate, found = c.GetCachedRate(model.EUR, model.USD)
	require.True(t, found, "reverse pair keeps its own lifetime")
	assert.Equal(t, "1.0989", rate.String())
}

func TestRatesCache_Key(t *testing.T) {
	assert.Equal(t, "USDEUR", rateKey(model.USD, model.EUR))
	assert.NotEqual(t, rateKey(model.USD, model.EUR), rateKey(model.EUR, model.USD))
}

func TestRatesCache_IgnoresInvalid(t *testing.T) {
	c := NewRatesCache(time.Minute, logger.NewNop())

	c.PutRate(model.USD, model.EUR, decimal.Zero)
	c.PutRate("", model.EUR, decimal.NewFromInt(1))

	_, found := c.GetCachedRate(model.USD, model.EUR)
	assert.False(t, found)
	assert.Empty(t, c.cache.entries)
}
