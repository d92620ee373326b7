package ports

import (
	"context"

	"currency-convert-service/internal/domain/model"

	"github.com/shopspring/decimal"
)

type ExchangeRateProvider interface {
	ListSupportedCurrencies(ctx context.Context) (model.Symbols, error)
	ListExchangeRates(ctx context.Context, base model.Currency) (model.Rates, error)
	ConvertCurrency(ctx context.Context, base, target model.Currency, amount decimal.Decimal) (decimal.Decimal, error)
}

type ExchangeService interface {
	ListSupportedCurrencies(ctx context.Context) (model.Symbols, error)
	ListExchangeRates(ctx context.Context, base model.Currency) (model.Rates, error)
	ConvertCurrency(ctx context.Context, request model.ConversionRequest) (decimal.Decimal, error)
}
