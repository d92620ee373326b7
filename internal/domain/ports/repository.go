package ports

import (
	"context"

	"currency-convert-service/internal/domain/model"

	"github.com/shopspring/decimal"
)

// RateRepository is the upstream exchange-rate API.
type RateRepository interface {
	FetchSymbols(ctx context.Context) (model.Symbols, error)
	FetchLatestRates(ctx context.Context, base model.Currency) (*model.RateList, error)
	FetchConversion(ctx context.Context, pair model.CurrencyPair, amount decimal.Decimal) (*model.Conversion, error)
}
