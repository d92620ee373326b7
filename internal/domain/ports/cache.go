package ports

import (
	"currency-convert-service/internal/domain/model"

	"github.com/shopspring/decimal"
)

type SymbolsCache interface {
	GetSupportedSymbols() (model.Symbols, bool)
	PutSymbols(symbols model.Symbols)
}

type RatesCache interface {
	GetCachedRate(base, target model.Currency) (decimal.Decimal, bool)
	PutRate(base, target model.Currency, rate decimal.Decimal)
}
