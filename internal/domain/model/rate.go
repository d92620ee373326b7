package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type CurrencyPair struct {
	BaseCurrency   Currency `json:"base_currency"`
	TargetCurrency Currency `json:"target_currency"`
}

func (p CurrencyPair) String() string {
	return fmt.Sprintf("%s-%s", p.BaseCurrency, p.TargetCurrency)
}

// Rates maps target codes to the value of one unit of the base currency.
type Rates map[string]decimal.Decimal

type RateList struct {
	Base  Currency `json:"base"`
	Date  string   `json:"date,omitempty"`
	Rates Rates    `json:"rates"`
}

type ConversionRequest struct {
	FromCurrency Currency        `json:"from_currency"`
	ToCurrency   Currency        `json:"to_currency"`
	Amount       decimal.Decimal `json:"amount"`
}

func (r ConversionRequest) Pair() CurrencyPair {
	return CurrencyPair{BaseCurrency: r.FromCurrency, TargetCurrency: r.ToCurrency}
}

// Conversion is an upstream conversion: Result is Amount already scaled by
// Rate, Rate is the unit rate.
type Conversion struct {
	Result decimal.Decimal
	Rate   decimal.Decimal
}
