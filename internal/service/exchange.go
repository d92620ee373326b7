package service

import (
	"context"
	"fmt"

	"currency-convert-service/internal/domain/model"
	"currency-convert-service/internal/domain/ports"
	"currency-convert-service/pkg/logger"

	"github.com/shopspring/decimal"
)

var _ ports.ExchangeService = (*ExchangeService)(nil)

// ExchangeService checks caller input against the supported currency set
// before handing off to the provider.
type ExchangeService struct {
	provider ports.ExchangeRateProvider
	log      *logger.Logger
}

func NewExchangeService(provider ports.ExchangeRateProvider, log *logger.Logger) *ExchangeService {
	return &ExchangeService{
		provider: provider,
		log:      log,
	}
}

func (s *ExchangeService) ListSupportedCurrencies(ctx context.Context) (model.Symbols, error) {
	return s.provider.ListSupportedCurrencies(ctx)
}

func (s *ExchangeService) ListExchangeRates(ctx context.Context, base model.Currency) (model.Rates, error) {
	supported, err := s.provider.ListSupportedCurrencies(ctx)
	if err != nil {
		return nil, err
	}

	if !supported.Supports(base) {
		s.log.Info("Rejected unsupported base currency", "base", base.String())
		return nil, fmt.Errorf("%w: the provided base currency is not supported. Base currency : %s. "+
			"Please refer to the /symbols endpoint for supported currencies!", ErrInvalidCurrency, base)
	}

	return s.provider.ListExchangeRates(ctx, base)
}

func (s *ExchangeService) ConvertCurrency(ctx context.Context, request model.ConversionRequest) (decimal.Decimal, error) {
	if request.Amount.IsNegative() {
		s.log.Info("Rejected negative amount", "amount", request.Amount.String())
		return decimal.Decimal{}, fmt.Errorf("%w: amount must not be negative", ErrInvalidAmount)
	}

	supported, err := s.provider.ListSupportedCurrencies(ctx)
	if err != nil {
		return decimal.Decimal{}, err
	}

	if !supported.Supports(request.FromCurrency) || !supported.Supports(request.ToCurrency) {
		s.log.Info("Rejected unsupported currency pair", "pair", request.Pair().String())
		return decimal.Decimal{}, fmt.Errorf("%w: the conversion of the provided currencies is not supported. "+
			"Source : %s Target : %s. Please refer to the /symbols endpoint for supported currencies!",
			ErrInvalidCurrency, request.FromCurrency, request.ToCurrency)
	}

	return s.provider.ConvertCurrency(ctx, request.FromCurrency, request.ToCurrency, request.Amount)
}
