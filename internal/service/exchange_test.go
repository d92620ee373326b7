package service

import (
	"context"
	"errors"
	"testing"

	"currency-convert-service/internal/domain/model"
	"currency-convert-service/pkg/logger"

	"github.com/shopspring/decimal"
)

type MockExchangeRateProvider struct {
	ListSupportedCurrenciesFunc func(ctx context.Context) (model.Symbols, error)
	ListExchangeRatesFunc       func(ctx context.Context, base model.Currency) (model.Rates, error)
	ConvertCurrencyFunc         func(ctx context.Context, base, target model.Currency, amount decimal.Decimal) (decimal.Decimal, error)
}

func (m *MockExchangeRateProvider) ListSupportedCurrencies(ctx context.Context) (model.Symbols, error) {
	return m.ListSupportedCurrenciesFunc(ctx)
}

func (m *MockExchangeRateProvider) ListExchangeRates(ctx context.Context, base model.Currency) (model.Rates, error) {
	return m.ListExchangeRatesFunc(ctx, base)
}

func (m *MockExchangeRateProvider) ConvertCurrency(ctx context.Context, base, target model.Currency, amount decimal.Decimal) (decimal.Decimal, error) {
	return m.ConvertCurrencyFunc(ctx, base, target, amount)
}

func supportedSymbols(ctx context.Context) (model.Symbols, error) {
	return testSymbols, nil
}

func TestExchangeService_ListExchangeRates(t *testing.T) {

	log := logger.NewNop()

	testCases := []struct {
		name          string
		base          model.Currency
		mockProvider  MockExchangeRateProvider
		expectedRates model.Rates
		expectedError error
	}{
		{
			name: "Success",
			base: model.USD,
			mockProvider: MockExchangeRateProvider{
				ListSupportedCurrenciesFunc: supportedSymbols,
				ListExchangeRatesFunc: func(ctx context.Context, base model.Currency) (model.Rates, error) {
					return model.Rates{"EUR": decimal.RequireFromString("0.91")}, nil
				},
			},
			expectedRates: model.Rates{"EUR": decimal.RequireFromString("0.91")},
		},
		{
			name: "Error - Unsupported Base",
			base: model.Currency("XYZ"),
			mockProvider: MockExchangeRateProvider{
				ListSupportedCurrenciesFunc: supportedSymbols,
			},
			expectedError: ErrInvalidCurrency,
		},
		{
			name: "Error - Symbols Unavailable",
			base: model.USD,
			mockProvider: MockExchangeRateProvider{
				ListSupportedCurrenciesFunc: func(ctx context.Context) (model.Symbols, error) {
					return nil, ErrExternalAPIFailure
				},
			},
			expectedError: ErrExternalAPIFailure,
		},
		{
			name: "Error - Provider Failure",
			base: model.EUR,
			mockProvider: MockExchangeRateProvider{
				ListSupportedCurrenciesFunc: supportedSymbols,
				ListExchangeRatesFunc: func(ctx context.Context, base model.Currency) (model.Rates, error) {
					return nil, ErrExternalAPIFailure
				},
			},
			expectedError: ErrExternalAPIFailure,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {

			svc := NewExchangeService(&tc.mockProvider, log)

			rates, err := svc.ListExchangeRates(context.Background(), tc.base)

			if (tc.expectedError != nil && err == nil) || (tc.expectedError == nil && err != nil) {
				t.Fatalf("Expected error: %v, got: %v", tc.expectedError, err)
			}

			if tc.expectedError != nil && !errors.Is(err, tc.expectedError) {
				t.Errorf("Expected error to contain: %v, got: %v", tc.expectedError, err)
			}

			if len(rates) != len(tc.expectedRates) {
				t.Fatalf("Expected %d rates, got: %d", len(tc.expectedRates), len(rates))
			}

			for code, want := range tc.expectedRates {
				if got, ok := rates[code]; !ok || !got.Equal(want) {
					t.Errorf("Expected rate for %s: %s, got: %s", code, want, got)
				}
			}
		})
	}
}

func TestExchangeService_ConvertCurrency(t *testing.T) {

	log := logger.NewNop()

	testCases := []struct {
		name           string
		request        model.ConversionRequest
		mockProvider   MockExchangeRateProvider
		expectedResult decimal.Decimal
		expectedError  error
	}{
		{
			name: "Success",
			request: model.ConversionRequest{
				FromCurrency: model.USD,
				ToCurrency:   model.EUR,
				Amount:       decimal.NewFromInt(100),
			},
			mockProvider: MockExchangeRateProvider{
				ListSupportedCurrenciesFunc: supportedSymbols,
				ConvertCurrencyFunc: func(ctx context.Context, base, target model.Currency, amount decimal.Decimal) (decimal.Decimal, error) {
					if base != model.USD || target != model.EUR {
						t.Errorf("unexpected pair %s-%s", base, target)
					}
					return amount.Mul(decimal.RequireFromString("0.91")), nil
				},
			},
			expectedResult: decimal.NewFromInt(91),
		},
		{
			name: "Success - Zero Amount",
			request: model.ConversionRequest{
				FromCurrency: model.USD,
				ToCurrency:   model.EUR,
				Amount:       decimal.Zero,
			},
			mockProvider: MockExchangeRateProvider{
				ListSupportedCurrenciesFunc: supportedSymbols,
				ConvertCurrencyFunc: func(ctx context.Context, base, target model.Currency, amount decimal.Decimal) (decimal.Decimal, error) {
					return decimal.Zero, nil
				},
			},
			expectedResult: decimal.Zero,
		},
		{
			name: "Error - Unsupported Target",
			request: model.ConversionRequest{
				FromCurrency: model.USD,
				ToCurrency:   model.Currency("XYZ"),
				Amount:       decimal.NewFromInt(1),
			},
			mockProvider: MockExchangeRateProvider{
				ListSupportedCurrenciesFunc: supportedSymbols,
			},
			expectedError: ErrInvalidCurrency,
		},
		{
			name: "Error - Negative Amount",
			request: model.ConversionRequest{
				FromCurrency: model.USD,
				ToCurrency:   model.EUR,
				Amount:       decimal.NewFromInt(-100),
			},
			mockProvider:  MockExchangeRateProvider{},
			expectedError: ErrInvalidAmount,
		},
		{
			name: "Error - Provider Failure",
			request: model.ConversionRequest{
				FromCurrency: model.USD,
				ToCurrency:   model.EUR,
				Amount:       decimal.NewFromInt(1),
			},
			mockProvider: MockExchangeRateProvider{
				ListSupportedCurrenciesFunc: supportedSymbols,
				ConvertCurrencyFunc: func(ctx context.Context, base, target model.Currency, amount decimal.Decimal) (decimal.Decimal, error) {
					return decimal.Decimal{}, ErrExternalAPIFailure
				},
			},
			expectedError: ErrExternalAPIFailure,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {

			svc := NewExchangeService(&tc.mockProvider, log)

			result, err := svc.ConvertCurrency(context.Background(), tc.request)

			if (tc.expectedError != nil && err == nil) || (tc.expectedError == nil && err != nil) {
				t.Fatalf("Expected error: %v, got: %v", tc.expectedError, err)
			}

			if tc.expectedError != nil {
				if !errors.Is(err, tc.expectedError) {
					t.Errorf("Expected error to contain: %v, got: %v", tc.expectedError, err)
				}
				return
			}

			if !result.Equal(tc.expectedResult) {
				t.Errorf("Expected result: %s, got: %s", tc.expectedResult, result)
			}
		})
	}
}
