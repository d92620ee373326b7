package service

import "errors"

var (
	ErrInvalidCurrency    = errors.New("invalid currency")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrExternalAPIFailure = errors.New("external API failure")
)
