package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"currency-convert-service/internal/domain/model"
	"currency-convert-service/internal/domain/ports"
	"currency-convert-service/internal/metrics"
	"currency-convert-service/internal/service"
	"currency-convert-service/pkg/logger"
	"currency-convert-service/pkg/utils"

	"github.com/shopspring/decimal"
)

const internalErrorMessage = "An error occurred in service request. Please contact the administrator!"

type Response struct {
	Success bool   `json:"success"`
	Date    string `json:"date"`
	Message string `json:"message,omitempty"`
}

type SymbolsResponse struct {
	Response
	Currencies model.Symbols `json:"currencies"`
}

type RateListResponse struct {
	Response
	Base  model.Currency `json:"base"`
	Rates model.Rates    `json:"rates"`
}

type ConversionResponse struct {
	Response
	Base   model.Currency  `json:"base"`
	Target model.Currency  `json:"target"`
	Value  decimal.Decimal `json:"value"`
	Result decimal.Decimal `json:"result"`
}

type Handler struct {
	service ports.ExchangeService
	log     *logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewHandler(service ports.ExchangeService, log *logger.Logger, metrics *metrics.Metrics) *Handler {
	return &Handler{
		service: service,
		log:     log,
		metrics: metrics,
		now:     time.Now,
	}
}

func (h *Handler) HelloHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Hello"))
}

func (h *Handler) ListSupportedCurrenciesHandler(w http.ResponseWriter, r *http.Request) {
	h.metrics.SymbolsRequestsTotal.Inc()

	symbols, err := h.service.ListSupportedCurrencies(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.sendJSON(w, http.StatusOK, SymbolsResponse{
		Response:   h.success(""),
		Currencies: symbols,
	})
}

func (h *Handler) ListExchangeRatesHandler(w http.ResponseWriter, r *http.Request) {
	h.metrics.ListRequestsTotal.Inc()

	base, ok := h.currencyParam(w, r, "base", model.DefaultBase)
	if !ok {
		return
	}

	rates, err := h.service.ListExchangeRates(r.Context(), base)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.sendJSON(w, http.StatusOK, RateListResponse{
		Response: h.success("Listing exchange rates against base currency : " + base.String()),
		Base:     base,
		Rates:    rates,
	})
}

func (h *Handler) ConvertCurrencyHandler(w http.ResponseWriter, r *http.Request) {
	h.metrics.ConversionRequestsTotal.Inc()

	base, ok := h.currencyParam(w, r, "base", model.DefaultBase)
	if !ok {
		return
	}

	target, ok := h.currencyParam(w, r, "target", "")
	if !ok {
		return
	}

	value := decimal.NewFromInt(1)
	if valueStr := r.URL.Query().Get("value"); valueStr != "" {
		var err error
		value, err = decimal.NewFromString(valueStr)
		if err != nil {
			h.sendError(w, http.StatusBadRequest, "invalid value parameter: "+valueStr)
			return
		}
	}

	request := model.ConversionRequest{
		FromCurrency: base,
		ToCurrency:   target,
		Amount:       value,
	}

	result, err := h.service.ConvertCurrency(r.Context(), request)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.sendJSON(w, http.StatusOK, ConversionResponse{
		Response: h.success("Converted " + value.String() + " " + base.String() + " to " + target.String()),
		Base:     base,
		Target:   target,
		Value:    value,
		Result:   result,
	})
}

// currencyParam reads a currency code from the query string. An empty
// fallback makes the parameter required.
func (h *Handler) currencyParam(w http.ResponseWriter, r *http.Request, name string, fallback model.Currency) (model.Currency, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		if fallback == "" {
			h.sendError(w, http.StatusBadRequest, "missing required parameter: "+name)
			return "", false
		}
		return fallback, true
	}

	c := model.ParseCurrency(raw)
	if !c.IsWellFormed() {
		h.sendError(w, http.StatusBadRequest, "invalid currency code for "+name+": "+raw)
		return "", false
	}
	return c, true
}

func (h *Handler) success(message string) Response {
	return Response{
		Success: true,
		Date:    utils.FormatDate(h.now()),
		Message: message,
	}
}

func (h *Handler) sendJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.Error("Failed to encode response", "error", err)
	}
}

func (h *Handler) sendError(w http.ResponseWriter, statusCode int, message string) {
	h.sendJSON(w, statusCode, Response{
		Success: false,
		Date:    utils.FormatDate(h.now()),
		Message: message,
	})
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := RequestIDFromContext(r.Context())

	switch {
	case errors.Is(err, service.ErrInvalidCurrency), errors.Is(err, service.ErrInvalidAmount):
		// client errors only get a one-line log
		h.log.Info("A user error occurred in service request", "error", err.Error(), "request_id", requestID)
		h.sendError(w, http.StatusBadRequest, err.Error())
	default:
		h.log.Error("An error occurred in service request", "error", err, "request_id", requestID)
		h.sendError(w, http.StatusInternalServerError, internalErrorMessage)
	}
}
