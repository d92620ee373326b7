package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"currency-convert-service/internal/config"
	"currency-convert-service/internal/domain/model"
	"currency-convert-service/internal/domain/ports"
	"currency-convert-service/internal/metrics"
	"currency-convert-service/internal/telemetry"
	"currency-convert-service/pkg/logger"

	"github.com/rs/dnscache"
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	accessKeyParam = "access_key"

	resourceSymbols = "symbols"
	resourceLatest  = "latest"
	resourceConvert = "convert"

	maxBodyBytes = 1 << 20
)

var (
	ErrUpstreamTransport = errors.New("upstream transport failure")
	ErrUpstreamRejected  = errors.New("upstream rejected request")
	ErrResponseParse     = errors.New("unexpected upstream response")
)

// UpstreamError is a success=false envelope. Info carries the upstream's
// diagnostic text.
type UpstreamError struct {
	Code int
	Type string
	Info string
}

func (e *UpstreamError) Error() string {
	if e.Info == "" && e.Type == "" {
		return "upstream reported failure"
	}
	if e.Info == "" {
		return fmt.Sprintf("upstream reported failure: %d %s", e.Code, e.Type)
	}
	return fmt.Sprintf("upstream reported failure: %d %s: %s", e.Code, e.Type, e.Info)
}

func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstreamRejected
}

var _ ports.RateRepository = (*ExchangeAPI)(nil)

// ExchangeAPI talks to an exchangeratesapi.io style API. Every call is a
// single GET with no retries.
type ExchangeAPI struct {
	symbolsURL *url.URL
	latestURL  *url.URL
	convertURL *url.URL
	accessKey  string
	httpClient *http.Client
	metrics    *metrics.Metrics
	tracer     trace.Tracer
	log        *logger.Logger
}

type symbolsResponse struct {
	Symbols map[string]string `json:"symbols"`
}

type latestResponse struct {
	Base  string                     `json:"base"`
	Date  string                     `json:"date"`
	Rates map[string]decimal.Decimal `json:"rates"`
}

type convertResponse struct {
	Info struct {
		Rate *decimal.Decimal `json:"rate"`
	} `json:"info"`
	Result *decimal.Decimal `json:"result"`
}

// NewExchangeAPI resolves the three resource URLs against cfg.BaseURL. When
// resolver is non-nil, upstream host lookups go through it.
func NewExchangeAPI(cfg config.ExchangeAPIConfig, resolver *dnscache.Resolver, m *metrics.Metrics, log *logger.Logger) (*ExchangeAPI, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	resolve := func(path string) (*url.URL, error) {
		ref, err := url.Parse(path)
		if err != nil {
			return nil, fmt.Errorf("parse resource path %q: %w", path, err)
		}
		return base.ResolveReference(ref), nil
	}

	e := &ExchangeAPI{
		accessKey: cfg.AccessKey,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: newTransport(resolver),
		},
		metrics: m,
		tracer:  telemetry.Tracer("currency-convert-service/exchangeapi"),
		log:     log,
	}

	if e.symbolsURL, err = resolve(cfg.SymbolsPath); err != nil {
		return nil, err
	}
	if e.latestURL, err = resolve(cfg.LatestPath); err != nil {
		return nil, err
	}
	if e.convertURL, err = resolve(cfg.ConvertPath); err != nil {
		return nil, err
	}

	return e, nil
}

func newTransport(resolver *dnscache.Resolver) *http.Transport {
	t := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConnsPerHost: 100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	if resolver != nil {
		t.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
			host, port, err := net.SplitHostPort(addr)
			if err != nil {
				return nil, err
			}
			ips, err := resolver.LookupHost(ctx, host)
			if err != nil {
				return nil, err
			}
			var d net.Dialer
			return d.DialContext(ctx, network, net.JoinHostPort(ips[0], port))
		}
	}
	return t
}

func (e *ExchangeAPI) FetchSymbols(ctx context.Context) (model.Symbols, error) {
	body, err := e.get(ctx, resourceSymbols, e.symbolsURL, nil)
	if err != nil {
		return nil, err
	}

	var resp symbolsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode symbols: %v", ErrResponseParse, err)
	}
	if len(resp.Symbols) == 0 {
		return nil, fmt.Errorf("%w: symbols response has no symbols", ErrResponseParse)
	}

	return model.Symbols(resp.Symbols), nil
}

func (e *ExchangeAPI) FetchLatestRates(ctx context.Context, base model.Currency) (*model.RateList, error) {
	params := url.Values{}
	params.Set("base", base.String())

	body, err := e.get(ctx, resourceLatest, e.latestURL, params)
	if err != nil {
		return nil, err
	}

	var resp latestResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode latest rates: %v", ErrResponseParse, err)
	}
	if resp.Rates == nil {
		return nil, fmt.Errorf("%w: latest response has no rates", ErrResponseParse)
	}

	return &model.RateList{
		Base:  model.Currency(resp.Base),
		Date:  resp.Date,
		Rates: model.Rates(resp.Rates),
	}, nil
}

func (e *ExchangeAPI) FetchConversion(ctx context.Context, pair model.CurrencyPair, amount decimal.Decimal) (*model.Conversion, error) {
	params := url.Values{}
	params.Set("from", pair.BaseCurrency.String())
	params.Set("to", pair.TargetCurrency.String())
	params.Set("amount", amount.String())

	body, err := e.get(ctx, resourceConvert, e.convertURL, params)
	if err != nil {
		return nil, err
	}

	var resp convertResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode conversion: %v", ErrResponseParse, err)
	}
	if resp.Result == nil || resp.Info.Rate == nil {
		return nil, fmt.Errorf("%w: conversion response lacks result or rate", ErrResponseParse)
	}

	return &model.Conversion{
		Result: *resp.Result,
		Rate:   *resp.Info.Rate,
	}, nil
}

// get issues one GET against resource and returns the body once the
// envelope has been checked for success=true.
func (e *ExchangeAPI) get(ctx context.Context, resource string, endpoint *url.URL, params url.Values) (body []byte, err error) {
	ctx, span := e.tracer.Start(ctx, "exchangeapi."+resource,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("exchangeapi.resource", resource)),
	)
	start := time.Now()
	defer func() {
		e.observe(resource, start, err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	u := *endpoint
	query := u.Query()
	for k, vs := range params {
		for _, v := range vs {
			query.Add(k, v)
		}
	}
	if e.accessKey != "" {
		query.Set(accessKeyParam, e.accessKey)
	}
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		// The URL carries the access key; never put it in the error text.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrUpstreamTransport, resource, err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	body, err = io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: read body: %v", ErrUpstreamTransport, resource, err)
	}

	if err := checkEnvelope(body, resp.StatusCode); err != nil {
		e.log.Error("Upstream request failed", "resource", resource, "status", resp.StatusCode, "error", err)
		return nil, err
	}

	return body, nil
}

// checkEnvelope applies the success flag first: success=false is a rejection
// whatever the status code.
func checkEnvelope(body []byte, status int) error {
	ok := status >= 200 && status < 300

	if !gjson.ValidBytes(body) {
		if !ok {
			return fmt.Errorf("%w: status %d", ErrUpstreamTransport, status)
		}
		return fmt.Errorf("%w: body is not JSON", ErrResponseParse)
	}

	envelope := gjson.ParseBytes(body)
	success := envelope.Get("success")
	if !success.Exists() {
		if !ok {
			return fmt.Errorf("%w: status %d", ErrUpstreamTransport, status)
		}
		return fmt.Errorf("%w: missing success flag", ErrResponseParse)
	}

	if !success.Bool() {
		return &UpstreamError{
			Code: int(envelope.Get("error.code").Int()),
			Type: envelope.Get("error.type").String(),
			Info: envelope.Get("error.info").String(),
		}
	}

	if !ok {
		return fmt.Errorf("%w: status %d", ErrUpstreamTransport, status)
	}
	return nil
}

func (e *ExchangeAPI) observe(resource string, start time.Time, err error) {
	if e.metrics == nil {
		return
	}

	outcome := metrics.OutcomeSuccess
	switch {
	case errors.Is(err, ErrUpstreamRejected):
		outcome = metrics.OutcomeRejected
	case err != nil:
		outcome = metrics.OutcomeError
	}

	e.metrics.UpstreamCallsTotal.WithLabelValues(resource, outcome).Inc()
	e.metrics.UpstreamCallDuration.WithLabelValues(resource).Observe(time.Since(start).Seconds())
}
