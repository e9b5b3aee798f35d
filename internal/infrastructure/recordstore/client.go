package recordstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/pulse-platform/production-service/pkg/errors"
	"github.com/pulse-platform/production-service/pkg/logging"
	"github.com/pulse-platform/production-service/pkg/metrics"
	"github.com/pulse-platform/production-service/pkg/resilience"
)

// Config holds connection settings for the record store API.
type Config struct {
	BaseURL string
	DocID   string
	APIKey  string
	Timeout time.Duration
}

// DefaultConfig returns default record store configuration
func DefaultConfig() Config {
	return Config{
		Timeout: 30 * time.Second,
	}
}

// Record is one stored row: the store-assigned numeric id plus an
// untyped field map.
type Record struct {
	ID     int            `json:"id"`
	Fields map[string]any `json:"fields"`
}

type recordsEnvelope struct {
	Records []Record `json:"records"`
}

type addRecordsRequest struct {
	Records []addRecord `json:"records"`
}

type addRecord struct {
	Fields map[string]any `json:"fields"`
}

type patchRecordsRequest struct {
	Records []patchRecord `json:"records"`
}

type patchRecord struct {
	ID     int            `json:"id"`
	Fields map[string]any `json:"fields"`
}

// Client talks to the record store's table API. Calls go through a
// circuit breaker and transient failures are retried with exponential
// backoff.
type Client struct {
	config     Config
	httpClient *http.Client
	breaker    *resilience.CircuitBreaker
	retry      *resilience.RetryConfig
	metrics    *metrics.Metrics
	logger     *logging.Logger
}

// NewClient creates a new record store Client
func NewClient(config Config, m *metrics.Metrics, logger *logging.Logger) *Client {
	breakerConfig := resilience.DefaultCircuitBreakerConfig("record-store")
	if m != nil {
		breakerConfig.OnStateChange = func(name string, from, to gobreaker.State) {
			m.SetCircuitBreakerState(name, int(to))
			if to == gobreaker.StateOpen {
				m.RecordCircuitBreakerTrip(name)
			}
		}
	}

	retry := resilience.DefaultRetryConfig()
	retry.RetryableErrors = isRetryable

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		breaker: resilience.NewCircuitBreaker(breakerConfig, logger.Logger),
		retry:   retry,
		metrics: m,
		logger:  logger.WithComponent("record_store"),
	}
}

// GetRecords fetches the rows of a table, optionally filtered by
// column values.
func (c *Client) GetRecords(ctx context.Context, table string, filter map[string]any) ([]Record, error) {
	endpoint := c.tableURL(table)
	if len(filter) > 0 {
		encoded, err := encodeFilter(filter)
		if err != nil {
			return nil, fmt.Errorf("failed to encode filter: %w", err)
		}
		endpoint += "?filter=" + url.QueryEscape(encoded)
	}

	body, err := c.do(ctx, table, "get", http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	var envelope recordsEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode records for %s: %w", table, err)
	}
	return envelope.Records, nil
}

// AddRecords inserts rows into a table and returns the assigned ids.
func (c *Client) AddRecords(ctx context.Context, table string, fields []map[string]any) ([]int, error) {
	request := addRecordsRequest{Records: make([]addRecord, 0, len(fields))}
	for _, f := range fields {
		request.Records = append(request.Records, addRecord{Fields: f})
	}

	payload, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to encode records for %s: %w", table, err)
	}

	body, err := c.do(ctx, table, "add", http.MethodPost, c.tableURL(table), payload)
	if err != nil {
		return nil, err
	}

	var envelope recordsEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode insert response for %s: %w", table, err)
	}

	ids := make([]int, 0, len(envelope.Records))
	for _, r := range envelope.Records {
		ids = append(ids, r.ID)
	}
	return ids, nil
}

// PatchRecord updates the given fields of one row.
func (c *Client) PatchRecord(ctx context.Context, table string, recordID int, fields map[string]any) error {
	request := patchRecordsRequest{
		Records: []patchRecord{{ID: recordID, Fields: fields}},
	}

	payload, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("failed to encode patch for %s: %w", table, err)
	}

	_, err = c.do(ctx, table, "patch", http.MethodPatch, c.tableURL(table), payload)
	return err
}

func (c *Client) tableURL(table string) string {
	return fmt.Sprintf("%s/api/docs/%s/tables/%s/records", c.config.BaseURL, c.config.DocID, table)
}

// do executes one API call through the circuit breaker with retries,
// recording duration and outcome.
func (c *Client) do(ctx context.Context, table, operation, method, endpoint string, payload []byte) ([]byte, error) {
	start := time.Now()

	result, err := resilience.RetryWithResult(ctx, c.retry, func() ([]byte, error) {
		if c.breaker.State() == gobreaker.StateOpen {
			return nil, resilience.ErrCircuitOpen
		}
		body, err := c.breaker.Execute(ctx, func() (interface{}, error) {
			return c.doOnce(ctx, method, endpoint, payload)
		})
		if err != nil {
			return nil, err
		}
		return body.([]byte), nil
	})

	duration := time.Since(start)
	success := err == nil
	if c.metrics != nil {
		c.metrics.RecordStoreCall(table, operation, success, duration)
	}
	c.logger.RecordStoreCall(ctx, table, operation, duration, success, -1)

	if err != nil {
		if err == resilience.ErrCircuitOpen {
			return nil, errors.ErrServiceUnavailable("record store")
		}
		return nil, errors.ErrRemoteStore(fmt.Sprintf("%s %s", operation, table), err)
	}
	return result, nil
}

func (c *Client) doOnce(ctx context.Context, method, endpoint string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, &statusError{Status: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

// statusError carries a non-2xx response for retry classification.
type statusError struct {
	Status int
	Body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("record store returned status %d: %s", e.Status, e.Body)
}

// isRetryable treats network failures and 5xx responses as transient.
// Client errors and an open breaker are permanent.
func isRetryable(err error) bool {
	if err == resilience.ErrCircuitOpen {
		return false
	}
	if se, ok := err.(*statusError); ok {
		return se.Status >= 500
	}
	return true
}

// encodeFilter serializes a column filter the way the store expects:
// a JSON object mapping each column to the list of accepted values.
func encodeFilter(filter map[string]any) (string, error) {
	normalized := make(map[string][]any, len(filter))
	for column, value := range filter {
		if list, ok := value.([]any); ok {
			normalized[column] = list
		} else {
			normalized[column] = []any{value}
		}
	}
	encoded, err := json.Marshal(normalized)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}
