// Package client calls a running predict API over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/nimeshabuddhika/upi-fraud-detection/pkg"
	"github.com/nimeshabuddhika/upi-fraud-detection/pkg/views"
	"go.uber.org/zap"
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status int
	pkg.ErrorResponse
}

func (e *APIError) Error() string {
	return fmt.Sprintf("predict api: %d %s: %s", e.Status, e.Code, e.Message)
}

// Temporary reports whether retrying the same request may succeed.
func (e *APIError) Temporary() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= http.StatusInternalServerError
}

type Client struct {
	baseURL string
	http    *http.Client
	cfg     Config
	logger  *zap.Logger
}

// New returns a client for the API rooted at baseURL, e.g. "http://localhost:8080".
func New(baseURL string, logger *zap.Logger, opts ...Option) *Client {
	var cfg Config
	for _, o := range opts {
		o(&cfg)
	}
	cfg.sanitize()
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/") + "/api/v1",
		http:    newHTTPClient(cfg),
		cfg:     cfg,
		logger:  logger,
	}
}

// Predict scores one transaction.
func (c *Client) Predict(ctx context.Context, req views.PredictRequest) (views.PredictResponse, error) {
	var out views.PredictResponse
	body, err := json.Marshal(req)
	if err != nil {
		return out, err
	}
	err = c.do(ctx, "/predict", "application/json", body, &out)
	return out, err
}

// UploadCSV scores a CSV file.
func (c *Client) UploadCSV(ctx context.Context, filename string, data []byte) (views.BatchResult, error) {
	var out views.BatchResult
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return out, err
	}
	if _, err = fw.Write(data); err != nil {
		return out, err
	}
	if err = mw.Close(); err != nil {
		return out, err
	}
	err = c.do(ctx, "/upload_csv", mw.FormDataContentType(), buf.Bytes(), &out)
	return out, err
}

// do posts body and decodes a 200 answer into out. Unavailable and throttled answers
// and transport errors are retried with exponential backoff under one trace id.
func (c *Client) do(ctx context.Context, path, contentType string, body []byte, out interface{}) error {
	traceID := uuid.New().String()
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", contentType)
		req.Header.Set(pkg.HeaderTraceId, traceID)

		resp, err := c.http.Do(req)
		if err != nil {
			c.logger.Warn("predict api unreachable", zap.String(pkg.TraceId, traceID), zap.Error(err))
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			apiErr := &APIError{Status: resp.StatusCode}
			raw, _ := io.ReadAll(resp.Body)
			if json.Unmarshal(raw, &apiErr.ErrorResponse) != nil || apiErr.Code == "" {
				apiErr.Code = http.StatusText(resp.StatusCode)
				apiErr.Message = strings.TrimSpace(string(raw))
			}
			if apiErr.Temporary() {
				c.logger.Warn("predict api busy, retrying",
					zap.String(pkg.TraceId, traceID), zap.Int("status", resp.StatusCode))
				return apiErr
			}
			return backoff.Permanent(apiErr)
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return backoff.Permanent(fmt.Errorf("predict api: decode response: %w", err))
		}
		return nil
	}

	if c.cfg.MaxRetryElapsed < 0 {
		err := operation()
		var perm *backoff.PermanentError
		if errors.As(err, &perm) {
			return perm.Err
		}
		return err
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	b.MaxElapsedTime = c.cfg.MaxRetryElapsed
	return backoff.Retry(operation, backoff.WithContext(b, ctx))
}
