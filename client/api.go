// Package client provides HTTP clients for the Pacifica API.
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/dwdwow/pacifica-go/constants"
	"github.com/dwdwow/pacifica-go/signing"
)

const maxGetRetries = 3

// API is the HTTP transport shared by Exchange and Info.
type API struct {
	baseURL    string
	httpClient *http.Client
	signer     *signing.Signer
	logger     *zap.Logger
}

// NewAPI creates an API transport. A nil signer yields a read-only
// transport; a nil logger keeps it silent.
func NewAPI(baseURL string, signer *signing.Signer, logger *zap.Logger) *API {
	if baseURL == "" {
		baseURL = constants.MainnetAPIURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &API{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: constants.DefaultTimeout},
		signer:     signer,
		logger:     logger,
	}
}

// Signer returns the transport's signer, nil for read-only transports.
func (a *API) Signer() *signing.Signer {
	return a.signer
}

// apiEnvelope is the common response wrapper.
type apiEnvelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Msg     string          `json:"msg"`
}

// Get performs a GET request and returns the data payload. Transport
// errors and 5xx responses are retried with exponential backoff since
// reads are idempotent.
func (a *API) Get(ctx context.Context, path string, params map[string]string) (json.RawMessage, error) {
	u := a.baseURL + path
	if len(params) > 0 {
		q := url.Values{}
		for k, v := range params {
			q.Set(k, v)
		}
		u += "?" + q.Encode()
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 200 * time.Millisecond

	var lastErr error
	for attempt := 0; attempt < maxGetRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(bo.NextBackOff()):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		a.logger.Debug("get", zap.String("path", path), zap.Int("attempt", attempt))

		resp, err := a.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("get %s: %w", path, err)
			a.logger.Warn("get failed", zap.String("path", path), zap.Error(err))
			continue
		}
		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			lastErr = fmt.Errorf("read response: %w", readErr)
			continue
		}
		if resp.StatusCode >= 500 {
			lastErr = &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body)), Response: body}
			a.logger.Warn("get server error", zap.String("path", path), zap.Int("status", resp.StatusCode))
			continue
		}
		return a.decode(resp.StatusCode, body, params["account"])
	}
	return nil, lastErr
}

// Post performs a POST request with a JSON body and returns the data
// payload. Writes are never retried.
func (a *API) Post(ctx context.Context, path string, body any, headers map[string]string) (json.RawMessage, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	a.logger.Debug("post", zap.String("path", path))

	resp, err := a.httpClient.Do(req)
	if err != nil {
		a.logger.Error("post failed", zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return a.decode(resp.StatusCode, raw, "")
}

// decode maps a raw HTTP response onto the error taxonomy and unwraps the
// data payload.
func (a *API) decode(status int, body []byte, account string) (json.RawMessage, error) {
	if status == http.StatusNotFound && account != "" {
		return nil, &AccountNotFoundError{Account: account}
	}
	if status == http.StatusForbidden && strings.Contains(strings.ToLower(string(body)), "beta") {
		return nil, &AccessRestrictedError{Message: strings.TrimSpace(string(body))}
	}

	var env apiEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		if status >= 400 {
			return nil, &APIError{StatusCode: status, Message: strings.TrimSpace(string(body)), Response: body}
		}
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if status >= 400 || (env.Success != nil && !*env.Success) {
		msg := env.Error
		if msg == "" {
			msg = env.Msg
		}
		if msg == "" {
			msg = strings.TrimSpace(string(body))
		}
		return nil, &APIError{StatusCode: status, Message: msg, Response: body}
	}
	if env.Data != nil {
		return env.Data, nil
	}
	return body, nil
}
