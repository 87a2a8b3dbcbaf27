package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"sensor_simulator/internal/uplink"
)

const (
	defaultHTTPTimeout = 10 * time.Second
	maxResponseBytes   = 64 << 10 // 64 KB
)

// HTTPSink posts messages as JSON to a fixed webhook URL.
type HTTPSink struct {
	url    string
	tokens TokenSource
	client *http.Client
}

// NewHTTPSink builds a webhook sink. A nil tokens source sends no Authorization header.
func NewHTTPSink(url string, tokens TokenSource, timeout time.Duration) (*HTTPSink, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, errors.New("delivery: empty webhook url")
	}
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &HTTPSink{
		url:    url,
		tokens: tokens,
		client: &http.Client{Timeout: timeout},
	}, nil
}

func (s *HTTPSink) Name() string { return SinkHTTP }

// Deliver posts msg once. Non-2xx answers return ErrUnexpectedStatus together with
// the populated Result so the caller can log the body.
func (s *HTTPSink) Deliver(ctx context.Context, msg uplink.Message) (Result, error) {
	res := Result{Sink: SinkHTTP}

	body, err := json.Marshal(msg)
	if err != nil {
		return res, fmt.Errorf("marshal uplink: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return res, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.tokens != nil {
		token, err := s.tokens.Token()
		if err != nil {
			return res, fmt.Errorf("issue token: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	res.Latency = time.Since(start)
	if err != nil {
		return res, fmt.Errorf("post %s: %w", s.url, err)
	}
	defer resp.Body.Close()

	res.StatusCode = resp.StatusCode
	res.Body, err = io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return res, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return res, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}
	return res, nil
}

func (s *HTTPSink) Close() error {
	s.client.CloseIdleConnections()
	return nil
}
