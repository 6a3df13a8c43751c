package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/saulo-duarte/quizclient/internal/config"
	"github.com/saulo-duarte/quizclient/internal/metrics"
)

// Doer performs a request and decodes the JSON response into out (when non-nil).
type Doer interface {
	Do(ctx context.Context, req Request, out any) error
}

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Send performs req once, attaching bearer when non-empty.
func (c *Client) Send(ctx context.Context, req Request, bearer string, out any) error {
	log := config.WithContext(ctx).WithField("path", req.Path)

	var body io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", req.Path, err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.baseURL+req.Path, body)
	if err != nil {
		return fmt.Errorf("build request %s: %w", req.Path, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		httpReq.Header.Set("Authorization", "Bearer "+bearer)
	}
	if id := config.RequestID(ctx); id != "" {
		httpReq.Header.Set("X-Request-ID", id)
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		metrics.ObserveRequest(req.Method, 0, time.Since(start).Seconds())
		log.WithError(err).Warn("request failed")
		return fmt.Errorf("%w: %s %s: %v", ErrNetwork, req.Method, req.Path, err)
	}
	defer resp.Body.Close()
	metrics.ObserveRequest(req.Method, resp.StatusCode, time.Since(start).Seconds())

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read %s response: %v", ErrNetwork, req.Path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		_ = json.Unmarshal(data, &eb)
		statusErr := &StatusError{Status: resp.StatusCode, Message: eb.message()}
		log.WithField("status", resp.StatusCode).Debug("request rejected")
		return statusErr
	}

	log.WithField("status", resp.StatusCode).Debug("request completed")

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s response: %w", req.Path, err)
	}
	return nil
}

// Anonymous adapts a Client to Doer without any credential.
type Anonymous struct {
	Client *Client
}

func (a Anonymous) Do(ctx context.Context, req Request, out any) error {
	return a.Client.Send(ctx, req, "", out)
}
