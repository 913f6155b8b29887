package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// HTTPError is a non-2xx response. Its message is the response body text.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	if msg := strings.TrimSpace(e.Body); msg != "" {
		return msg
	}
	return http.StatusText(e.Status)
}

func isUnauthorized(err error) bool {
	var he *HTTPError
	return errors.As(err, &he) && he.Status == http.StatusUnauthorized
}

func isNotFound(err error) bool {
	var he *HTTPError
	return errors.As(err, &he) && he.Status == http.StatusNotFound
}

// Helper methods for HTTP requests. A 401 triggers one token refresh and a retry.
func (c *APIClient) get(ctx context.Context, path string) ([]byte, error) {
	return c.send(ctx, http.MethodGet, path, nil)
}

func (c *APIClient) post(ctx context.Context, path string, data any) ([]byte, error) {
	return c.send(ctx, http.MethodPost, path, data)
}

func (c *APIClient) delete(ctx context.Context, path string) ([]byte, error) {
	return c.send(ctx, http.MethodDelete, path, nil)
}

func (c *APIClient) send(ctx context.Context, method, path string, data any) ([]byte, error) {
	var payload []byte
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		payload = b
	}

	body, err := c.doRequest(ctx, method, path, payload)
	if isUnauthorized(err) {
		if _, refresh := c.tokens(); refresh != "" {
			rerr := c.refreshTokens(ctx)
			if rerr == nil {
				return c.doRequest(ctx, method, path, payload)
			}
			c.log.Debug("token refresh failed", zap.Error(rerr))
		}
	}
	return body, err
}

func (c *APIClient) doRequest(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if access, _ := c.tokens(); access != "" {
		req.Header.Set("Authorization", "Bearer "+access)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPError{Status: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

func decode[T any](body []byte) (T, error) {
	var out T
	if len(body) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return out, fmt.Errorf("unmarshal response: %w", err)
	}
	return out, nil
}
