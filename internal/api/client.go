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

	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	defaultBaseURL = "http://localhost:5000/api"
	defaultTimeout = 30 * time.Second
)

// TokenSource yields the current auth token, empty when signed out.
type TokenSource interface {
	Token() string
}

type Config struct {
	BaseURL string
	Timeout time.Duration
	Session TokenSource
}

// Client is the gateway client. It attaches the Bearer token from the
// session, runs every exchange through a circuit breaker, and converts non-2xx
// responses into *Error values carrying the server message.
type Client struct {
	baseURL  string
	http     *http.Client
	session  TokenSource
	breaker  *gobreaker.CircuitBreaker[[]byte]
	validate *validatorv10.Validate
}

func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:    "api-gateway",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			// 4xx is the caller's problem, not gateway health
			apiErr, ok := err.(*Error)
			return ok && apiErr.Status < http.StatusInternalServerError
		},
	})

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		session:  cfg.Session,
		breaker:  breaker,
		validate: validatorv10.New(),
	}
}

// doJSON issues one request and decodes the response body into out when out
// is non-nil. Failures always come back as *Error or a wrapped transport
// error, never as a panic or partial decode.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	respBody, err := c.breaker.Execute(func() ([]byte, error) {
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("gateway request: %w", err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read response: %w", err)
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			apiErr := &Error{Status: resp.StatusCode}
			var msg struct {
				Message string `json:"message"`
			}
			if jsonErr := json.Unmarshal(data, &msg); jsonErr == nil {
				apiErr.Message = msg.Message
			}
			return nil, apiErr
		}
		return data, nil
	})
	if err != nil {
		return err
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
