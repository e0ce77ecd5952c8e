package remote

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

	"github.com/cenkalti/backoff/v5"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/pkg/circuitbreaker"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const maxTries = 2

type Options struct {
	BaseURL string
	Token   string
	Timeout time.Duration
	// RetryInterval is the initial backoff before the single retry.
	RetryInterval time.Duration
	HTTPClient    *http.Client
	Logger        *zap.Logger
}

// Client talks to the remote cart and wishlist API. Calls are retried once
// on network or 5xx failures and short-circuited while the breaker is open.
type Client struct {
	baseURL       string
	token         string
	http          *http.Client
	breaker       *gobreaker.CircuitBreaker[[]byte]
	retryInterval time.Duration
	logger        *zap.Logger
}

func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.RetryInterval <= 0 {
		opts.RetryInterval = 200 * time.Millisecond
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   opts.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		token:   opts.Token,
		http:    httpClient,
		breaker: circuitbreaker.New[[]byte](circuitbreaker.Options{
			Name:   "remote-api",
			Logger: opts.Logger,
			IsSuccessful: func(err error) bool {
				return err == nil || !errors.Is(err, domain.ErrNetwork)
			},
		}),
		retryInterval: opts.RetryInterval,
		logger:        opts.Logger,
	}
}

// ForUser scopes calls to one shopper.
func (c *Client) ForUser(userID string) *UserClient {
	return &UserClient{client: c, userID: userID}
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (c *Client) do(ctx context.Context, userID, method, path string, in, out any) error {
	var payload []byte
	if in != nil {
		var err error
		if payload, err = json.Marshal(in); err != nil {
			return fmt.Errorf("marshal %s %s: %w", method, path, err)
		}
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retryInterval

	attempt := 0
	body, err := backoff.Retry(ctx, func() ([]byte, error) {
		attempt++
		body, err := c.breaker.Execute(func() ([]byte, error) {
			return c.roundTrip(ctx, userID, method, path, payload)
		})
		if circuitbreaker.IsOpen(err) {
			return nil, backoff.Permanent(fmt.Errorf("%s %s: %w: %w", method, path, domain.ErrNetwork, err))
		}
		if err != nil && attempt < maxTries {
			c.logger.Debug("remote call failed, retrying",
				zap.String("method", method), zap.String("path", path), zap.Error(err))
		}
		return body, err
	}, backoff.WithBackOff(b), backoff.WithMaxTries(maxTries))
	if err != nil {
		return err
	}

	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) roundTrip(ctx context.Context, userID, method, path string, payload []byte) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w: %w", method, path, domain.ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: read body: %w: %w", method, path, domain.ErrNetwork, err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, nil
	}
	return nil, statusError(method, path, resp.StatusCode, body)
}

// statusError maps a failed response onto the domain errors. Only 5xx and
// 429 are worth retrying.
func statusError(method, path string, status int, body []byte) error {
	msg := http.StatusText(status)
	var eb errorBody
	if json.Unmarshal(body, &eb) == nil {
		if eb.Message != "" {
			msg = eb.Message
		} else if eb.Error != "" {
			msg = eb.Error
		}
	}

	var kind error
	switch {
	case status == http.StatusConflict:
		kind = domain.ErrOutOfStock
	case status == http.StatusNotFound:
		kind = domain.ErrNotFound
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		kind = domain.ErrValidation
	case status == http.StatusTooManyRequests || status >= 500:
		return fmt.Errorf("%s %s: %d %s: %w", method, path, status, msg, domain.ErrNetwork)
	default:
		kind = domain.ErrNetwork
	}
	return backoff.Permanent(fmt.Errorf("%s %s: %d %s: %w", method, path, status, msg, kind))
}
