// Package transport is the bounded-timeout HTTP layer shared by the RPC
// client and the signature registry client. Every call gets its own
// cancellable deadline; when it fires the in-flight request is aborted and
// its connection released.
package transport

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/AvaProtocol/txdecode/model"
	"github.com/AvaProtocol/txdecode/pkg/logger"
	"github.com/AvaProtocol/txdecode/version"
)

const DefaultTimeout = 5 * time.Second

type Client struct {
	httpClient *resty.Client
	timeout    time.Duration
	logger     logger.Logger
}

func New(timeout time.Duration, log logger.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	log = logger.EnsureLogger(log)

	client := resty.New()
	client.SetHeader("User-Agent", version.UserAgent())
	client.SetHeader("Accept", "application/json")
	client.SetLogger(log)

	return &Client{
		httpClient: client,
		timeout:    timeout,
		logger:     log,
	}
}

func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// PostJSON sends body as JSON and returns the raw response body.
func (c *Client) PostJSON(ctx context.Context, url string, body interface{}) ([]byte, error) {
	return c.do(ctx, func(r *resty.Request) (*resty.Response, error) {
		return r.SetHeader("Content-Type", "application/json").
			SetBody(body).
			Post(url)
	})
}

// Get issues a GET with the given query parameters.
func (c *Client) Get(ctx context.Context, url string, query map[string]string) ([]byte, error) {
	return c.do(ctx, func(r *resty.Request) (*resty.Response, error) {
		return r.SetQueryParams(query).Get(url)
	})
}

func (c *Client) do(ctx context.Context, send func(*resty.Request) (*resty.Response, error)) ([]byte, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := send(c.httpClient.R().SetContext(callCtx))
	if err != nil {
		return nil, classify(callCtx, err, c.timeout)
	}

	if !resp.IsSuccess() {
		return nil, model.NewError(model.TransportError, nil, "http error: %d %s", resp.StatusCode(), resp.Request.URL)
	}

	return resp.Body(), nil
}

func classify(ctx context.Context, err error, timeout time.Duration) *model.Error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return model.NewError(model.TimeoutError, err, "no response within %s", timeout)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return model.NewError(model.TimeoutError, err, "no response within %s", timeout)
	}

	if errors.Is(err, context.Canceled) {
		return model.NewError(model.TransportError, err, "request cancelled")
	}

	return model.NewError(model.TransportError, err, "request failed")
}
