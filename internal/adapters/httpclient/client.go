package httpclient

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bnema/campaign-checkin-cli/internal/retry"
	"github.com/go-resty/resty/v2"
)

const (
	defaultTimeout   = 30 * time.Second
	maxErrorBodySize = 512
)

type Options struct {
	Timeout time.Duration
	// Proxy is an http, https or socks5 URL; empty means direct.
	Proxy string
}

// New builds the process-wide client. It is created once at startup and
// shared by every adapter that talks to the network.
func New(opts Options) (*resty.Client, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := resty.New().SetTimeout(timeout)
	if opts.Proxy != "" {
		if err := ValidateProxy(opts.Proxy); err != nil {
			return nil, err
		}
		client.SetProxy(opts.Proxy)
	}

	return client, nil
}

// StatusError is a non-2xx response. It matches retry.ErrRateLimited for 429.
type StatusError struct {
	Operation  string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: status %d", e.Operation, e.StatusCode)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Operation, e.StatusCode, e.Body)
}

func (e *StatusError) Is(target error) bool {
	return target == retry.ErrRateLimited && e.StatusCode == http.StatusTooManyRequests
}

// CheckResponse returns a *StatusError unless resp is 2xx.
func CheckResponse(operation string, resp *resty.Response) error {
	if resp == nil {
		return fmt.Errorf("%s: empty response", operation)
	}

	code := resp.StatusCode()
	if code >= http.StatusOK && code < http.StatusMultipleChoices {
		return nil
	}

	return &StatusError{
		Operation:  operation,
		StatusCode: code,
		Body:       truncate(strings.TrimSpace(resp.String()), maxErrorBodySize),
	}
}

// AsStatusError unwraps err into a *StatusError when it holds one.
func AsStatusError(err error) (*StatusError, bool) {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr, true
	}
	return nil, false
}

func truncate(value string, limit int) string {
	if len(value) <= limit {
		return value
	}
	return value[:limit] + "..."
}
