package util

import (
	"context"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// DefaultRetryPolicy makes three attempts, one second apart.
var DefaultRetryPolicy = RetryPolicy{
	Attempts: 3,
	Wait:     time.Second,
}

// RetryPolicy bounds how many times a request is attempted and how long to
// wait between attempts.
type RetryPolicy struct {
	Attempts int
	Wait     time.Duration
}

// Apply configures client to follow the policy. Only transport errors are
// retried, a response of any status is handed back to the caller.
func (p RetryPolicy) Apply(client *retryablehttp.Client) {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	client.RetryMax = attempts - 1
	client.RetryWaitMin = p.Wait
	client.RetryWaitMax = p.Wait
	client.Backoff = ConstantBackOff
	client.CheckRetry = RetryTransportErrors
}

// ConstantBackOff always sleeps for min, ignoring the attempt number and any
// Retry-After header.
func ConstantBackOff(min, _ time.Duration, _ int, _ *http.Response) time.Duration {
	if min < 0 {
		return 0
	}

	return min
}

// RetryTransportErrors is a retryablehttp.CheckRetry that retries requests
// which failed before a response was received.
func RetryTransportErrors(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	if err == nil {
		return false, nil
	}

	// Defer to the default policy so redirect loops, bad schemes and
	// certificate errors are not retried.
	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}
