package util

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testURL = "https://hub.docker.com/v2/repositories/library/nginx/tags?page=1&page_size=100"

func TestConstantBackOff(t *testing.T) {
	tests := map[string]struct {
		min, max   time.Duration
		attemptNum int
		resp       *http.Response
		expSleep   time.Duration
	}{
		"first attempt sleeps min": {
			min:        time.Second,
			max:        time.Minute,
			attemptNum: 1,
			expSleep:   time.Second,
		},
		"later attempts do not grow": {
			min:        time.Second,
			max:        time.Minute,
			attemptNum: 10,
			expSleep:   time.Second,
		},
		"retry-after header is ignored": {
			min:        time.Second,
			max:        time.Second,
			attemptNum: 2,
			resp: &http.Response{
				StatusCode: http.StatusTooManyRequests,
				Header:     http.Header{"Retry-After": []string{"3600"}},
			},
			expSleep: time.Second,
		},
		"negative min does not sleep": {
			min:      -time.Second,
			expSleep: 0,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.expSleep, ConstantBackOff(test.min, test.max, test.attemptNum, test.resp))
		})
	}
}

func TestRetryTransportErrors(t *testing.T) {
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := map[string]struct {
		ctx      context.Context
		resp     *http.Response
		err      error
		expRetry bool
		expErr   bool
	}{
		"successful response is not retried": {
			ctx:      context.Background(),
			resp:     &http.Response{StatusCode: http.StatusOK},
			expRetry: false,
		},
		"server error is not retried": {
			ctx:      context.Background(),
			resp:     &http.Response{StatusCode: http.StatusInternalServerError},
			expRetry: false,
		},
		"not found is not retried": {
			ctx:      context.Background(),
			resp:     &http.Response{StatusCode: http.StatusNotFound},
			expRetry: false,
		},
		"transport error is retried": {
			ctx:      context.Background(),
			err:      errors.New("connection reset by peer"),
			expRetry: true,
		},
		"cancelled context stops retrying": {
			ctx:      cancelled,
			err:      errors.New("connection reset by peer"),
			expRetry: false,
			expErr:   true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			retry, err := RetryTransportErrors(test.ctx, test.resp, test.err)
			assert.Equal(t, test.expRetry, retry)
			if test.expErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRetryPolicyApply(t *testing.T) {
	tests := map[string]struct {
		policy      RetryPolicy
		responder   httpmock.Responder
		expStatus   int
		expErr      bool
		expAttempts int
	}{
		"transport error then success": {
			policy: RetryPolicy{Attempts: 3, Wait: time.Millisecond},
			responder: httpmock.NewErrorResponder(errors.New("connection refused")).
				Then(httpmock.NewStringResponder(http.StatusOK, "{}")),
			expStatus:   http.StatusOK,
			expAttempts: 2,
		},
		"server error is returned without retrying": {
			policy:      RetryPolicy{Attempts: 3, Wait: time.Millisecond},
			responder:   httpmock.NewStringResponder(http.StatusServiceUnavailable, ""),
			expStatus:   http.StatusServiceUnavailable,
			expAttempts: 1,
		},
		"gives up after every attempt failed": {
			policy:      RetryPolicy{Attempts: 3, Wait: time.Millisecond},
			responder:   httpmock.NewErrorResponder(errors.New("connection refused")),
			expErr:      true,
			expAttempts: 3,
		},
		"zero attempts still tries once": {
			policy:      RetryPolicy{Attempts: 0, Wait: time.Millisecond},
			responder:   httpmock.NewErrorResponder(errors.New("connection refused")),
			expErr:      true,
			expAttempts: 1,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			mock := httpmock.NewMockTransport()
			mock.RegisterResponder(http.MethodGet, testURL, test.responder)

			client := retryablehttp.NewClient()
			client.Logger = nil
			client.HTTPClient.Transport = mock
			test.policy.Apply(client)

			resp, err := client.Get(testURL)
			if test.expErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				defer resp.Body.Close()
				assert.Equal(t, test.expStatus, resp.StatusCode)
			}
			assert.Equal(t, test.expAttempts, mock.GetTotalCallCount())
		})
	}
}
