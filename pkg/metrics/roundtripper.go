package metrics

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jetstack/tag-search/pkg/cache"
)

// extractDomain extracts the host name from the request URL.
func extractDomain(req *http.Request) string {
	if req.URL == nil {
		return "unknown"
	}
	parsedURL, err := url.Parse(req.URL.String())
	if err != nil {
		return "unknown"
	}
	return parsedURL.Hostname()
}

// instrumentedRoundTripper records the outcome of every request, including
// whether the response came from the on-disk cache.
type instrumentedRoundTripper struct {
	*Metrics
	base http.RoundTripper
}

func (t *instrumentedRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	domain := extractDomain(req)
	startTime := time.Now()

	resp, err := t.base.RoundTrip(req)

	t.clientDuration.WithLabelValues(req.Method, domain).Observe(time.Since(startTime).Seconds())

	if err != nil {
		t.clientRequests.WithLabelValues("error", req.Method, domain, "miss").Inc()
		return nil, err
	}

	hit := "miss"
	if cache.FromCache(resp) {
		hit = "hit"
	}

	t.clientRequests.WithLabelValues(strconv.Itoa(resp.StatusCode), req.Method, domain, hit).Inc()

	return resp, nil
}

// RoundTripper is a transport middleware providing Prometheus
// instrumentation for an HTTP client.
func (m *Metrics) RoundTripper(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}

	return promhttp.InstrumentRoundTripperInFlight(m.clientInFlight,
		&instrumentedRoundTripper{Metrics: m, base: base},
	)
}
