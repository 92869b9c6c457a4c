package cache

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gregjones/httpcache"
	"github.com/gregjones/httpcache/diskcache"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultTTL is how long a registry response is served from disk.
	DefaultTTL = 24 * time.Hour

	dirName = "tag-search"
)

// Options configure the on-disk response cache.
type Options struct {
	Dir      string
	TTL      time.Duration
	Disabled bool
}

// DefaultDir returns the per-user cache directory for responses.
func DefaultDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), dirName)
	}

	return filepath.Join(dir, dirName)
}

// NewTransport returns a RoundTripper that serves successful GET responses
// from disk for opts.TTL, regardless of the caching headers sent upstream.
// Requests pass straight to base when the cache is disabled.
func NewTransport(log *logrus.Entry, opts Options, base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}

	log = log.WithField("module", "cache")
	if opts.Disabled || opts.TTL <= 0 {
		log.Debug("response cache disabled")
		return base
	}

	if len(opts.Dir) == 0 {
		opts.Dir = DefaultDir()
	}

	log.WithField("dir", opts.Dir).WithField("ttl", opts.TTL).Debug("using response cache")

	t := httpcache.NewTransport(diskcache.New(opts.Dir))
	t.Transport = &freshness{
		base: base,
		ttl:  opts.TTL,
		now:  time.Now,
	}

	return t
}

// FromCache reports whether resp was served from the response cache.
func FromCache(resp *http.Response) bool {
	return resp != nil && len(resp.Header.Get(httpcache.XFromCache)) > 0
}

// freshness rewrites the caching headers of upstream responses so that the
// cache above it stores 200 responses for a fixed ttl, and nothing else.
type freshness struct {
	base http.RoundTripper
	ttl  time.Duration
	now  func() time.Time
}

func (f *freshness) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := f.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if resp.Header == nil {
		resp.Header = make(http.Header)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Header.Set("Cache-Control", "no-store")
		return resp, nil
	}

	resp.Header.Set("Cache-Control", fmt.Sprintf("max-age=%d", int64(f.ttl/time.Second)))
	resp.Header.Del("Expires")
	resp.Header.Del("Pragma")
	if len(resp.Header.Get("Date")) == 0 {
		resp.Header.Set("Date", f.now().UTC().Format(http.TimeFormat))
	}

	return resp, nil
}
