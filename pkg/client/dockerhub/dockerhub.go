package dockerhub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/jetstack/tag-search/pkg/api"
	"github.com/jetstack/tag-search/pkg/cache"
	"github.com/jetstack/tag-search/pkg/client/util"
	apierrors "github.com/jetstack/tag-search/pkg/errors"
	"github.com/jetstack/tag-search/pkg/leveledlogrus"
)

const (
	// DefaultURL is the Docker Hub API endpoint.
	DefaultURL = "https://hub.docker.com"
	// DefaultMaxRPS is the default request rate against the API.
	DefaultMaxRPS = 5

	loginPath = "/v2/users/login/"
	tagsPath  = "/v2/repositories/%s/%s/tags"
	pageSize  = 100
)

var _ api.TagLister = (*Client)(nil)

func New(ctx context.Context, opts Options, log *logrus.Entry) (*Client, error) {
	log = log.WithField("client", "dockerhub")

	if len(opts.URL) == 0 {
		opts.URL = DefaultURL
	}
	if opts.Retry == (util.RetryPolicy{}) {
		opts.Retry = util.DefaultRetryPolicy
	}

	client := retryablehttp.NewClient()
	client.HTTPClient.Transport = opts.Transporter
	client.Logger = leveledlogrus.New(log.WithField("module", "retryablehttp"))
	opts.Retry.Apply(client)

	limit := rate.Inf
	if opts.MaxRPS > 0 {
		limit = rate.Limit(opts.MaxRPS)
	}

	c := &Client{
		Client:  client,
		Options: opts,
		log:     log,
		limiter: rate.NewLimiter(limit, int(math.Max(1, math.Ceil(opts.MaxRPS)))),
	}

	// Setup Auth if username and password used.
	if len(opts.Username) > 0 || len(opts.Password) > 0 {
		if len(opts.Token) > 0 {
			return nil, errors.New("cannot specify a docker token as well as a docker username/password")
		}

		token, err := c.login(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to setup auth: %w", err)
		}
		c.Token = token
	}

	return c, nil
}

// Tags returns every tag of username/image, following the listing's next
// page cursor until it runs out. Any page that cannot be fetched fails the
// whole listing.
func (c *Client) Tags(ctx context.Context, username, image string) ([]api.Tag, error) {
	url := c.tagsURL(username, image)

	var tags []api.Tag
	for len(url) > 0 {
		response := new(TagResponse)
		if err := c.doRequest(ctx, url, response); err != nil {
			return nil, err
		}

		tags = append(tags, response.Results...)

		url = ""
		if response.Next != nil {
			url = *response.Next
		}
	}

	return tags, nil
}

func (c *Client) doRequest(ctx context.Context, url string, obj interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	if len(c.Token) > 0 {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	c.log.Debugf("TRYING TO GET %s", url)

	resp, err := c.Do(req)
	if err != nil {
		return apierrors.NewTransportFailure(fmt.Errorf("failed to get docker image tags: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return apierrors.NewTransportFailure(fmt.Errorf("failed to read response body: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		return apierrors.NewLookupFailure(resp.StatusCode,
			"unexpected status code %d for %s", resp.StatusCode, url)
	}

	if cache.FromCache(resp) {
		c.log.Infof("FROM CACHE %s", url)
	} else {
		c.log.Infof("GET %s", url)
	}

	if err := json.Unmarshal(body, obj); err != nil {
		return fmt.Errorf("unexpected image tags response: %s", body)
	}

	return nil
}
