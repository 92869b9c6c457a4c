package dockerhub

import (
	"net/http"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/jetstack/tag-search/pkg/api"
	"github.com/jetstack/tag-search/pkg/client/util"
)

type Options struct {
	// URL is the base URL of the Docker Hub API.
	URL string

	Username string
	Password string
	Token    string

	// MaxRPS limits the number of requests per second, 0 is unlimited.
	MaxRPS float64
	Retry  util.RetryPolicy

	Transporter http.RoundTripper
}

type Client struct {
	*retryablehttp.Client
	Options

	log     *logrus.Entry
	limiter *rate.Limiter
}

type AuthRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string `json:"token"`
}

type TagResponse struct {
	Count    int       `json:"count"`
	Next     *string   `json:"next"`
	Previous *string   `json:"previous"`
	Results  []api.Tag `json:"results"`
}
