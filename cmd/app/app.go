package app

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/transport"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jetstack/tag-search/pkg/cache"
	"github.com/jetstack/tag-search/pkg/client/dockerhub"
	"github.com/jetstack/tag-search/pkg/metrics"
	"github.com/jetstack/tag-search/pkg/output"
	"github.com/jetstack/tag-search/pkg/search"
)

const (
	helpOutput = "Search the tags of a Docker Hub image by name, platform, push date and size."

	userAgent       = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/106.0.0.0 Safari/537.36"
	dockerAPIClient = "docker-hub/1925.0.0"

	examples = `
Examples:
  tag-search mysql
  tag-search mysql --after 2016 --before 2017
  tag-search nginx --after 2021 --operating-system linux --below 10M --architecture amd64
  tag-search nginx -r '1\.2[0-3].*alpine.*perl.*'
  tag-search httpd -n '*alpine*' --architecture '*arm64*'
  tag-search python -s -r "3\.[67].*alpine.*" --architecture amd64
  tag-search python -r "3\.(?:[89]|10).*alpine.*" --format json --architecture amd64 --operating-system linux | jq '.[].name'
`
)

func NewCommand(ctx context.Context) *cobra.Command {
	opts := new(Options)

	cmd := &cobra.Command{
		Use:           "tag-search IMAGE",
		Short:         helpOutput,
		Long:          helpOutput,
		Example:       examples,
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.complete()

			if err := opts.validate(args[0]); err != nil {
				return err
			}

			// Keep stdout clean for machine readable output.
			logOut := cmd.OutOrStdout()
			if opts.format.Machine() {
				logOut = cmd.ErrOrStderr()
			}

			log := newLogger(logConfig{
				Verbose: opts.Verbose,
				Quiet:   opts.Quiet,
				Output:  logOut,
			})

			return run(ctx, log, opts, cmd.OutOrStdout())
		},
	}

	opts.addFlags(cmd)

	return cmd
}

func run(ctx context.Context, log *logrus.Entry, opts *Options, out io.Writer) error {
	metrics := metrics.New(log, prometheus.NewRegistry())
	defer func() {
		if err := metrics.WriteFile(opts.MetricsFile); err != nil {
			log.WithError(err).Error("failed to write metrics file")
		}
	}()

	opts.Client.Transporter = newTransport(log, opts.Cache, metrics, opts.Client.Transporter)

	client, err := dockerhub.New(ctx, opts.Client, log)
	if err != nil {
		return fmt.Errorf("failed to setup docker hub client: %w", err)
	}

	rows, err := search.New(log, client, metrics).Run(ctx, opts.Username, opts.image, opts.filters)
	if err != nil {
		return err
	}

	return output.Write(out, opts.format, rows)
}

// newTransport builds the round tripper stack shared by every registry
// request: identification headers, metrics, then the response cache.
func newTransport(log *logrus.Entry, cacheOpts cache.Options, m *metrics.Metrics, base http.RoundTripper) http.RoundTripper {
	return transport.Chain(
		cache.NewTransport(log, cacheOpts, base),
		transport.SetHeader("User-Agent", userAgent),
		transport.SetHeader("X-DOCKER-API-CLIENT", dockerAPIClient),
		transport.SetHeader("Content-Type", "application/json"),
		m.RoundTripper,
	)
}
