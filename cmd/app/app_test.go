package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jetstack/tag-search/pkg/cache"
	"github.com/jetstack/tag-search/pkg/client/dockerhub"
	apierrors "github.com/jetstack/tag-search/pkg/errors"
)

const (
	nginxURL = "https://hub.docker.com/v2/repositories/library/nginx/tags?page=1&page_size=100"

	nginxBody = `{
		"count": 2,
		"next": null,
		"previous": null,
		"results": [
			{
				"name": "1.25-alpine",
				"tag_last_pushed": "2024-05-29T21:52:26Z",
				"images": [
					{"architecture": "amd64", "os": "linux", "size": 17000000, "digest": "sha256:aaaa", "status": "active"},
					{"architecture": "arm64", "variant": "v8", "os": "linux", "size": 16000000, "status": "active"}
				]
			},
			{
				"name": "1.25",
				"tag_last_pushed": "2024-05-29T21:52:26Z",
				"images": [
					{"architecture": "amd64", "os": "windows", "os_version": "10.0.20348", "size": 2000000000, "status": "active"},
					{"architecture": "amd64", "os": "linux", "size": 70000000, "status": "active"}
				]
			}
		]
	}`
)

var log = logrus.NewEntry(logrus.New())

func nginxMock(t *testing.T) *httpmock.MockTransport {
	t.Helper()

	mock := httpmock.NewMockTransport()
	mock.RegisterResponder(http.MethodGet, nginxURL,
		func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, userAgent, req.Header.Get("User-Agent"))
			assert.Equal(t, dockerAPIClient, req.Header.Get("X-DOCKER-API-CLIENT"))
			assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
			return httpmock.NewStringResponse(http.StatusOK, nginxBody), nil
		})

	return mock
}

func TestRun(t *testing.T) {
	tests := map[string]struct {
		opts      Options
		expOutput func(*testing.T, string)
	}{
		"json should list matching rows": {
			opts: Options{
				Format:          "json",
				Architecture:    "amd64",
				OperatingSystem: "linux",
			},
			expOutput: func(t *testing.T, out string) {
				var rows []map[string]interface{}
				require.NoError(t, json.Unmarshal([]byte(out), &rows))
				require.Len(t, rows, 2)
				assert.Equal(t, "1.25-alpine", rows[0]["name"])
				assert.Equal(t, "1.25", rows[1]["name"])
			},
		},
		"table should be sorted by size": {
			opts: Options{
				Format: "table",
				Sort:   true,
				Below:  "100MB",
			},
			expOutput: func(t *testing.T, out string) {
				lines := strings.Split(strings.TrimSpace(out), "\n")
				require.Len(t, lines, 4)
				assert.True(t, strings.HasPrefix(lines[0], "TAG"))
				assert.Equal(t, "arm64v8", strings.Fields(lines[1])[2])
				assert.Equal(t, "16MB", strings.Fields(lines[1])[3])
				assert.Equal(t, "17MB", strings.Fields(lines[2])[3])
				assert.Equal(t, "70MB", strings.Fields(lines[3])[3])
			},
		},
		"csv should have a header and a record per row": {
			opts: Options{
				Format: "csv",
				Name:   "*alpine",
			},
			expOutput: func(t *testing.T, out string) {
				lines := strings.Split(strings.TrimSpace(out), "\n")
				require.Len(t, lines, 3)
				assert.True(t, strings.HasPrefix(lines[0], "name,id,"))
				assert.True(t, strings.HasPrefix(lines[1], "1.25-alpine,"))
			},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			mock := nginxMock(t)

			opts := test.opts
			opts.Cache = cache.Options{Disabled: true}
			opts.Client = dockerhub.Options{Transporter: mock}
			require.NoError(t, opts.validate("nginx"))

			var out bytes.Buffer
			require.NoError(t, run(context.Background(), log, &opts, &out))
			assert.Equal(t, 1, mock.GetTotalCallCount())

			test.expOutput(t, out.String())
		})
	}
}

func TestRunLookupFailure(t *testing.T) {
	mock := httpmock.NewMockTransport()
	mock.RegisterResponder(http.MethodGet, nginxURL,
		httpmock.NewStringResponder(http.StatusNotFound, `{"message":"object not found"}`))

	opts := Options{
		Format: "table",
		Cache:  cache.Options{Disabled: true},
		Client: dockerhub.Options{Transporter: mock},
	}
	require.NoError(t, opts.validate("nginx"))

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), log, &opts, &out))
	assert.Empty(t, out.String())
}

func TestRunCacheAndMetrics(t *testing.T) {
	dir := t.TempDir()
	metricsFile := filepath.Join(dir, "tag_search.prom")

	mock := nginxMock(t)

	for i := 0; i < 2; i++ {
		opts := Options{
			Format:      "json",
			MetricsFile: metricsFile,
			Cache:       cache.Options{Dir: filepath.Join(dir, "cache"), TTL: cache.DefaultTTL},
			Client:      dockerhub.Options{Transporter: mock},
		}
		require.NoError(t, opts.validate("nginx"))

		var out bytes.Buffer
		require.NoError(t, run(context.Background(), log, &opts, &out))
		assert.Contains(t, out.String(), `"name": "1.25-alpine"`)
	}

	// The second run is answered from disk.
	assert.Equal(t, 1, mock.GetTotalCallCount())

	b, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(b), `http_client_requests_total{cache="hit",code="200",domain="hub.docker.com",method="GET"} 1`)
	assert.Contains(t, string(b), `tag_search_rows{stage="expanded"} 4`)
}

func TestNewCommand(t *testing.T) {
	tests := map[string]struct {
		args     []string
		expErr   bool
		expCheck func(*testing.T, error, string)
	}{
		"no image should error": {
			args:   []string{},
			expErr: true,
		},
		"regex and name should conflict before any request": {
			args:   []string{"nginx", "-r", "1.2", "-n", "*alpine*"},
			expErr: true,
			expCheck: func(t *testing.T, err error, _ string) {
				assert.True(t, apierrors.IsConflictingFilter(err))
			},
		},
		"different usernames should error": {
			args:   []string{"bitnami/redis", "-u", "grafana"},
			expErr: true,
		},
		"help should list flag sections": {
			args: []string{"--help"},
			expCheck: func(t *testing.T, _ error, out string) {
				for _, section := range []string{"Filters flags:", "Output flags:", "Registry flags:", "Cache flags:", "Logging flags:"} {
					assert.Contains(t, out, section)
				}
				assert.Contains(t, out, "--operating-system")
				assert.Contains(t, out, "TAG_SEARCH_DOCKER_TOKEN")
			},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			cmd := NewCommand(context.Background())

			var out bytes.Buffer
			cmd.SetOut(&out)
			cmd.SetErr(&out)
			cmd.SetArgs(test.args)

			err := cmd.Execute()
			if test.expErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}

			if test.expCheck != nil {
				test.expCheck(t, err, out.String())
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	tests := map[string]struct {
		config   logConfig
		expLevel logrus.Level
	}{
		"default should be info": {
			config:   logConfig{},
			expLevel: logrus.InfoLevel,
		},
		"verbose should be debug": {
			config:   logConfig{Verbose: true},
			expLevel: logrus.DebugLevel,
		},
		"quiet should be warn": {
			config:   logConfig{Quiet: true},
			expLevel: logrus.WarnLevel,
		},
		"quiet should win over verbose": {
			config:   logConfig{Quiet: true, Verbose: true},
			expLevel: logrus.WarnLevel,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			test.config.Output = &buf

			log := newLogger(test.config)
			assert.Equal(t, test.expLevel, log.Logger.GetLevel())

			log.Info("Number of tags: 1")
			if test.expLevel >= logrus.InfoLevel {
				assert.Contains(t, buf.String(), "Number of tags: 1")
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}
