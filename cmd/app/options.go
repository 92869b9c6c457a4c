package app

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/docker/go-units"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	cliflag "k8s.io/component-base/cli/flag"

	"github.com/jetstack/tag-search/pkg/api"
	"github.com/jetstack/tag-search/pkg/cache"
	"github.com/jetstack/tag-search/pkg/client/dockerhub"
	apierrors "github.com/jetstack/tag-search/pkg/errors"
	"github.com/jetstack/tag-search/pkg/output"
	"github.com/jetstack/tag-search/pkg/search"
)

const (
	envPrefix = "TAG_SEARCH"

	envDockerUsername = "DOCKER_USERNAME"
	envDockerPassword = "DOCKER_PASSWORD"
	envDockerToken    = "DOCKER_TOKEN"
)

// dateLayouts are the accepted --after/--before formats, from least to most
// precise. Dates without a zone are in local time.
var dateLayouts = []string{
	"2006",
	"2006-01",
	"2006-01-02",
	"2006-01-02 15",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// Options is a struct to hold options for tag-search
type Options struct {
	Username        string
	Name            string
	Regex           string
	Architecture    string
	OperatingSystem string
	Below           string
	After           string
	Before          string

	Sort        bool
	Format      string
	MetricsFile string

	Verbose bool
	Quiet   bool

	Cache  cache.Options
	Client dockerhub.Options

	// Populated by validate.
	image   string
	filters *api.Filters
	format  output.Format
}

func (o *Options) addFlags(cmd *cobra.Command) {
	var nfs cliflag.NamedFlagSets

	o.addFilterFlags(nfs.FlagSet("Filters"))
	o.addOutputFlags(nfs.FlagSet("Output"))
	o.addRegistryFlags(nfs.FlagSet("Registry"))
	o.addCacheFlags(nfs.FlagSet("Cache"))
	o.addLoggingFlags(nfs.FlagSet("Logging"))

	usageFmt := "Usage:\n  %s\n"
	cmd.SetUsageFunc(func(cmd *cobra.Command) error {
		fmt.Fprintf(cmd.OutOrStderr(), usageFmt, cmd.UseLine())
		cliflag.PrintSections(cmd.OutOrStderr(), nfs, 0)
		return nil
	})

	cmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n\n"+usageFmt, cmd.Long, cmd.UseLine())
		cliflag.PrintSections(cmd.OutOrStdout(), nfs, 0)
		fmt.Fprint(cmd.OutOrStdout(), cmd.Example)
	})

	fs := cmd.Flags()
	for _, f := range nfs.FlagSets {
		fs.AddFlagSet(f)
	}
}

func (o *Options) addFilterFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&o.Username,
		"username", "u", "",
		"The name of the user who uploaded the given image. Defaults to the "+
			"official images namespace.")

	fs.StringVarP(&o.Name,
		"name", "n", "",
		"Case insensitive wildcard match on the tag name (e.g. '1.*alpine*'). "+
			"Cannot be used with --regex.")

	fs.StringVarP(&o.Regex,
		"regex", "r", "",
		"Case insensitive regular expression matched against the start of the "+
			"tag name. Cannot be used with --name.")

	fs.StringVarP(&o.Architecture,
		"architecture", "a", "",
		"Search for the given CPU architecture, supports wildcards "+
			"(e.g. amd64, arm32v7, arm64v8, i386, ppc64le, s390x).")

	fs.StringVar(&o.OperatingSystem,
		"operating-system", "",
		"Search for the given operating system, supports wildcards (e.g. linux, windows).")

	fs.StringVarP(&o.Below,
		"below", "b", "",
		"Only show images with a size at most the given size (e.g. 10M, 1.5GB).")

	fs.StringVar(&o.After,
		"after", "",
		`Only show images pushed at or after the given date (e.g. "2016", "2016-01", `+
			`"2016-01-22", "2016-01-22 10", "2016-01-22 10:30:11").`)

	fs.StringVar(&o.Before,
		"before", "",
		"Only show images pushed at or before the given date.")
}

func (o *Options) addOutputFlags(fs *pflag.FlagSet) {
	fs.BoolVarP(&o.Sort,
		"sort", "s", false,
		"Sort by image size in increasing order.")

	fs.StringVarP(&o.Format,
		"format", "f", string(output.FormatTable),
		"Output format, one of table, json or csv. json and csv imply --quiet.")

	fs.StringVar(&o.MetricsFile,
		"metrics-file", "",
		"If set, write Prometheus metrics of the search to this file in the text format.")
}

func (o *Options) addRegistryFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Client.URL,
		"registry-url", dockerhub.DefaultURL,
		"URL of the Docker Hub API.")

	fs.Float64Var(&o.Client.MaxRPS,
		"max-rps", dockerhub.DefaultMaxRPS,
		"Maximum number of requests per second against the registry, 0 is unlimited.")

	fs.StringVar(&o.Client.Username,
		"docker-username", "",
		fmt.Sprintf(
			"Username to authenticate with docker registry (%s_%s).",
			envPrefix, envDockerUsername,
		))
	fs.StringVar(&o.Client.Password,
		"docker-password", "",
		fmt.Sprintf(
			"Password to authenticate with docker registry (%s_%s).",
			envPrefix, envDockerPassword,
		))
	fs.StringVar(&o.Client.Token,
		"docker-token", "",
		fmt.Sprintf(
			"Token to authenticate with docker registry. Cannot be used with "+
				"username/password (%s_%s).",
			envPrefix, envDockerToken,
		))
}

func (o *Options) addCacheFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Cache.Dir,
		"cache-dir", cache.DefaultDir(),
		"Directory registry responses are cached in.")

	fs.DurationVar(&o.Cache.TTL,
		"cache-ttl", cache.DefaultTTL,
		"How long a cached registry response is served before it is fetched again.")

	fs.BoolVar(&o.Cache.Disabled,
		"no-cache", false,
		"Always fetch from the registry, bypassing the response cache.")
}

func (o *Options) addLoggingFlags(fs *pflag.FlagSet) {
	fs.BoolVarP(&o.Verbose,
		"verbose", "v", false,
		"Show debug logs.")

	fs.BoolVarP(&o.Quiet,
		"quiet", "q", false,
		"Suppress informational logs. Takes precedence over --verbose.")
}

func (o *Options) complete() {
	if len(o.Client.Username) == 0 {
		o.Client.Username = os.Getenv(envPrefix + "_" + envDockerUsername)
	}
	if len(o.Client.Password) == 0 {
		o.Client.Password = os.Getenv(envPrefix + "_" + envDockerPassword)
	}
	if len(o.Client.Token) == 0 {
		o.Client.Token = os.Getenv(envPrefix + "_" + envDockerToken)
	}
}

// validate checks the raw flag values and converts them into the search
// filters. It never touches the network.
func (o *Options) validate(image string) error {
	if err := o.validateImage(image); err != nil {
		return err
	}

	format, err := output.ParseFormat(o.Format)
	if err != nil {
		return err
	}
	o.format = format
	if o.format.Machine() {
		o.Quiet = true
	}

	filters := new(api.Filters)
	filters.Sort = o.Sort

	if len(o.Name) > 0 && len(o.Regex) > 0 {
		return apierrors.NewConflictingFilterError("both --regex and --name were given")
	}

	if len(o.Name) > 0 {
		filters.Name, err = search.CompileWildcard(o.Name)
	} else {
		filters.Name, err = search.CompileRegex(o.Regex)
	}
	if err != nil {
		return fmt.Errorf("failed to parse tag name filter: %w", err)
	}

	if filters.Architecture, err = search.CompileWildcard(o.Architecture); err != nil {
		return fmt.Errorf("failed to parse --architecture: %w", err)
	}
	if filters.OS, err = search.CompileWildcard(o.OperatingSystem); err != nil {
		return fmt.Errorf("failed to parse --operating-system: %w", err)
	}

	if filters.Below, err = parseSize(o.Below); err != nil {
		return fmt.Errorf("failed to parse --below %q: %w", o.Below, err)
	}

	if filters.After, err = parseDate(o.After); err != nil {
		return fmt.Errorf("failed to parse --after: %w", err)
	}
	if filters.Before, err = parseDate(o.Before); err != nil {
		return fmt.Errorf("failed to parse --before: %w", err)
	}
	if filters.After != nil && filters.Before != nil && filters.After.After(*filters.Before) {
		return fmt.Errorf("--after %q is later than --before %q", o.After, o.Before)
	}

	if len(o.Client.Token) > 0 && (len(o.Client.Username) > 0 || len(o.Client.Password) > 0) {
		return errors.New("cannot use --docker-token with --docker-username/--docker-password")
	}

	o.filters = filters

	return nil
}

// validateImage resolves the username and image name from the image argument
// and --username.
func (o *Options) validateImage(image string) error {
	image = strings.TrimSpace(image)
	if len(image) == 0 {
		return errors.New("an image name must be given")
	}

	if !strings.Contains(image, "/") {
		if len(o.Username) == 0 {
			o.Username = dockerhub.OfficialUsername
		}
		o.image = image
		return nil
	}

	username, name := dockerhub.RepoImageFromPath(image)
	if len(o.Username) > 0 && o.Username != username {
		return fmt.Errorf("you specified two different usernames: [%s, %s]", o.Username, username)
	}

	o.Username, o.image = username, name

	return nil
}

// parseSize parses a human readable size in bytes. Sizes with an "i" in
// their unit (KiB, MiB, Gi) are powers of 1024, all others powers of 1000.
// An empty string or 0 disables the size filter.
func parseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if len(s) == 0 {
		return 0, nil
	}

	if strings.ContainsAny(strings.ToLower(s), "i") {
		return units.RAMInBytes(s)
	}

	return units.FromHumanSize(s)
}

// parseDate parses s with the first matching layout. An empty string is an
// unset bound.
func parseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) == 0 {
		return nil, nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return &t, nil
		}
	}

	return nil, fmt.Errorf("unrecognised date %q, expected one of the formats %q", s, dateLayouts)
}
