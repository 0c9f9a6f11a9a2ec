// Package config loads the optional surveyplot.toml file.
//
// Every key is optional. A missing file yields Default, which reproduces the
// fixed input and output paths of the plain chart commands.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/surveyplot/pkg/cache"
	"github.com/matzehuels/surveyplot/pkg/chart"
	"github.com/matzehuels/surveyplot/pkg/publish"
	"github.com/matzehuels/surveyplot/pkg/survey"
)

// FileName is looked up in the working directory when no path is given.
const FileName = "surveyplot.toml"

// Environment variables that override the publish credentials.
const (
	EnvAccessKey = "SURVEYPLOT_S3_ACCESS_KEY"
	EnvSecretKey = "SURVEYPLOT_S3_SECRET_KEY"
)

// Config is the decoded configuration file.
type Config struct {
	Input     string  `toml:"input"`
	Highlight string  `toml:"highlight"`
	Output    Output  `toml:"output"`
	Cache     Cache   `toml:"cache"`
	Publish   Publish `toml:"publish"`
	Server    Server  `toml:"server"`

	// Path is the file the config was read from, empty for defaults.
	Path string `toml:"-"`
}

// Output holds the default output path per chart family.
type Output struct {
	Correlations string `toml:"correlations"`
	Timeline     string `toml:"timeline"`
}

// Cache selects the artifact cache backend.
type Cache struct {
	Backend string   `toml:"backend"` // file, redis, mongo or none
	URL     string   `toml:"url"`
	Dir     string   `toml:"dir"` // file backend; empty means the user cache dir
	Prefix  string   `toml:"prefix"`
	TTL     Duration `toml:"ttl"`
}

// Publish configures uploads to an S3-compatible bucket.
type Publish struct {
	Endpoint  string `toml:"endpoint"`
	Bucket    string `toml:"bucket"`
	Prefix    string `toml:"prefix"`
	Region    string `toml:"region"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	UseSSL    bool   `toml:"use_ssl"`
}

// Server configures `surveyplot serve`.
type Server struct {
	Addr string `toml:"addr"`
}

// Duration decodes TOML strings such as "12h" or "30m".
type Duration struct{ time.Duration }

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Input:     survey.DefaultPath,
		Highlight: chart.DefaultHighlight,
		Output: Output{
			Correlations: mustFamily(chart.FamilyCorrelations).Output,
			Timeline:     mustFamily(chart.FamilyTimeline).Output,
		},
		Cache: Cache{
			Backend: cache.BackendFile,
			TTL:     Duration{cache.TTLArtifact},
		},
		Server: Server{Addr: ":8080"},
	}
}

func mustFamily(name string) chart.Family {
	f, ok := chart.Lookup(name)
	if !ok {
		panic("config: unknown family " + name)
	}
	return f
}

// Load reads path over the defaults. An empty path tries FileName in the
// working directory and falls back to Default when it does not exist.
func Load(path string) (*Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = FileName
	}

	md, err := toml.DecodeFile(path, cfg)
	switch {
	case err == nil:
		cfg.Path = path
	case !explicit && errors.Is(err, fs.ErrNotExist):
		// no config file
	default:
		return nil, fmt.Errorf("load config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("load config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvAccessKey); v != "" {
		c.Publish.AccessKey = v
	}
	if v := os.Getenv(EnvSecretKey); v != "" {
		c.Publish.SecretKey = v
	}
}

// Validate checks values that would otherwise fail deep inside a run.
func (c *Config) Validate() error {
	if !slices.Contains(cache.Backends, c.Cache.Backend) {
		return fmt.Errorf("cache.backend %q must be one of: %s", c.Cache.Backend, strings.Join(cache.Backends, ", "))
	}
	if (c.Cache.Backend == cache.BackendRedis || c.Cache.Backend == cache.BackendMongo) && c.Cache.URL == "" {
		return fmt.Errorf("cache.url is required for the %s backend", c.Cache.Backend)
	}
	if c.Cache.TTL.Duration < 0 {
		return errors.New("cache.ttl must not be negative")
	}
	if (c.Publish.Endpoint == "") != (c.Publish.Bucket == "") {
		return errors.New("publish.endpoint and publish.bucket must be set together")
	}
	return nil
}

// OutputFor returns the configured output path of a family.
func (c *Config) OutputFor(family string) string {
	switch family {
	case chart.FamilyCorrelations:
		return c.Output.Correlations
	case chart.FamilyTimeline:
		return c.Output.Timeline
	}
	return ""
}

// CacheConfig converts the [cache] table; dir is used when Cache.Dir is empty.
func (c *Config) CacheConfig(dir string) cache.Config {
	if c.Cache.Dir != "" {
		dir = c.Cache.Dir
	}
	return cache.Config{
		Backend: c.Cache.Backend,
		Dir:     dir,
		URL:     c.Cache.URL,
		Prefix:  c.Cache.Prefix,
	}
}

// PublishConfig converts the [publish] table.
func (c *Config) PublishConfig() publish.Config {
	return publish.Config{
		Endpoint:  c.Publish.Endpoint,
		Bucket:    c.Publish.Bucket,
		Prefix:    c.Publish.Prefix,
		Region:    c.Publish.Region,
		AccessKey: c.Publish.AccessKey,
		SecretKey: c.Publish.SecretKey,
		UseSSL:    c.Publish.UseSSL,
	}
}
