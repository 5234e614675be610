package cli

import (
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/matzehuels/orgchart/pkg/cache"
	"github.com/matzehuels/orgchart/pkg/chart"
	"github.com/matzehuels/orgchart/pkg/errors"
	"github.com/matzehuels/orgchart/pkg/layout"
	"github.com/matzehuels/orgchart/pkg/session"
	"github.com/matzehuels/orgchart/pkg/source"
	"github.com/matzehuels/orgchart/pkg/viewport"
)

// defaultConfigFile is read from the working directory when --config is
// not given.
const defaultConfigFile = "orgchart.toml"

// Environment overrides.
const (
	envRedisURL = "ORGCHART_REDIS_URL"
	envMongoURI = "ORGCHART_MONGO_URI"
)

// Config is the orgchart.toml file:
//
//	auto_fit = false
//
//	[layout]
//	node_width = 280
//	gap = 120
//
//	[viewport]
//	min_zoom = 0.3
//
//	[source]
//	mongo_uri = "mongodb://localhost:27017"
//
//	[cache]
//	redis_url = "redis://localhost:6379/0"
//
//	[server]
//	addr = ":8080"
type Config struct {
	Layout   layout.Config   `toml:"layout"`
	Viewport viewport.Config `toml:"viewport"`
	AutoFit  bool            `toml:"auto_fit"`

	Source SourceConfig `toml:"source"`
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
}

// SourceConfig locates the MongoDB positions collection.
type SourceConfig struct {
	MongoURI   string   `toml:"mongo_uri"`
	Database   string   `toml:"database"`
	Collection string   `toml:"collection"`
	Timeout    duration `toml:"timeout"`
	CacheTTL   duration `toml:"cache_ttl"`
}

// CacheConfig selects the layout cache backend.
type CacheConfig struct {
	Dir       string `toml:"dir"`
	RedisURL  string `toml:"redis_url"`
	Namespace string `toml:"namespace"` // prefixes every key, for deployments sharing a Redis
}

// keyer returns the cache keyer, scoped to Namespace when set.
func (c CacheConfig) keyer() cache.Keyer {
	if c.Namespace == "" {
		return cache.NewDefaultKeyer()
	}
	return cache.NewScopedKeyer(nil, c.Namespace+":")
}

// ServerConfig holds the serve command's settings.
type ServerConfig struct {
	Addr       string   `toml:"addr"`
	SessionTTL duration `toml:"session_ttl"`
}

// duration decodes TOML strings such as "30m".
type duration struct{ time.Duration }

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d duration) MarshalText() ([]byte, error) { return []byte(d.Duration.String()), nil }

func defaultConfig() Config {
	return Config{
		Layout:   layout.DefaultConfig(),
		Viewport: viewport.DefaultConfig(),
		Source: SourceConfig{
			Database:   source.DefaultMongoDatabase,
			Collection: source.DefaultMongoCollection,
			CacheTTL:   duration{time.Hour},
		},
		Server: ServerConfig{
			Addr:       ":8080",
			SessionTTL: duration{session.DefaultTTL},
		},
	}
}

// Chart returns the chart parameters.
func (c Config) Chart() chart.Config {
	return chart.Config{Layout: c.Layout, Viewport: c.Viewport, AutoFit: c.AutoFit}
}

func (s SourceConfig) mongoConfig() source.MongoConfig {
	return source.MongoConfig{
		URI:        s.MongoURI,
		Database:   s.Database,
		Collection: s.Collection,
		Timeout:    s.Timeout.Duration,
		CacheTTL:   s.CacheTTL.Duration,
	}
}

// loadConfig reads path over the defaults. An empty path reads
// orgchart.toml from the working directory if it exists. Environment
// variables, including those from a .env file in the working directory,
// override the file.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()

	explicit := path != ""
	if !explicit {
		path = defaultConfigFile
	}
	if _, err := os.Stat(path); err == nil {
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return Config{}, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys %s", path, strings.Join(keys, ", "))
		}
	} else if explicit {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config")
	}

	// Variables already set win over .env.
	_ = godotenv.Load()
	if v := os.Getenv(envRedisURL); v != "" {
		cfg.Cache.RedisURL = v
	}
	if v := os.Getenv(envMongoURI); v != "" {
		cfg.Source.MongoURI = v
	}

	if err := cfg.Chart().Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
