package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the parcelmap service configuration.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Dataset DatasetConfig `yaml:"dataset"`
	Labels  LabelsConfig  `yaml:"labels"`
	Search  SearchConfig  `yaml:"search"`
	Split   SplitConfig   `yaml:"split"`
	Tiles   TilesConfig   `yaml:"tiles"`
	Cache   CacheConfig   `yaml:"cache"`
	Auth    AuthConfig    `yaml:"auth"`
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error (default: determined by env)
	Sample bool   `yaml:"sample"` // prod only: enable zap sampling
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int      `yaml:"port"`
	ReadTimeoutSec  int      `yaml:"read_timeout_sec"`
	WriteTimeoutSec int      `yaml:"write_timeout_sec"`
	ShutdownSec     int      `yaml:"shutdown_timeout_sec"`
	CORSOrigins     []string `yaml:"cors_origins"`
	RateLimitRPS    float64  `yaml:"rate_limit_rps"` // 0 = unlimited
	RateLimitBurst  int      `yaml:"rate_limit_burst"`
}

// DatasetConfig lists the parcel source files and how to read their attributes.
type DatasetConfig struct {
	Sources []SourceConfig `yaml:"sources"`
	Fields  FieldsConfig   `yaml:"fields"`
}

// SourceConfig is one dataset file. Format is detected from the extension when empty.
type SourceConfig struct {
	Path   string `yaml:"path"`
	Format string `yaml:"format"` // geojson, kml, kmz, shapefile, geoparquet
}

// FieldsConfig holds attribute-name aliases for the parcel key, tried in order.
type FieldsConfig struct {
	VDC    []string `yaml:"vdc"`
	Ward   []string `yaml:"ward"`
	Parcel []string `yaml:"parcel"`
}

// LabelsConfig holds edge-label generalization defaults.
type LabelsConfig struct {
	Unit          string  `yaml:"unit"` // feet, meters
	MinSegment    float64 `yaml:"min_segment"`
	StraightAngle float64 `yaml:"straight_angle"`
	OffsetFactor  float64 `yaml:"offset_factor"`
	AllRings      bool    `yaml:"all_rings"`
}

// SearchConfig holds search defaults.
type SearchConfig struct {
	DefaultMode string `yaml:"default_mode"` // exact, fuzzy
	MaxResults  int    `yaml:"max_results"`
}

// SplitConfig holds the bisection limits for parcel splitting.
type SplitConfig struct {
	ToleranceSqm  float64 `yaml:"tolerance_sqm"`
	MaxIterations int     `yaml:"max_iterations"`
}

// TilesConfig holds the optional MBTiles base layer.
type TilesConfig struct {
	MBTiles      string `yaml:"mbtiles"` // empty = tiles disabled
	CacheEntries int    `yaml:"cache_entries"`
	CacheTTLSec  int    `yaml:"cache_ttl_sec"`
}

// CacheConfig holds the label cache store settings.
type CacheConfig struct {
	Driver           string   `yaml:"driver"` // none, redis, valkey (default: none)
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	KeyPrefix        string   `yaml:"key_prefix"`
	TTLSec           int      `yaml:"ttl_sec"`
	LocalCacheSec    int      `yaml:"local_cache_sec"` // client-side caching of reads, 0 disables
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit YAML path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// LoadDotEnv loads variables from an env file into the process environment.
// Variables that are already set win; a missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.HTTP.RateLimitRPS > 0 && c.HTTP.RateLimitBurst <= 0 {
		c.HTTP.RateLimitBurst = int(c.HTTP.RateLimitRPS) * 2
		if c.HTTP.RateLimitBurst < 1 {
			c.HTTP.RateLimitBurst = 1
		}
	}
	if c.Labels.Unit == "" {
		c.Labels.Unit = "feet"
	}
	if c.Labels.MinSegment <= 0 {
		c.Labels.MinSegment = 5
	}
	if c.Labels.StraightAngle <= 0 {
		c.Labels.StraightAngle = 150
	}
	if c.Labels.OffsetFactor <= 0 {
		c.Labels.OffsetFactor = 0.00005
	}
	if c.Search.DefaultMode == "" {
		c.Search.DefaultMode = "exact"
	}
	if c.Search.MaxResults <= 0 {
		c.Search.MaxResults = 1000
	}
	if c.Split.ToleranceSqm <= 0 {
		c.Split.ToleranceSqm = 0.01
	}
	if c.Split.MaxIterations <= 0 {
		c.Split.MaxIterations = 40
	}
	if c.Tiles.CacheEntries == 0 {
		c.Tiles.CacheEntries = 1024
	}
	if c.Tiles.CacheTTLSec <= 0 {
		c.Tiles.CacheTTLSec = 300
	}
	if c.Cache.Driver == "" {
		c.Cache.Driver = "none"
	}
	if c.Cache.KeyPrefix == "" {
		c.Cache.KeyPrefix = "parcelmap:"
	}
	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 86400
	}
	if c.Cache.ReadinessTimeout <= 0 {
		c.Cache.ReadinessTimeout = 10
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.HTTP.RateLimitRPS < 0 {
		return fmt.Errorf("http.rate_limit_rps must be >= 0, got %g", c.HTTP.RateLimitRPS)
	}
	if len(c.Dataset.Sources) == 0 {
		return fmt.Errorf("dataset.sources is required")
	}
	for i, s := range c.Dataset.Sources {
		if strings.TrimSpace(s.Path) == "" {
			return fmt.Errorf("dataset.sources[%d].path is required", i)
		}
		switch strings.ToLower(s.Format) {
		case "", "geojson", "json", "kml", "kmz", "shapefile", "shp", "geoparquet", "parquet":
			// ok
		default:
			return fmt.Errorf("dataset.sources[%d].format %q is not supported", i, s.Format)
		}
	}
	switch c.Labels.Unit {
	case "feet", "meters":
		// ok
	default:
		return fmt.Errorf("labels.unit must be \"feet\" or \"meters\", got %q", c.Labels.Unit)
	}
	if c.Labels.StraightAngle > 180 {
		return fmt.Errorf("labels.straight_angle must be at most 180, got %g", c.Labels.StraightAngle)
	}
	switch c.Search.DefaultMode {
	case "exact", "fuzzy":
		// ok
	default:
		return fmt.Errorf("search.default_mode must be \"exact\" or \"fuzzy\", got %q", c.Search.DefaultMode)
	}
	if c.Search.MaxResults > 10000 {
		return fmt.Errorf("search.max_results must be at most 10000, got %d", c.Search.MaxResults)
	}
	switch c.Cache.Driver {
	case "none":
		// ok
	case "redis", "valkey":
		if len(c.Cache.Addrs) == 0 {
			return fmt.Errorf("cache.addrs is required for driver %q", c.Cache.Driver)
		}
		if c.Cache.LocalCacheSec < 0 {
			return fmt.Errorf("cache.local_cache_sec must be >= 0, got %d", c.Cache.LocalCacheSec)
		}
	default:
		return fmt.Errorf("cache.driver must be \"none\", \"redis\" or \"valkey\", got %q", c.Cache.Driver)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
