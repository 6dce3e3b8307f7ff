package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/solrmap/internal/domain/document"
	"github.com/kailas-cloud/solrmap/internal/domain/field"
	"github.com/kailas-cloud/solrmap/internal/domain/query"
	"github.com/kailas-cloud/solrmap/internal/registry"
)

// Config holds the solrmap configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Auth     AuthConfig     `yaml:"auth"`
	Solr     SolrConfig     `yaml:"solr"`
	Search   SearchConfig   `yaml:"search"`
	Cache    CacheConfig    `yaml:"cache"`
	SolrHome SolrHomeConfig `yaml:"solr_home"`
	Schemas  []SchemaConfig `yaml:"schemas"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys      []string `yaml:"api_keys"`
	AdminKeys    []string `yaml:"admin_keys"`
	PublicSearch bool     `yaml:"public_search"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// SolrConfig holds search index endpoints.
type SolrConfig struct {
	UpdateURL    string   `yaml:"update_url"`
	SelectURL    string   `yaml:"select_url"`
	PingURLs     []string `yaml:"ping_urls"` // empty: ping with an empty select
	TimeoutSec   int      `yaml:"timeout_sec"`
	HeartbeatSec int      `yaml:"heartbeat_sec"` // availability cache TTL
}

// SortOption is a named sort order offered to clients.
type SortOption struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"` // "field direction"
}

// SearchConfig holds mapping and query settings.
type SearchConfig struct {
	Separator      string       `yaml:"separator"`       // model key separator (default: "__")
	FacetSeparator string       `yaml:"facet_separator"` // facet path separator (default: ";;")
	ModelField     string       `yaml:"model_field"`
	SiteID         int64        `yaml:"site_id"`
	DefaultParams  []string     `yaml:"default_params"` // "key=value", merged into every search
	SortOptions    []SortOption `yaml:"sort_options"`
	BatchSize      int          `yaml:"batch_size"` // reindex batch size
}

// CacheConfig holds response cache settings.
type CacheConfig struct {
	Driver           string   `yaml:"driver"` // none, valkey, redis (default: none)
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	Standalone       bool     `yaml:"standalone"`
	TTLSec           int      `yaml:"ttl_sec"`
	KeyPrefix        string   `yaml:"key_prefix"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// Enabled reports whether a cache driver is configured.
func (c CacheConfig) Enabled() bool { return c.Driver != "none" }

// SolrHomeConfig locates the index installation managed by the CLI.
type SolrHomeConfig struct {
	SchemaPath string `yaml:"schema_path"`
	DataDir    string `yaml:"data_dir"`
}

// SchemaConfig declares a model schema. Fields extend the default base fields.
type SchemaConfig struct {
	App    string        `yaml:"app"`
	Model  string        `yaml:"model"`
	Fields []FieldConfig `yaml:"fields"`
}

// FieldConfig declares one field of a schema.
type FieldConfig struct {
	Name       string `yaml:"name"`
	field.Spec `yaml:",inline"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

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

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Solr.TimeoutSec <= 0 {
		c.Solr.TimeoutSec = 10
	}
	if c.Solr.HeartbeatSec <= 0 {
		c.Solr.HeartbeatSec = 300
	}
	if c.Search.Separator == "" {
		c.Search.Separator = field.DefaultSeparator
	}
	if c.Search.FacetSeparator == "" {
		c.Search.FacetSeparator = ";;"
	}
	if c.Search.ModelField == "" {
		c.Search.ModelField = "model"
	}
	if c.Search.BatchSize <= 0 {
		c.Search.BatchSize = 100
	}
	if c.Cache.Driver == "" {
		c.Cache.Driver = "none"
	}
	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 300
	}
	if c.Cache.KeyPrefix == "" {
		c.Cache.KeyPrefix = "solrmap:resp:"
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
	if c.Solr.UpdateURL == "" {
		return fmt.Errorf("solr.update_url is required")
	}
	if c.Solr.SelectURL == "" {
		return fmt.Errorf("solr.select_url is required")
	}
	switch c.Cache.Driver {
	case "none":
	case "valkey", "redis":
		if len(c.Cache.Addrs) == 0 {
			return fmt.Errorf("cache.addrs is required for driver %q", c.Cache.Driver)
		}
	default:
		return fmt.Errorf("cache.driver must be \"none\", \"valkey\" or \"redis\", got %q", c.Cache.Driver)
	}
	if _, err := c.QueryDefaults(); err != nil {
		return fmt.Errorf("search.default_params: %w", err)
	}
	seen := make(map[string]bool, len(c.Schemas))
	for i, sc := range c.Schemas {
		if sc.App == "" || sc.Model == "" {
			return fmt.Errorf("schemas[%d]: app and model are required", i)
		}
		key := sc.App + c.Search.Separator + sc.Model
		if seen[key] {
			return fmt.Errorf("schemas[%d]: duplicate model %q", i, key)
		}
		seen[key] = true
		for _, f := range sc.Fields {
			if f.Name == "" {
				return fmt.Errorf("schemas.%s: field name is required", key)
			}
			if !f.Kind.IsValid() {
				return fmt.Errorf("schemas.%s.%s: invalid kind %q", key, f.Name, f.Kind)
			}
		}
	}
	return nil
}

// SolrTimeout returns the transport timeout.
func (c *Config) SolrTimeout() time.Duration {
	return time.Duration(c.Solr.TimeoutSec) * time.Second
}

// HeartbeatTTL returns how long an availability check is cached.
func (c *Config) HeartbeatTTL() time.Duration {
	return time.Duration(c.Solr.HeartbeatSec) * time.Second
}

// CacheTTL returns the response cache TTL.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSec) * time.Second
}

// CacheReadiness returns how long to wait for the cache store at startup.
func (c *Config) CacheReadiness() time.Duration {
	return time.Duration(c.Cache.ReadinessTimeout) * time.Second
}

// FieldEnv returns the settings field transforms depend on.
func (c *Config) FieldEnv() field.Env {
	return field.Env{Separator: c.Search.Separator, SiteID: c.Search.SiteID}
}

// QueryDefaults parses the default search parameters.
func (c *Config) QueryDefaults() ([]query.Param, error) {
	params, err := query.ParseParams(c.Search.DefaultParams)
	if err != nil {
		return nil, fmt.Errorf("parse default params: %w", err)
	}
	return params, nil
}

// Registry builds the schema registry from the declared schemas.
func (c *Config) Registry() (*registry.Registry, error) {
	reg := registry.New(c.Search.Separator)
	for _, sc := range c.Schemas {
		decls := make([]document.Decl, len(sc.Fields))
		for i, f := range sc.Fields {
			decls[i] = document.Decl{Name: f.Name, Spec: f.Spec}
		}
		schema, err := document.NewSchema(document.Extend(document.DefaultBase(), decls...)...)
		if err != nil {
			return nil, fmt.Errorf("schema %s%s%s: %w", sc.App, c.Search.Separator, sc.Model, err)
		}
		if err := reg.Register(sc.App, sc.Model, schema); err != nil {
			return nil, fmt.Errorf("register schema: %w", err)
		}
	}
	return reg, nil
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
