package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/kailas-cloud/solrmap/internal/domain"
	"github.com/kailas-cloud/solrmap/internal/domain/field"
)

func validConfig() Config {
	return Config{
		HTTP: HTTPConfig{Port: 8080},
		Solr: SolrConfig{
			UpdateURL: "http://localhost:8983/solr/update",
			SelectURL: "http://localhost:8983/solr/select",
		},
	}
}

func writeConfig(t *testing.T, env, body string) {
	t.Helper()
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "config"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config", env+".yaml"), []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Chdir(dir)
}

func TestLoad_ExpandsEnvAndBuildsSchemas(t *testing.T) {
	t.Setenv("SOLR_URL", "http://solr:8983/solr")
	writeConfig(t, "test", `
http:
  port: ${HTTP_PORT:-9090}
auth:
  api_keys: ["${READ_KEY:-reader}"]
  admin_keys: [root]
  public_search: true
solr:
  update_url: ${SOLR_URL}/update
  select_url: ${SOLR_URL}/select
search:
  site_id: 3
  default_params: ["facet.field=model", "hl.fl=text"]
schemas:
  - app: blog
    model: post
    fields:
      - name: title
        kind: text
        copy: true
      - name: views
        kind: integer
        dynamic: true
`)

	cfg, err := Load("test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.HTTP.Port)
	}
	if len(cfg.Auth.APIKeys) != 1 || cfg.Auth.APIKeys[0] != "reader" || cfg.Auth.AdminKeys[0] != "root" || !cfg.Auth.PublicSearch {
		t.Errorf("unexpected auth %+v", cfg.Auth)
	}
	if cfg.Solr.SelectURL != "http://solr:8983/solr/select" {
		t.Errorf("unexpected select url %q", cfg.Solr.SelectURL)
	}
	if cfg.FieldEnv() != (field.Env{Separator: "__", SiteID: 3}) {
		t.Errorf("unexpected field env %+v", cfg.FieldEnv())
	}

	params, err := cfg.QueryDefaults()
	if err != nil || len(params) != 2 || params[1].Key != "hl.fl" {
		t.Fatalf("unexpected defaults %v, %v", params, err)
	}

	reg, err := cfg.Registry()
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	schema, err := reg.Lookup("blog__post")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	title, ok := schema.Field("title")
	if !ok || title.Kind() != field.Text || !title.Copy() {
		t.Errorf("unexpected title field %+v", title)
	}
	views, ok := schema.Field("views")
	if !ok || !views.Dynamic() {
		t.Errorf("expected dynamic views field")
	}
	if _, ok := schema.Field("id"); !ok {
		t.Error("expected base fields")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Chdir(t.TempDir())
	if _, err := Load("nope"); err == nil {
		t.Fatal("expected error for missing config")
	}
}

func TestLoad_RepoLocalConfig(t *testing.T) {
	cfg, err := Load("local")
	if err != nil {
		t.Fatalf("local config must load: %v", err)
	}
	if _, err := cfg.Registry(); err != nil {
		t.Fatalf("local schemas must build: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"invalid port", func(c *Config) { c.HTTP.Port = 0 }},
		{"missing update url", func(c *Config) { c.Solr.UpdateURL = "" }},
		{"missing select url", func(c *Config) { c.Solr.SelectURL = "" }},
		{"unknown cache driver", func(c *Config) { c.Cache.Driver = "memcached" }},
		{"cache without addrs", func(c *Config) { c.Cache.Driver = "valkey" }},
		{"bad default param", func(c *Config) { c.Search.DefaultParams = []string{"facet"} }},
		{"schema without model", func(c *Config) { c.Schemas = []SchemaConfig{{App: "blog"}} }},
		{"field without name", func(c *Config) {
			c.Schemas = []SchemaConfig{{App: "blog", Model: "post", Fields: []FieldConfig{{Spec: field.Spec{Kind: field.Text}}}}}
		}},
		{"invalid kind", func(c *Config) {
			c.Schemas = []SchemaConfig{{App: "blog", Model: "post", Fields: []FieldConfig{{Name: "x", Spec: field.Spec{Kind: "blob"}}}}}
		}},
		{"duplicate model", func(c *Config) {
			c.Schemas = []SchemaConfig{{App: "blog", Model: "post"}, {App: "blog", Model: "post"}}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			cfg.ApplyDefaults()
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestValidate_OK(t *testing.T) {
	cfg := validConfig()
	cfg.Cache = CacheConfig{Driver: "redis", Addrs: []string{"localhost:6379"}}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_BadDefaultParamIsConversion(t *testing.T) {
	cfg := validConfig()
	cfg.Search.DefaultParams = []string{"=x"}
	_, err := cfg.QueryDefaults()
	if !errors.Is(err, domain.ErrConversion) {
		t.Fatalf("expected ErrConversion, got %v", err)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 10 {
		t.Errorf("expected WriteTimeoutSec=10, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Solr.TimeoutSec != 10 {
		t.Errorf("expected TimeoutSec=10, got %d", cfg.Solr.TimeoutSec)
	}
	if cfg.Solr.HeartbeatSec != 300 {
		t.Errorf("expected HeartbeatSec=300, got %d", cfg.Solr.HeartbeatSec)
	}
	if cfg.Search.Separator != "__" {
		t.Errorf("expected Separator='__', got %q", cfg.Search.Separator)
	}
	if cfg.Search.FacetSeparator != ";;" {
		t.Errorf("expected FacetSeparator=';;', got %q", cfg.Search.FacetSeparator)
	}
	if cfg.Search.ModelField != "model" {
		t.Errorf("expected ModelField='model', got %q", cfg.Search.ModelField)
	}
	if cfg.Search.BatchSize != 100 {
		t.Errorf("expected BatchSize=100, got %d", cfg.Search.BatchSize)
	}
	if cfg.Cache.Driver != "none" || cfg.Cache.Enabled() {
		t.Errorf("expected disabled cache, got %q", cfg.Cache.Driver)
	}
	if cfg.Cache.KeyPrefix != "solrmap:resp:" {
		t.Errorf("expected KeyPrefix='solrmap:resp:', got %q", cfg.Cache.KeyPrefix)
	}
	if cfg.CacheTTL().Seconds() != 300 {
		t.Errorf("expected cache TTL 300s, got %s", cfg.CacheTTL())
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:   HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Solr:   SolrConfig{HeartbeatSec: 30},
		Search: SearchConfig{Separator: "--"},
		Cache:  CacheConfig{Driver: "valkey", KeyPrefix: "custom:"},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HeartbeatTTL().Seconds() != 30 {
		t.Errorf("expected heartbeat 30s, got %s", cfg.HeartbeatTTL())
	}
	if cfg.Search.Separator != "--" {
		t.Errorf("expected Separator='--', got %q", cfg.Search.Separator)
	}
	if cfg.Cache.KeyPrefix != "custom:" || !cfg.Cache.Enabled() {
		t.Errorf("unexpected cache config %+v", cfg.Cache)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("SOLRMAP_TEST_SET", "value")
	got := string(expandEnvVars([]byte("a=${SOLRMAP_TEST_SET} b=${SOLRMAP_TEST_UNSET:-fallback} c=${SOLRMAP_TEST_UNSET}")))
	if got != "a=value b=fallback c=" {
		t.Errorf("unexpected expansion %q", got)
	}
}
