package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse([]byte("{}"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Server.Port != 8080 || cfg.Database.Driver != DriverMemory {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if cfg.Upstream.PollInterval != 3*time.Second {
		t.Errorf("expected 3s poll interval, got %s", cfg.Upstream.PollInterval)
	}
	if cfg.RateLimit.Capacity != 60 || cfg.RateLimit.RefillRate != 1 {
		t.Errorf("unexpected rate limit %+v", cfg.RateLimit)
	}
}

func TestLoadFile(t *testing.T) {
	yml := `
server:
  port: 9090
upstream:
  baseURL: https://assess.internal:8443
  pollInterval: 500ms
database:
  driver: MySQL
  host: db
  user: trust
  password: s3cret
  name: trust
minio:
  enabled: true
  endpoint: minio:9000
cors:
  allowedOrigins: ["https://app.example.com"]
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(yml), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9090 || cfg.Upstream.PollInterval != 500*time.Millisecond {
		t.Errorf("unexpected values %+v", cfg)
	}
	if cfg.Database.Driver != DriverMySQL || cfg.Database.Port != 3306 {
		t.Errorf("expected mysql on 3306, got %s:%d", cfg.Database.Driver, cfg.Database.Port)
	}
	want := "trust:s3cret@tcp(db:3306)/trust?parseTime=true&charset=utf8mb4&loc=UTC"
	if got := cfg.MySQLDSN(); got != want {
		t.Errorf("MySQLDSN = %q, want %q", got, want)
	}
}

func TestPostgresDSN(t *testing.T) {
	cfg := Default()
	cfg.Database.Driver = DriverPostgres
	cfg.Database.Host = "pg"
	cfg.Database.Port = 5432
	cfg.Database.User = "trust"
	cfg.Database.Password = "p@ss"
	cfg.Database.Name = "trust"

	got := cfg.PostgresDSN()
	if got != "postgres://trust:p%40ss@pg:5432/trust?sslmode=disable" {
		t.Errorf("unexpected dsn %q", got)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		yml  string
		want string
	}{
		{"bad driver", "database: {driver: sqlite}", "unknown database driver"},
		{"bad upstream", "upstream: {baseURL: 'localhost:8000'}", "invalid upstream.baseURL"},
		{"minio without endpoint", "minio: {enabled: true}", "minio.endpoint"},
		{"bad yaml", "server: [", "parse config"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yml))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}

	if _, err := Parse([]byte("upstream: {mock: true, baseURL: 'not a url'}")); err != nil {
		t.Errorf("mock mode should not validate baseURL: %v", err)
	}
}
