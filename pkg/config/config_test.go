package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.SessionCapacity != 250 {
		t.Errorf("SessionCapacity = %d, want 250", cfg.SessionCapacity)
	}
	if cfg.MaxInteractionsPerSession != 4 {
		t.Errorf("MaxInteractionsPerSession = %d, want 4", cfg.MaxInteractionsPerSession)
	}
	if cfg.InteractionTimeout != 10*time.Second {
		t.Errorf("InteractionTimeout = %v, want 10s", cfg.InteractionTimeout)
	}
	if !cfg.Headless {
		t.Error("Headless = false, want true")
	}
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("SESSION_CAPACITY", "100")
	t.Setenv("FIRST_LOAD_SIZE", "20")
	t.Setenv("INTERACTION_TIMEOUT", "3s")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("PROXY_URLS", "http://p1:8000,http://p2:8000")
	t.Setenv("WORKER_ID", "worker-7")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.SessionCapacity != 100 || cfg.FirstLoadSize != 20 {
		t.Errorf("capacity, first load = %d, %d, want 100, 20", cfg.SessionCapacity, cfg.FirstLoadSize)
	}
	if cfg.InteractionTimeout != 3*time.Second {
		t.Errorf("InteractionTimeout = %v, want 3s", cfg.InteractionTimeout)
	}
	if cfg.RedisDB != 2 {
		t.Errorf("RedisDB = %d, want 2", cfg.RedisDB)
	}
	if cfg.WorkerID != "worker-7" {
		t.Errorf("WorkerID = %q, want worker-7", cfg.WorkerID)
	}
	if len(cfg.ProxyURLs) != 2 || cfg.ProxyURLs[1] != "http://p2:8000" {
		t.Errorf("ProxyURLs = %v", cfg.ProxyURLs)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			BaseURL:                   "https://catalog.test/",
			SessionCapacity:           250,
			FirstLoadSize:             50,
			MaxInteractionsPerSession: 4,
			InteractionTimeout:        time.Second,
			PageLoadTimeout:           time.Second,
			FetchTimeout:              time.Second,
			QueuePollTimeout:          time.Second,
			WorkerConcurrency:         1,
			ParseConcurrency:          1,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}, wantErr: false},
		{name: "relative base url", mutate: func(c *Config) { c.BaseURL = "/search" }, wantErr: true},
		{name: "zero capacity", mutate: func(c *Config) { c.SessionCapacity = 0 }, wantErr: true},
		{name: "first load above capacity", mutate: func(c *Config) { c.FirstLoadSize = 300 }, wantErr: true},
		{name: "zero click cap", mutate: func(c *Config) { c.MaxInteractionsPerSession = 0 }, wantErr: true},
		{name: "zero interaction timeout", mutate: func(c *Config) { c.InteractionTimeout = 0 }, wantErr: true},
		{name: "zero workers", mutate: func(c *Config) { c.WorkerConcurrency = 0 }, wantErr: true},
		{name: "negative cache", mutate: func(c *Config) { c.DetailCacheSize = -1 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestWorkerIdentity(t *testing.T) {
	cfg := &Config{WorkerID: "worker-a"}
	if got, err := cfg.WorkerIdentity(); err != nil || got != "worker-a" {
		t.Errorf("WorkerIdentity() = %q, %v, want worker-a", got, err)
	}

	host, err := os.Hostname()
	if err != nil {
		t.Skipf("no host name: %v", err)
	}
	cfg.WorkerID = ""
	if got, err := cfg.WorkerIdentity(); err != nil || got != host {
		t.Errorf("WorkerIdentity() = %q, %v, want host name %q", got, err, host)
	}
}
