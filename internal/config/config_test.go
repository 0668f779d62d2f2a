package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		JWTSecret:    "x",
		RingTimeout:  30 * time.Second,
		SendQueue:    64,
		CallLogSinks: []string{"log"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"ok", func(*Config) {}, false},
		{"no jwt secret", func(c *Config) { c.JWTSecret = "" }, true},
		{"zero ring timeout", func(c *Config) { c.RingTimeout = 0 }, true},
		{"zero queue", func(c *Config) { c.SendQueue = 0 }, true},
		{"drop policy", func(c *Config) { c.Backpressure = "drop" }, false},
		{"unknown policy", func(c *Config) { c.Backpressure = "block" }, true},
		{"postgres without url", func(c *Config) { c.CallLogSinks = []string{"postgres"} }, true},
		{"postgres with url", func(c *Config) {
			c.CallLogSinks = []string{"postgres"}
			c.DatabaseURL = "postgres://localhost/call"
		}, false},
		{"redis without addr", func(c *Config) { c.CallLogSinks = []string{"redis"} }, true},
		{"unknown sink", func(c *Config) { c.CallLogSinks = []string{"kafka"} }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(&c)
			if err := c.Validate(); (err != nil) != tt.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPeerICEServers(t *testing.T) {
	c := Config{ICEServers: []ICEServer{
		{URLs: []string{"stun:stun.example.org:3478"}},
		{},
		{URLs: []string{"turn:turn.example.org"}, Username: "u", Credential: "p"},
	}}
	got := c.PeerICEServers()
	if len(got) != 2 {
		t.Fatalf("got %d servers", len(got))
	}
	if got[1].Username != "u" || got[1].Credential != "p" {
		t.Fatalf("turn server %+v", got[1])
	}
}

func TestLoadDefaultsAndEnv(t *testing.T) {
	dir := t.TempDir()
	wd, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	t.Setenv("ENV_FILE", filepath.Join(dir, "missing.env"))
	t.Setenv("CONFIG_ENV", "test")
	t.Setenv("CALL_JWT_SECRET", "from-env")
	t.Setenv("CALL_RING_TIMEOUT", "10s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.JWTSecret != "from-env" || cfg.RingTimeout != 10*time.Second {
		t.Fatalf("env not applied: %+v", cfg)
	}
	if cfg.Port != 8080 || cfg.SendQueue != 64 || len(cfg.CallLogSinks) != 1 || cfg.Backpressure != "kick" {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	if cfg.Secret == "" {
		t.Fatal("secret should be generated")
	}
	if len(cfg.PeerICEServers()) != 1 {
		t.Fatalf("default ice servers %+v", cfg.ICEServers)
	}
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "config"), 0o755); err != nil {
		t.Fatal(err)
	}
	yaml := "port: 9090\njwt_secret: yaml-secret\nring_timeout: 45s\nrequests_per_minute: 5\n"
	if err := os.WriteFile(filepath.Join(dir, "config", "config.prod.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	wd, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("ENV_FILE", filepath.Join(dir, "missing.env"))
	t.Setenv("CONFIG_ENV", "prod")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 9090 || cfg.JWTSecret != "yaml-secret" || cfg.RingTimeout != 45*time.Second || cfg.RequestsPerMinute != 5 {
		t.Fatalf("yaml not applied: %+v", cfg)
	}
}
