package config

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"
	"time"
)

func setEnv(t *testing.T, kv map[string]string) {
	t.Helper()
	for k, v := range kv {
		t.Setenv(k, v)
	}
}

func TestLoad_Defaults(t *testing.T) {
	setEnv(t, map[string]string{"STAYFIT_ENV": "", "STAYFIT_SECRET": "", "STAYFIT_STORE": "", "STAYFIT_SEED_DEMO": ""})

	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Store != StoreSQLite || c.Identity != IdentityLocal {
		t.Errorf("backends = %s/%s, want sqlite/local", c.Store, c.Identity)
	}
	if !c.SeedDemo {
		t.Error("demo seeding should default on outside production")
	}
	if c.Secret != devSecret {
		t.Error("development should fall back to the built-in secret")
	}
	if c.SlowQuery != 50*time.Millisecond || c.OutboxInterval != time.Minute {
		t.Errorf("durations = %v/%v", c.SlowQuery, c.OutboxInterval)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoad_ParsesValues(t *testing.T) {
	setEnv(t, map[string]string{
		"STAYFIT_PUBLIC_URL":      "https://stayfit.example/",
		"STAYFIT_LOG_LEVEL":       "debug",
		"STAYFIT_SLOW_REQUEST_MS": "750",
		"STAYFIT_RATE_LIMIT":      "5",
		"STAYFIT_SEED_DEMO":       "false",
	})

	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.PublicURL != "https://stayfit.example" {
		t.Errorf("PublicURL = %q, trailing slash should be trimmed", c.PublicURL)
	}
	if c.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v", c.LogLevel)
	}
	if c.SlowRequest != 750*time.Millisecond || c.RateLimit != 5 || c.SeedDemo {
		t.Errorf("got %v %d %v", c.SlowRequest, c.RateLimit, c.SeedDemo)
	}
	if !c.SecureCookies() {
		t.Error("https public URL should use secure cookies")
	}
}

func TestLoad_RejectsMalformed(t *testing.T) {
	cases := map[string]string{
		"STAYFIT_SEED_DEMO":     "maybe",
		"STAYFIT_RATE_LIMIT":    "-1",
		"STAYFIT_SLOW_QUERY_MS": "fast",
		"STAYFIT_LOG_LEVEL":     "loud",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			if _, err := Load(); err == nil {
				t.Errorf("%s=%q should fail", key, value)
			}
		})
	}
}

func production() Config {
	return Config{
		Env:             EnvProduction,
		PublicURL:       "https://stayfit.example",
		Store:           StoreFirestore,
		Identity:        IdentityFirebase,
		FirebaseProject: "stayfit-prod",
		Secret:          "0123456789abcdef0123456789abcdef",
		AdminEmail:      "owner@stayfit.example",
		PaylinkAPIID:    "APP_ID",
		PaylinkSecret:   "secret",
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"complete production", func(*Config) {}, nil},
		{"unknown store", func(c *Config) { c.Store = "postgres" }, ErrUnknownStore},
		{"unknown identity", func(c *Config) { c.Identity = "saml" }, ErrUnknownIdentity},
		{"firestore without project", func(c *Config) { c.FirebaseProject = "" }, ErrNoProject},
		{"short secret", func(c *Config) { c.Secret = "short" }, ErrWeakSecret},
		{"dev secret", func(c *Config) { c.Secret = devSecret }, ErrWeakSecret},
		{"local identity", func(c *Config) { c.Identity = IdentityLocal }, ErrLocalIdentity},
		{"no paylink", func(c *Config) { c.PaylinkSecret = "" }, ErrNoPaylink},
		{"plain http", func(c *Config) { c.PublicURL = "http://stayfit.example" }, ErrInsecureURL},
		{"no admin", func(c *Config) { c.AdminEmail = "" }, ErrNoAdmin},
		{"development is lenient", func(c *Config) {
			c.Env, c.Identity, c.Secret, c.PaylinkSecret = "development", IdentityLocal, "x", ""
		}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := production()
			tt.mutate(&c)
			if err := c.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDerivedKeys(t *testing.T) {
	c := production()
	csrf, ident := c.CSRFKey(), c.IdentityKey()
	if len(csrf) != 32 || len(ident) != 32 {
		t.Fatalf("key lengths = %d/%d, want 32", len(csrf), len(ident))
	}
	if bytes.Equal(csrf, ident) {
		t.Error("keys for different purposes must differ")
	}
	if !bytes.Equal(csrf, c.CSRFKey()) {
		t.Error("derivation must be deterministic")
	}
	other := c
	other.Secret = "fedcba9876543210fedcba9876543210"
	if bytes.Equal(csrf, other.CSRFKey()) {
		t.Error("a different secret must give a different key")
	}
}
