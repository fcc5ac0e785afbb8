// Package config loads runtime settings from the environment and an optional .env file.
package config

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/hkdf"
)

// Backends and identity modes.
const (
	StoreSQLite       = "sqlite"
	StoreFirestore    = "firestore"
	IdentityFirebase  = "firebase"
	IdentityLocal     = "local"
	EnvProduction     = "production"
	DefaultPaylinkURL = "https://restpilot.paylink.sa"
)

// devSecret is used when STAYFIT_SECRET is unset outside production.
const devSecret = "stayfit-development-secret-do-not-deploy"

// Validation errors.
var (
	ErrUnknownStore    = errors.New("STAYFIT_STORE must be sqlite or firestore")
	ErrUnknownIdentity = errors.New("STAYFIT_IDENTITY must be firebase or local")
	ErrNoProject       = errors.New("STAYFIT_FIREBASE_PROJECT is required for firestore and firebase identity")
	ErrWeakSecret      = errors.New("STAYFIT_SECRET must be set to at least 32 characters in production")
	ErrLocalIdentity   = errors.New("the local identity provider cannot run in production")
	ErrNoPaylink       = errors.New("STAYFIT_PAYLINK_API_ID and STAYFIT_PAYLINK_SECRET are required in production")
	ErrInsecureURL     = errors.New("STAYFIT_PUBLIC_URL must be an https URL in production")
	ErrNoAdmin         = errors.New("STAYFIT_ADMIN_EMAIL is required in production")
)

// Config is every setting the server reads at startup.
type Config struct {
	Env       string
	Addr      string
	PublicURL string

	Store  string
	DBPath string

	FirebaseProject     string
	FirebaseCredentials string // service account JSON path; empty uses application default credentials
	FirebaseAPIKey      string // web SDK key for the login page
	FirebaseAuthDomain  string

	Identity   string
	Secret     string
	AdminEmail string

	PaylinkURL    string
	PaylinkAPIID  string
	PaylinkSecret string

	ResendKey  string
	ResendFrom string
	ReplyTo    string

	SeedDemo       bool
	LogLevel       slog.Level
	SlowRequest    time.Duration
	SlowQuery      time.Duration
	RateLimit      int
	OutboxInterval time.Duration
}

// Load reads .env (when present) and then the STAYFIT_* environment variables.
// Variables already set in the environment win over .env entries.
// POST: returns an error only for values that do not parse; call Validate for policy checks
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	c := Config{
		Env:                 envOrDefault("STAYFIT_ENV", "development"),
		Addr:                envOrDefault("STAYFIT_ADDR", ":8080"),
		PublicURL:           strings.TrimRight(envOrDefault("STAYFIT_PUBLIC_URL", "http://localhost:8080"), "/"),
		Store:               envOrDefault("STAYFIT_STORE", StoreSQLite),
		DBPath:              envOrDefault("STAYFIT_DB_PATH", "stayfit.db"),
		FirebaseProject:     os.Getenv("STAYFIT_FIREBASE_PROJECT"),
		FirebaseCredentials: os.Getenv("STAYFIT_FIREBASE_CREDENTIALS"),
		FirebaseAPIKey:      os.Getenv("STAYFIT_FIREBASE_API_KEY"),
		FirebaseAuthDomain:  os.Getenv("STAYFIT_FIREBASE_AUTH_DOMAIN"),
		Identity:            envOrDefault("STAYFIT_IDENTITY", IdentityLocal),
		Secret:              os.Getenv("STAYFIT_SECRET"),
		AdminEmail:          os.Getenv("STAYFIT_ADMIN_EMAIL"),
		PaylinkURL:          envOrDefault("STAYFIT_PAYLINK_URL", DefaultPaylinkURL),
		PaylinkAPIID:        os.Getenv("STAYFIT_PAYLINK_API_ID"),
		PaylinkSecret:       os.Getenv("STAYFIT_PAYLINK_SECRET"),
		ResendKey:           os.Getenv("STAYFIT_RESEND_KEY"),
		ResendFrom:          envOrDefault("STAYFIT_RESEND_FROM", "StayFit <noreply@stayfit.sa>"),
		ReplyTo:             os.Getenv("STAYFIT_REPLY_TO"),
	}
	if c.Secret == "" && !c.IsProduction() {
		c.Secret = devSecret
	}

	var err error
	if c.SeedDemo, err = envBool("STAYFIT_SEED_DEMO", !c.IsProduction()); err != nil {
		return Config{}, err
	}
	if c.LogLevel, err = envLevel("STAYFIT_LOG_LEVEL", slog.LevelInfo); err != nil {
		return Config{}, err
	}
	if c.SlowRequest, err = envMillis("STAYFIT_SLOW_REQUEST_MS", 200*time.Millisecond); err != nil {
		return Config{}, err
	}
	if c.SlowQuery, err = envMillis("STAYFIT_SLOW_QUERY_MS", 50*time.Millisecond); err != nil {
		return Config{}, err
	}
	if c.RateLimit, err = envInt("STAYFIT_RATE_LIMIT", 20); err != nil {
		return Config{}, err
	}
	if c.OutboxInterval, err = envMillis("STAYFIT_OUTBOX_INTERVAL_MS", time.Minute); err != nil {
		return Config{}, err
	}
	return c, nil
}

// IsProduction reports whether STAYFIT_ENV is production.
func (c Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// SecureCookies reports whether cookies should carry the Secure flag.
func (c Config) SecureCookies() bool {
	return strings.HasPrefix(c.PublicURL, "https://")
}

// Validate checks that the settings are coherent, with stricter rules in production.
// PRE: c was produced by Load
// POST: returns nil or the first violated rule
func (c Config) Validate() error {
	if c.Store != StoreSQLite && c.Store != StoreFirestore {
		return ErrUnknownStore
	}
	if c.Identity != IdentityFirebase && c.Identity != IdentityLocal {
		return ErrUnknownIdentity
	}
	if (c.Store == StoreFirestore || c.Identity == IdentityFirebase) && c.FirebaseProject == "" {
		return ErrNoProject
	}
	if _, err := url.Parse(c.PublicURL); err != nil {
		return fmt.Errorf("STAYFIT_PUBLIC_URL: %w", err)
	}
	if !c.IsProduction() {
		return nil
	}
	if len(c.Secret) < 32 || c.Secret == devSecret {
		return ErrWeakSecret
	}
	if c.Identity == IdentityLocal {
		return ErrLocalIdentity
	}
	if c.PaylinkAPIID == "" || c.PaylinkSecret == "" {
		return ErrNoPaylink
	}
	if !c.SecureCookies() {
		return ErrInsecureURL
	}
	if c.AdminEmail == "" {
		return ErrNoAdmin
	}
	return nil
}

// CSRFKey is the 32-byte gorilla/csrf authentication key.
func (c Config) CSRFKey() []byte {
	return c.deriveKey("stayfit csrf v1")
}

// IdentityKey signs the local identity provider's tokens.
func (c Config) IdentityKey() []byte {
	return c.deriveKey("stayfit local identity v1")
}

// deriveKey expands the master secret into an independent 32-byte key per purpose.
func (c Config) deriveKey(info string) []byte {
	key := make([]byte, 32)
	r := hkdf.New(sha256.New, []byte(c.Secret), nil, []byte(info))
	if _, err := io.ReadFull(r, key); err != nil {
		// hkdf only fails after 255 blocks of output.
		panic(err)
	}
	return key
}

func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func envInt(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", key)
	}
	return v, nil
}

func envMillis(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	ms, err := envInt(key, 0)
	if err != nil {
		return 0, err
	}
	return time.Duration(ms) * time.Millisecond, nil
}

func envLevel(key string, fallback slog.Level) (slog.Level, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		return fallback, fmt.Errorf("%s: %w", key, err)
	}
	return level, nil
}
