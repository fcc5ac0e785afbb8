package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	emailPkg "stayfit/internal/adapters/email"
	web "stayfit/internal/adapters/http"
	"stayfit/internal/adapters/identity"
	"stayfit/internal/adapters/payment"
	"stayfit/internal/adapters/storage"
	clientPackStore "stayfit/internal/adapters/storage/clientpack"
	couponStore "stayfit/internal/adapters/storage/coupon"
	outboxStore "stayfit/internal/adapters/storage/outbox"
	packStore "stayfit/internal/adapters/storage/pack"
	reviewStore "stayfit/internal/adapters/storage/review"
	serviceStore "stayfit/internal/adapters/storage/service"
	sessionStore "stayfit/internal/adapters/storage/session"
	userStore "stayfit/internal/adapters/storage/user"
	"stayfit/internal/application/orchestrators"
	"stayfit/internal/config"
	domainOutbox "stayfit/internal/domain/outbox"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}
	setupLogging(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var fbApp *firebase.App
	if cfg.Store == config.StoreFirestore || cfg.Identity == config.IdentityFirebase {
		fbApp, err = newFirebaseApp(ctx, cfg)
		if err != nil {
			log.Fatalf("failed to initialise firebase: %v", err)
		}
	}

	stores, closeStores, err := openStores(ctx, cfg, fbApp)
	if err != nil {
		log.Fatalf("failed to open %s store: %v", cfg.Store, err)
	}
	defer closeStores()

	provider, err := newIdentityProvider(ctx, cfg, fbApp)
	if err != nil {
		log.Fatalf("failed to configure identity: %v", err)
	}

	if cfg.SeedDemo {
		seedDeps := orchestrators.SeedDemoDeps{
			UserStore:    stores.UserStore,
			PackStore:    stores.PackStore,
			ServiceStore: stores.ServiceStore,
			ReviewStore:  stores.ReviewStore,
			CouponStore:  stores.CouponStore,
			GenerateID:   uuid.NewString,
			Now:          time.Now,
		}
		if err := orchestrators.ExecuteSeedDemo(ctx, seedDeps); err != nil {
			log.Fatalf("failed to seed demo data: %v", err)
		}
	}

	// Configure email sender
	var sender emailPkg.Sender
	if cfg.ResendKey != "" {
		sender = emailPkg.NewResendSender(cfg.ResendKey, cfg.ResendFrom, cfg.ReplyTo)
		slog.Info("email_configured", "provider", "resend", "from", cfg.ResendFrom)
	} else {
		sender = emailPkg.NewNoopSender()
		if cfg.IsProduction() {
			slog.Warn("email_configured", "provider", "noop", "warning", "STAYFIT_RESEND_KEY is not set, receipts will not be delivered")
		} else {
			slog.Info("email_configured", "provider", "noop")
		}
	}

	// Outbox worker delivers queued emails and retries failed ones
	processor := orchestrators.NewOutboxProcessor(stores.OutboxStore, map[string]orchestrators.ActionExecutor{
		domainOutbox.ActionTypeEmail: &orchestrators.EmailExecutor{Sender: sender},
	})
	outboxStopCh := make(chan struct{})
	outboxDone := orchestrators.StartBackgroundWorker(processor, cfg.OutboxInterval, outboxStopCh)

	if cfg.PaylinkAPIID == "" {
		slog.Warn("payment_configured", "gateway", "paylink", "warning", "STAYFIT_PAYLINK_API_ID is not set, checkout will fail")
	}
	gateway := payment.NewPaylinkClient(cfg.PaylinkURL, cfg.PaylinkAPIID, cfg.PaylinkSecret)

	srv := web.NewServer(web.Options{
		Stores:      stores,
		Identity:    provider,
		Gateway:     gateway,
		Outbox:      processor,
		PublicURL:   cfg.PublicURL,
		AdminEmail:  cfg.AdminEmail,
		CSRFKey:     cfg.CSRFKey(),
		Secure:      cfg.SecureCookies(),
		RateLimit:   cfg.RateLimit,
		SlowRequest: cfg.SlowRequest,
		Firebase: web.FirebaseWebConfig{
			APIKey:     cfg.FirebaseAPIKey,
			AuthDomain: cfg.FirebaseAuthDomain,
			ProjectID:  cfg.FirebaseProject,
		},
	})
	defer srv.Close()

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server_starting", "version", version, "addr", cfg.Addr, "env", cfg.Env,
			"store", cfg.Store, "identity", cfg.Identity)
		serveErr <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server_failed", "error", err)
		}
	case <-ctx.Done():
		slog.Info("server_stopping")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("server_shutdown_failed", "error", err)
		}
	}

	close(outboxStopCh)
	<-outboxDone
	slog.Info("server_stopped")
}

func setupLogging(cfg config.Config) {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	var handler slog.Handler
	if cfg.IsProduction() {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func newFirebaseApp(ctx context.Context, cfg config.Config) (*firebase.App, error) {
	var opts []option.ClientOption
	if cfg.FirebaseCredentials != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.FirebaseCredentials))
	}
	return firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.FirebaseProject}, opts...)
}

// openStores builds every store on the configured backend. The returned func releases it.
func openStores(ctx context.Context, cfg config.Config, app *firebase.App) (*web.Stores, func(), error) {
	switch cfg.Store {
	case config.StoreFirestore:
		client, err := app.Firestore(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("firestore client: %w", err)
		}
		slog.Info("store_opened", "backend", "firestore", "project", cfg.FirebaseProject)
		return firestoreStores(client), func() { _ = client.Close() }, nil
	default:
		db, err := storage.Open(cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		if err := storage.MigrateDB(db); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		schema, dirty, err := storage.SchemaVersion(db)
		if err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("schema version: %w", err)
		}
		slog.Info("store_opened", "backend", "sqlite", "path", cfg.DBPath, "schema", schema, "dirty", dirty)
		timed := storage.NewTimedDB(db, cfg.SlowQuery)
		return sqliteStores(timed), func() { _ = timed.Close() }, nil
	}
}

func sqliteStores(db storage.SQLDB) *web.Stores {
	return &web.Stores{
		UserStore:       userStore.NewSQLiteStore(db),
		PackStore:       packStore.NewSQLiteStore(db),
		ClientPackStore: clientPackStore.NewSQLiteStore(db),
		SessionStore:    sessionStore.NewSQLiteStore(db),
		ReviewStore:     reviewStore.NewSQLiteStore(db),
		CouponStore:     couponStore.NewSQLiteStore(db),
		ServiceStore:    serviceStore.NewSQLiteStore(db),
		OutboxStore:     outboxStore.NewSQLiteStore(db),
	}
}

func firestoreStores(client *firestore.Client) *web.Stores {
	return &web.Stores{
		UserStore:       userStore.NewFirestoreStore(client),
		PackStore:       packStore.NewFirestoreStore(client),
		ClientPackStore: clientPackStore.NewFirestoreStore(client),
		SessionStore:    sessionStore.NewFirestoreStore(client),
		ReviewStore:     reviewStore.NewFirestoreStore(client),
		CouponStore:     couponStore.NewFirestoreStore(client),
		ServiceStore:    serviceStore.NewFirestoreStore(client),
		OutboxStore:     outboxStore.NewFirestoreStore(client),
	}
}

func newIdentityProvider(ctx context.Context, cfg config.Config, app *firebase.App) (identity.Provider, error) {
	if cfg.Identity == config.IdentityLocal {
		slog.Warn("identity_configured", "provider", "local", "warning", "anyone can sign in with any email")
		return identity.NewLocalProvider(cfg.IdentityKey()), nil
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase auth client: %w", err)
	}
	slog.Info("identity_configured", "provider", "firebase", "project", cfg.FirebaseProject)
	return identity.NewFirebaseProvider(client), nil
}
