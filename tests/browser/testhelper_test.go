package browser_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/playwright-community/playwright-go"

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
	"stayfit/internal/adapters/storage/storetest"
	"stayfit/internal/application/orchestrators"
)

const adminEmail = "admin@stayfit.test"

// instantGateway sends the browser straight back to the callback and reports every invoice as paid.
type instantGateway struct {
	mu       sync.Mutex
	invoices map[string]payment.Invoice
}

func (g *instantGateway) CreateInvoice(_ context.Context, inv payment.Invoice) (payment.Checkout, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	tx := fmt.Sprintf("tx-%d", len(g.invoices)+1)
	g.invoices[tx] = inv
	return payment.Checkout{
		TransactionNo: tx,
		URL:           fmt.Sprintf("%s?orderNumber=%s&transactionNo=%s", inv.CallbackURL, inv.OrderNumber, tx),
	}, nil
}

func (g *instantGateway) GetInvoice(_ context.Context, tx string) (payment.InvoiceStatus, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	inv, ok := g.invoices[tx]
	if !ok {
		return payment.InvoiceStatus{}, fmt.Errorf("invoice %s: %w", tx, payment.ErrGateway)
	}
	return payment.InvoiceStatus{TransactionNo: tx, OrderNumber: inv.OrderNumber, Status: payment.StatusPaid, Amount: inv.Amount}, nil
}

// testApp holds the running test server and Playwright handles.
type testApp struct {
	BaseURL string
	Stores  *web.Stores
	PW      *playwright.Playwright
	Browser playwright.Browser
}

// newTestApp wires the app on an in-memory SQLite database with the demo catalog and starts Chromium.
func newTestApp(t *testing.T) *testApp {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}
	if os.Getenv("STAYFIT_BROWSER_TESTS") == "" {
		t.Skip("set STAYFIT_BROWSER_TESTS=1 to run browser tests")
	}

	db := storetest.SQLite(t)
	stores := newStores(db)
	ctx := context.Background()
	err := orchestrators.ExecuteSeedDemo(ctx, orchestrators.SeedDemoDeps{
		UserStore:    stores.UserStore,
		PackStore:    stores.PackStore,
		ServiceStore: stores.ServiceStore,
		ReviewStore:  stores.ReviewStore,
		CouponStore:  stores.CouponStore,
		GenerateID:   uuid.NewString,
		Now:          time.Now,
	})
	if err != nil {
		t.Fatalf("failed to seed demo data: %v", err)
	}

	var srv *web.Server
	ts := httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		srv.Handler().ServeHTTP(w, r)
	}))
	ts.Start()
	t.Cleanup(ts.Close)
	srv = web.NewServer(web.Options{
		Stores:     stores,
		Identity:   identity.NewLocalProvider([]byte("browser-test-identity-key-000000")),
		Gateway:    &instantGateway{invoices: map[string]payment.Invoice{}},
		PublicURL:  ts.URL,
		AdminEmail: adminEmail,
		CSRFKey:    []byte("browser-test-csrf-key-0000000000"),
	})
	t.Cleanup(srv.Close)

	pw, err := playwright.Run()
	if err != nil {
		t.Fatalf("failed to start Playwright: %v", err)
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		t.Fatalf("failed to launch browser: %v", err)
	}
	t.Cleanup(func() {
		browser.Close()
		pw.Stop()
	})

	return &testApp{BaseURL: ts.URL, Stores: stores, PW: pw, Browser: browser}
}

func newStores(db storage.SQLDB) *web.Stores {
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

// newPage creates a new browser page (tab).
func (a *testApp) newPage(t *testing.T) playwright.Page {
	t.Helper()
	page, err := a.Browser.NewPage()
	if err != nil {
		t.Fatalf("failed to create page: %v", err)
	}
	t.Cleanup(func() { page.Close() })
	return page
}

// login signs in through the local login form and waits for the role's dashboard.
func (a *testApp) login(t *testing.T, page playwright.Page, email, wantPath string) {
	t.Helper()
	if _, err := page.Goto(a.BaseURL + "/login"); err != nil {
		t.Fatalf("failed to navigate to login: %v", err)
	}
	if err := page.Locator("input[name=email]").Fill(email); err != nil {
		t.Fatalf("failed to fill email: %v", err)
	}
	if err := page.Locator("form[action='/login'] button[type=submit]").Click(); err != nil {
		t.Fatalf("failed to click login: %v", err)
	}
	if err := page.WaitForURL(a.BaseURL+wantPath, playwright.PageWaitForURLOptions{
		Timeout: playwright.Float(10000),
	}); err != nil {
		t.Fatalf("login did not land on %s: %v", wantPath, err)
	}
}
