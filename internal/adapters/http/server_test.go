package web

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"stayfit/internal/adapters/identity"
	"stayfit/internal/adapters/payment"
	clientPackStore "stayfit/internal/adapters/storage/clientpack"
	couponStore "stayfit/internal/adapters/storage/coupon"
	outboxStore "stayfit/internal/adapters/storage/outbox"
	packStore "stayfit/internal/adapters/storage/pack"
	reviewStore "stayfit/internal/adapters/storage/review"
	serviceStore "stayfit/internal/adapters/storage/service"
	sessionStore "stayfit/internal/adapters/storage/session"
	"stayfit/internal/adapters/storage/storetest"
	userStore "stayfit/internal/adapters/storage/user"
	domainClientPack "stayfit/internal/domain/clientpack"
	"stayfit/internal/domain/i18n"
	domainPack "stayfit/internal/domain/pack"
	domainUser "stayfit/internal/domain/user"
)

const (
	testAdminEmail = "admin@stayfit.test"
	testKey        = "0123456789abcdef0123456789abcdef"
)

// fakeGateway records invoices and answers status lookups from a table.
type fakeGateway struct {
	mu       sync.Mutex
	invoices map[string]payment.Invoice // transactionNo -> invoice
	statuses map[string]string          // transactionNo -> gateway status
	fail     bool
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{invoices: map[string]payment.Invoice{}, statuses: map[string]string{}}
}

func (g *fakeGateway) CreateInvoice(_ context.Context, inv payment.Invoice) (payment.Checkout, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fail {
		return payment.Checkout{}, fmt.Errorf("add invoice: %w", payment.ErrGateway)
	}
	tx := fmt.Sprintf("tx-%d", len(g.invoices)+1)
	g.invoices[tx] = inv
	return payment.Checkout{TransactionNo: tx, URL: "https://pay.example/" + tx}, nil
}

func (g *fakeGateway) GetInvoice(_ context.Context, tx string) (payment.InvoiceStatus, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fail {
		return payment.InvoiceStatus{}, fmt.Errorf("get invoice: %w", payment.ErrGateway)
	}
	inv, ok := g.invoices[tx]
	if !ok {
		return payment.InvoiceStatus{}, fmt.Errorf("invoice %s: %w", tx, payment.ErrGateway)
	}
	return payment.InvoiceStatus{TransactionNo: tx, OrderNumber: inv.OrderNumber, Status: g.statuses[tx], Amount: inv.Amount}, nil
}

func (g *fakeGateway) setStatus(tx, status string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.statuses[tx] = status
}

// testEnv is a running server backed by an in-memory SQLite database.
type testEnv struct {
	t        *testing.T
	url      string
	stores   *Stores
	provider *identity.LocalProvider
	gateway  *fakeGateway
	now      time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := storetest.SQLite(t)
	stores := &Stores{
		UserStore:       userStore.NewSQLiteStore(db),
		PackStore:       packStore.NewSQLiteStore(db),
		ClientPackStore: clientPackStore.NewSQLiteStore(db),
		SessionStore:    sessionStore.NewSQLiteStore(db),
		ReviewStore:     reviewStore.NewSQLiteStore(db),
		CouponStore:     couponStore.NewSQLiteStore(db),
		ServiceStore:    serviceStore.NewSQLiteStore(db),
		OutboxStore:     outboxStore.NewSQLiteStore(db),
	}
	env := &testEnv{
		t:        t,
		stores:   stores,
		provider: identity.NewLocalProvider([]byte(testKey)),
		gateway:  newFakeGateway(),
		now:      time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC),
	}

	var srv *Server
	ts := httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		srv.Handler().ServeHTTP(w, r)
	}))
	ts.Start()
	t.Cleanup(ts.Close)
	srv = NewServer(Options{
		Stores:     stores,
		Identity:   env.provider,
		Gateway:    env.gateway,
		PublicURL:  ts.URL,
		AdminEmail: testAdminEmail,
		CSRFKey:    []byte(testKey),
		Now:        func() time.Time { return env.now },
	})
	t.Cleanup(srv.Close)
	env.url = ts.URL
	return env
}

// client is one browser: its own cookie jar, redirects not followed.
type client struct {
	env  *testEnv
	http *http.Client
}

func (e *testEnv) anonymous() *client {
	jar, err := cookiejar.New(nil)
	if err != nil {
		e.t.Fatalf("cookiejar: %v", err)
	}
	return &client{env: e, http: &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}}
}

// signIn goes through the JSON auth callback and returns the signed-in browser and its user.
func (e *testEnv) signIn(email string) (*client, domainUser.User) {
	e.t.Helper()
	code, err := e.provider.IssueCode(email, "Test User")
	if err != nil {
		e.t.Fatalf("IssueCode: %v", err)
	}
	c := e.anonymous()
	var resp callbackResponse
	c.doJSON(http.MethodPost, "/api/auth/callback", callbackRequest{Code: code}, http.StatusOK, &resp)
	return c, resp.User
}

func (c *client) do(req *http.Request) (*http.Response, string) {
	c.env.t.Helper()
	resp, err := c.http.Do(req)
	if err != nil {
		c.env.t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

// doJSON sends body as JSON, checks the status and decodes the response into out when non-nil.
func (c *client) doJSON(method, path string, body any, wantStatus int, out any) string {
	c.env.t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			c.env.t.Fatalf("marshal: %v", err)
		}
		rd = bytes.NewReader(b)
	}
	req, _ := http.NewRequest(method, c.env.url+path, rd)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	resp, text := c.do(req)
	if resp.StatusCode != wantStatus {
		c.env.t.Fatalf("%s %s = %d, want %d: %s", method, path, resp.StatusCode, wantStatus, text)
	}
	if out != nil {
		if err := json.Unmarshal([]byte(text), out); err != nil {
			c.env.t.Fatalf("decode %s: %v (%s)", path, err, text)
		}
	}
	return text
}

func (c *client) get(path string) (*http.Response, string) {
	req, _ := http.NewRequest(http.MethodGet, c.env.url+path, nil)
	req.Header.Set("Accept", "text/html")
	return c.do(req)
}

var csrfFieldPattern = regexp.MustCompile(`name="gorilla.csrf.Token" value="([^"]+)"`)

// postForm fetches page to pick up a CSRF token, then posts form to action.
func (c *client) postForm(page, action string, form url.Values) (*http.Response, string) {
	c.env.t.Helper()
	resp, body := c.get(page)
	if resp.StatusCode != http.StatusOK {
		c.env.t.Fatalf("GET %s = %d: %s", page, resp.StatusCode, body)
	}
	m := csrfFieldPattern.FindStringSubmatch(body)
	if m == nil {
		c.env.t.Fatalf("no CSRF field on %s", page)
	}
	if form == nil {
		form = url.Values{}
	}
	form.Set("gorilla.csrf.Token", m[1])
	req, _ := http.NewRequest(http.MethodPost, c.env.url+action, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "text/html")
	return c.do(req)
}

// trainingPack stores the 500/10/90 pack used by the purchase flows.
func (e *testEnv) trainingPack() domainPack.Pack {
	e.t.Helper()
	p := domainPack.Pack{
		ID:         "pack-1",
		StartPrice: 500,
		Category:   i18n.Text("Personal training", "تدريب شخصي"),
		Sessions:   []domainPack.Offer{{ID: "offer-10", Price: 500, SessionCount: 10, ExpirationDays: 90}},
		CreatedAt:  e.now,
		UpdatedAt:  e.now,
	}
	if err := e.stores.PackStore.Create(context.Background(), p); err != nil {
		e.t.Fatalf("create pack: %v", err)
	}
	return p
}

// coach stores a coach whose external id matches the local provider's uid for email.
func (e *testEnv) coach(email string) domainUser.User {
	e.t.Helper()
	u := domainUser.User{
		ID:         "coach-" + strings.Split(email, "@")[0],
		ExternalID: identity.LocalUID(email),
		Email:      email,
		FirstName:  "Sara",
		LastName:   "Coach",
		Role:       domainUser.RoleCoach,
		CreatedAt:  e.now,
		UpdatedAt:  e.now,
	}
	if err := e.stores.UserStore.Create(context.Background(), u); err != nil {
		e.t.Fatalf("create coach: %v", err)
	}
	return u
}

// paidPack stores a completed purchase of the training pack for clientID.
func (e *testEnv) paidPack(clientID string) domainClientPack.ClientPack {
	e.t.Helper()
	p := e.trainingPack()
	cp := domainClientPack.New("cp-paid", clientID, p.ID, p.Sessions[0], e.now)
	cp.PurchaseState = domainClientPack.StateCompleted
	if err := e.stores.ClientPackStore.Create(context.Background(), cp); err != nil {
		e.t.Fatalf("create client pack: %v", err)
	}
	return cp
}
