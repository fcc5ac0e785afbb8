package orchestrators

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"stayfit/internal/adapters/payment"
	"stayfit/internal/adapters/storage"
	domainClientPack "stayfit/internal/domain/clientpack"
	domainCoupon "stayfit/internal/domain/coupon"
	"stayfit/internal/domain/i18n"
	domainOutbox "stayfit/internal/domain/outbox"
	domainPack "stayfit/internal/domain/pack"
	domainSession "stayfit/internal/domain/session"
	domainUser "stayfit/internal/domain/user"
)

var testTime = time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

func testNow() time.Time { return testTime }

// sequentialIDs returns a generator producing prefix-1, prefix-2, ...
func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func notFound(what, id string) error {
	return fmt.Errorf("%s %s: %w", what, id, storage.ErrNotFound)
}

// --- packs ---

type mockPackStore struct {
	packs map[string]domainPack.Pack
}

func newMockPackStore(packs ...domainPack.Pack) *mockPackStore {
	m := &mockPackStore{packs: make(map[string]domainPack.Pack)}
	for _, p := range packs {
		m.packs[p.ID] = p
	}
	return m
}

func (m *mockPackStore) GetByID(_ context.Context, id string) (domainPack.Pack, error) {
	p, ok := m.packs[id]
	if !ok {
		return domainPack.Pack{}, notFound("pack", id)
	}
	return p, nil
}

func (m *mockPackStore) Create(_ context.Context, p domainPack.Pack) error {
	m.packs[p.ID] = p
	return nil
}

func (m *mockPackStore) List(_ context.Context) ([]domainPack.Pack, error) {
	out := make([]domainPack.Pack, 0, len(m.packs))
	for _, p := range m.packs {
		out = append(out, p)
	}
	return out, nil
}

// trainingPack is the 500 / 10 sessions / 90 days offer used across tests.
func trainingPack() domainPack.Pack {
	return domainPack.Pack{
		ID:         "pack-1",
		StartPrice: 500,
		Category:   i18n.Text("Personal training", "تدريب شخصي"),
		Sessions:   []domainPack.Offer{{ID: "offer-1", Price: 500, SessionCount: 10, ExpirationDays: 90}},
	}
}

// --- client packs ---

type mockClientPackStore struct {
	mu    sync.Mutex
	packs map[string]domainClientPack.ClientPack
	calls []string
}

func newMockClientPackStore(packs ...domainClientPack.ClientPack) *mockClientPackStore {
	m := &mockClientPackStore{packs: make(map[string]domainClientPack.ClientPack)}
	for _, p := range packs {
		m.packs[p.ID] = p
	}
	return m
}

func (m *mockClientPackStore) GetByID(_ context.Context, id string) (domainClientPack.ClientPack, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp, ok := m.packs[id]
	if !ok {
		return domainClientPack.ClientPack{}, notFound("client pack", id)
	}
	return cp, nil
}

func (m *mockClientPackStore) Create(_ context.Context, cp domainClientPack.ClientPack) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "create")
	m.packs[cp.ID] = cp
	return nil
}

func (m *mockClientPackStore) TransitionState(_ context.Context, id, to string, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "transition:"+to)
	cp, ok := m.packs[id]
	if !ok {
		return false, notFound("client pack", id)
	}
	if cp.PurchaseState != domainClientPack.StatePending {
		return false, nil
	}
	cp.PurchaseState = to
	cp.UpdatedAt = now
	m.packs[id] = cp
	return true, nil
}

func (m *mockClientPackStore) SetTransactionNo(_ context.Context, id, txNo string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp, ok := m.packs[id]
	if !ok {
		return notFound("client pack", id)
	}
	if cp.PurchaseState != domainClientPack.StatePending {
		return domainClientPack.ErrTerminalState
	}
	cp.TransactionNo = txNo
	cp.UpdatedAt = now
	m.packs[id] = cp
	return nil
}

func (m *mockClientPackStore) DecrementRemaining(_ context.Context, id string, now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp, ok := m.packs[id]
	if !ok {
		return 0, notFound("client pack", id)
	}
	if cp.RemainingSessions > 0 {
		cp.RemainingSessions--
	}
	cp.UpdatedAt = now
	m.packs[id] = cp
	return cp.RemainingSessions, nil
}

// --- coupons ---

type mockCouponStore struct {
	coupons map[string]domainCoupon.Coupon
}

func (m *mockCouponStore) GetByCode(_ context.Context, code string) (domainCoupon.Coupon, error) {
	c, ok := m.coupons[domainCoupon.NormalizeCode(code)]
	if !ok {
		return domainCoupon.Coupon{}, notFound("coupon", code)
	}
	return c, nil
}

func (m *mockCouponStore) Create(_ context.Context, c domainCoupon.Coupon) error {
	if m.coupons == nil {
		m.coupons = make(map[string]domainCoupon.Coupon)
	}
	m.coupons[c.Code] = c
	return nil
}

// --- users ---

type mockUserStore struct {
	users map[string]domainUser.User
}

func newMockUserStore(users ...domainUser.User) *mockUserStore {
	m := &mockUserStore{users: make(map[string]domainUser.User)}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *mockUserStore) GetByID(_ context.Context, id string) (domainUser.User, error) {
	u, ok := m.users[id]
	if !ok {
		return domainUser.User{}, notFound("user", id)
	}
	return u, nil
}

func (m *mockUserStore) GetByExternalID(_ context.Context, externalID string) (domainUser.User, error) {
	for _, u := range m.users {
		if u.ExternalID == externalID {
			return u, nil
		}
	}
	return domainUser.User{}, notFound("user", externalID)
}

func (m *mockUserStore) GetByEmail(_ context.Context, email string) (domainUser.User, error) {
	for _, u := range m.users {
		if domainUser.NormalizeEmail(u.Email) == domainUser.NormalizeEmail(email) {
			return u, nil
		}
	}
	return domainUser.User{}, notFound("user", email)
}

func (m *mockUserStore) Create(_ context.Context, u domainUser.User) error {
	if _, ok := m.users[u.ID]; ok {
		return fmt.Errorf("user %s: %w", u.ID, storage.ErrDuplicate)
	}
	m.users[u.ID] = u
	return nil
}

func (m *mockUserStore) Update(_ context.Context, u domainUser.User) error {
	if _, ok := m.users[u.ID]; !ok {
		return notFound("user", u.ID)
	}
	m.users[u.ID] = u
	return nil
}

func (m *mockUserStore) byRole(role string) []domainUser.User {
	var out []domainUser.User
	for _, u := range m.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func testClient() domainUser.User {
	return domainUser.User{ID: "client-1", ExternalID: "ext-client-1", Email: "amal@example.com", FirstName: "Amal", Role: domainUser.RoleClient}
}

func testCoach() domainUser.User {
	return domainUser.User{ID: "coach-1", ExternalID: "ext-coach-1", Email: "sami@example.com", FirstName: "Sami", Role: domainUser.RoleCoach}
}

// --- sessions ---

type mockSessionStore struct {
	sessions map[string]domainSession.Session
}

func newMockSessionStore(sessions ...domainSession.Session) *mockSessionStore {
	m := &mockSessionStore{sessions: make(map[string]domainSession.Session)}
	for _, s := range sessions {
		m.sessions[s.ID] = s
	}
	return m
}

func (m *mockSessionStore) GetByID(_ context.Context, id string) (domainSession.Session, error) {
	s, ok := m.sessions[id]
	if !ok {
		return domainSession.Session{}, notFound("session", id)
	}
	return s, nil
}

func (m *mockSessionStore) Create(_ context.Context, s domainSession.Session) error {
	m.sessions[s.ID] = s
	return nil
}

func (m *mockSessionStore) UpdateStatus(_ context.Context, id, from, to string, now time.Time) error {
	s, ok := m.sessions[id]
	if !ok {
		return notFound("session", id)
	}
	if s.Status != from {
		return domainSession.ErrAlreadyClosed
	}
	s.Status = to
	s.UpdatedAt = now
	m.sessions[id] = s
	return nil
}

// --- outbox ---

type mockOutboxStore struct {
	mu      sync.Mutex
	entries map[string]domainOutbox.Entry
	order   []string
}

func newMockOutboxStore() *mockOutboxStore {
	return &mockOutboxStore{entries: make(map[string]domainOutbox.Entry)}
}

func (m *mockOutboxStore) GetByID(_ context.Context, id string) (domainOutbox.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok {
		return domainOutbox.Entry{}, notFound("outbox entry", id)
	}
	return e, nil
}

func (m *mockOutboxStore) Save(_ context.Context, e domainOutbox.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[e.ID]; !ok {
		m.order = append(m.order, e.ID)
	}
	m.entries[e.ID] = e
	return nil
}

func (m *mockOutboxStore) ListPending(_ context.Context, limit int) ([]domainOutbox.Entry, error) {
	return m.list(limit, domainOutbox.StatusPending, domainOutbox.StatusRetrying), nil
}

func (m *mockOutboxStore) ListFailed(_ context.Context, limit int) ([]domainOutbox.Entry, error) {
	return m.list(limit, domainOutbox.StatusFailed), nil
}

func (m *mockOutboxStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
	return nil
}

func (m *mockOutboxStore) list(limit int, statuses ...string) []domainOutbox.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domainOutbox.Entry
	for _, id := range m.order {
		e, ok := m.entries[id]
		if !ok {
			continue
		}
		for _, s := range statuses {
			if e.Status == s && len(out) < limit {
				out = append(out, e)
			}
		}
	}
	return out
}

func (m *mockOutboxStore) all() []domainOutbox.Entry {
	return m.list(len(m.order)+1, domainOutbox.StatusPending, domainOutbox.StatusRetrying,
		domainOutbox.StatusDone, domainOutbox.StatusFailed, domainOutbox.StatusAbandoned)
}

// --- gateway ---

type mockGateway struct {
	invoices  map[string]payment.InvoiceStatus // by transaction number
	created   []payment.Invoice
	createErr error
	getErr    error
	getCalls  int
}

func newMockGateway() *mockGateway {
	return &mockGateway{invoices: make(map[string]payment.InvoiceStatus)}
}

func (g *mockGateway) CreateInvoice(_ context.Context, inv payment.Invoice) (payment.Checkout, error) {
	if g.createErr != nil {
		return payment.Checkout{}, g.createErr
	}
	g.created = append(g.created, inv)
	tx := fmt.Sprintf("tx-%d", len(g.created))
	g.invoices[tx] = payment.InvoiceStatus{TransactionNo: tx, OrderNumber: inv.OrderNumber, Status: "Unpaid", Amount: inv.Amount}
	return payment.Checkout{TransactionNo: tx, URL: "https://pay.example/" + tx}, nil
}

func (g *mockGateway) GetInvoice(_ context.Context, tx string) (payment.InvoiceStatus, error) {
	g.getCalls++
	if g.getErr != nil {
		return payment.InvoiceStatus{}, g.getErr
	}
	inv, ok := g.invoices[tx]
	if !ok {
		return payment.InvoiceStatus{}, fmt.Errorf("%w: no invoice %s", payment.ErrGateway, tx)
	}
	return inv, nil
}

// settle sets the gateway status of an invoice.
func (g *mockGateway) settle(tx, status string) {
	inv := g.invoices[tx]
	inv.Status = status
	g.invoices[tx] = inv
}
