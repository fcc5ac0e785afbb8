package payment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakePaylink serves the three endpoints the client uses.
type fakePaylink struct {
	authCalls    atomic.Int32
	lastInvoice  addInvoiceRequest
	invoiceState string
	orderNumber  string
	failInvoice  bool
}

func (f *fakePaylink) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth", func(w http.ResponseWriter, r *http.Request) {
		f.authCalls.Add(1)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["apiId"] != "app-id" || body["secretKey"] != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"id_token": "tok-1"})
	})
	mux.HandleFunc("POST /api/addInvoice", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if f.failInvoice {
			http.Error(w, `{"detail":"boom"}`, http.StatusInternalServerError)
			return
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&f.lastInvoice))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"transactionNo": "tx-100",
			"url":           "https://pay.example/tx-100",
			"orderStatus":   "Pending",
		})
	})
	mux.HandleFunc("GET /api/getInvoice/{tx}", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"transactionNo":       r.PathValue("tx"),
			"orderStatus":         f.invoiceState,
			"amount":              450.0,
			"gatewayOrderRequest": map[string]any{"orderNumber": f.orderNumber},
		})
	})
	return mux
}

func newTestClient(t *testing.T, f *fakePaylink) *PaylinkClient {
	srv := httptest.NewServer(f.handler(t))
	t.Cleanup(srv.Close)
	return NewPaylinkClient(srv.URL+"/", "app-id", "secret")
}

func TestPaylinkClient_CreateInvoice(t *testing.T) {
	f := &fakePaylink{}
	c := newTestClient(t, f)

	out, err := c.CreateInvoice(context.Background(), Invoice{
		OrderNumber: "cp-1",
		Amount:      450,
		CallbackURL: "https://stayfit.example/payment/callback",
		Title:       "Personal training",
		ClientName:  "Amal",
		ClientPhone: "0500000000",
	})
	require.NoError(t, err)
	require.Equal(t, Checkout{TransactionNo: "tx-100", URL: "https://pay.example/tx-100"}, out)
	require.Equal(t, "cp-1", f.lastInvoice.OrderNumber)
	require.Equal(t, 450.0, f.lastInvoice.Amount)
	require.Len(t, f.lastInvoice.Products, 1)
	require.Equal(t, "https://stayfit.example/payment/callback", f.lastInvoice.CallBackURL)
}

func TestPaylinkClient_GetInvoice(t *testing.T) {
	f := &fakePaylink{invoiceState: StatusPaid, orderNumber: "cp-1"}
	c := newTestClient(t, f)

	got, err := c.GetInvoice(context.Background(), "tx-100")
	require.NoError(t, err)
	require.Equal(t, InvoiceStatus{TransactionNo: "tx-100", OrderNumber: "cp-1", Status: StatusPaid, Amount: 450}, got)
}

func TestPaylinkClient_ReusesToken(t *testing.T) {
	f := &fakePaylink{invoiceState: StatusPaid}
	c := newTestClient(t, f)

	for range 3 {
		_, err := c.GetInvoice(context.Background(), "tx-100")
		require.NoError(t, err)
	}
	require.EqualValues(t, 1, f.authCalls.Load())

	c.now = func() time.Time { return time.Now().Add(time.Hour) }
	_, err := c.GetInvoice(context.Background(), "tx-100")
	require.NoError(t, err)
	require.EqualValues(t, 2, f.authCalls.Load())
}

func TestPaylinkClient_Errors(t *testing.T) {
	t.Run("bad credentials", func(t *testing.T) {
		f := &fakePaylink{}
		srv := httptest.NewServer(f.handler(t))
		defer srv.Close()
		c := NewPaylinkClient(srv.URL, "app-id", "wrong")
		_, err := c.GetInvoice(context.Background(), "tx-1")
		require.True(t, errors.Is(err, ErrGateway), "got %v", err)
	})

	t.Run("server error", func(t *testing.T) {
		f := &fakePaylink{failInvoice: true}
		c := newTestClient(t, f)
		_, err := c.CreateInvoice(context.Background(), Invoice{OrderNumber: "cp-1", Amount: 1})
		require.True(t, errors.Is(err, ErrGateway))
		require.Contains(t, err.Error(), "500")
	})

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()
		c := NewPaylinkClient(srv.URL, "app-id", "secret")
		_, err := c.GetInvoice(context.Background(), "tx-1")
		require.True(t, errors.Is(err, ErrGateway))
	})

	t.Run("empty transaction", func(t *testing.T) {
		c := NewPaylinkClient("http://127.0.0.1:1", "app-id", "secret")
		_, err := c.GetInvoice(context.Background(), "")
		require.True(t, errors.Is(err, ErrGateway))
	})
}
