package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// DefaultTimeout bounds every gateway round trip.
const DefaultTimeout = 15 * time.Second

// tokenLifetime is how long an auth token is reused. The gateway issues
// non-persistent tokens valid for 30 minutes.
const tokenLifetime = 25 * time.Minute

// PaylinkClient is a Gateway backed by the Paylink REST API.
type PaylinkClient struct {
	baseURL    string
	apiID      string
	secretKey  string
	HTTPClient *http.Client
	now        func() time.Time

	mu        sync.Mutex
	token     string
	tokenTime time.Time
}

// NewPaylinkClient creates a client for the API rooted at baseURL.
// PRE: baseURL is an absolute URL; apiID and secretKey are the merchant credentials
func NewPaylinkClient(baseURL, apiID, secretKey string) *PaylinkClient {
	return &PaylinkClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiID:      apiID,
		secretKey:  secretKey,
		HTTPClient: &http.Client{Timeout: DefaultTimeout},
		now:        time.Now,
	}
}

type paylinkProduct struct {
	Title string  `json:"title"`
	Price float64 `json:"price"`
	Qty   int     `json:"qty"`
}

type addInvoiceRequest struct {
	OrderNumber  string           `json:"orderNumber"`
	Amount       float64          `json:"amount"`
	CallBackURL  string           `json:"callBackUrl"`
	ClientName   string           `json:"clientName"`
	ClientEmail  string           `json:"clientEmail,omitempty"`
	ClientMobile string           `json:"clientMobile"`
	Products     []paylinkProduct `json:"products"`
}

type invoiceResponse struct {
	TransactionNo       string  `json:"transactionNo"`
	URL                 string  `json:"url"`
	OrderStatus         string  `json:"orderStatus"`
	Amount              float64 `json:"amount"`
	GatewayOrderRequest struct {
		OrderNumber string `json:"orderNumber"`
	} `json:"gatewayOrderRequest"`
}

// CreateInvoice registers an invoice and returns the hosted payment page URL.
// PRE: inv.OrderNumber is non-empty; inv.Amount > 0
// POST: on success the gateway holds an unpaid invoice for inv.OrderNumber
func (c *PaylinkClient) CreateInvoice(ctx context.Context, inv Invoice) (Checkout, error) {
	body := addInvoiceRequest{
		OrderNumber:  inv.OrderNumber,
		Amount:       inv.Amount,
		CallBackURL:  inv.CallbackURL,
		ClientName:   inv.ClientName,
		ClientEmail:  inv.ClientEmail,
		ClientMobile: inv.ClientPhone,
		Products:     []paylinkProduct{{Title: inv.Title, Price: inv.Amount, Qty: 1}},
	}
	var out invoiceResponse
	if err := c.call(ctx, http.MethodPost, "/api/addInvoice", body, &out); err != nil {
		return Checkout{}, err
	}
	if out.TransactionNo == "" || out.URL == "" {
		return Checkout{}, fmt.Errorf("%w: addInvoice response missing transaction or url", ErrGateway)
	}
	slog.Info("payment_event", "event", "invoice_created", "order_number", inv.OrderNumber, "transaction_no", out.TransactionNo)
	return Checkout{TransactionNo: out.TransactionNo, URL: out.URL}, nil
}

// GetInvoice fetches the current status of an invoice.
func (c *PaylinkClient) GetInvoice(ctx context.Context, transactionNo string) (InvoiceStatus, error) {
	if transactionNo == "" {
		return InvoiceStatus{}, fmt.Errorf("%w: empty transaction number", ErrGateway)
	}
	var out invoiceResponse
	if err := c.call(ctx, http.MethodGet, "/api/getInvoice/"+url.PathEscape(transactionNo), nil, &out); err != nil {
		return InvoiceStatus{}, err
	}
	return InvoiceStatus{
		TransactionNo: out.TransactionNo,
		OrderNumber:   out.GatewayOrderRequest.OrderNumber,
		Status:        out.OrderStatus,
		Amount:        out.Amount,
	}, nil
}

func (c *PaylinkClient) call(ctx context.Context, method, path string, in, out any) error {
	token, err := c.authToken(ctx)
	if err != nil {
		return err
	}
	status, err := c.do(ctx, method, path, token, in, out)
	if status == http.StatusUnauthorized {
		c.mu.Lock()
		c.token = ""
		c.mu.Unlock()
	}
	return err
}

func (c *PaylinkClient) authToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" && c.now().Sub(c.tokenTime) < tokenLifetime {
		return c.token, nil
	}

	req := map[string]any{"apiId": c.apiID, "secretKey": c.secretKey, "persistToken": false}
	var out struct {
		IDToken string `json:"id_token"`
	}
	if _, err := c.do(ctx, http.MethodPost, "/api/auth", "", req, &out); err != nil {
		return "", err
	}
	if out.IDToken == "" {
		return "", fmt.Errorf("%w: auth response missing token", ErrGateway)
	}
	c.token = out.IDToken
	c.tokenTime = c.now()
	return c.token, nil
}

func (c *PaylinkClient) do(ctx context.Context, method, path, token string, in, out any) (int, error) {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return 0, fmt.Errorf("encode %s: %w", path, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, fmt.Errorf("%w: build %s: %v", ErrGateway, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := c.now()
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		slog.Error("payment_event", "event", "gateway_unreachable", "path", path, "error", err)
		return 0, fmt.Errorf("%w: %s: %v", ErrGateway, path, err)
	}
	defer resp.Body.Close()
	slog.Debug("payment_event", "event", "gateway_call", "method", method, "path", path,
		"status", resp.StatusCode, "duration_ms", c.now().Sub(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return resp.StatusCode, fmt.Errorf("%w: %s returned %d: %s", ErrGateway, path, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("%w: decode %s: %v", ErrGateway, path, err)
	}
	return resp.StatusCode, nil
}
