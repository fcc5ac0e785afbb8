// Package payment talks to the hosted payment gateway that collects pack purchases.
package payment

import (
	"context"
	"errors"
)

// Gateway order statuses the reconciliation step understands.
// Anything else is treated as a failed payment.
const (
	StatusPaid    = "Paid"
	StatusPending = "Pending"
)

// ErrGateway wraps every failure talking to the gateway: transport errors,
// non-2xx responses and malformed bodies.
var ErrGateway = errors.New("payment gateway error")

// Invoice is one payment request, keyed by our purchase id.
type Invoice struct {
	OrderNumber string
	Amount      float64
	CallbackURL string
	Title       string
	ClientName  string
	ClientEmail string
	ClientPhone string
}

// Checkout is the gateway's answer to an invoice: where to send the browser.
type Checkout struct {
	TransactionNo string
	URL           string
}

// InvoiceStatus is the gateway's current view of an invoice.
type InvoiceStatus struct {
	TransactionNo string
	OrderNumber   string
	Status        string
	Amount        float64
}

// Gateway creates and inspects invoices. Calls are synchronous and never retried.
type Gateway interface {
	CreateInvoice(ctx context.Context, inv Invoice) (Checkout, error)
	GetInvoice(ctx context.Context, transactionNo string) (InvoiceStatus, error)
}
