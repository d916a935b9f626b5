package ledger

import "fmt"

// Invoice lifecycle states as reported by the ledger API.
type Status string

const (
	StatusDraft Status = "draft"
	StatusSent  Status = "sent"
	StatusVoid  Status = "void"
)

// LineItem is a single billable line on an invoice. Rate is in cents.
type LineItem struct {
	Name string
	Rate int64
}

// Invoice is the ledger's billing record for one transaction, correlated via
// ReferenceNumber. Monetary fields are in cents.
type Invoice struct {
	InvoiceID       string
	CustomerID      string
	ReferenceNumber string
	Status          Status
	LineItems       []LineItem
	Total           int64
	Discount        int64
	Balance         int64
}

// PaymentApplication records how much of a payment is applied to one invoice.
type PaymentApplication struct {
	InvoiceID     string
	AmountApplied int64
}

// Payment is a customer payment. A payment may be applied to several
// invoices; this service only ever creates single-invoice payments but must
// not assume the same of records it reads back.
type Payment struct {
	PaymentID  string
	CustomerID string
	Amount     int64
	Mode       string
	Invoices   []PaymentApplication
}

// CreditNote represents funds received but not applied to any invoice.
type CreditNote struct {
	CreditNoteID string
	CustomerID   string
	Total        int64
}

// NewInvoice is the input for invoice creation. Discount, when positive, is
// applied at the entity level before tax.
type NewInvoice struct {
	CustomerID      string
	ReferenceNumber string
	LineItems       []LineItem
	Discount        int64
}

// InvoicePatch is an in-place invoice update. The ledger requires a
// human-readable reason once the invoice has left draft state.
type InvoicePatch struct {
	LineItems []LineItem
	Discount  int64
	Reason    string
}

// APIError is a non-auth rejection from the ledger. It is never retried.
type APIError struct {
	StatusCode int
	Code       int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("ledger request failed: status %d, code %d: %s", e.StatusCode, e.Code, e.Message)
	}

	return fmt.Sprintf("ledger request failed: status %d", e.StatusCode)
}

// toAmount converts cents to the decimal currency units the ledger API speaks.
func toAmount(cents int64) float64 {
	return float64(cents) / 100
}

// toCents converts a decimal API amount to cents.
func toCents(amount float64) int64 {
	if amount >= 0 {
		return int64(amount*100 + 0.5)
	}

	return int64(amount*100 - 0.5)
}
