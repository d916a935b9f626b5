package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// adjustmentReason accompanies every mutation of an invoice that has left
// draft state; the ledger rejects such updates without one.
const adjustmentReason = "Adjusted to match the source transaction"

// Client exposes the narrow set of ledger operations the reconciliation
// engine needs. Every call is routed through the auth gateway.
type Client struct {
	gateway *Gateway
	baseURL string
	orgID   string
}

func NewClient(baseURL, organizationID string, gateway *Gateway) *Client {
	return &Client{
		gateway: gateway,
		baseURL: baseURL,
		orgID:   organizationID,
	}
}

// FindInvoiceByReference looks up the live invoice correlated to the given
// transaction id. The remote reference filter may match on substrings, so
// candidates are re-filtered locally for an exact match before the full
// invoice is fetched. Absence is reported via the bool, never as an error.
func (c *Client) FindInvoiceByReference(ctx context.Context, reference string) (*Invoice, bool, error) {
	resp, err := c.call(ctx, http.MethodGet, "/invoices", url.Values{"reference_number": {reference}}, nil)
	if err != nil {
		return nil, false, fmt.Errorf("listing invoices by reference: %w", err)
	}

	var body struct {
		Invoices []invoiceJSON `json:"invoices"`
	}

	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return nil, false, fmt.Errorf("decoding invoice list: %w", err)
	}

	for _, inv := range body.Invoices {
		if inv.ReferenceNumber != reference || Status(inv.Status) == StatusVoid {
			continue
		}

		full, err := c.getInvoice(ctx, inv.InvoiceID)
		if err != nil {
			return nil, false, err
		}

		return full, true, nil
	}

	return nil, false, nil
}

// getInvoice fetches the full invoice record; the list endpoint omits line
// items, which the diff needs.
func (c *Client) getInvoice(ctx context.Context, invoiceID string) (*Invoice, error) {
	resp, err := c.call(ctx, http.MethodGet, "/invoices/"+invoiceID, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching invoice %s: %w", invoiceID, err)
	}

	var body struct {
		Invoice invoiceJSON `json:"invoice"`
	}

	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return nil, fmt.Errorf("decoding invoice: %w", err)
	}

	return body.Invoice.toInvoice(), nil
}

// FindOrCreateCustomer resolves a customer id by exact name, creating the
// contact when no match exists. Failures propagate: no invoice can be
// created without a customer.
func (c *Client) FindOrCreateCustomer(ctx context.Context, name string) (string, error) {
	resp, err := c.call(ctx, http.MethodGet, "/contacts", url.Values{"contact_name": {name}}, nil)
	if err != nil {
		return "", fmt.Errorf("searching contacts: %w", err)
	}

	var list struct {
		Contacts []struct {
			ContactID   string `json:"contact_id"`
			ContactName string `json:"contact_name"`
		} `json:"contacts"`
	}

	if err := json.Unmarshal(resp.Body, &list); err != nil {
		return "", fmt.Errorf("decoding contact list: %w", err)
	}

	for _, contact := range list.Contacts {
		if contact.ContactName == name {
			return contact.ContactID, nil
		}
	}

	resp, err = c.call(ctx, http.MethodPost, "/contacts", nil, map[string]any{"contact_name": name})
	if err != nil {
		return "", fmt.Errorf("creating contact: %w", err)
	}

	var created struct {
		Contact struct {
			ContactID string `json:"contact_id"`
		} `json:"contact"`
	}

	if err := json.Unmarshal(resp.Body, &created); err != nil {
		return "", fmt.Errorf("decoding created contact: %w", err)
	}

	return created.Contact.ContactID, nil
}

// CreateInvoice creates a fresh invoice. A positive discount is applied at
// the entity level, before tax.
func (c *Client) CreateInvoice(ctx context.Context, in NewInvoice) (*Invoice, error) {
	lines := make([]lineItemJSON, len(in.LineItems))
	for i, li := range in.LineItems {
		lines[i] = lineItemJSON{Name: li.Name, Rate: toAmount(li.Rate)}
	}

	payload := map[string]any{
		"customer_id":      in.CustomerID,
		"reference_number": in.ReferenceNumber,
		"line_items":       lines,
	}

	if in.Discount > 0 {
		payload["discount"] = toAmount(in.Discount)
		payload["discount_type"] = "entity_level"
		payload["is_discount_before_tax"] = true
	}

	resp, err := c.call(ctx, http.MethodPost, "/invoices", nil, payload)
	if err != nil {
		return nil, fmt.Errorf("creating invoice: %w", err)
	}

	var body struct {
		Invoice invoiceJSON `json:"invoice"`
	}

	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return nil, fmt.Errorf("decoding created invoice: %w", err)
	}

	return body.Invoice.toInvoice(), nil
}

// VoidInvoice irreversibly voids an invoice. The caller must have detached
// any applied payment first; the ledger rejects voiding otherwise.
func (c *Client) VoidInvoice(ctx context.Context, invoiceID string) error {
	if _, err := c.call(ctx, http.MethodPost, "/invoices/"+invoiceID+"/status/void", nil, nil); err != nil {
		return fmt.Errorf("voiding invoice %s: %w", invoiceID, err)
	}

	return nil
}

// UpdateInvoice patches an invoice in place, carrying the mandatory
// adjustment reason for invoices that have left draft state.
func (c *Client) UpdateInvoice(ctx context.Context, invoiceID string, patch InvoicePatch) (*Invoice, error) {
	lines := make([]lineItemJSON, len(patch.LineItems))
	for i, li := range patch.LineItems {
		lines[i] = lineItemJSON{Name: li.Name, Rate: toAmount(li.Rate)}
	}

	reason := patch.Reason
	if reason == "" {
		reason = adjustmentReason
	}

	payload := map[string]any{
		"line_items": lines,
		"reason":     reason,
	}

	if patch.Discount > 0 {
		payload["discount"] = toAmount(patch.Discount)
		payload["discount_type"] = "entity_level"
		payload["is_discount_before_tax"] = true
	}

	resp, err := c.call(ctx, http.MethodPut, "/invoices/"+invoiceID, nil, payload)
	if err != nil {
		return nil, fmt.Errorf("updating invoice %s: %w", invoiceID, err)
	}

	var body struct {
		Invoice invoiceJSON `json:"invoice"`
	}

	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return nil, fmt.Errorf("decoding updated invoice: %w", err)
	}

	return body.Invoice.toInvoice(), nil
}

// FindPaymentForInvoice locates a payment of the customer that is actually
// applied to the given invoice. A customer may have unrelated payments, so
// each candidate's applications are checked for the target invoice id.
func (c *Client) FindPaymentForInvoice(ctx context.Context, invoiceID, customerID string) (*Payment, bool, error) {
	resp, err := c.call(ctx, http.MethodGet, "/customerpayments", url.Values{"customer_id": {customerID}}, nil)
	if err != nil {
		return nil, false, fmt.Errorf("listing payments for customer %s: %w", customerID, err)
	}

	var body struct {
		CustomerPayments []paymentJSON `json:"customerpayments"`
	}

	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return nil, false, fmt.Errorf("decoding payment list: %w", err)
	}

	for _, p := range body.CustomerPayments {
		for _, app := range p.Invoices {
			if app.InvoiceID == invoiceID {
				return p.toPayment(), true, nil
			}
		}
	}

	return nil, false, nil
}

// DeletePayment removes a payment record from the ledger.
func (c *Client) DeletePayment(ctx context.Context, paymentID string) error {
	if _, err := c.call(ctx, http.MethodDelete, "/customerpayments/"+paymentID, nil, nil); err != nil {
		return fmt.Errorf("deleting payment %s: %w", paymentID, err)
	}

	return nil
}

// CreatePayment records a payment against the invoice. The applied amount is
// clamped to the invoice balance; callers settle any surplus via a credit
// note instead.
func (c *Client) CreatePayment(ctx context.Context, inv *Invoice, amount int64, mode string) (*Payment, error) {
	applied := min(amount, inv.Balance)

	payload := map[string]any{
		"customer_id":  inv.CustomerID,
		"payment_mode": mode,
		"amount":       toAmount(applied),
		"invoices": []map[string]any{
			{"invoice_id": inv.InvoiceID, "amount_applied": toAmount(applied)},
		},
	}

	resp, err := c.call(ctx, http.MethodPost, "/customerpayments", nil, payload)
	if err != nil {
		return nil, fmt.Errorf("creating payment for invoice %s: %w", inv.InvoiceID, err)
	}

	var body struct {
		Payment paymentJSON `json:"payment"`
	}

	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return nil, fmt.Errorf("decoding created payment: %w", err)
	}

	return body.Payment.toPayment(), nil
}

// CreateCreditNote records received funds that could not be applied to the
// invoice balance.
func (c *Client) CreateCreditNote(ctx context.Context, customerID string, amount int64, note string) (*CreditNote, error) {
	payload := map[string]any{
		"customer_id": customerID,
		"line_items": []lineItemJSON{
			{Name: "Overpayment", Rate: toAmount(amount)},
		},
		"notes": note,
	}

	resp, err := c.call(ctx, http.MethodPost, "/creditnotes", nil, payload)
	if err != nil {
		return nil, fmt.Errorf("creating credit note: %w", err)
	}

	var body struct {
		CreditNote struct {
			CreditNoteID string  `json:"creditnote_id"`
			CustomerID   string  `json:"customer_id"`
			Total        float64 `json:"total"`
		} `json:"creditnote"`
	}

	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return nil, fmt.Errorf("decoding created credit note: %w", err)
	}

	return &CreditNote{
		CreditNoteID: body.CreditNote.CreditNoteID,
		CustomerID:   body.CreditNote.CustomerID,
		Total:        toCents(body.CreditNote.Total),
	}, nil
}

// call performs one authorized request against the ledger API and turns any
// non-2xx response into an *APIError. The request body is marshalled once so
// the auth retry can replay it.
func (c *Client) call(ctx context.Context, method, path string, query url.Values, payload any) (*Response, error) {
	var encoded []byte

	if payload != nil {
		var err error
		if encoded, err = json.Marshal(payload); err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
	}

	if query == nil {
		query = url.Values{}
	}

	query.Set("organization_id", c.orgID)

	target := c.baseURL + path + "?" + query.Encode()

	resp, err := c.gateway.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		var reader *bytes.Reader
		if encoded != nil {
			reader = bytes.NewReader(encoded)
		} else {
			reader = bytes.NewReader(nil)
		}

		req, err := http.NewRequestWithContext(ctx, method, target, reader)
		if err != nil {
			return nil, err
		}

		if encoded != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		return req, nil
	})
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}

		var detail struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		}

		if err := json.Unmarshal(resp.Body, &detail); err == nil {
			apiErr.Code = detail.Code
			apiErr.Message = detail.Message
		}

		return nil, apiErr
	}

	return resp, nil
}

type lineItemJSON struct {
	Name string  `json:"name"`
	Rate float64 `json:"rate"`
}

type invoiceJSON struct {
	InvoiceID       string         `json:"invoice_id"`
	CustomerID      string         `json:"customer_id"`
	ReferenceNumber string         `json:"reference_number"`
	Status          string         `json:"status"`
	LineItems       []lineItemJSON `json:"line_items"`
	Total           float64        `json:"total"`
	Discount        float64        `json:"discount"`
	Balance         float64        `json:"balance"`
}

func (j invoiceJSON) toInvoice() *Invoice {
	inv := &Invoice{
		InvoiceID:       j.InvoiceID,
		CustomerID:      j.CustomerID,
		ReferenceNumber: j.ReferenceNumber,
		Status:          Status(j.Status),
		Total:           toCents(j.Total),
		Discount:        toCents(j.Discount),
		Balance:         toCents(j.Balance),
	}

	for _, li := range j.LineItems {
		inv.LineItems = append(inv.LineItems, LineItem{Name: li.Name, Rate: toCents(li.Rate)})
	}

	return inv
}

type paymentJSON struct {
	PaymentID   string  `json:"payment_id"`
	CustomerID  string  `json:"customer_id"`
	Amount      float64 `json:"amount"`
	PaymentMode string  `json:"payment_mode"`
	Invoices    []struct {
		InvoiceID     string  `json:"invoice_id"`
		AmountApplied float64 `json:"amount_applied"`
	} `json:"invoices"`
}

func (j paymentJSON) toPayment() *Payment {
	p := &Payment{
		PaymentID:  j.PaymentID,
		CustomerID: j.CustomerID,
		Amount:     toCents(j.Amount),
		Mode:       j.PaymentMode,
	}

	for _, app := range j.Invoices {
		p.Invoices = append(p.Invoices, PaymentApplication{
			InvoiceID:     app.InvoiceID,
			AmountApplied: toCents(app.AmountApplied),
		})
	}

	return p
}
