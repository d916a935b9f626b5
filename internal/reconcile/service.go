package reconcile

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nocodeinfolab/ledgersync/internal/ledger"
)

//go:generate mockgen -source=service.go -destination=ledger_mock.go -package=reconcile
type Ledger interface {
	FindInvoiceByReference(ctx context.Context, reference string) (*ledger.Invoice, bool, error)
	FindOrCreateCustomer(ctx context.Context, name string) (string, error)
	CreateInvoice(ctx context.Context, in ledger.NewInvoice) (*ledger.Invoice, error)
	VoidInvoice(ctx context.Context, invoiceID string) error
	FindPaymentForInvoice(ctx context.Context, invoiceID, customerID string) (*ledger.Payment, bool, error)
	DeletePayment(ctx context.Context, paymentID string) error
	CreatePayment(ctx context.Context, inv *ledger.Invoice, amount int64, mode string) (*ledger.Payment, error)
	CreateCreditNote(ctx context.Context, customerID string, amount int64, note string) (*ledger.CreditNote, error)
}

// Service maps each incoming transaction onto exactly one live invoice and a
// consistent payment state, no matter how often the same event is replayed.
type Service struct {
	ledger Ledger
}

func NewService(l Ledger) *Service {
	return &Service{ledger: l}
}

// Reconcile runs the decision state machine for one transaction. A lookup
// transport failure aborts before any write: creating blind after a failed
// lookup is how duplicate invoices happen.
func (s *Service) Reconcile(ctx context.Context, tx *Transaction) (*Result, error) {
	if tx.TransactionID == "" {
		return nil, fmt.Errorf("transaction has no id")
	}

	existing, found, err := s.ledger.FindInvoiceByReference(ctx, tx.TransactionID)
	if err != nil {
		return nil, fmt.Errorf("looking up invoice for transaction %s: %w", tx.TransactionID, err)
	}

	if !found {
		return s.createFresh(ctx, tx)
	}

	if !needsRepair(existing, tx) {
		slog.Info("invoice already matches transaction", "transaction_id", tx.TransactionID, "invoice_id", existing.InvoiceID)

		return &Result{
			Action:    ActionUnchanged,
			Message:   "invoice already matches transaction, nothing to update",
			InvoiceID: existing.InvoiceID,
		}, nil
	}

	return s.recreate(ctx, existing, tx)
}

func (s *Service) createFresh(ctx context.Context, tx *Transaction) (*Result, error) {
	customerID, err := s.ledger.FindOrCreateCustomer(ctx, tx.CustomerName)
	if err != nil {
		return nil, fmt.Errorf("resolving customer %q: %w", tx.CustomerName, err)
	}

	inv, err := s.ledger.CreateInvoice(ctx, newInvoice(tx, customerID))
	if err != nil {
		return nil, fmt.Errorf("creating invoice for transaction %s: %w", tx.TransactionID, err)
	}

	slog.Info("invoice created", "transaction_id", tx.TransactionID, "invoice_id", inv.InvoiceID)

	result := &Result{
		Action:    ActionCreated,
		Message:   "invoice created",
		InvoiceID: inv.InvoiceID,
	}

	if err := s.settle(ctx, inv, tx, result); err != nil {
		return nil, err
	}

	return result, nil
}

// recreate replaces a stale invoice. The applied payment, if any, must be
// deleted before the void: the ledger rejects voiding an invoice with a
// payment attached, and proceeding past a failed delete could end with two
// live invoices for the same transaction.
func (s *Service) recreate(ctx context.Context, existing *ledger.Invoice, tx *Transaction) (*Result, error) {
	payment, found, err := s.ledger.FindPaymentForInvoice(ctx, existing.InvoiceID, existing.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("locating payment for invoice %s: %w", existing.InvoiceID, err)
	}

	if found {
		if err := s.ledger.DeletePayment(ctx, payment.PaymentID); err != nil {
			return nil, fmt.Errorf("deleting payment %s before void: %w", payment.PaymentID, err)
		}

		slog.Info("stale payment deleted", "transaction_id", tx.TransactionID, "payment_id", payment.PaymentID)
	}

	if err := s.ledger.VoidInvoice(ctx, existing.InvoiceID); err != nil {
		return nil, fmt.Errorf("voiding invoice %s: %w", existing.InvoiceID, err)
	}

	inv, err := s.ledger.CreateInvoice(ctx, newInvoice(tx, existing.CustomerID))
	if err != nil {
		return nil, fmt.Errorf("recreating invoice for transaction %s: %w", tx.TransactionID, err)
	}

	slog.Info("invoice voided and recreated",
		"transaction_id", tx.TransactionID,
		"old_invoice_id", existing.InvoiceID,
		"new_invoice_id", inv.InvoiceID)

	result := &Result{
		Action:    ActionRecreated,
		Message:   "invoice voided and recreated from transaction",
		InvoiceID: inv.InvoiceID,
	}

	if err := s.settle(ctx, inv, tx, result); err != nil {
		return nil, err
	}

	return result, nil
}

// settle records the transaction's payment against the invoice, clamped to
// its balance. Any surplus becomes a credit note so money is never dropped.
func (s *Service) settle(ctx context.Context, inv *ledger.Invoice, tx *Transaction, result *Result) error {
	if tx.TotalAmountPaid <= 0 {
		return nil
	}

	applied := min(tx.TotalAmountPaid, inv.Balance)

	if applied > 0 {
		payment, err := s.ledger.CreatePayment(ctx, inv, tx.TotalAmountPaid, tx.PaymentMode)
		if err != nil {
			return fmt.Errorf("creating payment for invoice %s: %w", inv.InvoiceID, err)
		}

		result.PaymentID = payment.PaymentID
	}

	if excess := tx.TotalAmountPaid - applied; excess > 0 {
		note, err := s.ledger.CreateCreditNote(ctx, inv.CustomerID, excess,
			fmt.Sprintf("Overpayment on transaction %s", tx.TransactionID))
		if err != nil {
			return fmt.Errorf("creating credit note for transaction %s: %w", tx.TransactionID, err)
		}

		result.CreditNoteID = note.CreditNoteID

		slog.Info("overpayment credited",
			"transaction_id", tx.TransactionID,
			"credit_note_id", note.CreditNoteID,
			"excess", excess)
	}

	return nil
}

// needsRepair reports whether the existing invoice no longer matches the
// transaction: line descriptions are compared in order and the summed line
// rates against the payable amount. An invoice without line items is always
// repaired.
func needsRepair(inv *ledger.Invoice, tx *Transaction) bool {
	if len(inv.LineItems) == 0 {
		return true
	}

	if len(inv.LineItems) != len(tx.ServiceLines) {
		return true
	}

	var sum int64

	for i, li := range inv.LineItems {
		if li.Name != tx.ServiceLines[i].Description {
			return true
		}

		sum += li.Rate
	}

	return sum != tx.PayableAmount
}

func newInvoice(tx *Transaction, customerID string) ledger.NewInvoice {
	lines := make([]ledger.LineItem, len(tx.ServiceLines))
	for i, sl := range tx.ServiceLines {
		lines[i] = ledger.LineItem{Name: sl.Description, Rate: sl.Rate}
	}

	return ledger.NewInvoice{
		CustomerID:      customerID,
		ReferenceNumber: tx.TransactionID,
		LineItems:       lines,
		Discount:        tx.DiscountAmount,
	}
}
