package reconcile

// ServiceLine is one billed service on the incoming transaction. Rate is in
// cents; a service whose price was absent from the event carries a zero rate.
type ServiceLine struct {
	Description string
	Rate        int64
}

// Transaction is the external event the engine reconciles against the
// ledger. It is immutable once parsed. All amounts are in cents.
type Transaction struct {
	TransactionID   string
	CustomerName    string
	ServiceLines    []ServiceLine
	PayableAmount   int64
	DiscountAmount  int64
	TotalAmountPaid int64
	PaymentMode     string
}

// Action describes what the engine did with a transaction.
type Action string

const (
	ActionCreated   Action = "created"
	ActionUnchanged Action = "unchanged"
	ActionRecreated Action = "recreated"
)

// Result is the outcome of one reconciliation.
type Result struct {
	Action       Action
	Message      string
	InvoiceID    string
	PaymentID    string
	CreditNoteID string
}
