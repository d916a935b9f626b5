package history

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrDisabled is returned by reads when no history database is configured.
var ErrDisabled = errors.New("reconciliation history is disabled")

// Record is one reconciliation outcome, kept for audit.
type Record struct {
	ID            uuid.UUID
	TransactionID string
	Action        string
	InvoiceID     string
	PaymentID     string
	CreditNoteID  string
	Message       string
	CreatedAt     time.Time
}

type ListFilter struct {
	TransactionID string
	Limit         int
}

type Repository interface {
	CreateRecord(ctx context.Context, rec *Record) error
	ListRecords(ctx context.Context, filter ListFilter) ([]*Record, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Record persists one reconciliation outcome. It assigns the id; the store
// fills in the timestamp.
func (s *Service) Record(ctx context.Context, rec *Record) error {
	rec.ID = uuid.New()

	return s.repo.CreateRecord(ctx, rec)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Record, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}

	return s.repo.ListRecords(ctx, filter)
}

// Disabled returns a repository that drops writes and refuses reads, for
// deployments without a history database.
func Disabled() Repository {
	return disabledRepo{}
}

type disabledRepo struct{}

func (disabledRepo) CreateRecord(context.Context, *Record) error { return nil }

func (disabledRepo) ListRecords(context.Context, ListFilter) ([]*Record, error) {
	return nil, ErrDisabled
}
