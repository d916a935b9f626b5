package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nocodeinfolab/ledgersync/internal/history"
)

// Store persists reconciliation records in Postgres.
//
// Expected table:
//
//	CREATE TABLE reconciliations (
//	    id              UUID PRIMARY KEY,
//	    transaction_id  TEXT NOT NULL,
//	    action          TEXT NOT NULL,
//	    invoice_id      TEXT NOT NULL DEFAULT '',
//	    payment_id      TEXT NOT NULL DEFAULT '',
//	    credit_note_id  TEXT NOT NULL DEFAULT '',
//	    message         TEXT NOT NULL DEFAULT '',
//	    created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
//	);
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) CreateRecord(ctx context.Context, rec *history.Record) error {
	query := `
		INSERT INTO reconciliations (id, transaction_id, action, invoice_id, payment_id, credit_note_id, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		rec.ID,
		rec.TransactionID,
		rec.Action,
		rec.InvoiceID,
		rec.PaymentID,
		rec.CreditNoteID,
		rec.Message,
	).Scan(&rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating reconciliation record: %w", err)
	}

	return nil
}

func (s *Store) ListRecords(ctx context.Context, filter history.ListFilter) ([]*history.Record, error) {
	query := `
		SELECT id, transaction_id, action, invoice_id, payment_id, credit_note_id, message, created_at
		FROM reconciliations
	`

	args := []any{}

	if filter.TransactionID != "" {
		query += ` WHERE transaction_id = $1`
		args = append(args, filter.TransactionID)
	}

	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d`, len(args)+1)
	args = append(args, filter.Limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing reconciliation records: %w", err)
	}
	defer rows.Close()

	var records []*history.Record

	for rows.Next() {
		var rec history.Record

		if err := rows.Scan(
			&rec.ID, &rec.TransactionID, &rec.Action, &rec.InvoiceID,
			&rec.PaymentID, &rec.CreditNoteID, &rec.Message, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning reconciliation record: %w", err)
		}

		records = append(records, &rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating reconciliation records: %w", err)
	}

	return records, nil
}
