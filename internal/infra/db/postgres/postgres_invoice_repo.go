package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"course-marketplace/internal/domain"
	"course-marketplace/internal/domain/model"
	"course-marketplace/internal/domain/ports/repository"
)

var _ repository.InvoiceRepository = (*invoiceRepo)(nil)

type invoiceRepo struct{ pool *pgxpool.Pool }

func NewInvoiceRepo(pool *pgxpool.Pool) *invoiceRepo {
	return &invoiceRepo{pool: pool}
}

const invoiceColumns = `id, number, order_id, user_id, lines, subtotal, discount, tax, total, billing, status, paid_at, created_at`

func (r *invoiceRepo) Save(ctx context.Context, tx repository.Tx, inv *model.Invoice) error {
	// order_id carries a unique index: one invoice per order, enforced by
	// the database even if two completions slip past the status guard.
	const q = `
INSERT INTO invoices (
  id, number, order_id, user_id, lines, subtotal, discount, tax, total, billing, status, paid_at, created_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13
);`

	lines, err := json.Marshal(inv.Lines)
	if err != nil {
		return domain.ErrInvalidArgument
	}
	var billing interface{}
	if inv.Billing != nil {
		b, err := json.Marshal(inv.Billing)
		if err != nil {
			return domain.ErrInvalidArgument
		}
		billing = b
	}

	_, err = execSQL(ctx, r.pool, tx, q,
		inv.ID, inv.Number, inv.OrderID, inv.UserID, lines,
		inv.Subtotal, inv.Discount, inv.Tax, inv.Total, billing,
		inv.Status, inv.PaidAt, inv.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *invoiceRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Invoice, error) {
	q := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id=$1;`
	return r.findOne(ctx, tx, q, id)
}

func (r *invoiceRepo) FindByOrderID(ctx context.Context, tx repository.Tx, orderID string) (*model.Invoice, error) {
	q := `SELECT ` + invoiceColumns + ` FROM invoices WHERE order_id=$1 LIMIT 1;`
	return r.findOne(ctx, tx, q, orderID)
}

func (r *invoiceRepo) findOne(ctx context.Context, tx repository.Tx, q string, args ...interface{}) (*model.Invoice, error) {
	row, err := pickRow(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, err
	}
	inv := &model.Invoice{}
	var lines, billing []byte
	if err := row.Scan(&inv.ID, &inv.Number, &inv.OrderID, &inv.UserID, &lines,
		&inv.Subtotal, &inv.Discount, &inv.Tax, &inv.Total, &billing,
		&inv.Status, &inv.PaidAt, &inv.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	if len(lines) > 0 {
		_ = json.Unmarshal(lines, &inv.Lines)
	}
	if len(billing) > 0 {
		_ = json.Unmarshal(billing, &inv.Billing)
	}
	return inv, nil
}
