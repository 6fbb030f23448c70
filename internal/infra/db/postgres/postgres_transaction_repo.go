package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"course-marketplace/internal/domain"
	"course-marketplace/internal/domain/model"
	"course-marketplace/internal/domain/ports/repository"
)

var _ repository.TransactionRepository = (*transactionRepo)(nil)

type transactionRepo struct{ pool *pgxpool.Pool }

func NewTransactionRepo(pool *pgxpool.Pool) *transactionRepo {
	return &transactionRepo{pool: pool}
}

const transactionColumns = `id, order_id, type, status, amount, currency, gateway, gateway_txn_id, response, fail_reason, created_at, updated_at`

// Upsert keys on gateway_txn_id so a retried webhook updates the existing
// audit row instead of inserting a duplicate.
func (r *transactionRepo) Upsert(ctx context.Context, tx repository.Tx, t *model.Transaction) error {
	const q = `
INSERT INTO transactions (
  id, order_id, type, status, amount, currency, gateway, gateway_txn_id, response, fail_reason, created_at, updated_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12
) ON CONFLICT (gateway_txn_id) DO UPDATE SET
  status=$4, response=$9, fail_reason=$10, updated_at=$12;`

	_, err := execSQL(ctx, r.pool, tx, q,
		t.ID, t.OrderID, t.Type, t.Status, t.Amount, t.Currency, t.Gateway,
		t.GatewayTxnID, t.Response, t.FailReason, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *transactionRepo) FindByGatewayTxnID(ctx context.Context, tx repository.Tx, gatewayTxnID string) (*model.Transaction, error) {
	q := `SELECT ` + transactionColumns + ` FROM transactions WHERE gateway_txn_id=$1 LIMIT 1;`
	row, err := pickRow(ctx, r.pool, tx, q, gatewayTxnID)
	if err != nil {
		return nil, err
	}
	return scanTransaction(row)
}

func (r *transactionRepo) ListByOrder(ctx context.Context, tx repository.Tx, orderID string) ([]*model.Transaction, error) {
	q := `SELECT ` + transactionColumns + ` FROM transactions WHERE order_id=$1 ORDER BY created_at ASC;`
	rows, err := queryRows(ctx, r.pool, tx, q, orderID)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// SumRevenueSince totals succeeded payment and refund amounts over a named
// rolling window, so refunds subtract from the figure.
func (r *transactionRepo) SumRevenueSince(ctx context.Context, tx repository.Tx, period string) (int64, error) {
	var interval string
	switch period {
	case "week":
		interval = "7 days"
	case "month":
		interval = "30 days"
	case "year":
		interval = "365 days"
	default:
		return 0, domain.ErrInvalidArgument
	}

	q := `SELECT COALESCE(SUM(amount), 0) FROM transactions WHERE status='succeeded' AND created_at >= NOW() - INTERVAL '` + interval + `';`
	row, err := pickRow(ctx, r.pool, tx, q)
	if err != nil {
		return 0, err
	}
	var sum int64
	if err := row.Scan(&sum); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return sum, nil
}

func scanTransaction(row pgx.Row) (*model.Transaction, error) {
	t := &model.Transaction{}
	if err := row.Scan(&t.ID, &t.OrderID, &t.Type, &t.Status, &t.Amount, &t.Currency,
		&t.Gateway, &t.GatewayTxnID, &t.Response, &t.FailReason, &t.CreatedAt, &t.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return t, nil
}
