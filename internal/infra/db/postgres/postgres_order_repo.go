package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"course-marketplace/internal/domain"
	"course-marketplace/internal/domain/model"
	"course-marketplace/internal/domain/ports/repository"
)

var _ repository.OrderRepository = (*orderRepo)(nil)

type orderRepo struct{ pool *pgxpool.Pool }

func NewOrderRepo(pool *pgxpool.Pool) *orderRepo {
	return &orderRepo{pool: pool}
}

const orderColumns = `id, number, user_id, course_ids, subtotal, discount, tax, total, status, payment_intent_id, payment_method, coupon_id, billing, refund, guest_new_user, temp_password, created_at, updated_at, paid_at`

func (r *orderRepo) Save(ctx context.Context, tx repository.Tx, o *model.Order) error {
	const q = `
INSERT INTO orders (
  id, number, user_id, course_ids, subtotal, discount, tax, total, status, payment_intent_id, payment_method, coupon_id, billing, refund, guest_new_user, temp_password, created_at, updated_at, paid_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19
) ON CONFLICT (id) DO UPDATE SET
  number=$2, status=$9, payment_intent_id=$10, payment_method=$11, coupon_id=$12, billing=$13, refund=$14, guest_new_user=$15, temp_password=$16, updated_at=$18, paid_at=$19;`

	billing, err := jsonOrNil(o.Billing)
	if err != nil {
		return domain.ErrInvalidArgument
	}
	refund, err := jsonOrNil(o.Refund)
	if err != nil {
		return domain.ErrInvalidArgument
	}

	_, err = execSQL(ctx, r.pool, tx, q,
		o.ID, o.Number, o.UserID, o.CourseIDs, o.Subtotal, o.Discount, o.Tax, o.Total,
		o.Status, nilIfEmpty(o.PaymentIntentID), o.PaymentMethod, o.CouponID,
		billing, refund, o.GuestNewUser, o.TempPassword, o.CreatedAt, o.UpdatedAt, o.PaidAt)
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

func (r *orderRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE id=$1;`
	return r.findOne(ctx, tx, q, id)
}

func (r *orderRepo) FindByPaymentIntentID(ctx context.Context, tx repository.Tx, intentID string) (*model.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE payment_intent_id=$1 LIMIT 1;`
	return r.findOne(ctx, tx, q, intentID)
}

func (r *orderRepo) FindByNumber(ctx context.Context, tx repository.Tx, number string) (*model.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE number=$1 LIMIT 1;`
	return r.findOne(ctx, tx, q, number)
}

func (r *orderRepo) findOne(ctx context.Context, tx repository.Tx, q string, args ...interface{}) (*model.Order, error) {
	row, err := pickRow(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, err
	}
	return scanOrder(row)
}

func (r *orderRepo) NextSequence(ctx context.Context, tx repository.Tx) (int64, error) {
	const q = `SELECT COUNT(*) + 1 FROM orders;`
	row, err := pickRow(ctx, r.pool, tx, q)
	if err != nil {
		return 0, err
	}
	var seq int64
	if err := row.Scan(&seq); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return seq, nil
}

func (r *orderRepo) SetPaymentIntentID(ctx context.Context, tx repository.Tx, orderID, intentID string) error {
	const q = `UPDATE orders SET payment_intent_id=$2, updated_at=NOW() WHERE id=$1;`
	cmd, err := execSQL(ctx, r.pool, tx, q, orderID, intentID)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// MarkCompletedIfPending atomically transitions to 'completed' only from a
// non-terminal status. Zero rows affected means another trigger won the race.
func (r *orderRepo) MarkCompletedIfPending(ctx context.Context, tx repository.Tx, orderID string, paidAt time.Time) (bool, error) {
	const q = `
    UPDATE orders
       SET status = 'completed',
           paid_at = $2,
           updated_at = NOW()
     WHERE id = $1
       AND status IN ('pending','processing');`

	cmd, err := execSQL(ctx, r.pool, tx, q, orderID, paidAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return false, err
		}
		return false, domain.ErrOperationFailed
	}
	return cmd.RowsAffected() >= 1, nil
}

// MarkRefundedIfCompleted guards against two admins refunding the same order:
// only the caller that flips completed -> refunded gets rows=1.
func (r *orderRepo) MarkRefundedIfCompleted(ctx context.Context, tx repository.Tx, orderID string) (bool, error) {
	const q = `
    UPDATE orders
       SET status = 'refunded',
           updated_at = NOW()
     WHERE id = $1
       AND status = 'completed';`

	cmd, err := execSQL(ctx, r.pool, tx, q, orderID)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return false, err
		}
		return false, domain.ErrOperationFailed
	}
	return cmd.RowsAffected() >= 1, nil
}

func (r *orderRepo) UpdateStatus(ctx context.Context, tx repository.Tx, orderID string, status model.OrderStatus) error {
	const q = `UPDATE orders SET status=$2, updated_at=NOW() WHERE id=$1;`
	_, err := execSQL(ctx, r.pool, tx, q, orderID, status)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *orderRepo) AttachRefund(ctx context.Context, tx repository.Tx, orderID string, rec *model.RefundRecord) error {
	const q = `UPDATE orders SET refund=$2, updated_at=NOW() WHERE id=$1;`
	b, err := json.Marshal(rec)
	if err != nil {
		return domain.ErrInvalidArgument
	}
	if _, err := execSQL(ctx, r.pool, tx, q, orderID, b); err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *orderRepo) ClearTempPassword(ctx context.Context, tx repository.Tx, orderID string) error {
	const q = `UPDATE orders SET temp_password='', updated_at=NOW() WHERE id=$1;`
	if _, err := execSQL(ctx, r.pool, tx, q, orderID); err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *orderRepo) ListPendingOlderThan(ctx context.Context, tx repository.Tx, olderThan time.Time, limit int) ([]*model.Order, error) {
	if limit <= 0 {
		limit = 100
	}
	q := `SELECT ` + orderColumns + ` FROM orders WHERE status IN ('pending','processing') AND payment_intent_id IS NOT NULL AND created_at < $1 ORDER BY created_at ASC LIMIT $2;`
	rows, err := queryRows(ctx, r.pool, tx, q, olderThan, limit)
	if err != nil {
		switch err {
		case pgx.ErrNoRows:
			return nil, domain.ErrNotFound
		case domain.ErrInvalidArgument, domain.ErrInvalidExecContext:
			return nil, err
		default:
			return nil, domain.ErrOperationFailed
		}
	}
	defer rows.Close()

	return scanOrders(rows)
}

func (r *orderRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string, offset, limit int) ([]*model.Order, error) {
	if limit <= 0 {
		limit = 50
	}
	q := `SELECT ` + orderColumns + ` FROM orders WHERE user_id=$1 ORDER BY created_at DESC OFFSET $2 LIMIT $3;`
	rows, err := queryRows(ctx, r.pool, tx, q, userID, offset, limit)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	return scanOrders(rows)
}

func scanOrders(rows pgx.Rows) ([]*model.Order, error) {
	var out []*model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

func scanOrder(row pgx.Row) (*model.Order, error) {
	o := &model.Order{}
	var intentID *string
	var billing, refund []byte
	if err := row.Scan(&o.ID, &o.Number, &o.UserID, &o.CourseIDs, &o.Subtotal, &o.Discount, &o.Tax, &o.Total,
		&o.Status, &intentID, &o.PaymentMethod, &o.CouponID, &billing, &refund,
		&o.GuestNewUser, &o.TempPassword, &o.CreatedAt, &o.UpdatedAt, &o.PaidAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	if intentID != nil {
		o.PaymentIntentID = *intentID
	}
	if len(billing) > 0 {
		_ = json.Unmarshal(billing, &o.Billing)
	}
	if len(refund) > 0 {
		_ = json.Unmarshal(refund, &o.Refund)
	}
	return o, nil
}

func jsonOrNil(v interface{}) (interface{}, error) {
	switch t := v.(type) {
	case *model.BillingAddress:
		if t == nil {
			return nil, nil
		}
	case *model.RefundRecord:
		if t == nil {
			return nil, nil
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
