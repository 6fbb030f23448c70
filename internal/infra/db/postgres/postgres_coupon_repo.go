package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"course-marketplace/internal/domain"
	"course-marketplace/internal/domain/model"
	"course-marketplace/internal/domain/ports/repository"
)

var _ repository.CouponRepository = (*couponRepo)(nil)

type couponRepo struct{ pool *pgxpool.Pool }

func NewCouponRepo(pool *pgxpool.Pool) *couponRepo {
	return &couponRepo{pool: pool}
}

const couponColumns = `id, code, type, value, min_purchase, expires_at, usage_limit, usage_count, active, created_at`

func (r *couponRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.Coupon, error) {
	q := `SELECT ` + couponColumns + ` FROM coupons WHERE code=$1 LIMIT 1;`
	row, err := pickRow(ctx, r.pool, tx, q, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, err
	}
	c := &model.Coupon{}
	if err := row.Scan(&c.ID, &c.Code, &c.Type, &c.Value, &c.MinPurchase,
		&c.ExpiresAt, &c.UsageLimit, &c.UsageCount, &c.Active, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return c, nil
}

func (r *couponRepo) Save(ctx context.Context, tx repository.Tx, c *model.Coupon) error {
	const q = `
INSERT INTO coupons (
  id, code, type, value, min_purchase, expires_at, usage_limit, usage_count, active, created_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10
) ON CONFLICT (id) DO UPDATE SET
  code=$2, type=$3, value=$4, min_purchase=$5, expires_at=$6, usage_limit=$7, usage_count=$8, active=$9;`

	_, err := execSQL(ctx, r.pool, tx, q,
		c.ID, c.Code, c.Type, c.Value, c.MinPurchase, c.ExpiresAt, c.UsageLimit, c.UsageCount, c.Active, c.CreatedAt)
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

func (r *couponRepo) IncrementUsage(ctx context.Context, tx repository.Tx, couponID string) error {
	const q = `UPDATE coupons SET usage_count = usage_count + 1 WHERE id=$1;`
	cmd, err := execSQL(ctx, r.pool, tx, q, couponID)
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
