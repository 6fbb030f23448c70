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

var _ repository.CustomerProfileRepository = (*customerProfileRepo)(nil)

type customerProfileRepo struct{ pool *pgxpool.Pool }

func NewCustomerProfileRepo(pool *pgxpool.Pool) *customerProfileRepo {
	return &customerProfileRepo{pool: pool}
}

func (r *customerProfileRepo) Save(ctx context.Context, tx repository.Tx, p *model.CustomerProfile) error {
	const q = `
INSERT INTO customer_profiles (
  id, user_id, gateway, customer_id, created_at, updated_at
) VALUES (
  $1,$2,$3,$4,$5,$6
) ON CONFLICT (user_id, gateway) DO UPDATE SET
  customer_id=$4, updated_at=$6;`

	_, err := execSQL(ctx, r.pool, tx, q, p.ID, p.UserID, p.Gateway, p.CustomerID, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *customerProfileRepo) FindByUser(ctx context.Context, tx repository.Tx, userID, gateway string) (*model.CustomerProfile, error) {
	const q = `SELECT id, user_id, gateway, customer_id, created_at, updated_at FROM customer_profiles WHERE user_id=$1 AND gateway=$2 LIMIT 1;`
	row, err := pickRow(ctx, r.pool, tx, q, userID, gateway)
	if err != nil {
		return nil, err
	}
	p := &model.CustomerProfile{}
	if err := row.Scan(&p.ID, &p.UserID, &p.Gateway, &p.CustomerID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return p, nil
}

func (r *customerProfileRepo) SaveMethod(ctx context.Context, tx repository.Tx, m *model.SavedPaymentMethod) error {
	const q = `
INSERT INTO saved_payment_methods (
  id, profile_id, brand, last4, payload, created_at
) VALUES (
  $1,$2,$3,$4,$5,$6
) ON CONFLICT (id) DO UPDATE SET
  brand=$3, last4=$4, payload=$5;`

	_, err := execSQL(ctx, r.pool, tx, q, m.ID, m.ProfileID, m.Brand, m.Last4, m.Payload, m.CreatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *customerProfileRepo) ListMethods(ctx context.Context, tx repository.Tx, profileID string) ([]*model.SavedPaymentMethod, error) {
	const q = `SELECT id, profile_id, brand, last4, payload, created_at FROM saved_payment_methods WHERE profile_id=$1 ORDER BY created_at ASC;`
	rows, err := queryRows(ctx, r.pool, tx, q, profileID)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.SavedPaymentMethod
	for rows.Next() {
		m := &model.SavedPaymentMethod{}
		if err := rows.Scan(&m.ID, &m.ProfileID, &m.Brand, &m.Last4, &m.Payload, &m.CreatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, m)
	}
	return out, nil
}
