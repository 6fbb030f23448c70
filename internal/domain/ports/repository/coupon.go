package repository

import (
	"context"

	"course-marketplace/internal/domain/model"
)

type CouponRepository interface {
	FindByCode(ctx context.Context, tx Tx, code string) (*model.Coupon, error)
	Save(ctx context.Context, tx Tx, c *model.Coupon) error
	IncrementUsage(ctx context.Context, tx Tx, couponID string) error
}
