// File: internal/usecase/coupon_uc.go
package usecase

import (
	"context"
	"strings"
	"time"

	"course-marketplace/internal/domain"
	"course-marketplace/internal/domain/model"
	"course-marketplace/internal/domain/ports/repository"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ CouponUseCase = (*couponUC)(nil)

type CouponUseCase interface {
	// Validate checks a code against min-purchase/expiry/usage-limit rules and
	// returns the discount it grants on the subtotal. Pure read: validation
	// alone never mutates the coupon.
	Validate(ctx context.Context, tx repository.Tx, code string, subtotal int64) (*model.Coupon, int64, error)
	// MarkApplied increments the coupon usage counter; called exactly once per
	// order the coupon was actually applied to.
	MarkApplied(ctx context.Context, tx repository.Tx, couponID string) error
}

type couponUC struct {
	coupons repository.CouponRepository
	log     *zerolog.Logger
}

func NewCouponUseCase(coupons repository.CouponRepository, logger *zerolog.Logger) *couponUC {
	return &couponUC{coupons: coupons, log: logger}
}

func (u *couponUC) Validate(ctx context.Context, tx repository.Tx, code string, subtotal int64) (*model.Coupon, int64, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, 0, domain.ErrCouponInvalid
	}

	c, err := u.coupons.FindByCode(ctx, tx, code)
	if err != nil {
		if err == domain.ErrNotFound {
			return nil, 0, domain.ErrCouponInvalid
		}
		return nil, 0, err
	}
	if !c.Active {
		return nil, 0, domain.ErrCouponInvalid
	}
	if c.ExpiresAt != nil && time.Now().After(*c.ExpiresAt) {
		return nil, 0, domain.ErrCouponExpired
	}
	if c.UsageLimit > 0 && c.UsageCount >= c.UsageLimit {
		return nil, 0, domain.ErrCouponUsageLimitReached
	}
	if subtotal < c.MinPurchase {
		return nil, 0, domain.ErrMinPurchaseNotMet
	}

	return c, c.DiscountFor(subtotal), nil
}

func (u *couponUC) MarkApplied(ctx context.Context, tx repository.Tx, couponID string) error {
	return u.coupons.IncrementUsage(ctx, tx, couponID)
}
