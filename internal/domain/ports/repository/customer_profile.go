package repository

import (
	"context"

	"course-marketplace/internal/domain/model"
)

type CustomerProfileRepository interface {
	Save(ctx context.Context, tx Tx, p *model.CustomerProfile) error
	FindByUser(ctx context.Context, tx Tx, userID, gateway string) (*model.CustomerProfile, error)
	SaveMethod(ctx context.Context, tx Tx, m *model.SavedPaymentMethod) error
	ListMethods(ctx context.Context, tx Tx, profileID string) ([]*model.SavedPaymentMethod, error)
}
