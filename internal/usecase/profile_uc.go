// File: internal/usecase/profile_uc.go
package usecase

import (
	"context"
	"time"

	"course-marketplace/internal/domain"
	"course-marketplace/internal/domain/model"
	"course-marketplace/internal/domain/ports/repository"
	"course-marketplace/internal/infra/security"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var _ ProfileUseCase = (*profileUC)(nil)

// SavedMethodView is the cleartext projection of a saved instrument; the
// provider payload itself never leaves the use case decrypted.
type SavedMethodView struct {
	ID    string
	Brand string
	Last4 string
}

// ProfileUseCase manages provider customer profiles and saved payment
// instruments. Instrument payloads are encrypted at rest.
type ProfileUseCase interface {
	SaveMethod(ctx context.Context, userID, gateway, customerID, brand, last4 string, payload []byte) (*SavedMethodView, error)
	ListMethods(ctx context.Context, userID, gateway string) ([]SavedMethodView, error)
}

type profileUC struct {
	profiles repository.CustomerProfileRepository
	enc      *security.EncryptionService
	log      *zerolog.Logger
}

func NewProfileUseCase(profiles repository.CustomerProfileRepository, enc *security.EncryptionService, logger *zerolog.Logger) *profileUC {
	return &profileUC{profiles: profiles, enc: enc, log: logger}
}

func (u *profileUC) SaveMethod(ctx context.Context, userID, gateway, customerID, brand, last4 string, payload []byte) (*SavedMethodView, error) {
	if userID == "" || gateway == "" || len(payload) == 0 {
		return nil, domain.ErrInvalidArgument
	}

	profile, err := u.profiles.FindByUser(ctx, nil, userID, gateway)
	if err == domain.ErrNotFound {
		profile = model.NewCustomerProfile(userID, gateway, customerID)
		if err := u.profiles.Save(ctx, nil, profile); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	sealed, err := u.enc.Encrypt(string(payload))
	if err != nil {
		return nil, err
	}

	m := &model.SavedPaymentMethod{
		ID:        uuid.NewString(),
		ProfileID: profile.ID,
		Brand:     brand,
		Last4:     last4,
		Payload:   []byte(sealed),
		CreatedAt: time.Now(),
	}
	if err := u.profiles.SaveMethod(ctx, nil, m); err != nil {
		return nil, err
	}
	return &SavedMethodView{ID: m.ID, Brand: m.Brand, Last4: m.Last4}, nil
}

func (u *profileUC) ListMethods(ctx context.Context, userID, gateway string) ([]SavedMethodView, error) {
	profile, err := u.profiles.FindByUser(ctx, nil, userID, gateway)
	if err != nil {
		if err == domain.ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	methods, err := u.profiles.ListMethods(ctx, nil, profile.ID)
	if err != nil {
		return nil, err
	}
	out := make([]SavedMethodView, 0, len(methods))
	for _, m := range methods {
		out = append(out, SavedMethodView{ID: m.ID, Brand: m.Brand, Last4: m.Last4})
	}
	return out, nil
}
