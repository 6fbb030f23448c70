// File: internal/usecase/enrollment_uc.go
package usecase

import (
	"context"

	"course-marketplace/internal/domain"
	"course-marketplace/internal/domain/model"
	"course-marketplace/internal/domain/ports/repository"
	"course-marketplace/internal/infra/metrics"

	"github.com/rs/zerolog"
)

var _ EnrollmentUseCase = (*enrollmentUC)(nil)

type EnrollmentUseCase interface {
	// EnrollOnPurchase creates a paid enrollment for (user, course) or
	// upgrades a pre-existing one in place, then bumps the course counters.
	// The (user, course) pair never yields two records.
	EnrollOnPurchase(ctx context.Context, tx repository.Tx, o *model.Order, courseID string, amountPaid int64) (*model.Enrollment, error)
	// RevokeOnRefund flips access off and decrements the course counter.
	RevokeOnRefund(ctx context.Context, tx repository.Tx, userID, courseID string) error
	Get(ctx context.Context, userID, courseID string) (*model.Enrollment, error)
}

type enrollmentUC struct {
	enrollments repository.EnrollmentRepository
	courses     repository.CourseRepository
	log         *zerolog.Logger
}

func NewEnrollmentUseCase(enrollments repository.EnrollmentRepository, courses repository.CourseRepository, logger *zerolog.Logger) *enrollmentUC {
	return &enrollmentUC{enrollments: enrollments, courses: courses, log: logger}
}

func (u *enrollmentUC) EnrollOnPurchase(ctx context.Context, tx repository.Tx, o *model.Order, courseID string, amountPaid int64) (*model.Enrollment, error) {
	existing, err := u.enrollments.FindByUserAndCourse(ctx, tx, o.UserID, courseID)
	if err != nil && err != domain.ErrNotFound {
		return nil, err
	}

	var e *model.Enrollment
	kind := "created"
	if err == domain.ErrNotFound {
		e = model.NewPaidEnrollment(o.UserID, courseID, o.ID, amountPaid, o.PaymentMethod)
	} else {
		e = existing
		e.UpgradeToPaid(o.ID, amountPaid, o.PaymentMethod)
		kind = "upgraded"
	}

	if err := u.enrollments.Save(ctx, tx, e); err != nil {
		metrics.IncEnrollment("failed")
		return nil, err
	}
	if err := u.courses.IncrementEnrollment(ctx, tx, courseID, 1); err != nil {
		u.log.Warn().Err(err).Str("course_id", courseID).Msg("enrollment counter increment failed")
	}
	if err := u.courses.AddRevenue(ctx, tx, courseID, amountPaid); err != nil {
		u.log.Warn().Err(err).Str("course_id", courseID).Msg("revenue accumulation failed")
	}

	metrics.IncEnrollment(kind)
	return e, nil
}

func (u *enrollmentUC) RevokeOnRefund(ctx context.Context, tx repository.Tx, userID, courseID string) error {
	e, err := u.enrollments.FindByUserAndCourse(ctx, tx, userID, courseID)
	if err != nil {
		return err
	}
	e.HasAccess = false
	if err := u.enrollments.Save(ctx, tx, e); err != nil {
		return err
	}
	return u.courses.IncrementEnrollment(ctx, tx, courseID, -1)
}

func (u *enrollmentUC) Get(ctx context.Context, userID, courseID string) (*model.Enrollment, error) {
	return u.enrollments.FindByUserAndCourse(ctx, nil, userID, courseID)
}
