package repository

import (
	"context"

	"course-marketplace/internal/domain/model"
)

type CourseRepository interface {
	FindByID(ctx context.Context, tx Tx, id string) (*model.Course, error)
	ListByIDs(ctx context.Context, tx Tx, ids []string) ([]*model.Course, error)
	Save(ctx context.Context, tx Tx, c *model.Course) error

	// Counter maintenance; delta may be negative (refund flow).
	IncrementEnrollment(ctx context.Context, tx Tx, courseID string, delta int) error
	AddRevenue(ctx context.Context, tx Tx, courseID string, amount int64) error
}
