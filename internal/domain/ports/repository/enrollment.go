package repository

import (
	"context"

	"course-marketplace/internal/domain/model"
)

type EnrollmentRepository interface {
	// Save inserts or updates; the (user_id, course_id) pair is unique at the
	// database level so a duplicate insert fails rather than forking records.
	Save(ctx context.Context, tx Tx, e *model.Enrollment) error
	FindByUserAndCourse(ctx context.Context, tx Tx, userID, courseID string) (*model.Enrollment, error)
	ListByUser(ctx context.Context, tx Tx, userID string) ([]*model.Enrollment, error)
	CountAll(ctx context.Context, tx Tx) (int, error)
}
