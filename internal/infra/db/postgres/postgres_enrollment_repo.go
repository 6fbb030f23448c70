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

var _ repository.EnrollmentRepository = (*enrollmentRepo)(nil)

type enrollmentRepo struct{ pool *pgxpool.Pool }

func NewEnrollmentRepo(pool *pgxpool.Pool) *enrollmentRepo {
	return &enrollmentRepo{pool: pool}
}

const enrollmentColumns = `id, user_id, course_id, order_id, access_type, amount_paid, payment_method, has_access, completed_lessons, time_spent_seconds, quizzes_taken, assignments_done, enrolled_at, updated_at`

// Save upserts by primary key. The (user_id, course_id) unique index is the
// backstop: inserting a second enrollment for the same pair fails with
// ErrAlreadyExists so callers fall back to upgrade-in-place.
func (r *enrollmentRepo) Save(ctx context.Context, tx repository.Tx, e *model.Enrollment) error {
	const q = `
INSERT INTO enrollments (
  id, user_id, course_id, order_id, access_type, amount_paid, payment_method, has_access, completed_lessons, time_spent_seconds, quizzes_taken, assignments_done, enrolled_at, updated_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14
) ON CONFLICT (id) DO UPDATE SET
  order_id=$4, access_type=$5, amount_paid=$6, payment_method=$7, has_access=$8,
  completed_lessons=$9, time_spent_seconds=$10, quizzes_taken=$11, assignments_done=$12, updated_at=$14;`

	_, err := execSQL(ctx, r.pool, tx, q,
		e.ID, e.UserID, e.CourseID, e.OrderID, e.AccessType, e.AmountPaid, e.PaymentMethod, e.HasAccess,
		e.CompletedLessons, e.TimeSpentSeconds, e.QuizzesTaken, e.AssignmentsDone, e.EnrolledAt, e.UpdatedAt)
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

func (r *enrollmentRepo) FindByUserAndCourse(ctx context.Context, tx repository.Tx, userID, courseID string) (*model.Enrollment, error) {
	q := `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE user_id=$1 AND course_id=$2 LIMIT 1;`
	row, err := pickRow(ctx, r.pool, tx, q, userID, courseID)
	if err != nil {
		return nil, err
	}
	return scanEnrollment(row)
}

func (r *enrollmentRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Enrollment, error) {
	q := `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE user_id=$1 ORDER BY enrolled_at DESC;`
	rows, err := queryRows(ctx, r.pool, tx, q, userID)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.Enrollment
	for rows.Next() {
		e, err := scanEnrollment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (r *enrollmentRepo) CountAll(ctx context.Context, tx repository.Tx) (int, error) {
	const q = `SELECT COUNT(*) FROM enrollments WHERE has_access = TRUE;`
	row, err := pickRow(ctx, r.pool, tx, q)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return n, nil
}

func scanEnrollment(row pgx.Row) (*model.Enrollment, error) {
	e := &model.Enrollment{}
	if err := row.Scan(&e.ID, &e.UserID, &e.CourseID, &e.OrderID, &e.AccessType, &e.AmountPaid,
		&e.PaymentMethod, &e.HasAccess, &e.CompletedLessons, &e.TimeSpentSeconds,
		&e.QuizzesTaken, &e.AssignmentsDone, &e.EnrolledAt, &e.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return e, nil
}
