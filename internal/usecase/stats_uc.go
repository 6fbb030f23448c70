// File: internal/usecase/stats_uc.go
package usecase

import (
	"context"

	"course-marketplace/internal/domain/ports/repository"
)

var _ StatsUseCase = (*statsUC)(nil)

// StatsUseCase backs the admin console dashboard. Aggregation is delegated
// to the database.
type StatsUseCase interface {
	Totals(ctx context.Context) (users int, enrollments int, err error)
	Revenue(ctx context.Context) (week, month, year int64, err error)
}

type statsUC struct {
	users        repository.UserRepository
	enrollments  repository.EnrollmentRepository
	transactions repository.TransactionRepository
}

func NewStatsUseCase(users repository.UserRepository, enrollments repository.EnrollmentRepository, transactions repository.TransactionRepository) *statsUC {
	return &statsUC{users: users, enrollments: enrollments, transactions: transactions}
}

func (u *statsUC) Totals(ctx context.Context) (int, int, error) {
	users, err := u.users.CountUsers(ctx, nil)
	if err != nil {
		return 0, 0, err
	}
	enrollments, err := u.enrollments.CountAll(ctx, nil)
	if err != nil {
		return 0, 0, err
	}
	return users, enrollments, nil
}

func (u *statsUC) Revenue(ctx context.Context) (int64, int64, int64, error) {
	week, err := u.transactions.SumRevenueSince(ctx, nil, "week")
	if err != nil {
		return 0, 0, 0, err
	}
	month, err := u.transactions.SumRevenueSince(ctx, nil, "month")
	if err != nil {
		return 0, 0, 0, err
	}
	year, err := u.transactions.SumRevenueSince(ctx, nil, "year")
	if err != nil {
		return 0, 0, 0, err
	}
	return week, month, year, nil
}
