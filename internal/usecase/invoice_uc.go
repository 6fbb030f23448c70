// File: internal/usecase/invoice_uc.go
package usecase

import (
	"context"
	"time"

	"course-marketplace/internal/domain"
	"course-marketplace/internal/domain/model"
	"course-marketplace/internal/domain/ports/repository"

	"github.com/rs/zerolog"
)

var _ InvoiceUseCase = (*invoiceUC)(nil)

type InvoiceUseCase interface {
	// GenerateForOrder builds the invoice snapshotting a completed order's
	// charges. Callers only reach it from the non-completed -> completed
	// transition, and an existing invoice is returned untouched.
	GenerateForOrder(ctx context.Context, tx repository.Tx, o *model.Order, paidAt time.Time) (*model.Invoice, error)
	FindByOrder(ctx context.Context, orderID string) (*model.Invoice, error)
}

type invoiceUC struct {
	invoices repository.InvoiceRepository
	courses  repository.CourseRepository
	log      *zerolog.Logger
}

func NewInvoiceUseCase(invoices repository.InvoiceRepository, courses repository.CourseRepository, logger *zerolog.Logger) *invoiceUC {
	return &invoiceUC{invoices: invoices, courses: courses, log: logger}
}

func (u *invoiceUC) GenerateForOrder(ctx context.Context, tx repository.Tx, o *model.Order, paidAt time.Time) (*model.Invoice, error) {
	if existing, err := u.invoices.FindByOrderID(ctx, tx, o.ID); err == nil {
		return existing, nil
	} else if err != domain.ErrNotFound {
		return nil, err
	}

	lines := make([]model.InvoiceLine, 0, len(o.CourseIDs))
	for _, courseID := range o.CourseIDs {
		title := "Course " + shortID(courseID)
		if c, err := u.courses.FindByID(ctx, tx, courseID); err == nil {
			title = c.Title
		}
		lines = append(lines, model.InvoiceLine{
			CourseID: courseID,
			Title:    title,
			Amount:   shareOf(o.Total, len(o.CourseIDs), len(lines)),
		})
	}

	inv := model.NewInvoiceFromOrder(o, lines, paidAt)
	if err := u.invoices.Save(ctx, tx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (u *invoiceUC) FindByOrder(ctx context.Context, orderID string) (*model.Invoice, error) {
	return u.invoices.FindByOrderID(ctx, nil, orderID)
}

// shareOf splits total over n lines deterministically; the last line absorbs
// the rounding remainder.
func shareOf(total int64, n, idx int) int64 {
	if n <= 0 {
		return 0
	}
	base := total / int64(n)
	if idx == n-1 {
		return total - base*int64(n-1)
	}
	return base
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
