//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"course-marketplace/internal/domain"
	"course-marketplace/internal/domain/model"
	"course-marketplace/internal/usecase"
)

func TestGenerateForOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("generates exactly one invoice per order", func(t *testing.T) {
		invoices := NewMockInvoiceRepo()
		courses := NewMockCourseRepo()
		courses.Save(ctx, nil, &model.Course{ID: "c1", Title: "Go Basics", Price: 5000})
		uc := usecase.NewInvoiceUseCase(invoices, courses, newTestLogger())

		o, err := model.NewOrder("u1", []string{"c1"}, 5000, 0, 400, 5400, model.PaymentMethodStripe)
		if err != nil {
			t.Fatalf("new order: %v", err)
		}
		o.Number = "ORD-1"
		paidAt := time.Now()

		inv, err := uc.GenerateForOrder(ctx, nil, o, paidAt)
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if len(inv.Lines) != 1 || inv.Lines[0].Title != "Go Basics" || inv.Lines[0].Amount != 5400 {
			t.Fatalf("lines = %+v", inv.Lines)
		}

		again, err := uc.GenerateForOrder(ctx, nil, o, paidAt.Add(time.Hour))
		if err != nil {
			t.Fatalf("regenerate: %v", err)
		}
		if again.ID != inv.ID {
			t.Fatalf("second call returned a new invoice: %s vs %s", again.ID, inv.ID)
		}
		if invoices.Count() != 1 {
			t.Fatalf("invoices = %d, want 1", invoices.Count())
		}
	})

	t.Run("last line absorbs the rounding remainder", func(t *testing.T) {
		invoices := NewMockInvoiceRepo()
		courses := NewMockCourseRepo()
		for _, id := range []string{"c1", "c2", "c3"} {
			courses.Save(ctx, nil, &model.Course{ID: id, Title: "Course " + id, Price: 334})
		}
		uc := usecase.NewInvoiceUseCase(invoices, courses, newTestLogger())

		o, err := model.NewOrder("u1", []string{"c1", "c2", "c3"}, 1001, 0, 0, 1001, model.PaymentMethodStripe)
		if err != nil {
			t.Fatalf("new order: %v", err)
		}

		inv, err := uc.GenerateForOrder(ctx, nil, o, time.Now())
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		amounts := []int64{inv.Lines[0].Amount, inv.Lines[1].Amount, inv.Lines[2].Amount}
		if amounts[0] != 333 || amounts[1] != 333 || amounts[2] != 335 {
			t.Fatalf("amounts = %v, want [333 333 335]", amounts)
		}
		var sum int64
		for _, a := range amounts {
			sum += a
		}
		if sum != o.Total {
			t.Fatalf("line sum = %d, want %d", sum, o.Total)
		}
	})

	t.Run("missing course title falls back to a placeholder", func(t *testing.T) {
		invoices := NewMockInvoiceRepo()
		uc := usecase.NewInvoiceUseCase(invoices, NewMockCourseRepo(), newTestLogger())

		o, err := model.NewOrder("u1", []string{"vanished-course-id"}, 1000, 0, 0, 1000, model.PaymentMethodStripe)
		if err != nil {
			t.Fatalf("new order: %v", err)
		}
		inv, err := uc.GenerateForOrder(ctx, nil, o, time.Now())
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if inv.Lines[0].Title != "Course vanished" {
			t.Fatalf("title = %q, want placeholder", inv.Lines[0].Title)
		}
	})
}

func TestFindByOrder(t *testing.T) {
	ctx := context.Background()
	uc := usecase.NewInvoiceUseCase(NewMockInvoiceRepo(), NewMockCourseRepo(), newTestLogger())
	if _, err := uc.FindByOrder(ctx, "ghost"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}
