package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"course-marketplace/internal/config"
	"course-marketplace/internal/domain/model"
	pg "course-marketplace/internal/infra/db/postgres"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	courseRepo := pg.NewCourseRepo(pool)
	couponRepo := pg.NewCouponRepo(pool)

	// Seed a small catalog for exercising the payment flow.
	courses := []struct {
		Title string
		Price int64
	}{
		{"Go for Backend Engineers", 4900},
		{"PostgreSQL Deep Dive", 5900},
		{"Payment Systems in Practice", 7900},
		{"Free Intro to Programming", 0},
	}
	now := time.Now()
	for _, c := range courses {
		course := &model.Course{
			ID:        uuid.NewString(),
			Title:     c.Title,
			Price:     c.Price,
			Published: true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := courseRepo.Save(ctx, nil, course); err != nil {
			log.Fatalf("seed course %q: %v", c.Title, err)
		}
		fmt.Printf("seeded course: %s (id=%s, price=%d)\n", course.Title, course.ID, course.Price)
	}

	expiry := now.AddDate(0, 3, 0)
	coupons := []*model.Coupon{
		{
			ID:        uuid.NewString(),
			Code:      "WELCOME10",
			Type:      model.DiscountTypePercent,
			Value:     10,
			Active:    true,
			CreatedAt: now,
		},
		{
			ID:          uuid.NewString(),
			Code:        "SAVE20",
			Type:        model.DiscountTypeFixed,
			Value:       2000,
			MinPurchase: 5000,
			ExpiresAt:   &expiry,
			UsageLimit:  100,
			Active:      true,
			CreatedAt:   now,
		},
		{
			ID:        uuid.NewString(),
			Code:      "FULLRIDE",
			Type:      model.DiscountTypePercent,
			Value:     100,
			Active:    true,
			CreatedAt: now,
		},
	}
	for _, c := range coupons {
		if err := couponRepo.Save(ctx, nil, c); err != nil {
			log.Fatalf("seed coupon %q: %v", c.Code, err)
		}
		fmt.Printf("seeded coupon: %s (%s %d)\n", c.Code, c.Type, c.Value)
	}

	fmt.Println("seeding complete")
}
