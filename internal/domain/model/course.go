package model

import "time"

// Course is the read-mostly catalog entry the payment flow prices against.
// EnrollmentCount and Revenue are denormalized counters maintained by the
// enrollment and refund flows.
type Course struct {
	ID              string
	Title           string
	Excerpt         string
	Price           int64 // cents
	Published       bool
	EnrollmentCount int
	Revenue         int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
