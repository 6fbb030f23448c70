package model

import (
	"time"

	"github.com/google/uuid"
)

type AccessType string

const (
	AccessTypeFree AccessType = "free"
	AccessTypePaid AccessType = "paid"
)

// Enrollment grants a student access to one course. Exactly one enrollment
// exists per (student, course) pair; a paid purchase upgrades a pre-existing
// free enrollment in place instead of creating a second row.
//
// Progress counters live here but are maintained by the learning flow, not
// the payment core; the payment core only creates or upgrades the record.
type Enrollment struct {
	ID            string
	UserID        string
	CourseID      string
	OrderID       string
	AccessType    AccessType
	AmountPaid    int64
	PaymentMethod PaymentMethod
	HasAccess     bool

	CompletedLessons int
	TimeSpentSeconds int64
	QuizzesTaken     int
	AssignmentsDone  int

	EnrolledAt time.Time
	UpdatedAt  time.Time
}

func NewPaidEnrollment(userID, courseID, orderID string, amountPaid int64, method PaymentMethod) *Enrollment {
	now := time.Now()
	return &Enrollment{
		ID:            uuid.NewString(),
		UserID:        userID,
		CourseID:      courseID,
		OrderID:       orderID,
		AccessType:    AccessTypePaid,
		AmountPaid:    amountPaid,
		PaymentMethod: method,
		HasAccess:     true,
		EnrolledAt:    now,
		UpdatedAt:     now,
	}
}

// UpgradeToPaid converts an existing (typically free) enrollment in place.
func (e *Enrollment) UpgradeToPaid(orderID string, amountPaid int64, method PaymentMethod) {
	e.OrderID = orderID
	e.AccessType = AccessTypePaid
	e.AmountPaid = amountPaid
	e.PaymentMethod = method
	e.HasAccess = true
	e.UpdatedAt = time.Now()
}
