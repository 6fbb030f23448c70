package model

import (
	"strings"
	"time"

	"course-marketplace/internal/domain"

	"github.com/google/uuid"
)

type UserRole string

const (
	UserRoleStudent UserRole = "student"
	UserRoleAdmin   UserRole = "admin"
)

// User is an account identity. Guest checkout may create one on the fly with
// a generated password; trust is established by payment, not by an email
// round-trip, so such accounts start out email-verified.
type User struct {
	ID            string
	Email         string
	Name          string
	PasswordHash  string
	Role          UserRole
	EmailVerified bool
	IsGuest       bool // provisioned during checkout, password never chosen by the user
	RegisteredAt  time.Time
	LastActiveAt  time.Time
}

func NewUser(email, name, passwordHash string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, domain.ErrInvalidArgument
	}
	if passwordHash == "" {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		Role:         UserRoleStudent,
		RegisteredAt: now,
		LastActiveAt: now,
	}, nil
}

func (u *User) IsZero() bool { return u == nil || u.ID == "" }
func (u *User) Touch()       { u.LastActiveAt = time.Now() }
