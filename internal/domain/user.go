package domain

import (
	"context"
	"time"
)

// Role codes used throughout the application.
const (
	RoleSpeaker   = "speaker"
	RoleOrganizer = "organizer"
)

// User represents a registered user (speaker or organizer)
// swagger:model User
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	PasswordHash string    `json:"-"`
	Salt         string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Role represents an application role (speaker or organizer)
type Role struct {
	ID   string `json:"id"`
	Code string `json:"code"`
}

// Actor is the authenticated caller identity handed to services: who is
// calling and with which roles. Ownership checks compare UserID against the
// talk's speaker.
type Actor struct {
	UserID string
	Roles  []string
}

// IsOrganizer reports whether the actor carries the organizer role.
func (a Actor) IsOrganizer() bool {
	for _, r := range a.Roles {
		if r == RoleOrganizer {
			return true
		}
	}
	return false
}

// PasswordHasher handles salt generation, hashing, and verification.
// Implementations may use bcrypt, argon2, etc.
type PasswordHasher interface {
	GenerateSalt() (string, error)
	Hash(salt, password string) (hash string, err error)
	Compare(hash, salt, password string) error
}

// TokenIssuer issues tokens (e.g. JWT) for an authenticated user.
type TokenIssuer interface {
	Issue(userID, email string, roles []string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the authenticated user identity.
type TokenVerifier interface {
	Verify(token string) (userID string, roles []string, err error)
}

// UserRepository defines the interface for user storage
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	AssignRole(ctx context.Context, userID, roleID string) error
}

// RoleRepository defines the interface for role storage
type RoleRepository interface {
	GetByCode(ctx context.Context, code string) (*Role, error)
	ListByUserID(ctx context.Context, userID string) ([]*Role, error)
}

// AuthService defines registration and login.
type AuthService interface {
	SignUp(ctx context.Context, email, password, fullName, role string) (*User, error)
	Login(ctx context.Context, email, password string) (token string, err error)
}
