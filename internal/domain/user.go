package domain

import (
	"context"
	"time"
)

// AdminUser is a back-office account.
// swagger:model AdminUser
type AdminUser struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Salt         string     `json:"-"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// PasswordHasher handles salt generation, hashing, and verification.
type PasswordHasher interface {
	GenerateSalt() (string, error)
	Hash(salt, password string) (hash string, err error)
	Compare(hash, salt, password string) error
}

// TokenIssuer issues signed tokens for an authenticated admin.
type TokenIssuer interface {
	Issue(userID, email string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the authenticated admin ID.
type TokenVerifier interface {
	Verify(token string) (userID string, err error)
}

// AdminUserRepository stores admin accounts.
type AdminUserRepository interface {
	Create(ctx context.Context, u *AdminUser) error
	GetByEmail(ctx context.Context, email string) (*AdminUser, error)
	GetByID(ctx context.Context, id string) (*AdminUser, error)
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
}

// AuthService signs admins in and seeds accounts.
type AuthService interface {
	Login(ctx context.Context, email, password string) (token string, user *AdminUser, err error)
	GetByID(ctx context.Context, id string) (*AdminUser, error)
	CreateAdmin(ctx context.Context, email, password string) (*AdminUser, error)
}
