package auth

import (
	"context"

	"github.com/Gagancm/FinSync/internal/user"
)

// TokenService defines the interface for session token creation and validation.
type TokenService interface {
	CreateToken(userID int64, email string) (string, error)
	VerifyToken(tokenStr string) (*TokenClaims, error)
}

// UserRepository defines the persistence operations the account service needs.
type UserRepository interface {
	Create(ctx context.Context, params user.CreateParams) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	Update(ctx context.Context, userID int64, fields user.UpdateFields) (*user.User, error)
	Delete(ctx context.Context, userID int64) error
}

// RateLimiter defines the IP rate limiting operations used by the handlers.
type RateLimiter interface {
	CheckIPRateLimitWithPurpose(ctx context.Context, ip, purpose string) (bool, error)
	RecordIPRequestWithPurpose(ctx context.Context, ip, purpose string) error
}
