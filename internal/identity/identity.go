// Package identity wraps the identity provider used to authenticate shoppers.
package identity

import (
	"context"

	"commercetools-gateway/internal/domain"
)

// Client is the identity provider surface the gateway consumes.
type Client interface {
	// VerifyToken checks an ID token and returns the uid it was issued for.
	VerifyToken(ctx context.Context, idToken string) (string, error)
	GetUser(ctx context.Context, uid string) (*domain.IdentityRecord, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.IdentityRecord, error)
	GetUserByPhone(ctx context.Context, phone string) (*domain.IdentityRecord, error)
	UpdateUser(ctx context.Context, uid string, update UserUpdate) (*domain.IdentityRecord, error)
	DeleteUser(ctx context.Context, uid string) error
}

// UserUpdate lists the identity record fields the gateway may change.
type UserUpdate struct {
	Email string
}
