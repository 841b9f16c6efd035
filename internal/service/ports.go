package service

import (
	"context"

	"go-message-board/internal/model"
)

// CredentialStore owns user records. Lookups are case-insensitive on email and
// return model.ErrUserNotFound when absent; Create returns
// model.ErrDuplicateEmail when the email is taken.
type CredentialStore interface {
	FindByEmail(ctx context.Context, email string) (model.User, error)
	FindByID(ctx context.Context, id string) (model.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, email string, passwordHash string) (model.User, error)
	AddRole(ctx context.Context, userID string, role model.Role) error
}

type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext string, hashed string) bool
	VerifyDummy(plaintext string)
}

type TokenManager interface {
	IssuePair(payload model.TokenPayload) (model.TokenPair, error)
	VerifyAccess(token string) (*model.TokenPayload, error)
	VerifyRefresh(token string) (*model.TokenPayload, error)
}
