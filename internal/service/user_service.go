package service

import (
	"context"
	"fmt"

	"go-message-board/internal/event"
	"go-message-board/internal/model"
	"go-message-board/internal/util"
)

type UserService struct {
	store  CredentialStore
	hasher PasswordHasher
	bus    event.Bus
}

func NewUserService(store CredentialStore, hasher PasswordHasher, bus event.Bus) *UserService {
	return &UserService{store: store, hasher: hasher, bus: bus}
}

// Register creates a user holding the default role. The existence probe only
// skips needless hashing; the store's Create is what guarantees uniqueness.
func (s *UserService) Register(ctx context.Context, email string, password string) (model.User, error) {
	email = util.NormalizeEmail(email)
	if email == "" || password == "" {
		return model.User{}, model.ErrInvalidInput
	}

	exists, err := s.store.ExistsByEmail(ctx, email)
	if err != nil {
		return model.User{}, fmt.Errorf("register: %w", err)
	}
	if exists {
		return model.User{}, model.ErrDuplicateEmail
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return model.User{}, fmt.Errorf("register: %w", err)
	}

	user, err := s.store.Create(ctx, email, hash)
	if err != nil {
		return model.User{}, err
	}

	if s.bus != nil {
		s.bus.Publish(event.Event{Type: event.TypeUserRegistered, ActorID: user.ID, Email: user.Email})
	}
	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id string) (model.User, error) {
	return s.store.FindByID(ctx, id)
}

// GrantRole is operator tooling; the HTTP API never changes roles.
func (s *UserService) GrantRole(ctx context.Context, email string, role model.Role) (model.User, error) {
	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		return model.User{}, err
	}

	if err := s.store.AddRole(ctx, user.ID, role); err != nil {
		return model.User{}, fmt.Errorf("grant role: %w", err)
	}

	return s.store.FindByID(ctx, user.ID)
}
