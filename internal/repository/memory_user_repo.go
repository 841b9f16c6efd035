package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"go-message-board/internal/model"
	"go-message-board/internal/util"
)

// MemoryUserRepository keeps users in process memory. A single mutex makes the
// duplicate check and the insert one step. Used with STORE_DRIVER=memory and
// in tests.
type MemoryUserRepository struct {
	mu      sync.RWMutex
	byEmail map[string]string
	byID    map[string]model.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		byEmail: map[string]string{},
		byID:    map[string]model.User{},
	}
}

func (r *MemoryUserRepository) FindByEmail(_ context.Context, email string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, exists := r.byEmail[util.NormalizeEmail(email)]
	if !exists {
		return model.User{}, model.ErrUserNotFound
	}
	return cloneUser(r.byID[id]), nil
}

func (r *MemoryUserRepository) FindByID(_ context.Context, id string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, exists := r.byID[id]
	if !exists {
		return model.User{}, model.ErrUserNotFound
	}
	return cloneUser(user), nil
}

func (r *MemoryUserRepository) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.byEmail[util.NormalizeEmail(email)]
	return exists, nil
}

func (r *MemoryUserRepository) Create(_ context.Context, email string, passwordHash string) (model.User, error) {
	key := util.NormalizeEmail(email)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[key]; exists {
		return model.User{}, model.ErrDuplicateEmail
	}

	user := model.User{
		ID:           uuid.NewString(),
		Email:        key,
		PasswordHash: passwordHash,
		Roles:        []model.Role{model.DefaultRole},
		CreatedAt:    time.Now().UTC(),
	}
	r.byEmail[key] = user.ID
	r.byID[user.ID] = user

	return cloneUser(user), nil
}

func (r *MemoryUserRepository) AddRole(_ context.Context, userID string, role model.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, exists := r.byID[userID]
	if !exists {
		return model.ErrUserNotFound
	}
	if user.HasRole(role) {
		return nil
	}

	user.Roles = append(cloneUser(user).Roles, role)
	r.byID[userID] = user
	return nil
}

func cloneUser(u model.User) model.User {
	roles := make([]model.Role, len(u.Roles))
	copy(roles, u.Roles)
	u.Roles = roles
	return u
}
