package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"go-message-board/internal/model"
)

type MockCredentialStore struct {
	mock.Mock
}

func (m *MockCredentialStore) FindByEmail(ctx context.Context, email string) (model.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockCredentialStore) FindByID(ctx context.Context, id string) (model.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockCredentialStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockCredentialStore) Create(ctx context.Context, email string, passwordHash string) (model.User, error) {
	args := m.Called(ctx, email, passwordHash)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockCredentialStore) AddRole(ctx context.Context, userID string, role model.Role) error {
	args := m.Called(ctx, userID, role)
	return args.Error(0)
}
