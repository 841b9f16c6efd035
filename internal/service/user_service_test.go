package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"go-message-board/internal/model"
)

func TestUserService_RegisterValidation(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)

	_, err := f.users.Register(context.Background(), "   ", "pw123")
	require.ErrorIs(t, err, model.ErrInvalidInput)

	_, err = f.users.Register(context.Background(), "user@x.com", "")
	require.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestUserService_RegisterSkipsHashingForTakenEmail(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	store := new(MockCredentialStore)
	store.On("ExistsByEmail", mock.Anything, "user@x.com").Return(true, nil)

	svc := NewUserService(store, f.hasher, nil)
	_, err := svc.Register(context.Background(), "User@x.com", "pw123")

	require.ErrorIs(t, err, model.ErrDuplicateEmail)
	store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestUserService_RegisterLosesRaceToUniqueConstraint(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	store := new(MockCredentialStore)
	store.On("ExistsByEmail", mock.Anything, "user@x.com").Return(false, nil)
	store.On("Create", mock.Anything, "user@x.com", mock.AnythingOfType("string")).
		Return(model.User{}, model.ErrDuplicateEmail)

	svc := NewUserService(store, f.hasher, nil)
	_, err := svc.Register(context.Background(), "user@x.com", "pw123")

	require.ErrorIs(t, err, model.ErrDuplicateEmail)
	store.AssertExpectations(t)
}

func TestUserService_RegisterStoreError(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	store := new(MockCredentialStore)
	store.On("ExistsByEmail", mock.Anything, "user@x.com").Return(false, errors.New("timeout"))

	svc := NewUserService(store, f.hasher, nil)
	_, err := svc.Register(context.Background(), "user@x.com", "pw123")
	require.ErrorContains(t, err, "register: timeout")
}

func TestUserService_GrantRole(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	ctx := context.Background()

	registered, err := f.users.Register(ctx, "admin@x.com", "pw123")
	require.NoError(t, err)

	updated, err := f.users.GrantRole(ctx, "ADMIN@x.com", model.RoleAdmin)
	require.NoError(t, err)
	require.Equal(t, registered.ID, updated.ID)
	require.True(t, updated.HasRole(model.RoleAdmin))
	require.True(t, updated.HasRole(model.RoleUser))

	_, err = f.users.GrantRole(ctx, "ghost@x.com", model.RoleAdmin)
	require.ErrorIs(t, err, model.ErrUserNotFound)

	found, err := f.users.GetByID(ctx, registered.ID)
	require.NoError(t, err)
	require.Len(t, found.Roles, 2)
}
