package service

import (
	"context"
	"errors"
	"fmt"

	"go-message-board/internal/event"
	"go-message-board/internal/metrics"
	"go-message-board/internal/model"
	"go-message-board/internal/util"
)

type AuthService struct {
	store  CredentialStore
	hasher PasswordHasher
	tokens TokenManager
	bus    event.Bus
}

func NewAuthService(store CredentialStore, hasher PasswordHasher, tokens TokenManager, bus event.Bus) *AuthService {
	return &AuthService{store: store, hasher: hasher, tokens: tokens, bus: bus}
}

// Login answers an unknown email and a wrong password with the same
// model.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email string, password string) (model.TokenPair, error) {
	user, err := s.store.FindByEmail(ctx, email)
	if errors.Is(err, model.ErrUserNotFound) {
		s.hasher.VerifyDummy(password)
		s.publish(event.Event{Type: event.TypeLoginFailed, Email: util.NormalizeEmail(email), Reason: "unknown email"})
		return model.TokenPair{}, model.ErrInvalidCredentials
	}
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("login: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.publish(event.Event{Type: event.TypeLoginFailed, ActorID: user.ID, Email: user.Email, Reason: "password mismatch"})
		return model.TokenPair{}, model.ErrInvalidCredentials
	}

	pair, err := s.tokens.IssuePair(model.PayloadFromUser(user))
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("login: %w", err)
	}

	s.publish(event.Event{Type: event.TypeLoginSucceeded, ActorID: user.ID, Email: user.Email})
	return pair, nil
}

// Refresh rotates both tokens. The user is looked up again so the new pair
// carries the current role set, not the one frozen in the refresh token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (model.TokenPair, error) {
	payload, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		s.publish(event.Event{Type: event.TypeRefreshRejected, Reason: err.Error()})
		return model.TokenPair{}, err
	}

	user, err := s.store.FindByEmail(ctx, payload.Email)
	if errors.Is(err, model.ErrUserNotFound) {
		s.publish(event.Event{Type: event.TypeRefreshRejected, ActorID: payload.UID, Email: payload.Email, Reason: "user no longer exists"})
		return model.TokenPair{}, model.ErrInvalidCredentials
	}
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("refresh: %w", err)
	}

	// A re-registered email is a different account.
	if user.ID != payload.UID {
		s.publish(event.Event{Type: event.TypeRefreshRejected, ActorID: payload.UID, Email: payload.Email, Reason: "subject mismatch"})
		return model.TokenPair{}, model.ErrInvalidCredentials
	}

	pair, err := s.tokens.IssuePair(model.PayloadFromUser(user))
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("refresh: %w", err)
	}

	s.publish(event.Event{Type: event.TypeTokenRefreshed, ActorID: user.ID, Email: user.Email})
	return pair, nil
}

// Authorize verifies an access token and checks it holds at least one of the
// required roles; no required roles means any authenticated user. Verification
// failures wrap model.ErrUnauthorized together with the cause.
func (s *AuthService) Authorize(token string, required ...model.Role) (*model.TokenPayload, error) {
	payload, err := s.tokens.VerifyAccess(token)
	if err != nil {
		metrics.AuthorizationsTotal.WithLabelValues("unauthorized").Inc()
		return nil, fmt.Errorf("%w: %w", model.ErrUnauthorized, err)
	}

	if len(required) > 0 && !hasAnyRole(payload.Roles, required) {
		metrics.AuthorizationsTotal.WithLabelValues("forbidden").Inc()
		s.publish(event.Event{Type: event.TypeAccessDenied, ActorID: payload.UID, Email: payload.Email, Reason: "missing role"})
		return nil, model.ErrForbidden
	}

	metrics.AuthorizationsTotal.WithLabelValues("allowed").Inc()
	return payload, nil
}

func (s *AuthService) publish(e event.Event) {
	if s.bus != nil {
		s.bus.Publish(e)
	}
}

func hasAnyRole(held []model.Role, required []model.Role) bool {
	for _, want := range required {
		for _, have := range held {
			if have == want {
				return true
			}
		}
	}
	return false
}
