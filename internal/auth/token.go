package auth

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"go-message-board/internal/model"
)

// TokenConfig is the signing secret and lifetime of one token kind.
type TokenConfig struct {
	Secret []byte
	TTL    time.Duration
}

type tokenClaims struct {
	UID   string       `json:"uid"`
	Email string       `json:"email"`
	Roles []model.Role `json:"roles"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256 tokens. Access and refresh tokens
// share a payload shape but never a secret.
type TokenService struct {
	access  TokenConfig
	refresh TokenConfig
	now     func() time.Time
}

type Option func(*TokenService)

func WithClock(now func() time.Time) Option {
	return func(s *TokenService) {
		if now != nil {
			s.now = now
		}
	}
}

func NewTokenService(access TokenConfig, refresh TokenConfig, opts ...Option) (*TokenService, error) {
	if len(access.Secret) == 0 {
		return nil, errors.New("access token secret is required")
	}
	if len(refresh.Secret) == 0 {
		return nil, errors.New("refresh token secret is required")
	}
	if bytes.Equal(access.Secret, refresh.Secret) {
		return nil, errors.New("access and refresh token secrets must differ")
	}
	if access.TTL <= 0 || refresh.TTL <= 0 {
		return nil, errors.New("token expirations must be positive")
	}

	s := &TokenService{
		access:  access,
		refresh: refresh,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

func (s *TokenService) AccessTTL() time.Duration {
	return s.access.TTL
}

func (s *TokenService) IssueAccessToken(payload model.TokenPayload) (string, error) {
	return s.sign(payload, s.access)
}

func (s *TokenService) IssueRefreshToken(payload model.TokenPayload) (string, error) {
	return s.sign(payload, s.refresh)
}

func (s *TokenService) IssuePair(payload model.TokenPayload) (model.TokenPair, error) {
	accessToken, err := s.IssueAccessToken(payload)
	if err != nil {
		return model.TokenPair{}, err
	}

	refreshToken, err := s.IssueRefreshToken(payload)
	if err != nil {
		return model.TokenPair{}, err
	}

	return model.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.access.TTL.Seconds()),
	}, nil
}

func (s *TokenService) VerifyAccess(token string) (*model.TokenPayload, error) {
	return s.Verify(token, s.access.Secret)
}

func (s *TokenService) VerifyRefresh(token string) (*model.TokenPayload, error) {
	return s.Verify(token, s.refresh.Secret)
}

// Verify checks signature, algorithm and expiry before exposing any claim.
// Failures are model.ErrTokenExpired when now >= exp, otherwise
// model.ErrTokenInvalid.
func (s *TokenService) Verify(token string, secret []byte) (*model.TokenPayload, error) {
	claims := &tokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, model.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", model.ErrTokenInvalid, err)
	}
	if !parsed.Valid {
		return nil, model.ErrTokenInvalid
	}

	if claims.UID == "" || claims.Email == "" {
		return nil, fmt.Errorf("%w: missing identity claims", model.ErrTokenInvalid)
	}

	roles := make([]model.Role, 0, len(claims.Roles))
	for _, raw := range claims.Roles {
		role, ok := model.ParseRole(string(raw))
		if !ok || role != raw {
			return nil, fmt.Errorf("%w: unknown role %q", model.ErrTokenInvalid, raw)
		}
		roles = append(roles, role)
	}

	return &model.TokenPayload{UID: claims.UID, Email: claims.Email, Roles: roles}, nil
}

func (s *TokenService) sign(payload model.TokenPayload, cfg TokenConfig) (string, error) {
	now := s.now()
	claims := tokenClaims{
		UID:   payload.UID,
		Email: payload.Email,
		Roles: payload.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.TTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(cfg.Secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
