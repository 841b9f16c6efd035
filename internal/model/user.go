package model

import (
	"strings"
	"time"
)

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// DefaultRole is attached to every newly registered user.
const DefaultRole = RoleUser

func ParseRole(raw string) (Role, bool) {
	switch Role(strings.ToUpper(strings.TrimSpace(raw))) {
	case RoleUser:
		return RoleUser, true
	case RoleAdmin:
		return RoleAdmin, true
	default:
		return "", false
	}
}

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Roles        []Role    `json:"roles"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (u User) HasRole(role Role) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// TokenPayload is the identity embedded in both access and refresh tokens.
type TokenPayload struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
	Roles []Role `json:"roles"`
}

func PayloadFromUser(u User) TokenPayload {
	roles := make([]Role, len(u.Roles))
	copy(roles, u.Roles)
	return TokenPayload{UID: u.ID, Email: u.Email, Roles: roles}
}

type AuthUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Roles []Role `json:"roles"`
}

func NewAuthUser(u User) AuthUser {
	return AuthUser{ID: u.ID, Email: u.Email, Roles: u.Roles}
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
	ExpiresIn    int64  `json:"expiresIn"`
}
