// Package auth holds the cryptographic primitives behind login: bcrypt password
// hashing and signed access/refresh tokens.
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"go-message-board/internal/model"
)

// DefaultCost matches the cost the board has always hashed passwords with.
const DefaultCost = 10

type BcryptHasher struct {
	cost      int
	dummyHash []byte
}

// NewBcryptHasher falls back to DefaultCost when cost is outside bcrypt's range.
func NewBcryptHasher(cost int) (*BcryptHasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}

	dummy, err := bcrypt.GenerateFromPassword([]byte("board-dummy-password"), cost)
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}

	return &BcryptHasher{cost: cost, dummyHash: dummy}, nil
}

func (h *BcryptHasher) Cost() int {
	return h.cost
}

// Hash salts every call, so hashing the same password twice never yields the
// same string. bcrypt caps input at 72 bytes, not characters; longer
// passwords are model.ErrInvalidInput.
func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", fmt.Errorf("%w: password exceeds 72 bytes", model.ErrInvalidInput)
	}
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether plaintext matches hashed. A malformed hash is a
// mismatch, not an error.
func (h *BcryptHasher) Verify(plaintext string, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plaintext)) == nil
}

// VerifyDummy spends the same work as Verify against a throwaway hash. Login
// calls it for unknown emails so response time does not leak account existence.
func (h *BcryptHasher) VerifyDummy(plaintext string) {
	_ = bcrypt.CompareHashAndPassword(h.dummyHash, []byte(plaintext))
}
