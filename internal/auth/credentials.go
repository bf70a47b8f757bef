package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidLogin covers both an unknown username and a wrong password.
	ErrInvalidLogin = errors.New("invalid login attempt")

	ErrCredentialNotFound = errors.New("credential not found")
)

type Credential struct {
	Username     string
	PasswordHash string
	Role         string
}

type CredentialStore interface {
	FindCredentialByUsername(ctx context.Context, username string) (Credential, error)
}

type CredentialVerifier struct {
	store     CredentialStore
	dummyHash []byte
}

func NewCredentialVerifier(store CredentialStore, cost int) (*CredentialVerifier, error) {
	// Compared against when the username is unknown so both failure paths
	// pay for one bcrypt comparison.
	dummy, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), normalizeCost(cost))
	if err != nil {
		return nil, fmt.Errorf("prepare credential verifier: %w", err)
	}

	return &CredentialVerifier{store: store, dummyHash: dummy}, nil
}

func (v *CredentialVerifier) CheckLogin(ctx context.Context, username string, password string) (Credential, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		_ = bcrypt.CompareHashAndPassword(v.dummyHash, []byte(password))
		return Credential{}, ErrInvalidLogin
	}

	cred, err := v.store.FindCredentialByUsername(ctx, username)
	if errors.Is(err, ErrCredentialNotFound) {
		_ = bcrypt.CompareHashAndPassword(v.dummyHash, []byte(password))
		return Credential{}, ErrInvalidLogin
	}
	if err != nil {
		return Credential{}, fmt.Errorf("lookup credential: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
		return Credential{}, ErrInvalidLogin
	}

	return cred, nil
}

func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), normalizeCost(cost))
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	return string(hash), nil
}

func normalizeCost(cost int) int {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return bcrypt.DefaultCost
	}

	return cost
}
