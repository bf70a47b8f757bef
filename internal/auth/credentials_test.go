package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type memoryCredentialStore struct {
	creds map[string]Credential
	err   error
}

func (s *memoryCredentialStore) FindCredentialByUsername(_ context.Context, username string) (Credential, error) {
	if s.err != nil {
		return Credential{}, s.err
	}

	cred, ok := s.creds[username]
	if !ok {
		return Credential{}, ErrCredentialNotFound
	}
	return cred, nil
}

func newVerifierWithUser(t *testing.T, username string, password string, role string) *CredentialVerifier {
	t.Helper()

	hash, err := HashPassword(password, bcrypt.MinCost)
	require.NoError(t, err)

	store := &memoryCredentialStore{creds: map[string]Credential{
		username: {Username: username, PasswordHash: hash, Role: role},
	}}

	verifier, err := NewCredentialVerifier(store, bcrypt.MinCost)
	require.NoError(t, err)
	return verifier
}

func TestCheckLogin(t *testing.T) {
	t.Parallel()

	verifier := newVerifierWithUser(t, "alice", "s3cret-Pass", "Admin")
	ctx := context.Background()

	t.Run("correct password", func(t *testing.T) {
		cred, err := verifier.CheckLogin(ctx, "alice", "s3cret-Pass")
		require.NoError(t, err)
		require.Equal(t, "alice", cred.Username)
		require.Equal(t, "Admin", cred.Role)
	})

	t.Run("single character altered", func(t *testing.T) {
		for _, attempt := range []string{"s3cret-Pasz", "S3cret-Pass", "s3cret-Pas", "s3cret-Pass!"} {
			_, err := verifier.CheckLogin(ctx, "alice", attempt)
			require.ErrorIs(t, err, ErrInvalidLogin, attempt)
		}
	})

	t.Run("unknown user looks like wrong password", func(t *testing.T) {
		_, unknownErr := verifier.CheckLogin(ctx, "bob", "s3cret-Pass")
		_, wrongErr := verifier.CheckLogin(ctx, "alice", "wrong")

		require.ErrorIs(t, unknownErr, ErrInvalidLogin)
		require.Equal(t, wrongErr, unknownErr)
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := verifier.CheckLogin(ctx, "", "")
		require.ErrorIs(t, err, ErrInvalidLogin)
	})
}

func TestCheckLoginStoreFailure(t *testing.T) {
	t.Parallel()

	verifier, err := NewCredentialVerifier(&memoryCredentialStore{err: errors.New("connection refused")}, bcrypt.MinCost)
	require.NoError(t, err)

	_, err = verifier.CheckLogin(context.Background(), "alice", "whatever")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrInvalidLogin)
}

func TestHashPasswordIsOneWay(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("correct horse", bcrypt.MinCost)
	require.NoError(t, err)
	require.NotContains(t, hash, "correct horse")
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("correct horse")))

	again, err := HashPassword("correct horse", bcrypt.MinCost)
	require.NoError(t, err)
	require.NotEqual(t, hash, again)
}
