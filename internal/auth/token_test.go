package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"stockroom/internal/domain"
)

func TestIssueVerifyRoundTrip(t *testing.T) {
	issuer := NewIssuer("test-secret", 24*time.Hour)

	token, err := issuer.Issue(42, domain.RoleAdmin)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := issuer.Verify(token)
	require.NoError(t, err)
	require.Equal(t, int64(42), claims.UserID)
	require.Equal(t, domain.RoleAdmin, claims.Role)
	require.Equal(t, "42", claims.Subject)
}

func TestVerifyExpiryBoundary(t *testing.T) {
	issuedAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	now := issuedAt

	issuer := NewIssuer("test-secret", 24*time.Hour).WithClock(func() time.Time { return now })

	token, err := issuer.Issue(7, domain.RoleUser)
	require.NoError(t, err)

	now = issuedAt.Add(23*time.Hour + 59*time.Minute)
	claims, err := issuer.Verify(token)
	require.NoError(t, err)
	require.Equal(t, int64(7), claims.UserID)

	now = issuedAt.Add(24*time.Hour + time.Second)
	_, err = issuer.Verify(token)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerifyWrongSecret(t *testing.T) {
	issuer := NewIssuer("secret-a", time.Hour)
	other := NewIssuer("secret-b", time.Hour)

	token, err := issuer.Issue(1, domain.RoleUser)
	require.NoError(t, err)

	_, err = other.Verify(token)
	require.ErrorIs(t, err, ErrSignatureInvalid)
}

func TestVerifyMalformed(t *testing.T) {
	issuer := NewIssuer("secret", time.Hour)

	for _, tok := range []string{"", "garbage", "a.b", "a.b.c"} {
		_, err := issuer.Verify(tok)
		require.ErrorIs(t, err, ErrTokenMalformed, "token %q", tok)
	}
}
