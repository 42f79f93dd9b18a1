package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIssuer_RoundTrip(t *testing.T) {
	issuer := NewIssuer("secret", time.Hour)

	token, expires, err := issuer.Issue("user1", "sess1")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.WithinDuration(t, time.Now().Add(time.Hour), expires, time.Minute)

	claims, err := issuer.Parse(token)
	require.NoError(t, err)
	require.Equal(t, "user1", claims.UserID)
	require.Equal(t, "sess1", claims.SessionID)
}

func TestIssuer_RejectsOtherSecret(t *testing.T) {
	token, _, err := NewIssuer("secret", time.Hour).Issue("user1", "sess1")
	require.NoError(t, err)

	_, err = NewIssuer("other", time.Hour).Parse(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssuer_RejectsExpired(t *testing.T) {
	issuer := NewIssuer("secret", time.Minute)
	issuer.now = func() time.Time { return time.Now().Add(-time.Hour) }
	token, _, err := issuer.Issue("user1", "sess1")
	require.NoError(t, err)

	_, err = NewIssuer("secret", time.Minute).Parse(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssuer_RequiresIdentity(t *testing.T) {
	issuer := NewIssuer("secret", time.Hour)
	_, _, err := issuer.Issue("", "sess1")
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = issuer.Parse("not-a-token")
	require.ErrorIs(t, err, ErrInvalidToken)
}
