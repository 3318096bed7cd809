package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndValidate(t *testing.T) {
	m := NewTokenManager("0123456789abcdef", 0)

	raw, err := m.Issue(7, "jimbo")
	require.NoError(t, err)

	claims, err := m.Validate(raw)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID())
	assert.Equal(t, "jimbo", claims.Username)
	assert.WithinDuration(t, time.Now().Add(DefaultTTL), claims.ExpiresAt.Time, 5*time.Second)
}

func TestValidateExpired(t *testing.T) {
	m := NewTokenManager("0123456789abcdef", time.Hour)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	raw, err := m.Issue(1, "jimbo")
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Validate(raw)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateRejectsForeignTokens(t *testing.T) {
	m := NewTokenManager("0123456789abcdef", time.Hour)
	other := NewTokenManager("fedcba9876543210", time.Hour)

	raw, err := other.Issue(1, "jimbo")
	require.NoError(t, err)
	_, err = m.Validate(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.Validate("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "1"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = m.Validate(none)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
