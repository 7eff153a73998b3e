package security

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgonHashRoundTrip(t *testing.T) {
	a := NewFast()

	hash, err := a.Hash("Secret123")
	require.NoError(t, err)
	assert.NotContains(t, hash, "Secret123")

	ok, err := a.Compare("Secret123", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = a.Compare("secret123", hash)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = a.Compare("Secret123", "plain-text")
	assert.ErrorIs(t, err, ErrInvalidHash)
}

func TestArgonHashSalted(t *testing.T) {
	a := NewFast()

	h1, err := a.Hash("Secret123")
	require.NoError(t, err)
	h2, err := a.Hash("Secret123")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}

func TestNumericCode(t *testing.T) {
	for range 200 {
		code, err := NumericCode(6)
		require.NoError(t, err)
		require.Len(t, code, 6)

		for _, r := range code {
			require.True(t, r >= '0' && r <= '9', code)
		}
	}
}

func TestTokensIssueVerify(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tok := NewTokens([]byte("secret"), 30*24*time.Hour, func() time.Time { return now })

	s, exp, err := tok.Issue("user-1")
	require.NoError(t, err)
	assert.Equal(t, now.Add(30*24*time.Hour), exp)

	id, err := tok.Verify(s)
	require.NoError(t, err)
	assert.Equal(t, "user-1", id)

	later := NewTokens([]byte("secret"), time.Hour, func() time.Time { return now.Add(31 * 24 * time.Hour) })
	_, err = later.Verify(s)
	assert.ErrorIs(t, err, ErrTokenExpired)

	other := NewTokens([]byte("other"), time.Hour, nil)
	_, err = other.Verify(s)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestBundleIsNotASessionToken(t *testing.T) {
	tok := NewTokens([]byte("secret"), time.Hour, nil)

	sealed, err := tok.Seal(Bundle{Email: "alice@example.com", Name: "Alice", Role: "seeker", PasswordHash: "$argon2id$x"})
	require.NoError(t, err)

	b, err := tok.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "Alice", b.Name)

	_, err = tok.Verify(sealed)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	session, _, err := tok.Issue("user-1")
	require.NoError(t, err)
	_, err = tok.Open(session)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = tok.Open(sealed + "x")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestBundleHidesContents(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tok := NewTokens([]byte("secret"), time.Hour, func() time.Time { return now })

	hash, err := NewFast().Hash("Secret123")
	require.NoError(t, err)

	sealed, err := tok.Seal(Bundle{Email: "alice@example.com", Name: "Alice", Role: "seeker", PasswordHash: hash})
	require.NoError(t, err)

	raw, err := base64.RawURLEncoding.DecodeString(sealed)
	require.NoError(t, err)
	for _, s := range []string{sealed, string(raw)} {
		assert.NotContains(t, s, "$argon2id$")
		assert.NotContains(t, s, "alice@example.com")
		assert.NotContains(t, s, "Alice")
	}

	// no JWT segment can be base64-decoded out of the outer value
	assert.False(t, strings.Contains(sealed, "."))

	other := NewTokens([]byte("other"), time.Hour, func() time.Time { return now })
	_, err = other.Open(sealed)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	later := NewTokens([]byte("secret"), time.Hour, func() time.Time { return now.Add(25 * time.Hour) })
	_, err = later.Open(sealed)
	assert.ErrorIs(t, err, ErrTokenExpired)

	b, err := tok.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, hash, b.PasswordHash)
}
