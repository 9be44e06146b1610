package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BrandonDHaskell/Janus/server/internal/auth"
)

func TestTokens_IssueAndParse(t *testing.T) {
	tk := auth.NewTokens("s3cret", "janus", 5*time.Minute, time.Hour)

	pair, err := tk.Issue(42)
	require.NoError(t, err)

	c, err := tk.Parse(pair.Access, auth.KindAccess)
	require.NoError(t, err)
	assert.Equal(t, int64(42), c.UserID)
	assert.Equal(t, "42", c.Subject)

	c, err = tk.Parse(pair.Refresh, auth.KindRefresh)
	require.NoError(t, err)
	assert.Equal(t, int64(42), c.UserID)
}

func TestTokens_RejectsWrongKind(t *testing.T) {
	tk := auth.NewTokens("s3cret", "janus", 5*time.Minute, time.Hour)
	pair, err := tk.Issue(1)
	require.NoError(t, err)

	_, err = tk.Parse(pair.Refresh, auth.KindAccess)
	assert.ErrorIs(t, err, auth.ErrWrongKind)
}

func TestTokens_RejectsExpiredAndForeign(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	tk := auth.NewTokens("s3cret", "janus", time.Minute, time.Hour).WithClock(func() time.Time { return now })
	pair, err := tk.Issue(1)
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = tk.Parse(pair.Access, auth.KindAccess)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	other := auth.NewTokens("different", "janus", time.Minute, time.Hour).WithClock(func() time.Time { return now })
	_, err = other.Parse(pair.Refresh, auth.KindRefresh)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}
