package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/shashiranjanraj/krishi/internal/access"
)

func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

func TestIssueUsesRoleTTL(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	iss := NewIssuer("s3cret", 45*time.Minute, 24*time.Hour).WithClock(fixedClock(now))

	_, adminExp, err := iss.Issue(1, access.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, now.Add(45*time.Minute), adminExp)

	_, farmerExp, err := iss.Issue(2, access.RoleFarmer)
	require.NoError(t, err)
	assert.Equal(t, now.Add(24*time.Hour), farmerExp)
}

func TestParseRoundTrip(t *testing.T) {
	now := time.Now()
	iss := NewIssuer("s3cret", time.Hour, time.Hour).WithClock(fixedClock(now))
	tok, _, err := iss.Issue(7, access.RoleCustomer)
	require.NoError(t, err)

	c, err := iss.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, uint(7), c.UserID)
	assert.Equal(t, access.RoleCustomer, c.Role)
	assert.NotEmpty(t, c.ID)
}

func TestParseRejectsExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	iss := NewIssuer("s3cret", 45*time.Minute, time.Hour).WithClock(fixedClock(now))
	tok, _, err := iss.Issue(1, access.RoleAdmin)
	require.NoError(t, err)

	later := iss.WithClock(fixedClock(now.Add(46 * time.Minute)))
	_, err = later.Parse(tok)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestParseRejectsForeignSignature(t *testing.T) {
	tok, _, err := NewIssuer("one", time.Hour, time.Hour).Issue(1, access.RoleCustomer)
	require.NoError(t, err)
	_, err = NewIssuer("two", time.Hour, time.Hour).Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = NewIssuer("one", time.Hour, time.Hour).Parse("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHash(t *testing.T) {
	HashCost = bcrypt.MinCost
	h, err := HashPassword("harvest-2026")
	require.NoError(t, err)
	assert.True(t, CheckPassword(h, "harvest-2026"))
	assert.False(t, CheckPassword(h, "harvest-2025"))
}
