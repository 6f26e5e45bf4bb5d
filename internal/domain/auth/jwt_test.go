package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("test-secret"))

	token, expiresAt, err := svc.GenerateAccessToken(TokenSubject{
		UserID:      "u-1",
		CompanyID:   42,
		Roles:       []string{"agronomist"},
		Permissions: []string{"report:profitability:read"},
	})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), expiresAt, 5*time.Second)

	user, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", user.UserID)
	assert.Equal(t, int64(42), user.CompanyID)
	assert.True(t, user.HasPermission("report:profitability:read"))
	assert.False(t, user.HasPermission("report:other:read"))
}

func TestJWTService_RejectsWrongSecret(t *testing.T) {
	issuer := NewJWTService(DefaultJWTConfig("one"))
	verifier := NewJWTService(DefaultJWTConfig("two"))

	token, _, err := issuer.GenerateAccessToken(TokenSubject{UserID: "u", CompanyID: 1})
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTService_RejectsExpired(t *testing.T) {
	cfg := DefaultJWTConfig("s")
	cfg.AccessTokenTTL = -time.Minute
	svc := NewJWTService(cfg)

	token, _, err := svc.GenerateAccessToken(TokenSubject{UserID: "u", CompanyID: 1})
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestJWTService_RequiresCompany(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("s"))

	_, _, err := svc.GenerateAccessToken(TokenSubject{UserID: "u"})
	assert.ErrorIs(t, err, ErrNoCompany)

	// Hand-crafted token without a cid claim.
	raw := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "campos",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
		UserID: "u",
	})
	signed, err := raw.SignedString([]byte("s"))
	require.NoError(t, err)

	_, err = svc.ValidateToken(signed)
	assert.ErrorIs(t, err, ErrNoCompany)
}
