package auth_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acgeoffrey/budget-tracker-api/internal/auth"
	"github.com/acgeoffrey/budget-tracker-api/internal/config"
	"github.com/acgeoffrey/budget-tracker-api/internal/utils"
)

func testJWTService() *auth.JWTService {
	return auth.NewJWTService(&config.JWTSettings{
		Secret: "test-secret-key-that-is-long-enough",
		Expiry: time.Hour,
		Issuer: "budget-tracker-test",
	})
}

func TestGenerateToken(t *testing.T) {
	svc := testJWTService()

	token, issuedAt, err := svc.GenerateToken(42)
	require.NoError(t, err)

	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now(), issuedAt, 2*time.Second)
}

func TestValidateToken(t *testing.T) {
	svc := testJWTService()

	token, _, err := svc.GenerateToken(42)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)

	assert.Equal(t, int64(42), claims.UserID)
	assert.NotEmpty(t, claims.ID, "every token carries a unique jti")
	assert.Equal(t, "budget-tracker-test", claims.Issuer)
	require.NotNil(t, claims.IssuedAt)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	svc := testJWTService()
	other := auth.NewJWTService(&config.JWTSettings{
		Secret: "a-completely-different-secret-key",
		Expiry: time.Hour,
		Issuer: "budget-tracker-test",
	})

	token, _, err := svc.GenerateToken(42)
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, utils.StatusCode(err))
}

func TestValidateToken_Expired(t *testing.T) {
	svc := auth.NewJWTService(&config.JWTSettings{
		Secret: "test-secret-key-that-is-long-enough",
		Expiry: -time.Minute,
		Issuer: "budget-tracker-test",
	})

	token, _, err := svc.GenerateToken(42)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)

	appErr := utils.ParseError(err)
	assert.Equal(t, http.StatusUnauthorized, appErr.StatusCode)
}

func TestValidateToken_Garbage(t *testing.T) {
	svc := testJWTService()

	_, err := svc.ValidateToken("not.a.token")
	assert.Error(t, err)
}

func TestValidateToken_WrongSigningMethod(t *testing.T) {
	svc := testJWTService()

	// alg=none tokens must never validate
	token := jwt.NewWithClaims(jwt.SigningMethodNone, &auth.SessionClaims{
		UserID: 42,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.ValidateToken(signed)
	assert.Error(t, err)
}
