package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/acgeoffrey/budget-tracker-api/internal/config"
	"github.com/acgeoffrey/budget-tracker-api/internal/utils"
)

// JWT errors
var (
	ErrInvalidSigningMethod = errors.New("invalid signing method")
)

// SessionClaims are the claims embedded in a session token. The issued-at
// timestamp doubles as the staleness anchor: a token minted before the
// user's last password change is rejected during authentication.
type SessionClaims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// JWTService issues and validates session tokens. The signing secret and
// the token lifetime come from immutable process configuration.
type JWTService struct {
	Config *config.JWTSettings
}

// NewJWTService creates a new JWTService instance.
func NewJWTService(config *config.JWTSettings) *JWTService {
	return &JWTService{
		Config: config,
	}
}

// GenerateToken mints a signed session token for a user. It returns the
// token string and the issued-at time used for the staleness comparison.
// Each token carries a unique jti claim.
func (s *JWTService) GenerateToken(userID int64) (string, time.Time, error) {
	jwtID := uuid.New().String()

	now := time.Now()
	claims := SessionClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.Config.Issuer,
			Subject:   fmt.Sprintf("%d", userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.Config.Expiry)),
			NotBefore: jwt.NewNumericDate(now),
			ID:        jwtID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(s.Config.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, now, nil
}

// ValidateToken validates a session token and returns its claims if valid.
// A missing, malformed, tampered or expired token yields an unauthorized
// error; no distinction is leaked beyond expired vs invalid.
func (s *JWTService) ValidateToken(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSigningMethod
		}
		return []byte(s.Config.Secret), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, utils.NewExpiredTokenError()
		}
		return nil, utils.NewInvalidTokenError()
	}

	if !token.Valid {
		return nil, utils.NewInvalidTokenError()
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok {
		return nil, utils.NewInvalidTokenError()
	}

	if claims.IssuedAt == nil {
		return nil, utils.NewInvalidTokenError()
	}

	return claims, nil
}
