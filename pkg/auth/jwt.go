package auth

import (
	"errors"
	"time"

	"lcr/pkg/model"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "lcr"

type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Scope    string `json:"scp"`
	jwt.RegisteredClaims
}

// Scopes returns the parsed scope set from the scp claim.
func (c *Claims) Scopes() []string {
	return ParseScopeString(c.Scope)
}

// GenerateTokenPair issues an access/refresh pair carrying the user's role
// and its derived scopes.
func GenerateTokenPair(user *model.User, secret string, accessTTL, refreshTTL time.Duration) (*model.TokenPair, error) {
	accessToken, err := signToken(user, secret, accessTTL)
	if err != nil {
		return nil, err
	}
	refreshToken, err := signToken(user, secret, refreshTTL)
	if err != nil {
		return nil, err
	}

	return &model.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(accessTTL.Seconds()),
		TokenType:    "Bearer",
	}, nil
}

func signToken(user *model.User, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		Scope:    ScopeString(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    issuer,
			Subject:   user.ID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateToken parses and verifies a signed token, rejecting any signing
// method other than HMAC.
func ValidateToken(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
