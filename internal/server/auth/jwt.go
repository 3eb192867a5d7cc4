package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/gophstore/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims are the registered claims plus the client the token was issued to.
type Claims struct {
	jwt.RegisteredClaims
	ClientID string `json:"cid"`
}

// GenerateToken signs an HS256 token for clientID valid for validity from now.
func GenerateToken(clientID string, secretKey []byte, now time.Time, validity time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
		},
		ClientID: clientID,
	})

	return token.SignedString(secretKey)
}

// GetClientIDFromToken verifies tokenString and returns its client. Expired
// and invalid tokens both yield an Unauthorized error.
func GetClientIDFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.WrapError(common.CodeUnauthorized, err, "token expired")
		}
		return "", common.WrapError(common.CodeUnauthorized, err, "invalid token")
	}

	if !token.Valid {
		return "", common.NewError(common.CodeUnauthorized, "invalid token")
	}

	return claims.ClientID, nil
}
