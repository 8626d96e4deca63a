// Package subscription holds the daemon-side subscription model: session
// tokens and the subscriber store the proxy consults before serving.
package subscription

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// sessionTTL is how long an issued session token stays valid.
const sessionTTL = 30 * 24 * time.Hour

// SessionClaims is the JWT payload of a session token.
type SessionClaims struct {
	Email          string `json:"email"`
	CustomerID     string `json:"customer_id,omitempty"`
	SubscriptionID string `json:"subscription_id,omitempty"`
	jwt.RegisteredClaims
}

// CreateSessionToken signs a 30-day HS256 session token for a subscriber.
func CreateSessionToken(secret []byte, email, customerID, subscriptionID string) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		Email:          email,
		CustomerID:     customerID,
		SubscriptionID: subscriptionID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(sessionTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// VerifySessionToken parses and validates a session token, returning its
// claims. Expired, malformed or wrongly signed tokens all fail.
func VerifySessionToken(secret []byte, tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid session token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid session token")
	}
	if claims.Email == "" {
		return nil, fmt.Errorf("session token missing email claim")
	}
	return claims, nil
}
