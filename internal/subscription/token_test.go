package subscription

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func TestSessionTokenRoundtrip(t *testing.T) {
	token, err := CreateSessionToken(testSecret, "dreamer@example.com", "cus_123", "sub_456")
	require.NoError(t, err)

	claims, err := VerifySessionToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, "dreamer@example.com", claims.Email)
	assert.Equal(t, "cus_123", claims.CustomerID)
	assert.Equal(t, "sub_456", claims.SubscriptionID)
	assert.WithinDuration(t, time.Now().Add(30*24*time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestVerifySessionTokenWrongSecret(t *testing.T) {
	token, err := CreateSessionToken(testSecret, "dreamer@example.com", "", "")
	require.NoError(t, err)

	_, err = VerifySessionToken([]byte("other-secret"), token)
	assert.Error(t, err)
}

func TestVerifySessionTokenExpired(t *testing.T) {
	claims := SessionClaims{
		Email: "dreamer@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-48 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-24 * time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	require.NoError(t, err)

	_, err = VerifySessionToken(testSecret, signed)
	assert.Error(t, err)
}

func TestVerifySessionTokenMissingEmail(t *testing.T) {
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	require.NoError(t, err)

	_, err = VerifySessionToken(testSecret, signed)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email")
}

func TestVerifySessionTokenMalformed(t *testing.T) {
	_, err := VerifySessionToken(testSecret, "not.a.jwt")
	assert.Error(t, err)
}

func TestSubscriberActive(t *testing.T) {
	assert.False(t, (*Subscriber)(nil).Active())
	assert.False(t, (&Subscriber{Status: StatusCanceled}).Active())
	assert.True(t, (&Subscriber{Status: StatusActive}).Active())
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	got, err := store.Get(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, got)

	sub := &Subscriber{Email: "dreamer@example.com", Status: StatusActive, BackendAPIKey: "sk-backend"}
	require.NoError(t, store.Save(ctx, sub))

	got, err = store.Get(ctx, sub.Email)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "sk-backend", got.BackendAPIKey)

	// Mutating the returned copy does not touch the stored value.
	got.Status = StatusCanceled
	again, err := store.Get(ctx, sub.Email)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, again.Status)

	require.NoError(t, store.Delete(ctx, sub.Email))
	gone, err := store.Get(ctx, sub.Email)
	require.NoError(t, err)
	assert.Nil(t, gone)
}
