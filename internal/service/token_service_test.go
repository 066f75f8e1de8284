package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTTokenService_GenerateAndValidate(t *testing.T) {
	svc := NewJWTTokenService("test-secret-key", 3*time.Hour, "bitslow-market")

	token, expiry, err := svc.Generate(42)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(3*time.Hour), expiry, time.Minute)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.ClientID)
	assert.WithinDuration(t, expiry, claims.ExpiresAt, time.Second)
}

func TestJWTTokenService_Validate_WrongSecret(t *testing.T) {
	issuer := NewJWTTokenService("secret-a", time.Hour, "bitslow-market")
	verifier := NewJWTTokenService("secret-b", time.Hour, "bitslow-market")

	token, _, err := issuer.Generate(42)
	require.NoError(t, err)

	_, err = verifier.Validate(token)
	assert.Error(t, err)
}

func TestJWTTokenService_Validate_Expired(t *testing.T) {
	svc := NewJWTTokenService("test-secret-key", -time.Minute, "bitslow-market")

	token, _, err := svc.Generate(42)
	require.NoError(t, err)

	_, err = svc.Validate(token)
	assert.Error(t, err)
}

func TestJWTTokenService_Validate_Garbage(t *testing.T) {
	svc := NewJWTTokenService("test-secret-key", time.Hour, "bitslow-market")

	_, err := svc.Validate("not.a.jwt")
	assert.Error(t, err)
}
