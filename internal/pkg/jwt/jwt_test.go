package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenCarriesIdentity(t *testing.T) {
	svc := NewJWTService("test-secret", time.Minute)

	token, expiresAt, err := svc.GenerateAccessToken("emp-1", RoleManager)
	require.NoError(t, err)
	assert.Greater(t, expiresAt, time.Now().Unix())

	decoded, err := svc.JWTAuth().Decode(token)
	require.NoError(t, err)
	claims := decoded.PrivateClaims()
	assert.Equal(t, "emp-1", claims["employee_id"])
	assert.Equal(t, "manager", claims["role"])
	assert.Equal(t, TokenTypeAccess, claims["type"])
}

func TestAccessTokenRejectsUnknownRole(t *testing.T) {
	svc := NewJWTService("test-secret", time.Minute)

	_, _, err := svc.GenerateAccessToken("emp-1", Role("owner"))
	assert.Error(t, err)
}

func TestSSEToken(t *testing.T) {
	svc := NewJWTService("test-secret", time.Minute)

	token, expiresIn, err := svc.GenerateSSEToken("emp-1")
	require.NoError(t, err)
	assert.Equal(t, 300, expiresIn)

	employeeID, err := svc.ValidateSSEToken(token)
	require.NoError(t, err)
	assert.Equal(t, "emp-1", employeeID)

	access, _, err := svc.GenerateAccessToken("emp-1", RoleEmployee)
	require.NoError(t, err)
	_, err = svc.ValidateSSEToken(access)
	assert.Error(t, err)

	other := NewJWTService("other-secret", time.Minute)
	_, err = other.ValidateSSEToken(token)
	assert.Error(t, err)
}
