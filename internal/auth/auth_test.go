package auth

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func TestCreateAndValidateJWT(t *testing.T) {
	id := Identity{Subject: "user_123", Email: "a@example.com", Name: "Ada", ImageURL: "https://img/a.png"}
	token, err := CreateJWT(testSecret, "https://issuer.example", id, time.Hour)
	require.NoError(t, err)

	claims, err := ValidateJWTAndGetClaims(token, testSecret, "https://issuer.example")
	require.NoError(t, err)
	assert.Equal(t, "user_123", claims.Subject)
	assert.Equal(t, "a@example.com", claims.Email)
	assert.Equal(t, "https://img/a.png", claims.Picture)
}

func TestValidateJWTRejects(t *testing.T) {
	id := Identity{Subject: "user_123"}

	token, err := CreateJWT(testSecret, "", id, time.Hour)
	require.NoError(t, err)
	_, err = ValidateJWTAndGetClaims(token, []byte("other"), "")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ValidateJWTAndGetClaims(token, testSecret, "https://issuer.example")
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := CreateJWT(testSecret, "", id, -time.Minute)
	require.NoError(t, err)
	_, err = ValidateJWTAndGetClaims(expired, testSecret, "")
	assert.ErrorIs(t, err, ErrInvalidToken)

	noSubject, err := CreateJWT(testSecret, "", Identity{}, time.Hour)
	require.NoError(t, err)
	_, err = ValidateJWTAndGetClaims(noSubject, testSecret, "")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ValidateJWTAndGetClaims("not-a-token", testSecret, "")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTProviderResolve(t *testing.T) {
	p := NewJWTProvider(string(testSecret), "")
	token, err := CreateJWT(testSecret, "", Identity{Subject: "user_1", Email: "u@example.com"}, time.Hour)
	require.NoError(t, err)

	r := httptest.NewRequest("GET", "/api/v1/projects", nil)
	id, err := p.Resolve(r)
	require.NoError(t, err)
	assert.Nil(t, id, "no credentials resolves to no identity")

	r.Header.Set("Authorization", "Bearer "+token)
	id, err = p.Resolve(r)
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, "user_1", id.Subject)
	assert.Equal(t, "u@example.com", id.Email)

	ws := httptest.NewRequest("GET", "/ws/abc?auth_token="+token, nil)
	id, err = p.Resolve(ws)
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, "user_1", id.Subject)

	bad := httptest.NewRequest("GET", "/api/v1/projects", nil)
	bad.Header.Set("Authorization", "Bearer garbage")
	_, err = p.Resolve(bad)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIdentityContext(t *testing.T) {
	assert.Nil(t, FromContext(context.Background()))
	ctx := WithIdentity(context.Background(), &Identity{Subject: "s"})
	assert.Equal(t, "s", FromContext(ctx).Subject)
}

func TestWebhookSignature(t *testing.T) {
	secret := []byte("whsec")
	body := []byte(`{"subject":"user_1","email":"a@example.com"}`)

	assert.NoError(t, VerifySignature(secret, body, Sign(secret, body)))
	assert.ErrorIs(t, VerifySignature(secret, []byte(`{}`), Sign(secret, body)), ErrBadSignature)
	assert.ErrorIs(t, VerifySignature(secret, body, "deadbeef"), ErrBadSignature)
	assert.ErrorIs(t, VerifySignature(secret, body, "sha256=zz"), ErrBadSignature)
	assert.Error(t, VerifySignature(nil, body, Sign(secret, body)))
}
