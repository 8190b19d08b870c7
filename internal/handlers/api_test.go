package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	h := &APIHandler{JWTSecret: []byte("test-secret")}

	token, err := h.generateToken(42, "juliette")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	uid, err := h.parseToken(token)
	require.NoError(t, err)
	assert.Equal(t, 42, uid)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	h := &APIHandler{JWTSecret: []byte("test-secret")}
	other := &APIHandler{JWTSecret: []byte("other-secret")}

	token, err := h.generateToken(42, "juliette")
	require.NoError(t, err)

	_, err = other.parseToken(token)
	assert.Error(t, err)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	secret := []byte("test-secret")
	h := &APIHandler{JWTSecret: secret}

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 42,
		"exp":     time.Now().Add(-time.Hour).Unix(),
	})
	tokenString, err := expired.SignedString(secret)
	require.NoError(t, err)

	_, err = h.parseToken(tokenString)
	assert.Error(t, err)
}

func TestRequireTokenRejectsMissingHeader(t *testing.T) {
	h := &APIHandler{JWTSecret: []byte("test-secret")}

	called := false
	protected := h.RequireToken(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	rec := httptest.NewRecorder()
	protected(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
	assert.Contains(t, rec.Body.String(), "Missing bearer token")
}

func TestRequireTokenPassesUserID(t *testing.T) {
	h := &APIHandler{JWTSecret: []byte("test-secret")}

	token, err := h.generateToken(7, "juliette")
	require.NoError(t, err)

	var gotUID int
	protected := h.RequireToken(func(w http.ResponseWriter, r *http.Request) {
		gotUID = apiUser(r)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	protected(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 7, gotUID)
}
