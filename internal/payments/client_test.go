package payments

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAccount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/accounts", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_123", r.Header.Get("Authorization"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "express", r.PostForm.Get("type"))
		assert.Equal(t, "juliette@example.com", r.PostForm.Get("email"))
		w.Write([]byte(`{"id":"acct_1AbCdE"}`))
	}))
	defer srv.Close()

	c := NewClient("sk_test_123", srv.URL)
	id, err := c.CreateAccount(context.Background(), "juliette@example.com")
	require.NoError(t, err)
	assert.Equal(t, "acct_1AbCdE", id)
}

func TestCreateOnboardingLink(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/account_links", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "acct_1AbCdE", r.PostForm.Get("account"))
		assert.Equal(t, "account_onboarding", r.PostForm.Get("type"))
		w.Write([]byte(`{"url":"https://connect.example.com/setup/s/xyz"}`))
	}))
	defer srv.Close()

	c := NewClient("sk_test_123", srv.URL)
	link, err := c.CreateOnboardingLink(context.Background(), "acct_1AbCdE", "http://localhost/settings", "http://localhost/settings")
	require.NoError(t, err)
	assert.Equal(t, "https://connect.example.com/setup/s/xyz", link)
}

func TestAPIErrorsSurfaceMessages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"Invalid email address."}}`))
	}))
	defer srv.Close()

	c := NewClient("sk_test_123", srv.URL)
	_, err := c.CreateAccount(context.Background(), "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid email address.")
}

func TestEnabled(t *testing.T) {
	assert.False(t, NewClient("", "https://api.stripe.com").Enabled())
	assert.True(t, NewClient("sk_test", "https://api.stripe.com").Enabled())
}
