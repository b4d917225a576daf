package gotrue

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/web3ix-api/internal/config"
	"github.com/web3ix-api/internal/domain"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(&config.Config{
		SupabaseURL:            srv.URL,
		SupabaseKey:            "anon-key",
		SupabaseServiceRoleKey: "service-key",
		IdentityTimeout:        2 * time.Second,
	}, zap.NewNop())
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestSignIn_Success(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/v1/token", r.URL.Path)
		assert.Equal(t, "password", r.URL.Query().Get("grant_type"))
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "a@x.com", body["email"])
		assert.Equal(t, "pw", body["password"])
		writeJSON(w, 200, `{"access_token":"at","token_type":"bearer","expires_in":3600,"refresh_token":"rt",
			"user":{"id":"u1","email":"a@x.com","email_confirmed_at":"2024-01-01T00:00:00Z"}}`)
	})

	sess, err := c.SignIn(context.Background(), "a@x.com", "pw")

	require.NoError(t, err)
	assert.Equal(t, "at", sess.AccessToken)
	assert.Equal(t, 3600, sess.ExpiresIn)
	require.NotNil(t, sess.User)
	assert.Equal(t, "u1", sess.User.ID)
	assert.True(t, sess.User.Confirmed())
}

func TestSignIn_Rejected(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 400, `{"code":400,"error_code":"invalid_credentials","msg":"Invalid login credentials"}`)
	})

	_, err := c.SignIn(context.Background(), "a@x.com", "pw")

	var pe *domain.ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 400, pe.Status)
	assert.Equal(t, "invalid_credentials", pe.Code)
	assert.Equal(t, "Invalid login credentials", pe.Message)
}

func TestSignIn_LegacyErrorShape(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 400, `{"error":"invalid_grant","error_description":"Email not confirmed"}`)
	})

	_, err := c.SignIn(context.Background(), "a@x.com", "pw")

	var pe *domain.ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "invalid_grant", pe.Code)
	assert.Equal(t, "Email not confirmed", pe.Message)
}

func TestSignUp_BareUser(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/signup", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]any{"provider": "wallet", "full_public_key": "key"}, body["data"])
		writeJSON(w, 200, `{"id":"u1","email":"a@x.com","user_metadata":{"provider":"wallet"}}`)
	})

	acct, err := c.SignUp(context.Background(), "a@x.com", "pw", map[string]any{"provider": "wallet", "full_public_key": "key"})

	require.NoError(t, err)
	assert.Equal(t, "u1", acct.ID)
	assert.False(t, acct.Confirmed())
	assert.Equal(t, "wallet", acct.UserMetadata["provider"])
}

func TestSignUp_SessionWrappedUser(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, hasData := body["data"]
		assert.False(t, hasData)
		writeJSON(w, 200, `{"access_token":"at","user":{"id":"u2","email":"a@x.com"}}`)
	})

	acct, err := c.SignUp(context.Background(), "a@x.com", "pw", nil)

	require.NoError(t, err)
	assert.Equal(t, "u2", acct.ID)
}

func TestSignUp_Duplicate(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 422, `{"code":422,"error_code":"user_already_exists","msg":"User already registered"}`)
	})

	_, err := c.SignUp(context.Background(), "a@x.com", "pw", nil)

	assert.True(t, domain.IsDuplicateAccount(err))
}

func TestForceConfirm(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/auth/v1/admin/users/u1", r.URL.Path)
		assert.Equal(t, "service-key", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer service-key", r.Header.Get("Authorization"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, true, body["email_confirm"])
		writeJSON(w, 200, `{"id":"u1"}`)
	})

	assert.NoError(t, c.ForceConfirm(context.Background(), "u1"))
}

func TestForceConfirm_EmptyErrorBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	err := c.ForceConfirm(context.Background(), "u1")

	var pe *domain.ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "Forbidden", pe.Message)
}
