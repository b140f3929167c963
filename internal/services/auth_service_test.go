package services

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/virendra-maker/urmaxx-clone/internal/config"
)

// authorizerStub answers validate_session for the "good" cookie
func authorizerStub(t *testing.T, ln net.Listener) {
	t.Helper()
	srv := &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Variables struct {
				Data struct {
					Cookie string `json:"cookie"`
				} `json:"data"`
			} `json:"variables"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)

		session := map[string]interface{}{"is_valid": false}
		if req.Variables.Data.Cookie == "good" {
			session = map[string]interface{}{
				"is_valid": true,
				"user":     map[string]interface{}{"id": "authz-user-1", "email": "user@example.com"},
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]interface{}{"validate_session": session},
		})
	})}
	go srv.Serve(ln)
	t.Cleanup(func() { srv.Close() })
}

func TestAuthorizerRetriesInitialization(t *testing.T) {
	// Reserve an address with nothing listening on it yet
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	authz := NewAuthorizer(&config.Config{
		AuthzURL:         "http://" + addr,
		AuthzClientID:    "client",
		AuthzRedirectURL: "https://catalog.example.com",
	})
	require.NotNil(t, authz)
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	authz.now = func() time.Time { return clock }
	ctx := context.Background()

	_, err = authz.ValidateSession(ctx, "good")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ping failed")
	assert.False(t, authz.IsInitialized())

	ln, err = net.Listen("tcp", addr)
	require.NoError(t, err)
	authorizerStub(t, ln)

	// The failure is answered until the retry interval passes
	_, err = authz.ValidateSession(ctx, "good")
	require.Error(t, err)
	assert.False(t, authz.IsInitialized())

	clock = clock.Add(AuthorizerRetryInterval)
	openID, err := authz.ValidateSession(ctx, "good")
	require.NoError(t, err)
	assert.Equal(t, "authz-user-1", openID)
	require.True(t, authz.IsInitialized())

	_, err = authz.ValidateSession(ctx, "expired")
	assert.Error(t, err)
}

func TestAuthorizerRedirectURLFromConfig(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	authorizerStub(t, ln)

	authz := NewAuthorizer(&config.Config{
		AuthzURL:         "http://" + ln.Addr().String(),
		AuthzClientID:    "client",
		AuthzRedirectURL: "https://catalog.example.com/",
	})

	client, err := authz.init(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "https://catalog.example.com", client.RedirectURL)

	again, err := authz.init(context.Background())
	require.NoError(t, err)
	assert.Same(t, client, again)
}
