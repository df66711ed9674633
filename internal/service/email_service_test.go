package service

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendPasswordReset(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer key-1", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewEmailService("key-1", "noreply@test", srv.URL)
	require.NoError(t, s.SendPasswordReset(context.Background(), "a@test", "alice", "123456"))
	assert.Equal(t, "noreply@test", got["from"])
	assert.Equal(t, []any{"a@test"}, got["to"])
	assert.Contains(t, got["html"], "123456")
}

func TestSendPasswordResetAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad sender", http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	err := NewEmailService("k", "f", srv.URL).SendPasswordReset(context.Background(), "a@test", "alice", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "422")
}

func TestSendPasswordResetWithoutKey(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	err := NewEmailService("", "f", "http://127.0.0.1:1").SendPasswordReset(context.Background(), "a@test", "alice", "Zq81secretKey")
	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "alice")
	assert.NotContains(t, buf.String(), "Zq81secretKey")
}
