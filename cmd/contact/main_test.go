package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"contact-service/internal/auth"
	"contact-service/pkg/contactclient"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestSend(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"message":"Message Sent Successfully"}`))
	}))
	defer srv.Close()

	t.Run("Valid", func(t *testing.T) {
		calls.Store(0)
		stdout, _, err := execute(t, "send",
			"--endpoint", srv.URL,
			"--name", "Alice",
			"--email", "alice@example.com",
			"--subject", "Hello",
			"--message", "I would like to work with you.",
		)
		require.NoError(t, err)
		assert.Contains(t, stdout, contactclient.SuccessText)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("Invalid", func(t *testing.T) {
		calls.Store(0)
		_, stderr, err := execute(t, "send",
			"--endpoint", srv.URL,
			"--name", "A",
			"--email", "alice",
			"--subject", "Hello",
			"--message", "too short",
		)
		require.ErrorIs(t, err, contactclient.ErrInvalid)
		assert.Equal(t, "email: must be a valid email address\nmessage: must be at least 10 characters\nname: must be at least 2 characters\n", stderr)
		assert.Equal(t, int32(0), calls.Load())
	})
}

func TestSend_ServerFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"boom"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, stderr, err := execute(t, "send",
		"--endpoint", srv.URL,
		"--name", "Alice",
		"--email", "alice@example.com",
		"--subject", "Hello",
		"--message", "I would like to work with you.",
	)
	require.ErrorIs(t, err, contactclient.ErrNotSent)
	assert.Contains(t, stderr, contactclient.FailureText)
}

func TestToken(t *testing.T) {
	stdout, _, err := execute(t, "token", "--secret", "cli-secret", "--subject", "ops")
	require.NoError(t, err)

	claims, err := auth.ValidateToken([]byte("cli-secret"), strings.TrimSpace(stdout))
	require.NoError(t, err)
	assert.Equal(t, auth.RoleAdmin, claims.Role)
	assert.Equal(t, "ops", claims.Subject)

	t.Setenv("JWT_SECRET", "")
	_, _, err = execute(t, "token")
	assert.Error(t, err)
}
