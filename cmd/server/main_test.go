package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/masiqhakaze/website/internal/auth"
	"github.com/masiqhakaze/website/internal/config"
)

func TestOpenBackendUnknownDriver(t *testing.T) {
	_, err := openBackend(context.Background(), &config.Config{StoreDriver: "tinydb"}, zap.NewNop())
	assert.ErrorContains(t, err, "unknown STORE_DRIVER")
}

func TestNewLoggerRejectsBadLevel(t *testing.T) {
	_, err := newLogger("loud")
	assert.Error(t, err)

	log, err := newLogger("debug")
	require.NoError(t, err)
	assert.NotNil(t, log)
}

func TestPasswdCommand(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("STORE_DRIVER", "badger")
	t.Setenv("DATA_DIR", dir)
	t.Setenv("LOG_LEVEL", "error")

	run := func(args ...string) error {
		rootCmd.SetArgs(append([]string{"passwd"}, args...))
		return rootCmd.Execute()
	}

	require.NoError(t, run("--new", "first"))
	assert.ErrorIs(t, run("--old", "wrong", "--new", "second"), auth.ErrCredentialMismatch)
	require.NoError(t, run("--old", "first", "--new", "second"))

	cfg := config.Load()
	backend, err := openBackend(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer backend.Close()

	ok, err := auth.NewCredentialStore(backend).Authenticate(context.Background(), "second")
	require.NoError(t, err)
	assert.True(t, ok)
}
