package browser

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileDir(t *testing.T) {
	assert.Equal(t, filepath.Join("data", "profile", "main"), ProfileDir("data/profile", "main"))
}

func TestClearProfile(t *testing.T) {
	dataDir := t.TempDir()
	profileDir := ProfileDir(dataDir, "main")
	require.NoError(t, os.MkdirAll(profileDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(profileDir, "Cookies"), []byte("x"), 0o644))

	require.NoError(t, ClearProfile(dataDir, "main"))

	_, err := os.Stat(profileDir)
	assert.True(t, os.IsNotExist(err))
}

func TestClearProfileMissingDirIsNotAnError(t *testing.T) {
	assert.NoError(t, ClearProfile(t.TempDir(), "never-created"))
}

func TestIsSessionInvalid(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "nil", err: nil, expected: false},
		{name: "target closed", err: errors.New("Target page, context or browser has been closed"), expected: true},
		{name: "browser closed", err: errors.New("browser has been closed"), expected: true},
		{name: "wrapped", err: fmt.Errorf("login failed: %w", errors.New("Target closed")), expected: true},
		{name: "connection closed", err: errors.New("Connection closed"), expected: true},
		{name: "ordinary timeout", err: errors.New("timeout 15000ms exceeded"), expected: false},
		{name: "navigation failure", err: errors.New("net::ERR_NAME_NOT_RESOLVED"), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsSessionInvalid(tt.err))
		})
	}
}
