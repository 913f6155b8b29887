package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eonjenawa/eonjenawa-cli/internal/config"
)

func TestNew_WritesToLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.log")
	log, err := New(&config.Config{LogLevel: "debug", LogFormat: "json", LogFile: path})
	require.NoError(t, err)

	log.Info("room joined")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "room joined")
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New(&config.Config{LogLevel: "loud"})
	assert.Error(t, err)
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))
}
