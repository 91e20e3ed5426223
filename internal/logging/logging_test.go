package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "codeplanner.log")

	logger, closer, err := New("info", path)
	require.NoError(t, err)

	logger.Debug().Msg("hidden")
	logger.Info().Str("task_id", "a").Msg("visible")
	closer()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"visible"`)
	assert.Contains(t, string(data), `"task_id":"a"`)
	assert.NotContains(t, string(data), "hidden")
}

func TestNew_InvalidLevel(t *testing.T) {
	_, closer, err := New("loud", "")
	require.Error(t, err)
	closer()
}

func TestComponent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.log")
	logger, closer, err := New("debug", path)
	require.NoError(t, err)

	prev := log.Logger
	log.Logger = logger
	t.Cleanup(func() { log.Logger = prev })

	l := Component("planner")
	assert.Equal(t, zerolog.DebugLevel, l.GetLevel())
	l.Info().Msg("hello")
	closer()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"cmp":"planner"`)
}
