package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricecast/pricecast/config"
	"github.com/rs/zerolog/log"
)

func TestSetup(t *testing.T) {
	t.Run("RejectsUnknownLevel", func(t *testing.T) {
		err := Setup(config.LoggingConfig{Level: "chatty", Output: "stdout"})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "chatty")
	})

	t.Run("StdoutJSON", func(t *testing.T) {
		err := Setup(config.LoggingConfig{Level: "info", Format: "json", Output: "stdout"})
		require.NoError(t, err)
	})

	t.Run("FileOutputWritesThroughRotator", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "app.log")
		err := Setup(config.LoggingConfig{
			Level:    "debug",
			Format:   "json",
			Output:   "file",
			FilePath: path,
			MaxSize:  1,
		})
		require.NoError(t, err)

		log.Info().Str("check", "rotation").Msg("file sink works")

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "file sink works")

		// Reset the global logger for other tests
		require.NoError(t, Setup(config.LoggingConfig{Level: "info", Format: "json", Output: "stdout"}))
	})
}
