package cmd

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amsot/twfcode/internal/buildinfo"
	"github.com/amsot/twfcode/internal/conf"
	"github.com/amsot/twfcode/internal/logger"
)

func TestRootCommand_Subcommands(t *testing.T) {
	root := RootCommand(buildinfo.NewContext("1.2.0", "2024-05-01"))

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"serve", "snippets", "config"})
	assert.Equal(t, "1.2.0 (built 2024-05-01)", root.Version)
}

func TestRootCommand_ConfigInitSkipsLoading(t *testing.T) {
	root := RootCommand(nil)

	path := filepath.Join(t.TempDir(), "config.yaml")
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml"), "config", "init", path})

	require.NoError(t, root.Execute())
	assert.True(t, strings.HasPrefix(out.String(), "Wrote default configuration"))
	assert.FileExists(t, path)
}

func TestLoggingConfig(t *testing.T) {
	t.Parallel()

	settings := &conf.Settings{Logging: logger.LoggingConfig{
		DefaultLevel: "info",
		Console:      &logger.ConsoleOutput{Enabled: true, Level: "warn"},
	}}

	cfg := loggingConfig(settings)
	assert.Equal(t, "info", cfg.DefaultLevel)
	assert.Equal(t, "warn", cfg.Console.Level)

	settings.Debug = true
	cfg = loggingConfig(settings)
	assert.Equal(t, "debug", cfg.DefaultLevel)
	assert.Equal(t, "debug", cfg.Console.Level)
	assert.Equal(t, "warn", settings.Logging.Console.Level, "settings are not mutated")
}
