package configcmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := Command()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestInit_WritesDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "twfcode.yaml")
	out, err := run(t, "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(data, &doc))
	site, ok := doc["site"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "TWF.code", site["name"])
	webserver, ok := doc["webserver"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "8080", webserver["port"])
}

func TestInit_DirectoryArgument(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "etc")
	_, err := run(t, "init", dir)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "config.yaml"))
}

func TestInit_RefusesOverwrite(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("debug: true\n"), 0o600))

	_, err := run(t, "init", path)
	require.Error(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "debug: true\n", string(data))

	_, err = run(t, "init", "--force", path)
	require.NoError(t, err)
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.NotEqual(t, "debug: true\n", string(data))
}
