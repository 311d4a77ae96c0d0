package serve

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amsot/twfcode/internal/buildinfo"
	"github.com/amsot/twfcode/internal/conf"
	"github.com/amsot/twfcode/internal/testutil"
)

func testSettings(t *testing.T) *conf.Settings {
	t.Helper()
	settings, err := conf.DefaultSettings()
	require.NoError(t, err)
	settings.WebServer.Port = "0"
	return settings
}

func TestRun_StopsWhenContextCancelled(t *testing.T) {
	settings := testSettings(t)

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, settings, buildinfo.NewContext("1.0.0", ""))
	}()

	cancel()
	err := testutil.WaitFor[error](t, done, testutil.LongTestTimeout, "Run did not return after cancellation")
	assert.NoError(t, err)
}

func TestRun_InvalidCMSURL(t *testing.T) {
	settings := testSettings(t)
	settings.CMS.BaseURL = "not a url"

	err := Run(t.Context(), settings, nil)
	assert.Error(t, err)
}

func TestCommand_PortFlag(t *testing.T) {
	settings := &conf.Settings{}
	cmd := Command(settings, nil)

	require.NoError(t, cmd.Flags().Parse([]string{"--port", "9090"}))
	assert.Equal(t, "9090", settings.WebServer.Port)
}
