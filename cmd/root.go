package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/amsot/twfcode/cmd/configcmd"
	"github.com/amsot/twfcode/cmd/serve"
	"github.com/amsot/twfcode/cmd/snippets"
	"github.com/amsot/twfcode/internal/buildinfo"
	"github.com/amsot/twfcode/internal/conf"
	"github.com/amsot/twfcode/internal/logger"
)

// RootCommand creates and returns the root command
func RootCommand(build *buildinfo.Context) *cobra.Command {
	settings := &conf.Settings{}
	var configFile string

	rootCmd := &cobra.Command{
		Use:           "twfcode",
		Short:         "TWF.code snippet site",
		Version:       fmt.Sprintf("%s (built %s)", build.GetVersion(), build.GetBuildDate()),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Set up the global flags for the root command.
	if err := setupFlags(rootCmd, settings, &configFile); err != nil {
		panic(err)
	}

	configCmd := configcmd.Command()
	subcommands := []*cobra.Command{
		serve.Command(settings, build),
		snippets.Command(settings),
		configCmd,
	}
	rootCmd.AddCommand(subcommands...)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if configFile != "" {
			viper.SetConfigFile(configFile)
		}

		// config subcommands manage the file itself and must run without a valid one
		if cmd == configCmd || cmd.Parent() == configCmd {
			return nil
		}
		return initialize(settings)
	}

	return rootCmd
}

// initialize loads settings and installs the global logger before any subcommand runs.
func initialize(settings *conf.Settings) error {
	loaded, err := conf.Load()
	if err != nil {
		return err
	}
	*settings = *loaded

	central, err := logger.NewCentralLogger(loggingConfig(settings))
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	logger.SetGlobal(central)
	return nil
}

// loggingConfig returns the logging section, raised to debug when --debug is set.
func loggingConfig(settings *conf.Settings) *logger.LoggingConfig {
	cfg := settings.Logging
	if !settings.Debug {
		return &cfg
	}

	cfg.DefaultLevel = string(logger.LogLevelDebug)
	if cfg.Console != nil {
		console := *cfg.Console
		console.Level = string(logger.LogLevelDebug)
		cfg.Console = &console
	}
	return &cfg
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings, configFile *string) error {
	rootCmd.PersistentFlags().StringVarP(configFile, "config", "c", "", "Path to config.yaml (default: search ., ~/.config/twfcode, /etc/twfcode)")
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")

	if err := viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug")); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}

	return nil
}
