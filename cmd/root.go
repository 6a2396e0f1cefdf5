// Package cmd implements the ogp-verifier command-line interface: the API
// server and a client that verifies URLs against it.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	infraconfig "github.com/jonesrussell/north-cloud/ogp-verifier/infrastructure/config"
	"github.com/jonesrussell/north-cloud/ogp-verifier/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/ogp-verifier/internal/config"
)

// Viper keys are the flag names.
const (
	keyConfig  = "config"
	keyDebug   = "debug"
	keyBaseURL = "base-url"
	keyOutput  = "output"
	keyNoColor = "no-color"
	keyLocal   = "local"
)

// options carries flag and environment values for one command tree.
type options struct {
	v *viper.Viper
}

// NewRootCommand builds the command tree. Flags can also be set through
// OGP_-prefixed environment variables, e.g. OGP_BASE_URL.
func NewRootCommand() *cobra.Command {
	opts := &options{v: viper.New()}
	opts.v.SetEnvPrefix("OGP")
	opts.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	opts.v.AutomaticEnv()

	root := &cobra.Command{
		Use:           "ogp-verifier",
		Short:         "Verify Open Graph metadata",
		Long:          `Serve the OGP verification API or verify URLs against a running instance.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.v.BindPFlags(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	root.PersistentFlags().String(keyConfig, infraconfig.GetConfigPath("config.yml"), "path to the configuration file")
	root.PersistentFlags().Bool(keyDebug, false, "enable debug logging")

	root.AddCommand(newServeCommand(opts))
	root.AddCommand(newVerifyCommand(opts))
	root.AddCommand(newHealthCommand(opts))

	return root
}

// Execute runs the CLI with a context cancelled on SIGINT/SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return NewRootCommand().ExecuteContext(ctx)
}

// loadConfig reads the configuration without server validation; each
// command validates what it uses.
func (o *options) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.v.GetString(keyConfig))
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if o.v.GetBool(keyDebug) {
		cfg.Service.Debug = true
		cfg.Logging.Level = "debug"
	}
	if baseURL := o.v.GetString(keyBaseURL); baseURL != "" {
		cfg.Client.BaseURL = baseURL
	}
	return cfg, nil
}

// cliLogger logs to stderr so stdout carries only the report.
func (o *options) cliLogger() logger.Logger {
	level := "warn"
	if o.v.GetBool(keyDebug) {
		level = "debug"
	}
	log, err := logger.New(logger.Config{Level: level, OutputPaths: []string{"stderr"}})
	if err != nil {
		return logger.NewNop()
	}
	return log
}
