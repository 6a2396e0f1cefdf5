package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/north-cloud/ogp-verifier/internal/bootstrap"
)

func newServeCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the verification API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if validationErr := cfg.Validate(); validationErr != nil {
				return fmt.Errorf("validate config: %w", validationErr)
			}
			return bootstrap.Start(cmd.Context(), cfg)
		},
	}
}
