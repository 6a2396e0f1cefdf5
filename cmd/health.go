package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	infrahttp "github.com/jonesrussell/north-cloud/ogp-verifier/infrastructure/http"
	"github.com/jonesrussell/north-cloud/ogp-verifier/internal/client"
)

func newHealthCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check that the verification API is up",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if validationErr := cfg.ValidateClient(); validationErr != nil {
				return fmt.Errorf("validate config: %w", validationErr)
			}

			c := client.New(cfg.Client.BaseURL, infrahttp.NewClient(&infrahttp.ClientConfig{Timeout: cfg.Client.Timeout}))
			status, err := c.Health(cmd.Context())
			if err != nil {
				return fmt.Errorf("health check %s: %w", c.BaseURL(), err)
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n", c.BaseURL(), status.Status, status.Timestamp)
			return err
		},
	}

	cmd.Flags().String(keyBaseURL, "", "API base URL (default from client.base_url)")
	return cmd
}
