package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	infrahttp "github.com/jonesrussell/north-cloud/ogp-verifier/infrastructure/http"
	"github.com/jonesrussell/north-cloud/ogp-verifier/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/ogp-verifier/internal/client"
	"github.com/jonesrussell/north-cloud/ogp-verifier/internal/config"
	"github.com/jonesrussell/north-cloud/ogp-verifier/internal/ogp"
	"github.com/jonesrussell/north-cloud/ogp-verifier/internal/presenter"
	"github.com/jonesrussell/north-cloud/ogp-verifier/internal/session"
)

var errEmptyURL = errors.New("URL is required")

func newVerifyCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify <url>",
		Short: "Verify the Open Graph tags of a URL",
		Long: `Submit a URL to the verification API and print the report: raw og:* values,
validation warnings and errors, and the Twitter, Facebook and Discord previews.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.runVerify(cmd, args[0])
		},
	}

	cmd.Flags().String(keyBaseURL, "", "API base URL (default from client.base_url)")
	cmd.Flags().StringP(keyOutput, "o", string(presenter.FormatTable), "output format: table or json")
	cmd.Flags().Bool(keyNoColor, false, "disable colored output")
	cmd.Flags().Bool(keyLocal, false, "verify in-process instead of calling the API")

	return cmd
}

func (o *options) runVerify(cmd *cobra.Command, rawURL string) error {
	format, err := presenter.ParseFormat(o.v.GetString(keyOutput))
	if err != nil {
		return err
	}

	cfg, err := o.loadConfig()
	if err != nil {
		return err
	}

	log := o.cliLogger()
	defer func() { _ = log.Sync() }()

	verifier, err := o.verifier(cfg, log)
	if err != nil {
		return err
	}

	sess := session.New(verifier, log)
	defer sess.Close()
	stop := context.AfterFunc(cmd.Context(), sess.Close)
	defer stop()

	p := presenter.New(cmd.OutOrStdout(), format, !o.v.GetBool(keyNoColor) && isTerminal(cmd))
	sess.Subscribe(func(snap session.Snapshot) {
		if snap.Loading {
			_ = p.Render(snap)
		}
	})

	if !sess.Start(rawURL) {
		return errEmptyURL
	}
	sess.Wait()

	snap := sess.Snapshot()
	if renderErr := p.Render(snap); renderErr != nil {
		return renderErr
	}
	if snap.Error != "" {
		return fmt.Errorf("verification failed (%s): %s", sess.FailureKind(), snap.Error)
	}
	return nil
}

func (o *options) verifier(cfg *config.Config, log logger.Logger) (session.Verifier, error) {
	if o.v.GetBool(keyLocal) {
		return ogp.NewEngine(cfg.EngineOptions(), log), nil
	}
	if err := cfg.ValidateClient(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	httpClient := infrahttp.NewClient(&infrahttp.ClientConfig{Timeout: cfg.Client.Timeout})
	return client.New(cfg.Client.BaseURL, httpClient), nil
}

func isTerminal(cmd *cobra.Command) bool {
	f, ok := cmd.OutOrStdout().(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
