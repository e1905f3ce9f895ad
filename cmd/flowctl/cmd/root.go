package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/cognifloe/control-plane/internal/catalog"
	"github.com/cognifloe/control-plane/internal/config"
	"github.com/cognifloe/control-plane/internal/coordinator"
	"github.com/cognifloe/control-plane/internal/remote"
	"github.com/cognifloe/control-plane/internal/workflow"
	"github.com/cognifloe/control-plane/pkg/server"
)

var appVersion = "dev"

// SetVersion sets the version reported by --version.
func SetVersion(v string) { appVersion = v }

// Execute runs the root command with os.Args.
func Execute() error {
	return NewRootCmd().Execute()
}

// options are the persistent flags shared by every subcommand.
type options struct {
	remoteURL string
	apiKey    string
	timeout   time.Duration
	output    string
	logLevel  string
}

func (o *options) coordinator() *coordinator.Coordinator {
	client := remote.NewClient(o.remoteURL, o.apiKey, o.timeout)
	return coordinator.New(client, workflow.NewAnalyzer(catalog.Default()), o.timeout)
}

// NewRootCmd builds the flowctl command tree. Flag defaults come from the
// same COGNIFLOE_* environment the server reads.
func NewRootCmd() *cobra.Command {
	cfg := config.Load()
	opts := &options{}

	root := &cobra.Command{
		Use:   "flowctl",
		Short: "Analyze and forecast automation workflows",
		Long: `flowctl turns a plain-language process description into a suggested
agent team and step list, and forecasts how an automated run will go.

Requests go to the remote analysis service when --remote-url is set. When it
is unset or unavailable the local engine answers and a note is printed on
stderr.`,
		Version:       appVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if opts.output != "json" && opts.output != "yaml" {
				return fmt.Errorf("invalid --output %q: want json or yaml", opts.output)
			}
			server.SetupLogging(cmd.ErrOrStderr(), config.LogConfig{Level: opts.logLevel})
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.remoteURL, "remote-url", cfg.Remote.URL, "base URL of the remote analysis service (empty: local only)")
	pf.StringVar(&opts.apiKey, "remote-api-key", cfg.Remote.APIKey, "bearer token for the remote service")
	pf.DurationVar(&opts.timeout, "timeout", cfg.Remote.Timeout, "per-call remote timeout")
	pf.StringVarP(&opts.output, "output", "o", "json", "output format (json, yaml)")
	pf.StringVar(&opts.logLevel, "log-level", "error", "log level (debug, info, warn, error)")

	root.AddCommand(
		newAnalyzeCmd(opts),
		newPredictCmd(opts),
		newInsightsCmd(opts),
		newDetectCmd(opts),
		newCatalogCmd(opts),
	)
	return root
}

// printAdvisory writes the fallback note, if any, to stderr.
func printAdvisory(w io.Writer, advisory string) {
	if advisory != "" {
		fmt.Fprintln(w, "note:", advisory)
	}
}
