package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sidekick-cli/sidekick/internal/config"
	"github.com/sidekick-cli/sidekick/internal/debug"
	"github.com/sidekick-cli/sidekick/internal/jira"
	"github.com/sidekick-cli/sidekick/internal/telemetry"
	"github.com/sidekick-cli/sidekick/internal/ui"
)

var (
	jsonOutput   bool
	outputFormat = formatText
	verboseFlag  bool
	quietFlag    bool

	rootCtx                       = context.Background()
	rootCancel context.CancelFunc = func() {}

	// commandStart and apiClient feed the API usage line printed in verbose mode.
	commandStart time.Time
	apiClient    *jira.Client
)

func init() {
	if err := config.Initialize(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize config: %v\n", err)
	}

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", formatText, "Output format: text, json, yaml")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable verbose/debug output")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Suppress non-essential output (errors only)")

	rootCmd.Flags().BoolP("version", "V", false, "Print version information")

	rootCmd.AddGroup(&cobra.Group{ID: "trackers", Title: "Issue Trackers:"})
}

var rootCmd = &cobra.Command{
	Use:   "sk",
	Short: "sk - roadmap tooling for Jira",
	Long: `Walk Jira issue hierarchies and keep roadmap labels in sync.

Credentials are read from the environment or a .env file in the current
directory (or any parent), falling back to $XDG_CONFIG_HOME/sk/.env:

  ATLASSIAN_URL=https://company.atlassian.net
  ATLASSIAN_EMAIL=you@company.com
  ATLASSIAN_API_TOKEN=...`,
	Run: func(cmd *cobra.Command, args []string) {
		if v, _ := cmd.Flags().GetBool("version"); v {
			fmt.Fprintln(cmd.OutOrStdout(), versionString())
			return
		}
		_ = cmd.Help() // Help() always returns nil for cobra commands
	},
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		commandStart = time.Now()
		setupSignalContext()
		applyVerbosityFlags()
		if err := applyOutputFormat(); err != nil {
			FatalError("%v", err)
		}
		ui.InitColor()
		if err := telemetry.Init(rootCtx, "sk", Version); err != nil {
			WarnError("telemetry disabled: %v", err)
		}
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		flushTelemetry()
		reportAPIUsage()
		rootCancel()
	},
}

// flushTelemetry exports pending spans and metrics. Commands that exit
// through FatalError skip PersistentPostRun, so it runs there too.
var flushTelemetry = func() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	telemetry.Shutdown(ctx)
}

func setupSignalContext() {
	rootCtx, rootCancel = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// applyVerbosityFlags propagates --verbose and --quiet to the debug package.
func applyVerbosityFlags() {
	debug.SetVerbose(verboseFlag)
	debug.SetQuiet(quietFlag)
}

// applyOutputFormat reconciles --json with --format.
func applyOutputFormat() error {
	if jsonOutput {
		outputFormat = formatJSON
	}
	switch outputFormat {
	case formatText, formatJSON, formatYAML:
	default:
		return fmt.Errorf("unknown output format %q (want text, json or yaml)", outputFormat)
	}
	jsonOutput = outputFormat == formatJSON
	return nil
}

func reportAPIUsage() {
	if apiClient == nil {
		return
	}
	debug.Logf("\n[Debug] API calls: %d, Time: %.2fs\n",
		apiClient.APICalls(), time.Since(commandStart).Seconds())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
