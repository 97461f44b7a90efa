// Package cli provides the pharmacy-rag command line interface.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pharmacy-rag/internal/core/ports/driving"
	"github.com/custodia-labs/pharmacy-rag/internal/logger"
)

// version is set at build time via SetVersion.
var version = "dev"

// Services injected by main via SetServices or the bootstrap hook.
var (
	retrievalService driving.RetrievalService
	ingestService    driving.IngestService
	settingsService  driving.SettingsService
)

// Persistent flags.
var (
	verbose   bool
	configDir string
)

// bootstrapAnnotation tells PersistentPreRunE how much of the app a command needs.
const bootstrapAnnotation = "bootstrap"

// Values for bootstrapAnnotation.
const (
	bootstrapNone     = "none"
	bootstrapSettings = "settings"
)

// errNotConfigured is returned when a command runs without its service.
var errNotConfigured = errors.New("service not configured")

// Services aggregates the driving ports the CLI uses.
type Services struct {
	Retrieval driving.RetrievalService
	Ingest    driving.IngestService
	Settings  driving.SettingsService
}

// BootstrapOptions are passed to the bootstrap hook.
type BootstrapOptions struct {
	// ConfigDir overrides the default configuration directory when set.
	ConfigDir string

	// SettingsOnly asks for the settings service without opening storage
	// or contacting an embedding provider.
	SettingsOnly bool
}

// Bootstrap builds the services for a command. The returned cleanup func
// is called after the command finishes and may be nil.
type Bootstrap func(ctx context.Context, opts BootstrapOptions) (*Services, func(), error)

var (
	bootstrap Bootstrap
	cleanup   func()
)

var rootCmd = &cobra.Command{
	Use:   "pharmacy-rag",
	Short: "Retrieval pipeline for a pharmacy chatbot",
	Long: `pharmacy-rag answers customer questions from a pharmacy knowledge base.

Queries run through a gating ladder of vector, hybrid, category and
fallback search, and the results can be rendered as a context block
or a templated answer. Knowledge is loaded with the ingest command.`,
	SilenceUsage:      true,
	PersistentPreRunE: runBootstrap,
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		if cleanup != nil {
			cleanup()
			cleanup = nil
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.pharmacy-rag)")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetServices injects the services used by all commands.
func SetServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	retrievalService = s.Retrieval
	ingestService = s.Ingest
	settingsService = s.Settings
}

// SetBootstrap registers the hook that builds services before a command runs.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	defer logger.Sync()
	defer func() {
		// PersistentPostRun is skipped when a command fails.
		if cleanup != nil {
			cleanup()
			cleanup = nil
		}
	}()
	return rootCmd.ExecuteContext(ctx)
}

func runBootstrap(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	mode := commandBootstrap(cmd)
	if bootstrap == nil || mode == bootstrapNone {
		return nil
	}

	services, done, err := bootstrap(cmd.Context(), BootstrapOptions{
		ConfigDir:    configDir,
		SettingsOnly: mode == bootstrapSettings,
	})
	if err != nil {
		return err
	}
	SetServices(services)
	cleanup = done
	return nil
}

// commandBootstrap returns the bootstrap annotation of cmd or its nearest parent.
func commandBootstrap(cmd *cobra.Command) string {
	for c := cmd; c != nil; c = c.Parent() {
		if mode, ok := c.Annotations[bootstrapAnnotation]; ok {
			return mode
		}
	}
	return ""
}
