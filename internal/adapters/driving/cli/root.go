// Package cli provides the samarth command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/samarth/internal/app"
	"github.com/custodia-labs/samarth/internal/core/ports/driving"
	"github.com/custodia-labs/samarth/internal/logger"
)

// version is set at build time.
var version = "dev"

// Global flags.
var (
	verbose   bool
	configDir string
)

// Services used by commands. They are wired before each command runs
// unless already set.
var (
	settingsService driving.SettingsService
	answerService   driving.AnswerService
	indexService    driving.IndexService
	datasetService  driving.DatasetService

	// application is the wired runtime when built by setup.
	application *app.App

	// indexRestored records whether a persisted index was loaded at startup.
	indexRestored bool
)

// needsAnnotation declares what a command requires before it runs.
const needsAnnotation = "samarth.needs"

// Requirement levels for needsAnnotation. Commands without the annotation
// need the full runtime.
const (
	needsNothing  = "nothing"
	needsSettings = "settings"
)

var rootCmd = &cobra.Command{
	Use:   "samarth",
	Short: "Question answering over Indian agricultural and climate data",
	Long: `Samarth answers natural-language questions about Indian crop production
and rainfall using datasets published on data.gov.in.

Records are fetched, embedded into a local vector index and retrieved to
ground answers from a language model, with every answer citing its sources.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.samarth)")
}

// Execute runs the root command.
func Execute(ctx context.Context, v string) error {
	if v != "" {
		version = v
	}
	err := rootCmd.ExecuteContext(ctx)
	if cerr := teardown(); err == nil {
		err = cerr
	}
	return err
}

// setup loads the environment and wires whatever the command needs.
func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	// A missing .env is normal; variables may come from the shell.
	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env loaded: %v", err)
	}

	need := cmd.Annotations[needsAnnotation]
	if need == needsNothing {
		return nil
	}

	dir, err := app.ResolveConfigDir(configDir)
	if err != nil {
		return err
	}

	if settingsService == nil {
		svc, err := app.NewSettingsService(dir)
		if err != nil {
			return err
		}
		settingsService = svc
	}
	if need == needsSettings || answerService != nil {
		return nil
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	a, err := app.New(dir, settings)
	if err != nil {
		return err
	}

	restored, err := a.Restore(cmd.Context())
	if err != nil {
		_ = a.Close()
		return fmt.Errorf("%w (remove %s or run 'samarth index' to rebuild)", err, a.IndexDir)
	}

	application = a
	indexRestored = restored
	answerService = a.Answers
	indexService = a.Index
	datasetService = a.Datasets
	return nil
}

// teardown releases the runtime built by setup.
func teardown() error {
	if application == nil {
		return nil
	}
	err := application.Close()
	application = nil
	answerService = nil
	indexService = nil
	datasetService = nil
	return err
}

// errNotConfigured is returned when a command runs without its service.
func errNotConfigured(name string) error {
	return errors.New(name + " service not configured")
}
