package cli

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/samarth/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/samarth/internal/logger"
)

var (
	serveAddr    string
	serveNoIndex bool
	serveNoWatch bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start the JSON API server.

On startup a persisted index is restored. When none exists and auto
indexing is enabled, a background indexing run starts immediately; the
server answers with a "not indexed" reply until it completes.

The index directory is watched so that 'samarth index' run from another
terminal is picked up without a restart.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, e.g. :5000)")
	serveCmd.Flags().BoolVar(&serveNoIndex, "no-index", false, "do not index automatically at startup")
	serveCmd.Flags().BoolVar(&serveNoWatch, "no-watch", false, "do not reload the index when it changes on disk")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if application == nil {
		return errors.New("serve requires a configured runtime")
	}
	ctx := cmd.Context()
	settings := application.Settings

	// Structured logs when output is collected rather than read.
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		logger.SetJSON(true)
	}

	for _, w := range application.Warnings {
		cmd.PrintErrf("Warning: %s\n", w)
	}

	if !indexRestored && settings.Index.AutoIndex && !serveNoIndex {
		status, _ := indexService.Start(ctx)
		cmd.Printf("No index found, indexing in the background (run %s)\n", status.RunID)
	}

	if settings.Index.Watch && !serveNoWatch {
		go func() {
			if err := application.WatchIndex(ctx); err != nil {
				logger.Warn("index watcher stopped: %v", err)
			}
		}()
	}

	addr := settings.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	server, err := httpapi.NewServer(&httpapi.Ports{
		Answer:   answerService,
		Index:    indexService,
		Datasets: datasetService,
	}, httpapi.Config{
		Addr:        addr,
		CORSOrigins: settings.Server.CORSOrigins,
		Version:     version,
	})
	if err != nil {
		return err
	}

	cmd.Printf("Samarth API listening on %s\n", addr)
	err = server.Run(ctx)

	indexService.Cancel()
	indexService.Wait()
	return err
}
