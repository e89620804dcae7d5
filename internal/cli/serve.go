package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"ragserve/internal/domain"
	"ragserve/internal/session"
	"ragserve/internal/workflow"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the WebSocket query server",
	Long: `Start the WebSocket server. Each client connection becomes an isolated
session with its own conversation state; all sessions share one vector store.

Clients send {"query": "..."} and receive {"message": "..."}. A query may
embed source URLs, which are ingested before the question is answered.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	d, err := buildDeps(cfg)
	if err != nil {
		return err
	}
	defer d.close()

	manager := session.NewManager(func() (*workflow.IngestWorkflow, *workflow.QueryWorkflow) {
		conversation := domain.NewConversation(workflow.SystemPrompt)
		query := workflow.NewQueryWorkflow(
			d.store, d.generator, d.validator, conversation, cfg.Retrieval.TopK, logger,
		)
		return d.ingest, query
	}, logger)

	mux := http.NewServeMux()
	mux.Handle(cfg.Server.Path, manager)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: mux,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", cfg.Server.Addr, "path", cfg.Server.Path)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	manager.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}
