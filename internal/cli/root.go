package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"ragserve/config"
)

var (
	cfgFile string
	cfg     *config.Config
	rootDir string
	logger  *slog.Logger
)

// defaultConfigName is looked up in the root directory when --config is unset.
const defaultConfigName = "ragserve.yaml"

var rootCmd = &cobra.Command{
	Use:   "ragserve",
	Short: "Retrieval-augmented query server over a local vector store",
	Long: `ragserve ingests documents into a persistent similarity index and answers
natural-language questions against it, grounding every answer in the
retrieved text.

Example usage:
  ragserve ingest https://example.com/page   # Ingest a web page
  ragserve ingest 'docs/**/*.md'             # Ingest local files
  ragserve query -q "what does X do?"        # One-shot question
  ragserve serve                             # WebSocket chat server`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		path := cfgFile
		if path == "" {
			path = filepath.Join(rootDir, defaultConfigName)
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logger, err = newLogger(cfg)
		if err != nil {
			return err
		}
		return nil
	},
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./ragserve.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "root directory (default is current directory)")
}

func newLogger(cfg *config.Config) (*slog.Logger, error) {
	level, err := cfg.Logging.SlogLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler), nil
}
