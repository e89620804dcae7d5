package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"ragserve/internal/domain"
	"ragserve/internal/workflow"
)

var queryText string

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Ask a one-shot question against the store",
	Long: `Run a single query workflow: expand the question, retrieve the most
similar segments, generate a grounded answer and validate it.

  ragserve query -q "What is the capital of France?"`,
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringVarP(&queryText, "query", "q", "", "question to answer (required)")
	queryCmd.MarkFlagRequired("query")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	d, err := buildDeps(cfg)
	if err != nil {
		return err
	}
	defer d.close()

	conversation := domain.NewConversation(workflow.SystemPrompt)
	qw := workflow.NewQueryWorkflow(
		d.store, d.generator, d.validator, conversation, cfg.Retrieval.TopK, logger,
	)

	resp := qw.Query(cmd.Context(), queryText)
	fmt.Println(resp.Message)

	if resp.Status != domain.StatusSuccess && resp.Status != domain.StatusNoResults {
		return fmt.Errorf("query ended with status %s", resp.Status)
	}
	return nil
}
