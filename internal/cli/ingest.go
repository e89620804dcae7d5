package cli

import (
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <source>...",
	Short: "Ingest sources into the vector store",
	Long: `Fetch, parse, chunk and embed one or more sources, persisting the
resulting segments into the vector store.

A source may be a URL, a local file path, or a doublestar glob:

  ragserve ingest https://example.com/page
  ragserve ingest notes.txt 'docs/**/*.md'`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	d, err := buildDeps(cfg)
	if err != nil {
		return err
	}
	defer d.close()

	bar := progressbar.Default(int64(len(args)), "ingesting")

	var failed int
	totalSegments := 0
	for _, source := range args {
		result, err := d.ingest.Ingest(cmd.Context(), source, source)
		if err != nil {
			fmt.Printf("\n%s: %v\n", source, err)
			failed++
		} else {
			totalSegments += result.Segments
		}
		bar.Add(1)
	}

	fmt.Printf("\nIngested %d source(s), %d segment(s)", len(args)-failed, totalSegments)
	if failed > 0 {
		fmt.Printf(", %d failed", failed)
	}
	fmt.Println()

	if failed == len(args) {
		return fmt.Errorf("all sources failed to ingest")
	}
	return nil
}
