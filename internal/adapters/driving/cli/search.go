package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pharmacy-rag/internal/core/domain"
)

// snippetLength is the number of runes of chunk text shown per result.
const snippetLength = 160

var (
	searchLimit int
	searchJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the pharmacy knowledge base",
	Long: `Runs the retrieval ladder for a customer question.

Vector search runs first. If it finds nothing above its threshold the
query escalates to hybrid (vector + keyword) search, then to a category
filter on the detected intent, and finally to a relaxed vector search.
The stage that produced the results is reported as the search type.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of results (0 = configured default)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if retrievalService == nil {
		return fmt.Errorf("retrieval %w", errNotConfigured)
	}

	result, err := retrievalService.Search(cmd.Context(), joinQuery(args), searchLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputJSON(cmd, result)
	}
	return outputSearchTable(cmd, result)
}

func outputJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, result *domain.RAGResult) error {
	cmd.Printf("Search type: %s\n", result.SearchType.Description())
	cmd.Printf("Intent: %s\n", result.Intent)

	if !result.HasRelevantContext {
		cmd.Println()
		cmd.Println("No relevant information found.")
		return nil
	}

	cmd.Printf("Top score: %.3f\n", result.TopScore)
	cmd.Println()
	for _, hit := range result.Chunks {
		cmd.Printf("  [%d] %s #%d (%.3f)\n", hit.Rank, hit.Chunk.Source, hit.Chunk.Ordinal, hit.Score)
		cmd.Printf("      %s\n", snippet(hit.Chunk.Text, snippetLength))
		cmd.Println()
	}

	return nil
}

// joinQuery rebuilds a query split across arguments by the shell.
func joinQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// snippet collapses whitespace and truncates text to limit runes.
func snippet(text string, limit int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
