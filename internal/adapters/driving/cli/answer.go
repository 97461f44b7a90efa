package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var answerJSON bool

var contextCmd = &cobra.Command{
	Use:   "context <query>",
	Short: "Print the context block for a question",
	Long: `Prints the knowledge chunks relevant to a question as a plain context
block, ready to ground a chatbot reply. Prints nothing when no chunk
clears the relevance cutoff.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runContext,
}

var answerCmd = &cobra.Command{
	Use:   "answer <query>",
	Short: "Render a templated answer for a question",
	Long: `Detects the intent of a question and renders the matching answer
template from the retrieved knowledge, with suggested follow-up actions.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnswer,
}

func init() {
	answerCmd.Flags().BoolVar(&answerJSON, "json", false, "output the response as JSON")
	rootCmd.AddCommand(contextCmd)
	rootCmd.AddCommand(answerCmd)
}

func runContext(cmd *cobra.Command, args []string) error {
	if retrievalService == nil {
		return fmt.Errorf("retrieval %w", errNotConfigured)
	}

	text, err := retrievalService.GenerateContext(cmd.Context(), joinQuery(args))
	if err != nil {
		return fmt.Errorf("context failed: %w", err)
	}
	if text == "" {
		cmd.PrintErrln("No relevant information found.")
		return nil
	}

	cmd.Println(text)
	return nil
}

func runAnswer(cmd *cobra.Command, args []string) error {
	if retrievalService == nil {
		return fmt.Errorf("retrieval %w", errNotConfigured)
	}

	resp, err := retrievalService.GenerateStructuredResponse(cmd.Context(), joinQuery(args))
	if err != nil {
		return fmt.Errorf("answer failed: %w", err)
	}

	if answerJSON {
		return outputJSON(cmd, resp)
	}

	cmd.Println(resp.Response)
	if len(resp.SuggestedActions) > 0 {
		cmd.Println()
		cmd.Println("Suggested actions:")
		for _, action := range resp.SuggestedActions {
			cmd.Printf("  - %s\n", action)
		}
	}
	if resp.NeedsUserInput {
		cmd.Println()
		cmd.Println("(more detail needed from the customer)")
	}
	return nil
}
