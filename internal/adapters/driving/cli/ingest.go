package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pharmacy-rag/internal/core/domain"
	"github.com/custodia-labs/pharmacy-rag/internal/core/ports/driving"
	"github.com/custodia-labs/pharmacy-rag/internal/logger"
)

var (
	ingestStdin  bool
	ingestSource string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [path...]",
	Short: "Load documents into the knowledge base",
	Long: `Chunks, embeds and stores text, markdown or HTML documents.

Each file becomes a source named after its base name. Ingesting a source
again replaces its previous chunks. Directories are walked recursively
and files of unsupported types inside them are skipped.

Examples:
  pharmacy-rag ingest faq.md services.txt
  pharmacy-rag ingest ./knowledge
  cat hours.txt | pharmacy-rag ingest --stdin --source hours.txt`,
	RunE: runIngest,
}

var removeCmd = &cobra.Command{
	Use:   "remove <source>",
	Short: "Remove a source from the knowledge base",
	Args:  cobra.ExactArgs(1),
	RunE:  runRemove,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestStdin, "stdin", false, "read a single document from standard input")
	ingestCmd.Flags().StringVar(&ingestSource, "source", "", "source name for --stdin")
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(removeCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return fmt.Errorf("ingest %w", errNotConfigured)
	}

	if ingestStdin {
		if ingestSource == "" {
			return errors.New("--source is required with --stdin")
		}
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		report, err := ingestService.IngestText(cmd.Context(), ingestSource, string(data))
		if err != nil {
			return err
		}
		printReport(cmd, report)
		return nil
	}

	if len(args) == 0 {
		return errors.New("at least one path is required (or use --stdin)")
	}

	var total driving.IngestReport
	for _, path := range args {
		if err := ingestPath(cmd, path, &total); err != nil {
			return err
		}
	}

	cmd.Printf("\nIngested %d chunks (%d embedded)\n", total.Chunks, total.Embedded)
	return nil
}

func ingestPath(cmd *cobra.Command, root string, total *driving.IngestReport) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		report, err := ingestService.IngestFile(cmd.Context(), path)
		if errors.Is(err, domain.ErrUnsupportedType) && path != root {
			logger.Debug("Skipping %s: unsupported file type", path)
			return nil
		}
		if err != nil {
			return err
		}

		printReport(cmd, report)
		total.Chunks += report.Chunks
		total.Embedded += report.Embedded
		total.Replaced += report.Replaced
		return nil
	})
}

func printReport(cmd *cobra.Command, report *driving.IngestReport) {
	cmd.Printf("  %s: %d chunks, %d embedded", report.Source, report.Chunks, report.Embedded)
	if report.Replaced > 0 {
		cmd.Printf(", %d replaced", report.Replaced)
	}
	cmd.Println()
}

func runRemove(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return fmt.Errorf("ingest %w", errNotConfigured)
	}

	removed, err := ingestService.RemoveSource(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	cmd.Printf("Removed %d chunks of %s\n", removed, args[0])
	return nil
}
