package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/cashpulse/internal/cli"
	"github.com/theirongolddev/cashpulse/internal/pipeline"
	"github.com/theirongolddev/cashpulse/internal/source"
)

var (
	flagImportForce   bool
	flagImportWorkers int
)

var importCmd = &cobra.Command{
	Use:   "import PATH",
	Short: "Import accounts, transactions, goals and budget items from JSONL files",
	Long: "Import one .jsonl file or every .jsonl/.ndjson file under a directory.\n" +
		"Files whose size and modification time are unchanged since the last import are skipped.",
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().BoolVar(&flagImportForce, "force", false, "Re-import files even if unchanged")
	importCmd.Flags().IntVar(&flagImportWorkers, "workers", 0, "Parser workers (default GOMAXPROCS)")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	base, err := st.Settings(ctx)
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	progressf("  Scanning %s...\n", args[0])
	res, err := pipeline.ImportDir(ctx, args[0], st, pipeline.ImportOptions{
		Parse: source.ParseOptions{
			Exponent:     appCfg.General.CurrencyExponent,
			BaseSettings: base,
		},
		Force:   flagImportForce,
		Workers: flagImportWorkers,
		Progress: func(current, total int) {
			if current%10 == 0 || current == total {
				progressf("\r  Parsing [%d/%d]", current, total)
			}
		},
		Logger: appLog,
	})
	if err != nil {
		return err
	}
	if res.TotalFiles > res.Skipped {
		progressf("\n")
	}

	if flagJSON {
		return printJSON(res)
	}

	if res.TotalFiles == 0 {
		fmt.Printf("\n  No .jsonl files found at %s\n", args[0])
		return nil
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Import",
		Headers: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Files", cli.FormatNumber(int64(res.TotalFiles))},
			{"Imported", cli.FormatNumber(int64(res.Imported))},
			{"Unchanged", cli.FormatNumber(int64(res.Skipped))},
			{"Records", cli.FormatNumber(int64(res.Records))},
		},
	}))

	if res.ParseErrors > 0 {
		fmt.Fprintf(os.Stderr, "\n  %d lines could not be parsed (run with LOG_LEVEL=debug for details)\n", res.ParseErrors)
	}
	if res.FileErrors > 0 {
		fmt.Fprintf(os.Stderr, "  %d files could not be imported\n", res.FileErrors)
	}
	return nil
}
