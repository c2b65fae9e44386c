package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ClaudeF4491/defi-leveraged-yield-farming-sim/journal"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query stored simulation runs",
	Long: `Query and display simulation runs from a SQLite journal.

Subcommands:
  runs    - List stored runs
  export  - Export one run's epoch ledger as CSV

Examples:
  lpfarm journal runs
  lpfarm journal export <run-id> -o run.csv`,
}

var journalRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List stored runs",
	Args:  cobra.NoArgs,
	RunE:  runJournalRuns,
}

var journalExportCmd = &cobra.Command{
	Use:   "export <run-id>",
	Short: "Export one run's epoch ledger as CSV",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalExport,
}

var (
	journalDBPath string
	journalOutput string
)

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalRunsCmd)
	journalCmd.AddCommand(journalExportCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "./lpfarm.db", "path to SQLite journal DB")
	journalExportCmd.Flags().StringVarP(&journalOutput, "output", "o", "", "output file (default stdout)")
}

func runJournalRuns(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	runs, err := j.ListRuns()
	if err != nil {
		return fmt.Errorf("query runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}

	fmt.Printf("%-26s  %-19s  %-20s  %5s  %8s  %10s  %7s\n",
		"RUN", "CREATED", "LABEL", "DAYS", "LEV", "PROFIT", "ROI")
	for _, r := range runs {
		fmt.Printf("%-26s  %-19s  %-20s  %5d  %7.1fx  $%9.2f  %6.2f%%\n",
			r.ID, r.CreatedAt.Format("2006-01-02 15:04:05"), r.Label,
			r.Days, r.Leverage, r.Profit, r.ROI*100)
	}
	return nil
}

func runJournalExport(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	records, err := j.EpochsByRun(args[0])
	if err != nil {
		return fmt.Errorf("load run: %w", err)
	}

	out := os.Stdout
	if journalOutput != "" {
		f, err := os.Create(journalOutput)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		out = f
	}

	if err := journal.WriteCSV(out, records); err != nil {
		return fmt.Errorf("export run: %w", err)
	}

	if journalOutput != "" {
		fmt.Printf("✓ Exported %d epochs to %s\n", len(records), journalOutput)
	}
	return nil
}
