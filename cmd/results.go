package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/hakniyev/cauchysolver/internal/store"
)

var (
	keepLast      int
	olderThanDays int
	onlyFailed    bool
	forceClean    bool
	showTrace     bool
)

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Manage stored solve results",
	Long:  `List, inspect, and clean the solve results kept in the store.`,
}

var listResultsCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored results",
	RunE:  runListResults,
}

var showResultCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a stored result as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runShowResult,
}

var cleanResultsCmd = &cobra.Command{
	Use:   "clean",
	Short: "Delete old results",
	Long: `Delete results by retention policy: keep only the newest N, delete
results older than N days, or delete results that did not converge.`,
	RunE: runCleanResults,
}

func init() {
	rootCmd.AddCommand(resultsCmd)
	resultsCmd.AddCommand(listResultsCmd, showResultCmd, cleanResultsCmd)

	showResultCmd.Flags().BoolVar(&showTrace, "trace", false, "Include the iteration trace")

	cleanResultsCmd.Flags().IntVar(&keepLast, "keep-last", 0, "Keep only the newest N results (0 = keep all)")
	cleanResultsCmd.Flags().IntVar(&olderThanDays, "older-than", 0, "Delete results older than N days (0 = no age limit)")
	cleanResultsCmd.Flags().BoolVar(&onlyFailed, "failed", false, "Delete results that did not converge")
	cleanResultsCmd.Flags().BoolVarP(&forceClean, "force", "f", false, "Skip confirmation prompt")
}

func runListResults(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	infos, err := st.List()
	if err != nil {
		return fmt.Errorf("failed to list results: %w", err)
	}
	printResults(cmd.OutOrStdout(), infos, dataDir)
	return nil
}

func printResults(out io.Writer, infos []store.RecordInfo, baseDir string) {
	if len(infos) == 0 {
		fmt.Fprintln(out, "No results found.")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCREATED\tEQUATION\tITERATIONS\tCONVERGED\tRESIDUAL\tSIZE")
	for _, info := range infos {
		sizeStr := "-"
		if size, err := getDirSize(filepath.Join(baseDir, "solves", info.ID)); err == nil {
			sizeStr = formatBytes(size)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%t\t%.3e\t%s\n",
			shortID(info.ID),
			info.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			info.Equation,
			info.Iterations,
			info.Converged,
			info.Residual,
			sizeStr,
		)
	}
	w.Flush()

	fmt.Fprintf(out, "\nTotal results: %d\n", len(infos))
}

func runShowResult(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	rec, err := st.Load(args[0])
	if err != nil {
		return fmt.Errorf("failed to load result: %w", err)
	}

	view := struct {
		*store.Record
		Trace []store.TraceEntry `json:"trace,omitempty"`
	}{Record: rec}

	if showTrace {
		tr, err := store.NewTraceReader(dataDir, rec.ID)
		switch {
		case errors.Is(err, store.ErrNotFound):
			slog.Warn("Result has no trace", "id", rec.ID)
		case err != nil:
			return err
		default:
			defer tr.Close()
			if view.Trace, err = tr.ReadAll(); err != nil {
				return fmt.Errorf("failed to read trace: %w", err)
			}
		}
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(view)
}

func runCleanResults(cmd *cobra.Command, args []string) error {
	if keepLast == 0 && olderThanDays == 0 && !onlyFailed {
		return fmt.Errorf("must specify --keep-last, --older-than, or --failed")
	}

	st, err := openStore()
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	infos, err := st.List()
	if err != nil {
		return fmt.Errorf("failed to list results: %w", err)
	}

	out := cmd.OutOrStdout()
	toDelete := selectResultsForDeletion(infos, keepLast, olderThanDays, onlyFailed, time.Now())
	if len(toDelete) == 0 {
		fmt.Fprintln(out, "No results match deletion criteria.")
		return nil
	}

	fmt.Fprintf(out, "Found %d result(s) to delete:\n", len(toDelete))
	for _, info := range toDelete {
		fmt.Fprintf(out, "  - %s (%s, %d iterations, %s)\n",
			shortID(info.ID), info.Equation, info.Iterations,
			info.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	}

	if !forceClean && !confirm(cmd.InOrStdin(), out, "\nProceed with deletion? [y/N]: ") {
		fmt.Fprintln(out, "Aborted.")
		return nil
	}

	deleted, failed := 0, 0
	for _, info := range toDelete {
		if err := st.Delete(info.ID); err != nil {
			slog.Error("Failed to delete result", "id", info.ID, "error", err)
			failed++
			continue
		}
		slog.Info("Deleted result", "id", info.ID)
		deleted++
	}

	fmt.Fprintf(out, "\nDeleted %d result(s), %d failed.\n", deleted, failed)
	return nil
}

func confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprint(out, prompt)
	var response string
	fmt.Fscanln(in, &response)
	return strings.EqualFold(response, "y")
}

// selectResultsForDeletion applies the retention policy. A result is
// selected if any rule matches it; each result is selected at most once.
func selectResultsForDeletion(infos []store.RecordInfo, keepLast, olderThanDays int, failed bool, now time.Time) []store.RecordInfo {
	sorted := append([]store.RecordInfo(nil), infos...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	cutoff := now.AddDate(0, 0, -olderThanDays)
	var toDelete []store.RecordInfo
	for i, info := range sorted {
		switch {
		case keepLast > 0 && i >= keepLast,
			olderThanDays > 0 && info.CreatedAt.Before(cutoff),
			failed && !info.Converged:
			toDelete = append(toDelete, info)
		}
	}
	return toDelete
}

// getDirSize calculates the total size of a directory
func getDirSize(path string) (int64, error) {
	var size int64
	err := filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	return size, err
}

// formatBytes formats bytes as human-readable string
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
