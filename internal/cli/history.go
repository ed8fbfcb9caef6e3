package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/ntn/internal/audit"
	"github.com/aidanlsb/ntn/internal/config"
	"github.com/aidanlsb/ntn/internal/ui"
)

var (
	historySince time.Duration
	historyID    string
	historyLimit int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show journaled writes",
	Long: `Lists transactions recorded in audit.log, newest last. Journaling is off
unless 'audit = true' is set in config.toml.

Examples:
  ntn history
  ntn history --since 24h
  ntn history --id <block-id>`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		journal := audit.New(config.Dir(configPath), true)

		var (
			entries []audit.Entry
			err     error
		)
		if historyID != "" {
			id, idErr := parseIDArg(historyID)
			if idErr != nil {
				return fail(idErr)
			}
			entries, err = journal.ReadForRecord(id)
		} else {
			entries, err = journal.Read()
		}
		if err != nil {
			return handleError(ErrFileReadError, err, "")
		}
		entries = filterHistory(entries, historySince, historyLimit, now())

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{"path": journal.Path(), "entries": entries}, &Meta{Count: len(entries)})
			return nil
		}
		if len(entries) == 0 {
			printLine("No journaled writes.")
			if !getConfig().Audit {
				printLine("%s", ui.Hint("Set 'audit = true' in config.toml to start journaling"))
			}
			return nil
		}
		tbl := ui.NewTable(ui.NewDisplayContext(), "time", "transaction", "operations", "status")
		for _, e := range entries {
			status := ui.Success("ok")
			if e.Error != "" {
				status = ui.Error(ui.TruncateWithEllipsis(e.Error, 40))
			}
			tbl.AddRow(e.Timestamp.Local().Format("2006-01-02 15:04:05"), e.TransactionID, describeOps(e.Operations), status)
		}
		fmt.Print(tbl.String())
		return nil
	},
}

// filterHistory keeps entries newer than since (when non-zero) and then the
// last limit of them (when positive).
func filterHistory(entries []audit.Entry, since time.Duration, limit int, at time.Time) []audit.Entry {
	if since > 0 {
		cutoff := at.Add(-since)
		kept := entries[:0:0]
		for _, e := range entries {
			if !e.Timestamp.Before(cutoff) {
				kept = append(kept, e)
			}
		}
		entries = kept
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	if entries == nil {
		entries = []audit.Entry{}
	}
	return entries
}

func describeOps(ops []audit.Op) string {
	counts := map[string]int{}
	var order []string
	for _, op := range ops {
		key := op.Command + " " + op.Table
		if counts[key] == 0 {
			order = append(order, key)
		}
		counts[key]++
	}
	parts := make([]string, len(order))
	for i, key := range order {
		parts[i] = fmt.Sprintf("%d× %s", counts[key], key)
	}
	return strings.Join(parts, ", ")
}

func init() {
	historyCmd.Flags().DurationVar(&historySince, "since", 0, "Only show writes newer than this (e.g. 24h)")
	historyCmd.Flags().StringVar(&historyID, "id", "", "Only show writes touching this record")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 50, "Show at most this many of the latest writes")
	rootCmd.AddCommand(historyCmd)
}
