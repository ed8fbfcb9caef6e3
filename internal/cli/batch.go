package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/ntn/internal/batch"
	"github.com/aidanlsb/ntn/internal/ui"
)

var batchCmd = &cobra.Command{
	Use:   "batch <file|->",
	Short: "Run a list of write operations from a YAML or JSON file",
	Long: `Runs operations in order and stops at the first failure. Operations
already applied stay applied; the rest are reported as skipped. Every
operation name is checked before anything runs.

The file is a list of {op, args} entries, or a mapping with an
'operations' key holding that list. Use '-' to read stdin.

Operations:
  page.create        parent, title, [markdown], [text], [todos]
  page.append        parent, [markdown], [text], [todos]
  block.delete       id
  block.check        id, [checked]
  db.add             database, values: {Name: value}
  db.set             row, values: {Name: value}
  db.patch-property  database, property, [set: {key: value}], [unset], [remove]
  comment.add        page, text

Example:
  - op: page.create
    args: {parent: 0123abcd456789abcdef0123456789ab, title: Notes}
  - op: db.add
    args:
      database: 89abcdef0123456789abcdef01234567
      values: {Name: Ship it, Due: tomorrow}`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var r io.Reader = os.Stdin
		if args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return handleError(ErrFileReadError, err, "")
			}
			defer f.Close()
			r = f
		}
		ops, err := batch.Parse(r)
		if err != nil {
			return handleError(ErrInvalidInput, err, "")
		}

		_, writer, err := internalServices()
		if err != nil {
			return fail(err)
		}

		progress := ui.NewProgress(os.Stderr, "Applying", len(ops))
		observe := func(batch.Result) {}
		if !isJSONOutput() {
			observe = func(batch.Result) { progress.Increment() }
		}
		results, runErr := batch.Handlers(writer).RunEach(cmd.Context(), ops, observe)
		progress.Done()

		summary := batch.Summarize(results)
		if runErr != nil {
			code, suggestion := classify(runErr)
			if results != nil {
				code = ErrBatchFailed
			}
			if isJSONOutput() {
				return handleErrorWithDetails(code, runErr.Error(), suggestion, map[string]interface{}{
					"summary": summary,
					"results": results,
				})
			}
			printResults(results)
			return runErr
		}

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{"summary": summary, "results": results}, &Meta{Count: summary.Applied})
			return nil
		}
		printResults(results)
		printLine("%s", ui.Successf("Applied %d %s", summary.Applied, plural(summary.Applied, "operation", "operations")))
		return nil
	},
}

func printResults(results []batch.Result) {
	for _, r := range results {
		switch r.Status {
		case batch.StatusApplied:
			printLine("%s", ui.Successf("%d %s %s", r.Index, r.Op, ui.ID(r.ID)))
		case batch.StatusFailed:
			printLine("%s", ui.Error(fmt.Sprintf("%d %s: %s", r.Index, r.Op, r.Error)))
		default:
			printLine("%s", ui.Hint(fmt.Sprintf("- %d %s skipped", r.Index, r.Op)))
		}
	}
}

func init() {
	rootCmd.AddCommand(batchCmd)
}
