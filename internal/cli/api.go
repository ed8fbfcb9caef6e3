package cli

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/ntn/internal/official"
	"github.com/aidanlsb/ntn/internal/ui"
)

var (
	apiQueryLimit  int
	apiSearchLimit int
)

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Read through the public API",
	Long: `Commands under 'api' use the public API with an integration key
(--api-key, NTN_API_KEY or 'ntn auth login --api-key'). The integration
must be shared with the pages it reads.`,
}

var apiPageCmd = &cobra.Command{
	Use:   "page <id>",
	Short: "Show a page's properties",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseIDArg(args[0])
		if err != nil {
			return fail(err)
		}
		client, err := newOfficial()
		if err != nil {
			return fail(err)
		}
		page, err := client.Page(cmd.Context(), id)
		if err != nil {
			return fail(err)
		}

		if isJSONOutput() {
			outputSuccess(page, nil)
			return nil
		}
		printLine("%s %s", ui.Header(page.Title), ui.Hint(page.URL))
		tbl := ui.NewTable(ui.NewDisplayContext(), "property", "value")
		for _, name := range sortedKeys(page.Properties) {
			tbl.AddRow(name, formatValue(page.Properties[name]))
		}
		fmt.Print(tbl.String())
		return nil
	},
}

var apiQueryCmd = &cobra.Command{
	Use:   "query <database-id>",
	Short: "List the rows of a database",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseIDArg(args[0])
		if err != nil {
			return fail(err)
		}
		client, err := newOfficial()
		if err != nil {
			return fail(err)
		}
		res, err := client.Query(cmd.Context(), id, apiQueryLimit)
		if err != nil {
			return fail(err)
		}

		if isJSONOutput() {
			outputSuccess(res, &Meta{Count: len(res.Rows)})
			return nil
		}
		if len(res.Rows) == 0 {
			printLine("No rows")
			return nil
		}
		tbl := ui.NewTable(ui.NewDisplayContext(), "id", "title", "url")
		for _, row := range res.Rows {
			tbl.AddRow(row.ID, row.Title, row.URL)
		}
		fmt.Print(tbl.String())
		if res.HasMore {
			printLine("%s", ui.Hint("More rows available; raise --limit to see them"))
		}
		return nil
	},
}

var apiSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search pages and databases by title",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newOfficial()
		if err != nil {
			return fail(err)
		}
		hits, err := client.Search(cmd.Context(), strings.Join(args, " "), apiSearchLimit)
		if err != nil {
			return fail(err)
		}

		if isJSONOutput() {
			outputSuccess(hits, &Meta{Count: len(hits)})
			return nil
		}
		if len(hits) == 0 {
			printLine("No results")
			return nil
		}
		tbl := ui.NewTable(ui.NewDisplayContext(), "kind", "id", "title")
		for _, h := range hits {
			tbl.AddRow(h.Object, h.ID, h.Title)
		}
		fmt.Print(tbl.String())
		return nil
	},
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// formatValue renders a simplified public-API value for a table cell.
func formatValue(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []string:
		return strings.Join(x, ", ")
	case bool:
		if x {
			return "✓"
		}
		return ""
	case official.Date:
		if x.End != "" {
			return x.Start + " → " + x.End
		}
		return x.Start
	case json.RawMessage:
		return string(x)
	}
	return fmt.Sprint(v)
}

func init() {
	apiQueryCmd.Flags().IntVarP(&apiQueryLimit, "limit", "n", official.DefaultPageSize, "Maximum rows to return")
	apiSearchCmd.Flags().IntVarP(&apiSearchLimit, "limit", "n", official.DefaultPageSize, "Maximum results")

	apiCmd.AddCommand(apiPageCmd, apiQueryCmd, apiSearchCmd)
	rootCmd.AddCommand(apiCmd)
}
