package cli

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/aidanlsb/ntn/internal/mutate"
	"github.com/aidanlsb/ntn/internal/property"
	"github.com/aidanlsb/ntn/internal/schema"
	"github.com/aidanlsb/ntn/internal/txn"
	"github.com/aidanlsb/ntn/internal/ui"
)

var (
	dbQueryLimit  int
	dbQuerySearch string
	dbPatchSet    = keyValueFlag{}
	dbPatchUnset  []string
	dbPatchRemove bool
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Query and edit databases",
}

var dbQueryCmd = &cobra.Command{
	Use:   "query <id>",
	Short: "List the rows of a database",
	Long: `Queries a database through its first view. Property values are decoded
by type; relations and people are resolved to titles and names.

<id> may be the database page or the collection itself.

Examples:
  ntn db query <id>
  ntn db query <id> --limit 20 --search launch --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseIDArg(args[0])
		if err != nil {
			return fail(err)
		}
		reader, _, err := internalServices()
		if err != nil {
			return fail(err)
		}

		start := time.Now()
		res, err := reader.Query(cmd.Context(), id, dbQueryLimit, dbQuerySearch)
		if err != nil {
			return fail(err)
		}
		elapsed := time.Since(start).Milliseconds()

		if isJSONOutput() {
			outputSuccessWithWarnings(res, hintWarnings(res.Hints), &Meta{Count: len(res.Rows), QueryTimeMs: elapsed})
			return nil
		}

		printHints(res.Hints)
		if len(res.Rows) == 0 {
			printLine("No rows in %s", ui.Bold.Render(res.Name))
			return nil
		}
		printLine("%s %s\n", ui.Header(res.Name), ui.Hint(ui.Count(len(res.Rows), "row", "rows")))

		columns := rowColumns(res.Rows)
		tbl := ui.NewTable(ui.NewDisplayContext(), append([]string{"id"}, columns...)...)
		for _, row := range res.Rows {
			cells := []string{row.ID}
			for _, name := range columns {
				cells = append(cells, row.Properties[name].Display())
			}
			tbl.AddRow(cells...)
		}
		fmt.Print(tbl.String())
		if res.HasMore {
			printLine("%s", ui.Hint("More rows available; raise --limit to see them"))
		}
		return nil
	},
}

var dbSchemaCmd = &cobra.Command{
	Use:   "schema <id>",
	Short: "Show a database schema",
	Long: `Prints the live properties of a database keyed by display name.
Problems that would break reads (missing names, duplicate names, incomplete
relations and rollups) are reported as hints with a suggested fix.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseIDArg(args[0])
		if err != nil {
			return fail(err)
		}
		reader, _, err := internalServices()
		if err != nil {
			return fail(err)
		}
		s, err := reader.Schema(cmd.Context(), id)
		if err != nil {
			return fail(err)
		}

		if isJSONOutput() {
			outputSuccessWithWarnings(s, hintWarnings(s.Hints), &Meta{Count: len(s.Properties)})
			return nil
		}

		printLine("%s %s\n", ui.Header(s.Name), ui.Hint(ui.Count(len(s.Properties), "property", "properties")))
		names := make([]string, 0, len(s.Properties))
		for name := range s.Properties {
			names = append(names, name)
		}
		sort.Strings(names)
		tbl := ui.NewTable(ui.NewDisplayContext(), "name", "type", "details")
		for _, name := range names {
			d := s.Properties[name]
			tbl.AddRow(name, d.Type, descriptorDetails(d))
		}
		fmt.Print(tbl.String())
		printHints(s.Hints)
		return nil
	},
}

var dbAddCmd = &cobra.Command{
	Use:   "add <id> [Name=value...]",
	Short: "Add a row to a database",
	Long: `Creates a row. Each Name=value argument sets a property by display name
(or property id); values use the same text form for every type:

  numbers    3.5
  checkbox   true, false, yes, no
  dates      2025-01-02, today, tomorrow, 2025-01-02..2025-01-05
  multi      a,b,c
  relation   page ids, comma separated
  person     user ids, comma separated

Examples:
  ntn db add <id> Name="Ship it" Status=Doing Due=tomorrow`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseIDArg(args[0])
		if err != nil {
			return fail(err)
		}
		values, err := mutate.ParseAssignments(args[1:])
		if err != nil {
			return handleError(ErrInvalidInput, err, "Use Name=value")
		}
		_, writer, err := internalServices()
		if err != nil {
			return fail(err)
		}
		rowID, err := writer.AddRow(cmd.Context(), id, values)
		if err != nil {
			return fail(err)
		}

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{"id": rowID, "database_id": id}, nil)
			return nil
		}
		printLine("%s", ui.Successf("Added row %s", ui.ID(rowID)))
		return nil
	},
}

var dbSetCmd = &cobra.Command{
	Use:   "set <row> Name=value...",
	Short: "Update properties of a row",
	Long: `Sets properties of an existing row. Values use the same forms as
'ntn db add'. An empty value clears the property.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseIDArg(args[0])
		if err != nil {
			return fail(err)
		}
		values, err := mutate.ParseAssignments(args[1:])
		if err != nil {
			return handleError(ErrInvalidInput, err, "Use Name=value")
		}
		_, writer, err := internalServices()
		if err != nil {
			return fail(err)
		}
		if err := writer.SetRow(cmd.Context(), id, values); err != nil {
			return fail(err)
		}

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{"id": id, "updated": len(values)}, nil)
			return nil
		}
		printLine("%s", ui.Successf("Updated %d %s on %s", len(values), plural(len(values), "property", "properties"), ui.ID(id)))
		return nil
	},
}

var dbPatchPropertyCmd = &cobra.Command{
	Use:   "patch-property <id> <property-id>",
	Short: "Repair or edit one schema property",
	Long: `Edits a property of a database schema by property id. This is the fix
suggested by schema hints.

--set key=value sets a field; values that parse as JSON are stored as JSON,
anything else as a string. --unset removes a field. --remove deletes the
property from the schema.

Examples:
  ntn db patch-property <id> abcd --set name=Owner
  ntn db patch-property <id> abcd --set collection_id=<collection-id>
  ntn db patch-property <id> abcd --remove`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseIDArg(args[0])
		if err != nil {
			return fail(err)
		}
		patch := txn.Patch{Set: dbPatchSet.Map(), Unset: dbPatchUnset, Remove: dbPatchRemove}
		if patch.Empty() {
			return handleErrorMsg(ErrMissingArgument, "nothing to patch", "Use --set, --unset or --remove")
		}
		_, writer, err := internalServices()
		if err != nil {
			return fail(err)
		}
		if err := writer.PatchProperty(cmd.Context(), id, args[1], patch); err != nil {
			return fail(err)
		}

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{"database_id": id, "property_id": args[1], "patch": patch}, nil)
			return nil
		}
		printLine("%s", ui.Successf("Patched property %s", ui.ID(args[1])))
		return nil
	},
}

// rowColumns returns the property names across rows, title first, then
// alphabetical.
func rowColumns(rows []property.Row) []string {
	seen := map[string]bool{}
	var title string
	var names []string
	for _, row := range rows {
		for name, v := range row.Properties {
			if seen[name] {
				continue
			}
			seen[name] = true
			if v.Type == schema.TypeTitle && title == "" {
				title = name
				continue
			}
			names = append(names, name)
		}
	}
	sort.Strings(names)
	if title != "" {
		names = append([]string{title}, names...)
	}
	return names
}

func descriptorDetails(d schema.Descriptor) string {
	switch {
	case len(d.Options) > 0:
		return strings.Join(d.Options, ", ")
	case d.CollectionID != "":
		return "→ " + d.CollectionID
	case d.RelationProperty != "":
		return fmt.Sprintf("%s.%s (%s)", d.RelationProperty, d.TargetProperty, d.RollupType)
	case d.Prefix != "":
		return "prefix " + d.Prefix
	}
	return ""
}

// keyValueFlag collects repeated key=value flags.
// keyValueFlag collects repeated key=value flags.
type keyValueFlag map[string]string

var _ pflag.Value = keyValueFlag{}

func (f keyValueFlag) String() string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + f[k]
	}
	return strings.Join(parts, ",")
}

func (f keyValueFlag) Set(value string) error {
	k, v, ok := strings.Cut(value, "=")
	k = strings.TrimSpace(k)
	if !ok || k == "" {
		return fmt.Errorf("expected key=value, got %q", value)
	}
	f[k] = v
	return nil
}

func (f keyValueFlag) Type() string {
	return "key=value"
}

// Map returns a copy of the collected pairs, or nil when empty.
func (f keyValueFlag) Map() map[string]string {
	if len(f) == 0 {
		return nil
	}
	out := make(map[string]string, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

func init() {
	dbQueryCmd.Flags().IntVarP(&dbQueryLimit, "limit", "n", 0, "Maximum rows to return (default from config, else 100)")
	dbQueryCmd.Flags().StringVar(&dbQuerySearch, "search", "", "Only rows matching this text")
	dbPatchPropertyCmd.Flags().Var(dbPatchSet, "set", "Set a field (key=value, repeatable)")
	dbPatchPropertyCmd.Flags().StringSliceVar(&dbPatchUnset, "unset", nil, "Remove a field (repeatable)")
	dbPatchPropertyCmd.Flags().BoolVar(&dbPatchRemove, "remove", false, "Delete the property from the schema")

	dbCmd.AddCommand(dbQueryCmd, dbSchemaCmd, dbAddCmd, dbSetCmd, dbPatchPropertyCmd)
	rootCmd.AddCommand(dbCmd)
}
