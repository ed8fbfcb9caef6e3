package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/ntn/internal/ui"
)

var commentCmd = &cobra.Command{
	Use:   "comment",
	Short: "Work with comments",
}

var commentAddCmd = &cobra.Command{
	Use:   "add <page> <text...>",
	Short: "Start a discussion on a page",
	Long: `Adds a comment to a page in a new discussion. Remaining arguments are
joined with spaces.

Examples:
  ntn comment add <page-id> "Looks good to me"`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		page, err := parseIDArg(args[0])
		if err != nil {
			return fail(err)
		}
		text := strings.Join(args[1:], " ")
		if strings.TrimSpace(text) == "" {
			return handleErrorMsg(ErrMissingArgument, "comment text is empty", "")
		}

		_, writer, err := internalServices()
		if err != nil {
			return fail(err)
		}
		discussion, err := writer.Comment(cmd.Context(), page, text)
		if err != nil {
			return fail(err)
		}

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{"page_id": page, "discussion_id": discussion}, nil)
			return nil
		}
		printLine("%s", ui.Successf("Commented on %s", ui.ID(page)))
		return nil
	},
}

func init() {
	commentCmd.AddCommand(commentAddCmd)
	rootCmd.AddCommand(commentCmd)
}
