package cli

import (
	"github.com/spf13/cobra"

	"github.com/aidanlsb/ntn/internal/ui"
)

var blockCheckOff bool

var blockCmd = &cobra.Command{
	Use:   "block",
	Short: "Edit individual blocks",
}

var blockDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a block",
	Long: `Moves a block to the trash and removes it from its parent's content.
Deleting a database row works the same way.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseIDArg(args[0])
		if err != nil {
			return fail(err)
		}
		_, writer, err := internalServices()
		if err != nil {
			return fail(err)
		}
		if err := writer.DeleteBlock(cmd.Context(), id); err != nil {
			return fail(err)
		}

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{"id": id, "deleted": true}, nil)
			return nil
		}
		printLine("%s", ui.Successf("Deleted %s", ui.ID(id)))
		return nil
	},
}

var blockCheckCmd = &cobra.Command{
	Use:   "check <id>",
	Short: "Check or uncheck a to-do",
	Long: `Marks a to-do block as done. With --off it is marked not done.

Examples:
  ntn block check <id>
  ntn block check <id> --off`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseIDArg(args[0])
		if err != nil {
			return fail(err)
		}
		_, writer, err := internalServices()
		if err != nil {
			return fail(err)
		}
		checked := !blockCheckOff
		if err := writer.Check(cmd.Context(), id, checked); err != nil {
			return fail(err)
		}

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{"id": id, "checked": checked}, nil)
			return nil
		}
		state := "checked"
		if !checked {
			state = "unchecked"
		}
		printLine("%s", ui.Successf("Marked %s %s", ui.ID(id), state))
		return nil
	},
}

func init() {
	blockCheckCmd.Flags().BoolVar(&blockCheckOff, "off", false, "Uncheck instead of check")

	blockCmd.AddCommand(blockDeleteCmd, blockCheckCmd)
	rootCmd.AddCommand(blockCmd)
}
