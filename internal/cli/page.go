package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/ntn/internal/export"
	"github.com/aidanlsb/ntn/internal/mdblocks"
	"github.com/aidanlsb/ntn/internal/recordmap"
	"github.com/aidanlsb/ntn/internal/txn"
	"github.com/aidanlsb/ntn/internal/ui"
)

var (
	pageTodo     bool
	pageFile     string
	pageOut      string
	pageMarkdown bool
)

var pageCmd = &cobra.Command{
	Use:   "page",
	Short: "Read and edit pages",
}

var pageGetCmd = &cobra.Command{
	Use:   "get <id|url>",
	Short: "Show a page and its content",
	Long: `Fetches a page with all of its blocks and prints it as markdown.
User and page mentions are replaced with names and titles.

Examples:
  ntn page get 0123abcd456789abcdef0123456789ab
  ntn page get https://www.notion.so/Plan-0123abcd456789abcdef0123456789ab --json`,
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

		spin := ui.NewSpinner(os.Stderr, "Loading page")
		if !isJSONOutput() {
			spin.Start()
		}
		page, err := reader.Page(cmd.Context(), id)
		spin.Stop()
		if err != nil {
			return fail(err)
		}

		if isJSONOutput() {
			outputSuccess(page, &Meta{Count: len(page.Children)})
			return nil
		}

		md := "# " + page.Title + "\n\n" + export.Markdown(page.Children)
		if pageMarkdown {
			fmt.Print(md)
			return nil
		}
		display := ui.NewDisplayContext()
		rendered, err := ui.RenderMarkdown(md, display.AvailableWidth(ui.MarkdownRenderMargin*2))
		if err != nil {
			fmt.Print(md)
			return nil
		}
		fmt.Print(rendered)
		return nil
	},
}

var pageCreateCmd = &cobra.Command{
	Use:   "create <parent> <title>",
	Short: "Create a page under a page",
	Long: `Creates a page titled <title> as the last child of <parent>.
With --file, the markdown file becomes the page content ('-' reads stdin).

Examples:
  ntn page create <parent-id> "Meeting notes"
  ntn page create <parent-id> "Plan" --file plan.md`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		parent, err := parseIDArg(args[0])
		if err != nil {
			return fail(err)
		}
		var specs []txn.BlockSpec
		if pageFile != "" {
			if specs, err = markdownFile(pageFile); err != nil {
				return handleError(ErrFileReadError, err, "")
			}
		}

		_, writer, err := internalServices()
		if err != nil {
			return fail(err)
		}
		id, err := writer.CreatePage(cmd.Context(), parent, args[1], specs)
		if err != nil {
			return fail(err)
		}

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{"id": id, "parent_id": parent, "title": args[1]}, nil)
			return nil
		}
		printLine("%s", ui.Successf("Created page %s %s", ui.Bold.Render(args[1]), ui.ID(id)))
		return nil
	},
}

var pageAppendCmd = &cobra.Command{
	Use:   "append <id> [text...]",
	Short: "Append blocks to a page",
	Long: `Appends one text block per argument to the end of a page or block.
With --todo the blocks are unchecked to-dos. With --file, the markdown file
is converted to blocks first ('-' reads stdin).

Examples:
  ntn page append <id> "First line" "Second line"
  ntn page append <id> --todo "Buy milk"
  ntn page append <id> --file notes.md`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		parent, err := parseIDArg(args[0])
		if err != nil {
			return fail(err)
		}

		var specs []txn.BlockSpec
		if pageFile != "" {
			if specs, err = markdownFile(pageFile); err != nil {
				return handleError(ErrFileReadError, err, "")
			}
		}
		for _, text := range args[1:] {
			if pageTodo {
				specs = append(specs, txn.Todo(text))
			} else {
				specs = append(specs, txn.Text(recordmap.BlockText, text))
			}
		}
		if len(specs) == 0 {
			return handleErrorMsg(ErrMissingArgument, "nothing to append", "Pass text arguments or --file")
		}

		_, writer, err := internalServices()
		if err != nil {
			return fail(err)
		}
		ids, err := writer.Append(cmd.Context(), parent, specs)
		if err != nil {
			return fail(err)
		}

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{"parent_id": parent, "ids": ids}, &Meta{Count: len(ids)})
			return nil
		}
		printLine("%s", ui.Successf("Appended %d %s to %s", len(ids), plural(len(ids), "block", "blocks"), ui.ID(parent)))
		return nil
	},
}

var pageExportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Export a page to a markdown file",
	Long: `Writes the page as markdown with YAML front matter. The file is named
after the page title and id and placed in --out (default: current directory).

Examples:
  ntn page export <id>
  ntn page export <id> --out ~/notes`,
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

		spin := ui.NewSpinner(os.Stderr, "Exporting page")
		if !isJSONOutput() {
			spin.Start()
		}
		page, err := reader.Page(cmd.Context(), id)
		spin.Stop()
		if err != nil {
			return fail(err)
		}

		dir := pageOut
		if dir == "" {
			dir = "."
		}
		path, err := export.Write(dir, page, now())
		if err != nil {
			return handleError(ErrFileWriteError, err, "")
		}

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{"id": page.ID, "title": page.Title, "path": path}, nil)
			return nil
		}
		printLine("%s", ui.Successf("Exported %s to %s", ui.Bold.Render(page.Title), path))
		return nil
	},
}

var pageBacklinksCmd = &cobra.Command{
	Use:   "backlinks <id>",
	Short: "List pages and blocks that mention a page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseIDArg(args[0])
		if err != nil {
			return fail(err)
		}
		reader, _, err := internalServices()
		if err != nil {
			return fail(err)
		}
		items, err := reader.Backlinks(cmd.Context(), id)
		if err != nil {
			return fail(err)
		}

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{"target": id, "items": items}, &Meta{Count: len(items)})
			return nil
		}
		if len(items) == 0 {
			printLine("No backlinks found for %s", ui.ID(id))
			return nil
		}
		printLine("%s %s\n", ui.Header("Backlinks to "+id), ui.Hint(ui.Count(len(items), "source", "sources")))
		tbl := ui.NewTable(ui.NewDisplayContext(), "id", "title")
		for _, item := range items {
			tbl.AddRow(item.ID, item.Title)
		}
		fmt.Print(tbl.String())
		return nil
	},
}

// markdownFile reads a markdown file (or stdin for "-") and converts it to
// block specs.
func markdownFile(path string) ([]txn.BlockSpec, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil, fmt.Errorf("%s is empty", path)
	}
	return mdblocks.Parse(data), nil
}

func plural(n int, singular, pluralForm string) string {
	if n == 1 {
		return singular
	}
	return pluralForm
}

func init() {
	pageGetCmd.Flags().BoolVar(&pageMarkdown, "markdown", false, "Print raw markdown instead of rendering it")
	pageCreateCmd.Flags().StringVar(&pageFile, "file", "", "Markdown file with the page content ('-' for stdin)")
	pageAppendCmd.Flags().StringVar(&pageFile, "file", "", "Markdown file to append ('-' for stdin)")
	pageAppendCmd.Flags().BoolVar(&pageTodo, "todo", false, "Append text arguments as to-do blocks")
	pageExportCmd.Flags().StringVarP(&pageOut, "out", "o", "", "Directory to write the file to")

	pageCmd.AddCommand(pageGetCmd, pageCreateCmd, pageAppendCmd, pageExportCmd, pageBacklinksCmd)
	rootCmd.AddCommand(pageCmd)
}
