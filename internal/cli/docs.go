package cli

import (
	"bufio"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	builtindocs "github.com/aidanlsb/ntn/docs"
	"github.com/aidanlsb/ntn/internal/ui"
)

const docsRoot = "guide"

var (
	docsSearchLimit int

	docsDisplayContext = ui.NewDisplayContext
	docsMarkdownRender = ui.RenderMarkdown
)

type docsTopic struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Path  string `json:"path"`
}

type docsSearchMatch struct {
	Topic   string `json:"topic"`
	Title   string `json:"title"`
	Line    int    `json:"line"`
	Snippet string `json:"snippet"`
}

var docsCmd = &cobra.Command{
	Use:   "docs [topic]",
	Short: "Read the bundled guides",
	Long: `Shows long-form guides bundled into the ntn binary: credentials, ids,
property values, schema hints and batch files.
For command usage, use 'ntn help <command>'.

Examples:
  ntn docs
  ntn docs batch
  ntn docs search rollup`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		topics, err := listDocsTopicsFS(builtindocs.FS, docsRoot)
		if err != nil {
			return handleError(ErrInternal, err, "")
		}

		if len(args) == 0 {
			if isJSONOutput() {
				outputSuccess(map[string]interface{}{"topics": topics}, &Meta{Count: len(topics)})
				return nil
			}
			printLine("%s", ui.Header("Guides"))
			for _, t := range topics {
				printLine("  %-14s %s", t.ID, t.Title)
			}
			printLine("\n%s", ui.Hint("Open one with 'ntn docs <topic>'"))
			return nil
		}

		topic, ok := findDocsTopic(topics, args[0])
		if !ok {
			ids := make([]string, len(topics))
			for i, t := range topics {
				ids[i] = t.ID
			}
			return handleErrorMsg(ErrInvalidInput, fmt.Sprintf("unknown topic: %s", args[0]),
				"Available topics: "+strings.Join(ids, ", "))
		}
		return outputDocsTopicContent(topic)
	},
}

var docsSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the bundled guides",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.TrimSpace(strings.Join(args, " "))
		if query == "" {
			return handleErrorMsg(ErrMissingArgument, "specify a search query", "Usage: ntn docs search <query>")
		}
		if docsSearchLimit < 1 {
			return handleErrorMsg(ErrInvalidInput, "--limit must be >= 1", "")
		}

		matches, err := searchDocsFS(builtindocs.FS, docsRoot, query, docsSearchLimit)
		if err != nil {
			return handleError(ErrInternal, err, "")
		}

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{"query": query, "matches": matches}, &Meta{Count: len(matches)})
			return nil
		}
		if len(matches) == 0 {
			printLine("No guides matched %q.", query)
			return nil
		}
		for _, m := range matches {
			printLine("%s:%d  %s", ui.Bold.Render(m.Topic), m.Line, m.Snippet)
		}
		return nil
	},
}

func outputDocsTopicContent(topic docsTopic) error {
	content, err := fs.ReadFile(builtindocs.FS, topic.Path)
	if err != nil {
		return handleError(ErrFileReadError, err, "")
	}

	if isJSONOutput() {
		outputSuccess(map[string]interface{}{
			"topic":   topic.ID,
			"title":   topic.Title,
			"content": string(content),
		}, nil)
		return nil
	}

	rendered := string(content)
	display := docsDisplayContext()
	if display.IsTTY {
		if out, renderErr := docsMarkdownRender(rendered, display.TermWidth); renderErr == nil {
			rendered = out
		}
	}
	fmt.Print(rendered)
	if !strings.HasSuffix(rendered, "\n") {
		fmt.Println()
	}
	return nil
}

// listDocsTopicsFS lists the markdown files directly under root, sorted by id.
func listDocsTopicsFS(docsFS fs.FS, root string) ([]docsTopic, error) {
	entries, err := fs.ReadDir(docsFS, root)
	if err != nil {
		return nil, err
	}
	topics := make([]docsTopic, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".md" {
			continue
		}
		id := strings.TrimSuffix(e.Name(), ".md")
		p := path.Join(root, e.Name())
		topics = append(topics, docsTopic{ID: id, Title: extractDocsTitleFS(docsFS, p, id), Path: p})
	}
	sort.Slice(topics, func(i, j int) bool { return topics[i].ID < topics[j].ID })
	return topics, nil
}

func findDocsTopic(topics []docsTopic, raw string) (docsTopic, bool) {
	want := strings.ToLower(strings.TrimSuffix(strings.TrimSpace(raw), ".md"))
	for _, t := range topics {
		if t.ID == want {
			return t, true
		}
	}
	return docsTopic{}, false
}

func searchDocsFS(docsFS fs.FS, root, query string, limit int) ([]docsSearchMatch, error) {
	topics, err := listDocsTopicsFS(docsFS, root)
	if err != nil {
		return nil, err
	}

	queryLower := strings.ToLower(query)
	matches := make([]docsSearchMatch, 0, limit)
	for _, topic := range topics {
		content, err := fs.ReadFile(docsFS, topic.Path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", topic.Path, err)
		}
		for i, line := range strings.Split(string(content), "\n") {
			if !strings.Contains(strings.ToLower(line), queryLower) {
				continue
			}
			matches = append(matches, docsSearchMatch{
				Topic:   topic.ID,
				Title:   topic.Title,
				Line:    i + 1,
				Snippet: shortenDocsSnippet(line, queryLower),
			})
			if len(matches) >= limit {
				return matches, nil
			}
		}
	}
	return matches, nil
}

func shortenDocsSnippet(line, queryLower string) string {
	const maxLen = 120
	snippet := strings.TrimSpace(line)
	if len(snippet) <= maxLen {
		return snippet
	}
	start := strings.Index(strings.ToLower(snippet), queryLower) - 40
	if start < 0 {
		start = 0
	}
	end := start + maxLen
	if end > len(snippet) {
		end = len(snippet)
	}
	out := snippet[start:end]
	if start > 0 {
		out = "..." + out
	}
	if end < len(snippet) {
		out += "..."
	}
	return out
}

func extractDocsTitleFS(docsFS fs.FS, docsPath, fallback string) string {
	f, err := docsFS.Open(docsPath)
	if err != nil {
		return fallback
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if title := strings.TrimSpace(strings.TrimPrefix(line, "# ")); strings.HasPrefix(line, "# ") && title != "" {
			return title
		}
	}
	return fallback
}

func init() {
	docsSearchCmd.Flags().IntVarP(&docsSearchLimit, "limit", "n", 20, "Maximum matches to show")
	docsCmd.AddCommand(docsSearchCmd)
	rootCmd.AddCommand(docsCmd)
}
