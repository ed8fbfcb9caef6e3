package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
)

// MarkdownRenderMargin is the left margin used for terminal markdown rendering.
const MarkdownRenderMargin = 2

const defaultCodeTheme = "monokai"

// codeThemes are the syntax themes accepted for code blocks.
var codeThemes = map[string]bool{
	"monokai":         true,
	"dracula":         true,
	"github":          true,
	"github-dark":     true,
	"nord":            true,
	"native":          true,
	"friendly":        true,
	"solarized-dark":  true,
	"solarized-light": true,
	"vim":             true,
}

var markdownCodeTheme = defaultCodeTheme

// ConfigureMarkdownCodeTheme sets the syntax theme for code blocks. Unknown
// names fall back to the default.
func ConfigureMarkdownCodeTheme(name string) {
	name = strings.ToLower(strings.TrimSpace(name))
	if !codeThemes[name] {
		name = defaultCodeTheme
	}
	markdownCodeTheme = name
}

// RenderMarkdown renders page markdown for the terminal.
func RenderMarkdown(content string, width int) (string, error) {
	if width <= 0 {
		width = DefaultTermWidth
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStyles(markdownStyle()),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}

	rendered, err := r.Render(content)
	if err != nil {
		return "", err
	}

	// glamour adds trailing newlines; normalize to a single trailing newline.
	rendered = strings.TrimRight(rendered, "\n") + "\n"
	return rendered, nil
}

// markdownStyle starts from glamour's dark palette and swaps in the page
// heading prefixes, the accent color and the configured code theme.
func markdownStyle() ansi.StyleConfig {
	style := styles.DarkStyleConfig

	style.Document.Margin = ptr(uint(MarkdownRenderMargin))
	style.Document.Color = nil
	style.CodeBlock.Margin = ptr(uint(MarkdownRenderMargin))
	style.CodeBlock.Theme = markdownCodeTheme
	style.CodeBlock.Chroma = nil

	heading := style.Heading
	heading.Color = nil
	if color, ok := AccentColor(); ok {
		heading.Color = ptr(color)
	}
	style.Heading = heading

	for level, block := range []*ansi.StyleBlock{&style.H1, &style.H2, &style.H3, &style.H4, &style.H5, &style.H6} {
		*block = ansi.StyleBlock{StylePrimitive: ansi.StylePrimitive{
			Prefix:    strings.Repeat("#", level+1) + " ",
			Underline: ptr(level < 2),
		}}
	}

	style.Task = ansi.StyleTask{Ticked: "[x] ", Unticked: "[ ] "}
	style.Item.BlockPrefix = "• "
	return style
}

func ptr[T any](v T) *T { return &v }
