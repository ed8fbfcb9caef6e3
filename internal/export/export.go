// Package export renders pages as markdown files with YAML front matter.
package export

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aidanlsb/ntn/internal/atomicfile"
	"github.com/aidanlsb/ntn/internal/dates"
	"github.com/aidanlsb/ntn/internal/fetch"
	"github.com/aidanlsb/ntn/internal/pagetree"
	"github.com/aidanlsb/ntn/internal/recordmap"
	"github.com/aidanlsb/ntn/internal/slugs"
)

// Frontmatter is the YAML header of an exported page.
type Frontmatter struct {
	ID         string `yaml:"id"`
	Title      string `yaml:"title"`
	Type       string `yaml:"type,omitempty"`
	ParentID   string `yaml:"parent_id,omitempty"`
	Created    string `yaml:"created,omitempty"`
	LastEdited string `yaml:"last_edited,omitempty"`
	Exported   string `yaml:"exported"`
}

// Document renders page as front matter followed by its markdown body.
func Document(page *fetch.Page, now time.Time) ([]byte, error) {
	fm := Frontmatter{
		ID:       page.ID,
		Title:    page.Title,
		Type:     page.Type,
		ParentID: page.ParentID,
		Exported: now.UTC().Format(time.RFC3339),
	}
	if page.CreatedTime > 0 {
		fm.Created = dates.FromMillis(page.CreatedTime).UTC().Format(time.RFC3339)
	}
	if page.LastEditedTime > 0 {
		fm.LastEdited = dates.FromMillis(page.LastEditedTime).UTC().Format(time.RFC3339)
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(fm); err != nil {
		return nil, fmt.Errorf("encode front matter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode front matter: %w", err)
	}
	buf.WriteString("---\n\n")
	if page.Title != "" {
		buf.WriteString("# " + page.Title + "\n\n")
	}
	buf.WriteString(Markdown(page.Children))
	return buf.Bytes(), nil
}

// Write exports page into dir and returns the file path. The file name is
// derived from the page title and id, so re-exporting overwrites in place.
func Write(dir string, page *fetch.Page, now time.Time) (string, error) {
	data, err := Document(page, now)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}
	path := filepath.Join(dir, slugs.PageFilename(page.Title, page.ID))
	if err := atomicfile.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// Markdown renders a block tree as markdown.
func Markdown(nodes []pagetree.Node) string {
	var b strings.Builder
	render(&b, nodes, "")
	return strings.TrimRight(b.String(), "\n") + "\n"
}

func isListItem(typ string) bool {
	switch typ {
	case recordmap.BlockBulletedList, recordmap.BlockNumberedList, recordmap.BlockToDo:
		return true
	}
	return false
}

func render(b *strings.Builder, nodes []pagetree.Node, indent string) {
	number := 0
	for i, n := range nodes {
		if n.Type == recordmap.BlockNumberedList {
			number++
		} else {
			number = 0
		}

		line, childIndent := renderLine(n, number)
		writeIndented(b, indent, line)

		if len(n.Children) > 0 {
			if isListItem(n.Type) {
				render(b, n.Children, indent+childIndent)
			} else {
				b.WriteString("\n")
				render(b, n.Children, indent)
				continue
			}
		}

		// Consecutive list items stay tight; everything else is separated.
		next := i + 1
		if next < len(nodes) && isListItem(n.Type) && isListItem(nodes[next].Type) {
			continue
		}
		if indent == "" || !isListItem(n.Type) {
			b.WriteString("\n")
		}
	}
}

func renderLine(n pagetree.Node, number int) (string, string) {
	switch n.Type {
	case recordmap.BlockHeader:
		return "## " + n.Text, ""
	case recordmap.BlockSubHeader:
		return "### " + n.Text, ""
	case recordmap.BlockSubSubHeader:
		return "#### " + n.Text, ""
	case recordmap.BlockBulletedList:
		return "- " + n.Text, "  "
	case recordmap.BlockNumberedList:
		prefix := fmt.Sprintf("%d. ", number)
		return prefix + n.Text, strings.Repeat(" ", len(prefix))
	case recordmap.BlockToDo:
		box := "[ ]"
		if n.Checked != nil && *n.Checked {
			box = "[x]"
		}
		return "- " + box + " " + n.Text, "  "
	case recordmap.BlockQuote:
		return "> " + strings.ReplaceAll(n.Text, "\n", "\n> "), ""
	case recordmap.BlockCode:
		return "```\n" + n.Text + "\n```", ""
	case recordmap.BlockDivider:
		return "---", ""
	case recordmap.BlockPage:
		return fmt.Sprintf("[%s](%s)", pageLabel(n.Text), slugs.PageFilename(n.Text, n.ID)), ""
	case recordmap.BlockCollectionView, recordmap.BlockCollectionViewPage:
		return fmt.Sprintf("_Database: %s (%s)_", pageLabel(n.Text), n.ID), ""
	}
	return n.Text, ""
}

func pageLabel(title string) string {
	if strings.TrimSpace(title) == "" {
		return "Untitled"
	}
	return title
}

func writeIndented(b *strings.Builder, indent, text string) {
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			b.WriteString("\n")
		}
		if line != "" {
			b.WriteString(indent)
		}
		b.WriteString(line)
	}
	b.WriteString("\n")
}
