// Package mdblocks converts markdown documents into block specs that can be
// appended to a page.
package mdblocks

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/aidanlsb/ntn/internal/recordmap"
	"github.com/aidanlsb/ntn/internal/richtext"
	"github.com/aidanlsb/ntn/internal/txn"
)

// Parse converts markdown into block specs. Headings, paragraphs, bulleted,
// numbered and task lists, quotes, code blocks and thematic breaks map to
// their block types; nested lists become children. Inline emphasis, code,
// strikethrough and links become decorations.
func Parse(source []byte) []txn.BlockSpec {
	md := goldmark.New(goldmark.WithExtensions(extension.Strikethrough, extension.TaskList))
	doc := md.Parser().Parse(text.NewReader(source))
	c := converter{source: source}
	return c.blocks(doc)
}

type converter struct {
	source []byte
}

func (c converter) blocks(parent ast.Node) []txn.BlockSpec {
	var out []txn.BlockSpec
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		out = append(out, c.block(n)...)
	}
	return out
}

func (c converter) block(n ast.Node) []txn.BlockSpec {
	switch node := n.(type) {
	case *ast.Heading:
		return []txn.BlockSpec{c.textBlock(headingType(node.Level), node)}

	case *ast.Paragraph, *ast.TextBlock:
		return []txn.BlockSpec{c.textBlock(recordmap.BlockText, node)}

	case *ast.List:
		typ := recordmap.BlockBulletedList
		if node.IsOrdered() {
			typ = recordmap.BlockNumberedList
		}
		var items []txn.BlockSpec
		for item := node.FirstChild(); item != nil; item = item.NextSibling() {
			items = append(items, c.listItem(typ, item))
		}
		return items

	case *ast.Blockquote:
		// Each quoted paragraph becomes its own quote block.
		var out []txn.BlockSpec
		for child := node.FirstChild(); child != nil; child = child.NextSibling() {
			for _, spec := range c.block(child) {
				if spec.Type == recordmap.BlockText {
					spec.Type = recordmap.BlockQuote
				}
				out = append(out, spec)
			}
		}
		return out

	case *ast.FencedCodeBlock:
		spec := c.codeBlock(node)
		if lang := strings.TrimSpace(string(node.Language(c.source))); lang != "" {
			spec.Properties["language"] = richtext.FromString(lang)
		}
		return []txn.BlockSpec{spec}

	case *ast.CodeBlock:
		return []txn.BlockSpec{c.codeBlock(node)}

	case *ast.ThematicBreak:
		return []txn.BlockSpec{{Type: recordmap.BlockDivider}}

	case *ast.HTMLBlock:
		raw := strings.TrimRight(c.lines(node), "\n")
		if raw == "" {
			return nil
		}
		return []txn.BlockSpec{txn.Text(recordmap.BlockText, raw)}
	}
	return nil
}

func headingType(level int) string {
	switch level {
	case 1:
		return recordmap.BlockHeader
	case 2:
		return recordmap.BlockSubHeader
	default:
		return recordmap.BlockSubSubHeader
	}
}

func (c converter) textBlock(typ string, n ast.Node) txn.BlockSpec {
	return txn.BlockSpec{Type: typ, Properties: map[string]richtext.Text{"title": c.inline(n)}}
}

// listItem converts a list item. Its first text child is the item's title;
// any further blocks (nested lists, extra paragraphs) become children. A
// leading task checkbox turns the item into a to_do.
func (c converter) listItem(typ string, item ast.Node) txn.BlockSpec {
	spec := txn.BlockSpec{Type: typ, Properties: map[string]richtext.Text{}}
	first := true
	for child := item.FirstChild(); child != nil; child = child.NextSibling() {
		switch child.(type) {
		case *ast.Paragraph, *ast.TextBlock:
			if first {
				if box, ok := child.FirstChild().(*extast.TaskCheckBox); ok {
					spec.Type = recordmap.BlockToDo
					spec.Properties["checked"] = richtext.Checkbox(box.IsChecked)
				}
				spec.Properties["title"] = c.inline(child)
				first = false
				continue
			}
		}
		spec.Children = append(spec.Children, c.block(child)...)
	}
	if _, ok := spec.Properties["title"]; !ok {
		spec.Properties["title"] = richtext.Text{}
	}
	return spec
}

func (c converter) codeBlock(n ast.Node) txn.BlockSpec {
	code := strings.TrimRight(c.lines(n), "\n")
	return txn.BlockSpec{
		Type:       recordmap.BlockCode,
		Properties: map[string]richtext.Text{"title": richtext.FromString(code)},
	}
}

func (c converter) lines(n ast.Node) string {
	var b strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(c.source))
	}
	return b.String()
}
