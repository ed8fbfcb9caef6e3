package mdblocks

import (
	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"

	"github.com/aidanlsb/ntn/internal/richtext"
)

// inline flattens the inline children of n into decorated text. Adjacent
// runs with identical decorations are merged.
func (c converter) inline(n ast.Node) richtext.Text {
	var out richtext.Text
	emit := func(s string, decorations []richtext.Decoration) {
		if s == "" {
			return
		}
		if last := len(out) - 1; last >= 0 && sameDecorations(out[last].Decorations, decorations) {
			out[last].Text += s
			return
		}
		seg := richtext.Segment{Text: s}
		if len(decorations) > 0 {
			seg.Decorations = append([]richtext.Decoration(nil), decorations...)
		}
		out = append(out, seg)
	}

	var walk func(node ast.Node, decorations []richtext.Decoration)
	walk = func(node ast.Node, decorations []richtext.Decoration) {
		for child := node.FirstChild(); child != nil; child = child.NextSibling() {
			switch x := child.(type) {
			case *ast.Text:
				emit(string(x.Segment.Value(c.source)), decorations)
				if x.HardLineBreak() {
					emit("\n", decorations)
				} else if x.SoftLineBreak() {
					emit(" ", decorations)
				}
			case *ast.String:
				emit(string(x.Value), decorations)
			case *ast.CodeSpan:
				walk(x, with(decorations, richtext.Decoration{Tag: richtext.TagCode}))
			case *ast.Emphasis:
				tag := richtext.TagItalic
				if x.Level >= 2 {
					tag = richtext.TagBold
				}
				walk(x, with(decorations, richtext.Decoration{Tag: tag}))
			case *extast.Strikethrough:
				walk(x, with(decorations, richtext.Decoration{Tag: richtext.TagStrike}))
			case *ast.Link:
				walk(x, with(decorations, richtext.Link(string(x.Destination))))
			case *ast.AutoLink:
				emit(string(x.Label(c.source)), with(decorations, richtext.Link(string(x.URL(c.source)))))
			case *ast.Image:
				walk(x, with(decorations, richtext.Link(string(x.Destination))))
			case *ast.RawHTML:
				segs := x.Segments
				for i := 0; i < segs.Len(); i++ {
					seg := segs.At(i)
					emit(string(seg.Value(c.source)), decorations)
				}
			case *extast.TaskCheckBox:
				// Carried by the block type instead.
			default:
				walk(child, decorations)
			}
		}
	}
	walk(n, nil)

	if out == nil {
		return richtext.Text{}
	}
	// Trailing whitespace from a final soft break is not content.
	last := len(out) - 1
	for len(out[last].Text) > 0 && out[last].Text[len(out[last].Text)-1] == ' ' {
		out[last].Text = out[last].Text[:len(out[last].Text)-1]
	}
	if out[last].Text == "" {
		out = out[:last]
	}
	return out
}

func with(decorations []richtext.Decoration, d richtext.Decoration) []richtext.Decoration {
	out := make([]richtext.Decoration, 0, len(decorations)+1)
	out = append(out, decorations...)
	return append(out, d)
}

func sameDecorations(a, b []richtext.Decoration) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Tag != b[i].Tag || string(a[i].Arg) != string(b[i].Arg) {
			return false
		}
	}
	return true
}
