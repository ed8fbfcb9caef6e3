// Package pagetree assembles a block and its descendants into a nested tree.
package pagetree

import (
	"github.com/aidanlsb/ntn/internal/recordmap"
	"github.com/aidanlsb/ntn/internal/richtext"
)

// BlockSource looks up live blocks by id.
type BlockSource interface {
	Block(id string) (*recordmap.Block, bool)
}

// Node is one block in the simplified tree.
type Node struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Text     string `json:"text"`
	Checked  *bool  `json:"checked,omitempty"`
	Children []Node `json:"children,omitempty"`
}

// Build maps childIDs to nodes in order, recursing through each block's own
// content list. Blocks missing from source are skipped so partial fetches
// still produce a tree.
func Build(source BlockSource, childIDs []string) []Node {
	return build(source, childIDs, map[string]bool{}, richtext.Identity)
}

// BuildResolved is Build with mentions rendered through resolve.
func BuildResolved(source BlockSource, childIDs []string, resolve richtext.Resolver) []Node {
	return build(source, childIDs, map[string]bool{}, resolve)
}

func build(source BlockSource, ids []string, path map[string]bool, resolve richtext.Resolver) []Node {
	nodes := make([]Node, 0, len(ids))
	for _, id := range ids {
		if path[id] {
			continue
		}
		b, ok := source.Block(id)
		if !ok {
			continue
		}

		node := Node{
			ID:   b.ID,
			Type: b.Type,
			Text: b.Title().Decode(resolve),
		}
		if b.Type == recordmap.BlockToDo {
			checked := b.Checked()
			node.Checked = &checked
		}
		if len(b.Content) > 0 {
			path[id] = true
			if children := build(source, b.Content, path, resolve); len(children) > 0 {
				node.Children = children
			}
			delete(path, id)
		}
		nodes = append(nodes, node)
	}
	return nodes
}

// Mentions returns every mention in the titles of the tree's blocks.
func Mentions(source BlockSource, childIDs []string) []richtext.Mention {
	var out []richtext.Mention
	walk(source, childIDs, map[string]bool{}, func(b *recordmap.Block) {
		out = append(out, b.Title().Mentions()...)
	})
	return out
}

func walk(source BlockSource, ids []string, seen map[string]bool, fn func(*recordmap.Block)) {
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		b, ok := source.Block(id)
		if !ok {
			continue
		}
		fn(b)
		walk(source, b.Content, seen, fn)
	}
}
