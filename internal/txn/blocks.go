package txn

import (
	"github.com/aidanlsb/ntn/internal/recordmap"
	"github.com/aidanlsb/ntn/internal/richtext"
)

// BlockSpec describes a block to create, with optional nested children.
type BlockSpec struct {
	Type       string                   `json:"type" yaml:"type"`
	Properties map[string]richtext.Text `json:"properties,omitempty" yaml:"-"`
	Children   []BlockSpec              `json:"children,omitempty" yaml:"children,omitempty"`
}

// Text returns a block spec of typ whose title is s.
func Text(typ, s string) BlockSpec {
	return BlockSpec{Type: typ, Properties: map[string]richtext.Text{"title": richtext.FromString(s)}}
}

// Todo returns an unchecked to_do block spec.
func Todo(s string) BlockSpec {
	spec := Text(recordmap.BlockToDo, s)
	spec.Properties["checked"] = richtext.Checkbox(false)
	return spec
}

// Append creates specs as the last children of parentID, in order. It
// returns the operations and the ids of the top-level blocks created.
func (b *Builder) Append(parentID string, specs []BlockSpec) ([]Operation, []string) {
	var ops []Operation
	ids := make([]string, 0, len(specs))
	after := ""
	for _, spec := range specs {
		blockOps, id := b.block(parentID, recordmap.TableBlock, after, spec)
		ops = append(ops, blockOps...)
		ids = append(ids, id)
		after = id
	}
	if len(specs) > 0 {
		ops = append(ops, b.touch(parentID))
	}
	return ops, ids
}

// block creates one block and its descendants. The new block is linked into
// the parent's content list after the sibling named by after, or at the end
// when after is empty.
func (b *Builder) block(parentID, parentTable, after string, spec BlockSpec) ([]Operation, string) {
	id := b.id()
	now := b.now()

	record := map[string]interface{}{
		"id":                   id,
		"type":                 spec.Type,
		"version":              1,
		"alive":                true,
		"parent_id":            parentID,
		"parent_table":         parentTable,
		"space_id":             b.SpaceID,
		"created_time":         now,
		"last_edited_time":     now,
		"created_by_id":        b.UserID,
		"created_by_table":     recordmap.TableUser,
		"last_edited_by_id":    b.UserID,
		"last_edited_by_table": recordmap.TableUser,
	}
	if len(spec.Properties) > 0 {
		record["properties"] = spec.Properties
	}

	ops := []Operation{b.set(recordmap.TableBlock, id, nil, record)}
	if parentTable == recordmap.TableBlock {
		ops = append(ops, b.listAfter(parentID, "content", id, after))
	}

	childAfter := ""
	for _, child := range spec.Children {
		childOps, childID := b.block(id, recordmap.TableBlock, childAfter, child)
		ops = append(ops, childOps...)
		childAfter = childID
	}
	return ops, id
}

func (b *Builder) listAfter(blockID, list, id, after string) Operation {
	args := map[string]string{"id": id}
	if after != "" {
		args["after"] = after
	}
	return Operation{
		Pointer: b.pointer(recordmap.TableBlock, blockID),
		Command: CommandListAfter,
		Path:    []string{list},
		Args:    args,
	}
}

// Page creates a page titled title under parentID.
func (b *Builder) Page(parentID, title string, children []BlockSpec) ([]Operation, string) {
	spec := Text(recordmap.BlockPage, title)
	spec.Children = children
	ops, ids := b.Append(parentID, []BlockSpec{spec})
	return ops, ids[0]
}

// Row creates a database row in collectionID. Rows are not linked into any
// content list; the collection's queries find them by parent.
func (b *Builder) Row(collectionID string, properties map[string]richtext.Text) ([]Operation, string) {
	return b.block(collectionID, recordmap.TableCollection, "", BlockSpec{
		Type:       recordmap.BlockPage,
		Properties: properties,
	})
}

// SetProperty replaces one property value of a block. An empty value clears
// the property.
func (b *Builder) SetProperty(blockID, propertyID string, value richtext.Text) []Operation {
	if value == nil {
		value = richtext.Text{}
	}
	return []Operation{
		b.set(recordmap.TableBlock, blockID, []string{"properties", propertyID}, value),
		b.touch(blockID),
	}
}

// Check sets the checked state of a to_do block.
func (b *Builder) Check(blockID string, checked bool) []Operation {
	return b.SetProperty(blockID, "checked", richtext.Checkbox(checked))
}

// Delete marks a block dead and removes it from its parent's content list.
// Rows of a collection have no content list entry; pass parentTable
// accordingly.
func (b *Builder) Delete(blockID, parentID, parentTable string) []Operation {
	ops := []Operation{
		b.update(recordmap.TableBlock, blockID, nil, map[string]interface{}{
			"alive":            false,
			"last_edited_time": b.now(),
		}),
	}
	if parentTable == recordmap.TableBlock && parentID != "" {
		ops = append(ops,
			Operation{
				Pointer: b.pointer(recordmap.TableBlock, parentID),
				Command: CommandListRemove,
				Path:    []string{"content"},
				Args:    map[string]string{"id": blockID},
			},
			b.touch(parentID),
		)
	}
	return ops
}

// Comment opens a discussion on pageID holding a single comment. It returns
// the operations and the new discussion id.
func (b *Builder) Comment(pageID string, text richtext.Text) ([]Operation, string) {
	discussionID := b.id()
	commentID := b.id()
	now := b.now()

	ops := []Operation{
		b.set(recordmap.TableDiscussion, discussionID, nil, map[string]interface{}{
			"id":           discussionID,
			"parent_id":    pageID,
			"parent_table": recordmap.TableBlock,
			"resolved":     false,
			"comments":     []string{commentID},
			"space_id":     b.SpaceID,
			"version":      1,
		}),
		b.set(recordmap.TableComment, commentID, nil, map[string]interface{}{
			"id":               commentID,
			"parent_id":        discussionID,
			"parent_table":     recordmap.TableDiscussion,
			"text":             text,
			"alive":            true,
			"space_id":         b.SpaceID,
			"created_time":     now,
			"last_edited_time": now,
			"created_by_id":    b.UserID,
			"created_by_table": recordmap.TableUser,
			"version":          1,
		}),
		b.listAfter(pageID, "discussions", discussionID, ""),
	}
	return ops, discussionID
}
