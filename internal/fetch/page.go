package fetch

import (
	"context"

	"github.com/aidanlsb/ntn/internal/pagetree"
	"github.com/aidanlsb/ntn/internal/recordmap"
	"github.com/aidanlsb/ntn/internal/richtext"
)

// Page is a page with its content tree and mentions resolved.
type Page struct {
	ID             string          `json:"id"`
	Type           string          `json:"type"`
	Title          string          `json:"title"`
	ParentID       string          `json:"parent_id,omitempty"`
	SpaceID        string          `json:"space_id,omitempty"`
	CreatedTime    int64           `json:"created_time,omitempty"`
	LastEditedTime int64           `json:"last_edited_time,omitempty"`
	Children       []pagetree.Node `json:"children"`
}

// Page loads a page, builds its block tree and resolves the page and user
// mentions found in it.
func (s *Service) Page(ctx context.Context, id string) (*Page, error) {
	m, err := s.api.LoadPage(ctx, id)
	if err != nil {
		return nil, err
	}
	// LoadPage guarantees the root is present.
	root, _ := m.Block(id)

	mentions := append(root.Title().Mentions(), pagetree.Mentions(m, root.Content)...)
	var pageIDs, userIDs []string
	for _, mn := range mentions {
		if mn.Kind == richtext.MentionUser {
			userIDs = append(userIDs, mn.ID)
		} else {
			pageIDs = append(pageIDs, mn.ID)
		}
	}
	resolved, err := s.lookup(ctx, m, pageIDs, userIDs)
	if err != nil {
		return nil, err
	}
	resolve := mentionResolver(resolved)

	children := pagetree.BuildResolved(resolved, root.Content, resolve)
	if children == nil {
		children = []pagetree.Node{}
	}
	return &Page{
		ID:             root.ID,
		Type:           root.Type,
		Title:          root.Title().Decode(resolve),
		ParentID:       root.ParentID,
		SpaceID:        root.SpaceID,
		CreatedTime:    root.CreatedTime,
		LastEditedTime: root.LastEditedTime,
		Children:       children,
	}, nil
}

// mentionResolver resolves users to names and pages to their plain titles.
func mentionResolver(m recordmap.RecordMap) richtext.Resolver {
	return func(mn richtext.Mention) (string, bool) {
		if mn.Kind == richtext.MentionUser {
			return userName(m, mn.ID)
		}
		b, ok := m.Block(mn.ID)
		if !ok {
			return "", false
		}
		return b.Title().Plain(), true
	}
}
