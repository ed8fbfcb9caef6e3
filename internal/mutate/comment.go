package mutate

import (
	"context"
	"fmt"
	"strings"

	"github.com/aidanlsb/ntn/internal/richtext"
)

// Comment starts a discussion on a page with one comment.
func (s *Service) Comment(ctx context.Context, pageID, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("comment text is required")
	}
	page, _, err := s.reader.Block(ctx, pageID)
	if err != nil {
		return "", err
	}
	b, err := s.builder(ctx, page.SpaceID)
	if err != nil {
		return "", err
	}
	ops, id := b.Comment(page.ID, richtext.FromString(text))
	if err := s.submit(ctx, b, ops); err != nil {
		return "", err
	}
	return id, nil
}
