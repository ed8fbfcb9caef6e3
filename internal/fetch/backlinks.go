package fetch

import (
	"context"

	"github.com/aidanlsb/ntn/internal/backlinks"
)

// Backlinks lists the blocks that mention id, titled, with user mentions in
// their titles resolved.
func (s *Service) Backlinks(ctx context.Context, id string) ([]backlinks.Item, error) {
	entries, m, err := s.api.Backlinks(ctx, id)
	if err != nil {
		return nil, err
	}

	resolved, err := s.lookup(ctx, m, nil, backlinks.UserIDs(entries, m))
	if err != nil {
		return nil, err
	}
	users := make(map[string]string)
	for _, uid := range backlinks.UserIDs(entries, resolved) {
		if name, ok := userName(resolved, uid); ok {
			users[uid] = name
		}
	}
	return backlinks.Format(entries, resolved, users), nil
}
