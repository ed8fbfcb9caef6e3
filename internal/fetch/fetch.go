// Package fetch orchestrates reads: it loads records, decodes them with the
// codec packages, and performs at most one batched lookup to resolve the
// references it finds.
package fetch

import (
	"context"
	"fmt"

	"github.com/aidanlsb/ntn/internal/backlinks"
	"github.com/aidanlsb/ntn/internal/notion"
	"github.com/aidanlsb/ntn/internal/recordmap"
)

// API is the subset of the internal API that reads need.
type API interface {
	SyncRecordValues(ctx context.Context, pointers ...notion.Pointer) (recordmap.RecordMap, error)
	LoadPage(ctx context.Context, pageID string) (recordmap.RecordMap, error)
	QueryCollection(ctx context.Context, q notion.Query) (*notion.QueryResult, error)
	Backlinks(ctx context.Context, blockID string) ([]backlinks.Entry, recordmap.RecordMap, error)
}

// Service runs read operations against an API.
type Service struct {
	api API
	// QueryLimit is the default row limit for queries.
	QueryLimit int
	// TimeZone is passed to queries for date grouping.
	TimeZone string
}

// New creates a Service.
func New(api API) *Service {
	return &Service{api: api, QueryLimit: notion.DefaultQueryLimit}
}

// Block fetches one live block.
func (s *Service) Block(ctx context.Context, id string) (*recordmap.Block, recordmap.RecordMap, error) {
	m, err := s.api.SyncRecordValues(ctx, notion.Pointer{Table: recordmap.TableBlock, ID: id})
	if err != nil {
		return nil, nil, err
	}
	b, ok := m.Block(id)
	if !ok {
		return nil, nil, fmt.Errorf("block %s: %w", id, notion.ErrNotFound)
	}
	return b, m, nil
}

// lookup fetches the given page and user records in a single request,
// skipping duplicates and ids already present in have. It returns the merged map.
func (s *Service) lookup(ctx context.Context, have recordmap.RecordMap, pageIDs, userIDs []string) (recordmap.RecordMap, error) {
	var pointers []notion.Pointer
	seen := make(map[notion.Pointer]bool)
	add := func(table string, ids []string) {
		for _, id := range ids {
			p := notion.Pointer{Table: table, ID: id}
			if seen[p] {
				continue
			}
			seen[p] = true
			if _, ok := have.Record(table, id); !ok {
				pointers = append(pointers, p)
			}
		}
	}
	add(recordmap.TableBlock, pageIDs)
	add(recordmap.TableUser, userIDs)

	merged := recordmap.RecordMap{}
	merged.Merge(have)
	if len(pointers) == 0 {
		return merged, nil
	}
	found, err := s.api.SyncRecordValues(ctx, pointers...)
	if err != nil {
		return nil, fmt.Errorf("resolve references: %w", err)
	}
	merged.Merge(found)
	return merged, nil
}

// userName returns a user's display name, falling back to the id.
func userName(m recordmap.RecordMap, id string) (string, bool) {
	u, ok := m.User(id)
	if !ok {
		return "", false
	}
	if name := u.DisplayName(); name != "" {
		return name, true
	}
	return id, true
}
