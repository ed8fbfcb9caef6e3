package fetch

import (
	"context"
	"errors"
	"fmt"

	"github.com/aidanlsb/ntn/internal/notion"
	"github.com/aidanlsb/ntn/internal/property"
	"github.com/aidanlsb/ntn/internal/recordmap"
	"github.com/aidanlsb/ntn/internal/refs"
	"github.com/aidanlsb/ntn/internal/schema"
)

// ErrNotDatabase is returned when an id names a block that hosts no
// collection.
var ErrNotDatabase = errors.New("not a database")

// Database is a collection together with the block that hosts it.
type Database struct {
	Block      *recordmap.Block
	Collection *recordmap.Collection
	// ViewID is the view queries run through; empty when the host has none.
	ViewID    string
	RecordMap recordmap.RecordMap
}

// Database resolves id to a collection. id may name the hosting block
// (a full-page or inline database) or the collection itself.
func (s *Service) Database(ctx context.Context, id string) (*Database, error) {
	m, err := s.api.SyncRecordValues(ctx,
		notion.Pointer{Table: recordmap.TableBlock, ID: id},
		notion.Pointer{Table: recordmap.TableCollection, ID: id},
	)
	if err != nil {
		return nil, err
	}

	if b, ok := m.Block(id); ok {
		if !b.IsCollectionView() || b.CollectionID == "" {
			return nil, fmt.Errorf("block %s (%s): %w", id, b.Type, ErrNotDatabase)
		}
		return s.withCollection(ctx, b, m)
	}

	coll, ok := m.Collection(id)
	if !ok {
		return nil, fmt.Errorf("database %s: %w", id, notion.ErrNotFound)
	}
	if coll.ParentID == "" {
		return &Database{Collection: coll, RecordMap: m}, nil
	}
	host, hostMap, err := s.Block(ctx, coll.ParentID)
	if err != nil {
		return &Database{Collection: coll, RecordMap: m}, nil
	}
	hostMap.Merge(m)
	return &Database{Block: host, Collection: coll, ViewID: firstView(host), RecordMap: hostMap}, nil
}

func (s *Service) withCollection(ctx context.Context, b *recordmap.Block, m recordmap.RecordMap) (*Database, error) {
	coll, ok := m.Collection(b.CollectionID)
	if !ok {
		found, err := s.api.SyncRecordValues(ctx, notion.Pointer{Table: recordmap.TableCollection, ID: b.CollectionID})
		if err != nil {
			return nil, err
		}
		m.Merge(found)
		if coll, ok = m.Collection(b.CollectionID); !ok {
			return nil, fmt.Errorf("collection %s: %w", b.CollectionID, notion.ErrNotFound)
		}
	}
	return &Database{Block: b, Collection: coll, ViewID: firstView(b), RecordMap: m}, nil
}

// SpaceID returns the space the database lives in.
func (db *Database) SpaceID() string {
	if db.Collection.SpaceID != "" || db.Block == nil {
		return db.Collection.SpaceID
	}
	return db.Block.SpaceID
}

func firstView(b *recordmap.Block) string {
	if len(b.ViewIDs) == 0 {
		return ""
	}
	return b.ViewIDs[0]
}

// Schema is a simplified schema with its advisory hints.
type Schema struct {
	CollectionID string            `json:"collection_id"`
	Name         string            `json:"name"`
	Properties   schema.Simplified `json:"properties"`
	Hints        []schema.Hint     `json:"-"`
}

// Schema loads and simplifies a database schema. Hints are advisory and
// never cause an error.
func (s *Service) Schema(ctx context.Context, id string) (*Schema, error) {
	db, err := s.Database(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Schema{
		CollectionID: db.Collection.ID,
		Name:         db.Collection.Name.Plain(),
		Properties:   schema.Simplify(db.Collection.Schema),
		Hints:        schema.Validate(db.Collection.Schema, db.Collection.ID),
	}, nil
}

// QueryResult is a page of decoded, reference-resolved rows.
type QueryResult struct {
	CollectionID string         `json:"collection_id"`
	Name         string         `json:"name"`
	Rows         []property.Row `json:"rows"`
	HasMore      bool           `json:"has_more"`
	Hints        []schema.Hint  `json:"-"`
}

// Query runs a database query, extracts every row and resolves relation,
// person and mention ids with one batched lookup. The lookup is skipped when
// no row references anything.
func (s *Service) Query(ctx context.Context, id string, limit int, search string) (*QueryResult, error) {
	db, err := s.Database(ctx, id)
	if err != nil {
		return nil, err
	}
	if db.ViewID == "" {
		return nil, fmt.Errorf("database %s has no view to query through: %w", id, notion.ErrNotFound)
	}
	if limit <= 0 {
		limit = s.QueryLimit
	}

	res, err := s.api.QueryCollection(ctx, notion.Query{
		CollectionID: db.Collection.ID,
		ViewID:       db.ViewID,
		SpaceID:      db.SpaceID(),
		Limit:        limit,
		Search:       search,
		TimeZone:     s.TimeZone,
	})
	if err != nil {
		return nil, err
	}

	rows := make([]property.Row, 0, len(res.BlockIDs))
	for _, rowID := range res.BlockIDs {
		b, ok := res.RecordMap.Block(rowID)
		if !ok {
			continue
		}
		rows = append(rows, property.ExtractRow(b, db.Collection.Schema))
	}

	if ids := refs.Collect(rows); !ids.Empty() {
		resolved, err := s.lookup(ctx, res.RecordMap, ids.Pages, ids.Users)
		if err != nil {
			return nil, err
		}
		refs.Enrich(rows, buildLookup(resolved, ids))
	}

	return &QueryResult{
		CollectionID: db.Collection.ID,
		Name:         db.Collection.Name.Plain(),
		Rows:         rows,
		HasMore:      res.HasMore,
		Hints:        schema.Validate(db.Collection.Schema, db.Collection.ID),
	}, nil
}

func buildLookup(m recordmap.RecordMap, ids refs.IDs) refs.Lookup {
	lookup := refs.Lookup{Pages: map[string]string{}, Users: map[string]string{}}
	for _, id := range ids.Pages {
		if b, ok := m.Block(id); ok {
			lookup.Pages[id] = b.Title().Plain()
		}
	}
	for _, id := range ids.Users {
		if name, ok := userName(m, id); ok {
			lookup.Users[id] = name
		}
	}
	return lookup
}
