package notion

import (
	"context"
	"fmt"

	"github.com/aidanlsb/ntn/internal/backlinks"
	"github.com/aidanlsb/ntn/internal/recordmap"
	"github.com/aidanlsb/ntn/internal/txn"
)

const (
	pageChunkLimit = 100
	// maxPageChunks bounds the chunk loop against a cursor that never empties.
	maxPageChunks = 50
	// DefaultQueryLimit is the row limit used when a query does not set one.
	DefaultQueryLimit = 100
)

// Pointer names one record to fetch.
type Pointer struct {
	Table string `json:"table"`
	ID    string `json:"id"`
}

type recordMapResponse struct {
	RecordMap recordmap.RecordMap `json:"recordMap"`
}

// SyncRecordValues fetches the latest version of each record. Records the
// caller cannot see are simply absent from the returned map.
func (c *Client) SyncRecordValues(ctx context.Context, pointers ...Pointer) (recordmap.RecordMap, error) {
	if len(pointers) == 0 {
		return recordmap.RecordMap{}, nil
	}
	type request struct {
		Pointer Pointer `json:"pointer"`
		Version int     `json:"version"`
	}
	reqs := make([]request, len(pointers))
	for i, p := range pointers {
		reqs[i] = request{Pointer: p, Version: -1}
	}

	var resp recordMapResponse
	if err := c.Post(ctx, "syncRecordValues", map[string]interface{}{"requests": reqs}, &resp); err != nil {
		return nil, err
	}
	if resp.RecordMap == nil {
		resp.RecordMap = recordmap.RecordMap{}
	}
	return resp.RecordMap, nil
}

// Blocks fetches block records by id.
func (c *Client) Blocks(ctx context.Context, ids ...string) (recordmap.RecordMap, error) {
	return c.SyncRecordValues(ctx, pointers(recordmap.TableBlock, ids)...)
}

// Users fetches user records by id.
func (c *Client) Users(ctx context.Context, ids ...string) (recordmap.RecordMap, error) {
	return c.SyncRecordValues(ctx, pointers(recordmap.TableUser, ids)...)
}

func pointers(table string, ids []string) []Pointer {
	out := make([]Pointer, len(ids))
	for i, id := range ids {
		out[i] = Pointer{Table: table, ID: id}
	}
	return out
}

type cursor struct {
	Stack [][]interface{} `json:"stack"`
}

// LoadPage loads a page and its content, following the chunk cursor until
// the service reports no more chunks.
func (c *Client) LoadPage(ctx context.Context, pageID string) (recordmap.RecordMap, error) {
	merged := recordmap.RecordMap{}
	cur := cursor{Stack: [][]interface{}{}}

	for chunk := 0; chunk < maxPageChunks; chunk++ {
		body := map[string]interface{}{
			"pageId":          pageID,
			"limit":           pageChunkLimit,
			"cursor":          cur,
			"chunkNumber":     chunk,
			"verticalColumns": false,
		}
		var resp struct {
			RecordMap recordmap.RecordMap `json:"recordMap"`
			Cursor    cursor              `json:"cursor"`
		}
		if err := c.Post(ctx, "loadPageChunk", body, &resp); err != nil {
			return nil, err
		}
		merged.Merge(resp.RecordMap)
		if len(resp.Cursor.Stack) == 0 {
			break
		}
		cur = resp.Cursor
	}

	if _, ok := merged.Block(pageID); !ok {
		return nil, fmt.Errorf("page %s: %w", pageID, ErrNotFound)
	}
	return merged, nil
}

// Query selects rows from a collection through one of its views.
type Query struct {
	CollectionID string
	ViewID       string
	SpaceID      string
	Limit        int
	Search       string
	TimeZone     string
}

// QueryResult holds the row ids in view order plus the records needed to
// render them.
type QueryResult struct {
	BlockIDs  []string
	HasMore   bool
	RecordMap recordmap.RecordMap
}

// QueryCollection runs q.
func (c *Client) QueryCollection(ctx context.Context, q Query) (*QueryResult, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultQueryLimit
	}
	tz := q.TimeZone
	if tz == "" {
		tz = "UTC"
	}
	body := map[string]interface{}{
		"collection":     map[string]string{"id": q.CollectionID, "spaceId": q.SpaceID},
		"collectionView": map[string]string{"id": q.ViewID, "spaceId": q.SpaceID},
		"loader": map[string]interface{}{
			"type": "reducer",
			"reducers": map[string]interface{}{
				"collection_group_results": map[string]interface{}{"type": "results", "limit": limit},
			},
			"searchQuery":  q.Search,
			"userTimeZone": tz,
		},
	}

	var resp struct {
		Result struct {
			ReducerResults struct {
				Group struct {
					BlockIDs []string `json:"blockIds"`
					HasMore  bool     `json:"hasMore"`
				} `json:"collection_group_results"`
			} `json:"reducerResults"`
		} `json:"result"`
		RecordMap recordmap.RecordMap `json:"recordMap"`
	}
	if err := c.Post(ctx, "queryCollection", body, &resp); err != nil {
		return nil, err
	}
	if resp.RecordMap == nil {
		resp.RecordMap = recordmap.RecordMap{}
	}
	group := resp.Result.ReducerResults.Group
	return &QueryResult{BlockIDs: group.BlockIDs, HasMore: group.HasMore, RecordMap: resp.RecordMap}, nil
}

// SaveTransactions submits transactions as one request.
func (c *Client) SaveTransactions(ctx context.Context, txs ...txn.Transaction) error {
	if len(txs) == 0 {
		return nil
	}
	return c.Post(ctx, "saveTransactions", txn.NewRequest(txs...), nil)
}

// Backlinks lists the blocks that mention blockID, with the records needed
// to title them.
func (c *Client) Backlinks(ctx context.Context, blockID string) ([]backlinks.Entry, recordmap.RecordMap, error) {
	var resp struct {
		Backlinks []backlinks.Entry   `json:"backlinks"`
		RecordMap recordmap.RecordMap `json:"recordMap"`
	}
	if err := c.Post(ctx, "getBacklinksForBlock", map[string]string{"blockId": blockID}, &resp); err != nil {
		return nil, nil, err
	}
	if resp.RecordMap == nil {
		resp.RecordMap = recordmap.RecordMap{}
	}
	return resp.Backlinks, resp.RecordMap, nil
}

// LoadUserContent returns the records of the signed-in user: their user
// record and the spaces they belong to.
func (c *Client) LoadUserContent(ctx context.Context) (recordmap.RecordMap, error) {
	var resp recordMapResponse
	if err := c.Post(ctx, "loadUserContent", map[string]interface{}{}, &resp); err != nil {
		return nil, err
	}
	if resp.RecordMap == nil {
		resp.RecordMap = recordmap.RecordMap{}
	}
	return resp.RecordMap, nil
}
