package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/aidanlsb/ntn/internal/backlinks"
	"github.com/aidanlsb/ntn/internal/notion"
	"github.com/aidanlsb/ntn/internal/recordmap"
	"github.com/aidanlsb/ntn/internal/txn"
)

// FakeAPI is an in-memory stand-in for the internal API. It serves records
// from Records and captures saved transactions instead of applying them.
type FakeAPI struct {
	mu sync.Mutex

	Records recordmap.RecordMap
	// Queries holds query results by collection id. A result with a nil
	// record map is served with Records.
	Queries map[string]*notion.QueryResult
	// BacklinkEntries holds backlinks by target block id.
	BacklinkEntries map[string][]backlinks.Entry
	// Err, when set, is returned by every call.
	Err error

	Saved []txn.Transaction
	Calls []string
	// Lookups holds the pointers of every syncRecordValues call.
	Lookups [][]notion.Pointer
}

// NewFakeAPI returns a FakeAPI serving the record map encoded in src.
func NewFakeAPI(t *testing.T, src string) *FakeAPI {
	t.Helper()
	return &FakeAPI{
		Records:         MustRecordMap(t, src),
		Queries:         map[string]*notion.QueryResult{},
		BacklinkEntries: map[string][]backlinks.Entry{},
	}
}

// MustRecordMap decodes a record map fixture.
func MustRecordMap(t *testing.T, src string) recordmap.RecordMap {
	t.Helper()
	m := recordmap.RecordMap{}
	if src == "" {
		return m
	}
	if err := json.Unmarshal([]byte(src), &m); err != nil {
		t.Fatalf("decode record map fixture: %v", err)
	}
	return m
}

func (f *FakeAPI) record(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, name)
	return f.Err
}

// CallCount returns how many times endpoint was called.
func (f *FakeAPI) CallCount(endpoint string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.Calls {
		if c == endpoint {
			n++
		}
	}
	return n
}

// Operations returns every saved operation in submission order.
func (f *FakeAPI) Operations() []txn.Operation {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ops []txn.Operation
	for _, tx := range f.Saved {
		ops = append(ops, tx.Operations...)
	}
	return ops
}

func (f *FakeAPI) SyncRecordValues(_ context.Context, pointers ...notion.Pointer) (recordmap.RecordMap, error) {
	if err := f.record("syncRecordValues"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.Lookups = append(f.Lookups, append([]notion.Pointer(nil), pointers...))
	f.mu.Unlock()
	out := recordmap.RecordMap{}
	for _, p := range pointers {
		if wrapper, ok := f.Records[p.Table][p.ID]; ok {
			if out[p.Table] == nil {
				out[p.Table] = map[string]json.RawMessage{}
			}
			out[p.Table][p.ID] = wrapper
		}
	}
	return out, nil
}

func (f *FakeAPI) LoadPage(_ context.Context, pageID string) (recordmap.RecordMap, error) {
	if err := f.record("loadPageChunk"); err != nil {
		return nil, err
	}
	if _, ok := f.Records.Block(pageID); !ok {
		return nil, fmt.Errorf("page %s: %w", pageID, notion.ErrNotFound)
	}
	out := recordmap.RecordMap{recordmap.TableBlock: map[string]json.RawMessage{}}
	var walk func(id string)
	walk = func(id string) {
		if _, seen := out[recordmap.TableBlock][id]; seen {
			return
		}
		wrapper, ok := f.Records[recordmap.TableBlock][id]
		if !ok {
			return
		}
		out[recordmap.TableBlock][id] = wrapper
		if b, ok := f.Records.Block(id); ok && (id == pageID || b.Type != recordmap.BlockPage) {
			for _, child := range b.Content {
				walk(child)
			}
		}
	}
	walk(pageID)
	return out, nil
}

func (f *FakeAPI) QueryCollection(_ context.Context, q notion.Query) (*notion.QueryResult, error) {
	if err := f.record("queryCollection"); err != nil {
		return nil, err
	}
	res, ok := f.Queries[q.CollectionID]
	if !ok {
		return &notion.QueryResult{RecordMap: recordmap.RecordMap{}}, nil
	}
	out := *res
	if out.RecordMap == nil {
		out.RecordMap = f.Records
	}
	if q.Limit > 0 && len(out.BlockIDs) > q.Limit {
		out.BlockIDs = out.BlockIDs[:q.Limit]
		out.HasMore = true
	}
	return &out, nil
}

func (f *FakeAPI) Backlinks(_ context.Context, blockID string) ([]backlinks.Entry, recordmap.RecordMap, error) {
	if err := f.record("getBacklinksForBlock"); err != nil {
		return nil, nil, err
	}
	return f.BacklinkEntries[blockID], f.Records, nil
}

func (f *FakeAPI) SaveTransactions(_ context.Context, txs ...txn.Transaction) error {
	if err := f.record("saveTransactions"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Saved = append(f.Saved, txs...)
	return nil
}

func (f *FakeAPI) LoadUserContent(context.Context) (recordmap.RecordMap, error) {
	if err := f.record("loadUserContent"); err != nil {
		return nil, err
	}
	return recordmap.RecordMap{recordmap.TableUser: f.Records[recordmap.TableUser]}, nil
}
