package notion

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aidanlsb/ntn/internal/txn"
)

type call struct {
	Endpoint string
	Body     map[string]interface{}
	Cookie   string
	User     string
}

func newServer(t *testing.T, handler func(endpoint string, body map[string]interface{}) (int, string)) (*Client, *[]call) {
	t.Helper()
	var calls []call
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		data, _ := io.ReadAll(r.Body)
		var body map[string]interface{}
		if err := json.Unmarshal(data, &body); err != nil {
			t.Errorf("request body is not JSON: %s", data)
		}
		c := call{Endpoint: r.URL.Path[len(apiPrefix):], Body: body, User: r.Header.Get(activeUserHdr)}
		if cookie, err := r.Cookie(tokenCookie); err == nil {
			c.Cookie = cookie.Value
		}
		calls = append(calls, c)

		status, resp := handler(c.Endpoint, body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, resp)
	}))
	t.Cleanup(srv.Close)

	client := New(Options{BaseURL: srv.URL, Token: "secret", UserID: "u1", RequestsPerSecond: -1})
	return client, &calls
}

func TestPostSendsCredentials(t *testing.T) {
	client, calls := newServer(t, func(string, map[string]interface{}) (int, string) {
		return http.StatusOK, `{"recordMap":{}}`
	})

	if _, err := client.LoadUserContent(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := (*calls)[0]
	if got.Endpoint != "loadUserContent" || got.Cookie != "secret" || got.User != "u1" {
		t.Errorf("unexpected call %+v", got)
	}
}

func TestPostWithoutToken(t *testing.T) {
	client := New(Options{BaseURL: "http://127.0.0.1:0"})
	err := client.Post(context.Background(), "loadUserContent", nil, nil)
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}

func TestAPIErrors(t *testing.T) {
	tests := []struct {
		status int
		body   string
		want   error
	}{
		{http.StatusUnauthorized, `{"name":"UnauthorizedError","message":"Token was invalid or expired."}`, ErrUnauthorized},
		{http.StatusNotFound, `not here`, ErrNotFound},
		{http.StatusBadRequest, `{"name":"ValidationError","message":"Invalid input."}`, nil},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			client, _ := newServer(t, func(string, map[string]interface{}) (int, string) {
				return tt.status, tt.body
			})
			_, err := client.SyncRecordValues(context.Background(), Pointer{Table: "block", ID: "b1"})

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *APIError, got %v", err)
			}
			if apiErr.StatusCode != tt.status || apiErr.Endpoint != "syncRecordValues" {
				t.Errorf("unexpected error %+v", apiErr)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("expected %v in chain, got %v", tt.want, err)
			}
			if tt.want == nil && (errors.Is(err, ErrNotFound) || errors.Is(err, ErrUnauthorized)) {
				t.Errorf("400 must not map to a sentinel: %v", err)
			}
		})
	}
}

func TestSyncRecordValues(t *testing.T) {
	client, calls := newServer(t, func(string, map[string]interface{}) (int, string) {
		return http.StatusOK, `{"recordMap":{"block":{"b1":{"value":{"value":{"id":"b1","type":"text"},"role":"reader"}}}}}`
	})

	m, err := client.Blocks(context.Background(), "b1", "b2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := m.Block("b1"); !ok {
		t.Error("expected b1")
	}
	if _, ok := m.Block("b2"); ok {
		t.Error("b2 should be absent")
	}

	reqs := (*calls)[0].Body["requests"].([]interface{})
	first := reqs[0].(map[string]interface{})
	if first["version"].(float64) != -1 || first["pointer"].(map[string]interface{})["table"] != "block" {
		t.Errorf("unexpected request %v", first)
	}
}

func TestSyncRecordValuesEmpty(t *testing.T) {
	client, calls := newServer(t, func(string, map[string]interface{}) (int, string) {
		return http.StatusOK, `{}`
	})
	if _, err := client.Users(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(*calls) != 0 {
		t.Errorf("no ids must mean no round trip, got %d calls", len(*calls))
	}
}

func TestLoadPageFollowsCursor(t *testing.T) {
	client, calls := newServer(t, func(_ string, body map[string]interface{}) (int, string) {
		if body["chunkNumber"].(float64) == 0 {
			return http.StatusOK, `{"recordMap":{"block":{"p":{"value":{"id":"p","type":"page","content":["a","b"]}},"a":{"value":{"id":"a","type":"text"}}}},"cursor":{"stack":[[{"table":"block","id":"p","index":1}]]}}`
		}
		return http.StatusOK, `{"recordMap":{"block":{"b":{"value":{"id":"b","type":"text"}}}},"cursor":{"stack":[]}}`
	})

	m, err := client.LoadPage(context.Background(), "p")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, id := range []string{"p", "a", "b"} {
		if _, ok := m.Block(id); !ok {
			t.Errorf("missing block %s", id)
		}
	}
	if len(*calls) != 2 {
		t.Fatalf("expected 2 chunk requests, got %d", len(*calls))
	}
	stack := (*calls)[1].Body["cursor"].(map[string]interface{})["stack"].([]interface{})
	if len(stack) != 1 {
		t.Errorf("second request must carry the returned cursor, got %v", stack)
	}
}

func TestLoadPageNotFound(t *testing.T) {
	client, _ := newServer(t, func(string, map[string]interface{}) (int, string) {
		return http.StatusOK, `{"recordMap":{},"cursor":{"stack":[]}}`
	})
	if _, err := client.LoadPage(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestQueryCollection(t *testing.T) {
	client, calls := newServer(t, func(string, map[string]interface{}) (int, string) {
		return http.StatusOK, `{"result":{"reducerResults":{"collection_group_results":{"blockIds":["r1","r2"],"hasMore":true}}},"recordMap":{"block":{}}}`
	})

	res, err := client.QueryCollection(context.Background(), Query{CollectionID: "c", ViewID: "v", SpaceID: "s", Limit: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.BlockIDs) != 2 || res.BlockIDs[0] != "r1" || !res.HasMore {
		t.Errorf("unexpected result %+v", res)
	}

	loader := (*calls)[0].Body["loader"].(map[string]interface{})
	group := loader["reducers"].(map[string]interface{})["collection_group_results"].(map[string]interface{})
	if group["limit"].(float64) != 2 || loader["userTimeZone"] != "UTC" {
		t.Errorf("unexpected loader %v", loader)
	}
}

func TestSaveTransactions(t *testing.T) {
	client, calls := newServer(t, func(string, map[string]interface{}) (int, string) {
		return http.StatusOK, `{}`
	})

	b := &txn.Builder{SpaceID: "s", UserID: "u"}
	if err := client.SaveTransactions(context.Background(), b.Transaction(b.Check("todo", true)...)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	body := (*calls)[0].Body
	if body["requestId"] == "" {
		t.Error("missing request id")
	}
	txs := body["transactions"].([]interface{})
	ops := txs[0].(map[string]interface{})["operations"].([]interface{})
	if len(ops) != 2 {
		t.Errorf("expected 2 operations, got %d", len(ops))
	}

	if err := client.SaveTransactions(context.Background()); err != nil || len(*calls) != 1 {
		t.Errorf("empty save must not hit the network")
	}
}

func TestBacklinks(t *testing.T) {
	client, calls := newServer(t, func(string, map[string]interface{}) (int, string) {
		return http.StatusOK, `{"backlinks":[{"block_id":"t","mentioned_from":{"type":"property_mention","block_id":"s1"}}],"recordMap":{}}`
	})

	entries, m, err := client.Backlinks(context.Background(), "t")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].MentionedFrom.BlockID != "s1" || m == nil {
		t.Errorf("unexpected %+v %v", entries, m)
	}
	if (*calls)[0].Body["blockId"] != "t" {
		t.Errorf("unexpected body %v", (*calls)[0].Body)
	}
}
