package testutil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aidanlsb/ntn/internal/notion"
	"github.com/aidanlsb/ntn/internal/recordmap"
	"github.com/aidanlsb/ntn/internal/txn"
)

// Token is the session token the fake server accepts.
const Token = "test-token"

// Serve starts an HTTP server speaking the internal API wire format on top
// of f. Requests without the Token cookie are rejected with 401.
func (f *FakeAPI) Serve(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(f.Handler())
	t.Cleanup(srv.Close)
	return srv
}

// Handler returns the http.Handler behind Serve.
func (f *FakeAPI) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || !strings.HasPrefix(r.URL.Path, "/api/v3/") {
			http.NotFound(w, r)
			return
		}
		if c, err := r.Cookie("token_v2"); err != nil || c.Value != Token {
			writeError(w, http.StatusUnauthorized, "UnauthorizedError", "invalid token")
			return
		}

		endpoint := strings.TrimPrefix(r.URL.Path, "/api/v3/")
		resp, err := f.dispatch(r, endpoint)
		if err != nil {
			status := http.StatusInternalServerError
			switch {
			case errors.Is(err, notion.ErrNotFound):
				status = http.StatusNotFound
			case errors.Is(err, notion.ErrUnauthorized):
				status = http.StatusUnauthorized
			case errors.Is(err, errBadRequest):
				status = http.StatusBadRequest
			}
			writeError(w, status, "ValidationError", err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	})
}

var errBadRequest = errors.New("bad request")

func (f *FakeAPI) dispatch(r *http.Request, endpoint string) (interface{}, error) {
	ctx := r.Context()
	switch endpoint {
	case "syncRecordValues":
		var body struct {
			Requests []struct {
				Pointer notion.Pointer `json:"pointer"`
			} `json:"requests"`
		}
		if err := decode(r, &body); err != nil {
			return nil, err
		}
		pointers := make([]notion.Pointer, len(body.Requests))
		for i, req := range body.Requests {
			pointers[i] = req.Pointer
		}
		m, err := f.SyncRecordValues(ctx, pointers...)
		return map[string]interface{}{"recordMap": m}, err

	case "loadPageChunk":
		var body struct {
			PageID string `json:"pageId"`
		}
		if err := decode(r, &body); err != nil {
			return nil, err
		}
		m, err := f.LoadPage(ctx, body.PageID)
		if errors.Is(err, notion.ErrNotFound) {
			// The service answers unknown pages with an empty chunk.
			m, err = recordmap.RecordMap{}, nil
		}
		return map[string]interface{}{"recordMap": m, "cursor": map[string]interface{}{"stack": []interface{}{}}}, err

	case "queryCollection":
		var body struct {
			Collection struct {
				ID      string `json:"id"`
				SpaceID string `json:"spaceId"`
			} `json:"collection"`
			CollectionView struct {
				ID string `json:"id"`
			} `json:"collectionView"`
			Loader struct {
				Reducers struct {
					Group struct {
						Limit int `json:"limit"`
					} `json:"collection_group_results"`
				} `json:"reducers"`
				SearchQuery  string `json:"searchQuery"`
				UserTimeZone string `json:"userTimeZone"`
			} `json:"loader"`
		}
		if err := decode(r, &body); err != nil {
			return nil, err
		}
		res, err := f.QueryCollection(ctx, notion.Query{
			CollectionID: body.Collection.ID,
			ViewID:       body.CollectionView.ID,
			SpaceID:      body.Collection.SpaceID,
			Limit:        body.Loader.Reducers.Group.Limit,
			Search:       body.Loader.SearchQuery,
			TimeZone:     body.Loader.UserTimeZone,
		})
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"result": map[string]interface{}{
				"type": "reducer",
				"reducerResults": map[string]interface{}{
					"collection_group_results": map[string]interface{}{
						"type":     "results",
						"blockIds": res.BlockIDs,
						"hasMore":  res.HasMore,
					},
				},
			},
			"recordMap": res.RecordMap,
		}, nil

	case "saveTransactions":
		var body txn.Request
		if err := decode(r, &body); err != nil {
			return nil, err
		}
		return map[string]interface{}{}, f.SaveTransactions(ctx, body.Transactions...)

	case "getBacklinksForBlock":
		var body struct {
			BlockID string `json:"blockId"`
		}
		if err := decode(r, &body); err != nil {
			return nil, err
		}
		entries, m, err := f.Backlinks(ctx, body.BlockID)
		return map[string]interface{}{"backlinks": entries, "recordMap": m}, err

	case "loadUserContent":
		m, err := f.LoadUserContent(ctx)
		return map[string]interface{}{"recordMap": m}, err
	}
	return nil, notion.ErrNotFound
}

func decode(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Join(errBadRequest, err)
	}
	return nil
}

func writeError(w http.ResponseWriter, status int, name, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"name": name, "message": message})
}
