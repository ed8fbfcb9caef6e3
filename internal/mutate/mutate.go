// Package mutate orchestrates writes: it reads whatever context an edit
// needs (space, schema, parent), builds operations with txn and submits them
// in a single transaction.
package mutate

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aidanlsb/ntn/internal/fetch"
	"github.com/aidanlsb/ntn/internal/recordmap"
	"github.com/aidanlsb/ntn/internal/txn"
)

// ErrNoUser is returned when the acting user cannot be determined.
var ErrNoUser = errors.New("cannot determine the signed-in user")

// API is the subset of the internal API that writes need.
type API interface {
	fetch.API
	SaveTransactions(ctx context.Context, txs ...txn.Transaction) error
	LoadUserContent(ctx context.Context) (recordmap.RecordMap, error)
}

// Options configures a Service.
type Options struct {
	// UserID is recorded as the author of edits. When empty it is looked up
	// once from the session.
	UserID string
	Now    func() time.Time
	NewID  func() string
}

// Service runs write operations against an API.
type Service struct {
	api    API
	reader *fetch.Service
	opts   Options
}

// New creates a Service.
func New(api API, opts Options) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{api: api, reader: fetch.New(api), opts: opts}
}

func (s *Service) userID(ctx context.Context) (string, error) {
	if s.opts.UserID != "" {
		return s.opts.UserID, nil
	}
	m, err := s.api.LoadUserContent(ctx)
	if err != nil {
		return "", fmt.Errorf("load user: %w", err)
	}
	ids := m.IDs(recordmap.TableUser)
	if len(ids) == 0 {
		return "", ErrNoUser
	}
	sort.Strings(ids)
	s.opts.UserID = ids[0]
	return ids[0], nil
}

func (s *Service) builder(ctx context.Context, spaceID string) (*txn.Builder, error) {
	userID, err := s.userID(ctx)
	if err != nil {
		return nil, err
	}
	return &txn.Builder{SpaceID: spaceID, UserID: userID, Now: s.opts.Now, NewID: s.opts.NewID}, nil
}

func (s *Service) submit(ctx context.Context, b *txn.Builder, ops []txn.Operation) error {
	if len(ops) == 0 {
		return nil
	}
	return s.api.SaveTransactions(ctx, b.Transaction(ops...))
}

// CreatePage creates a page titled title under parentID, with optional
// content.
func (s *Service) CreatePage(ctx context.Context, parentID, title string, children []txn.BlockSpec) (string, error) {
	if strings.TrimSpace(title) == "" {
		return "", fmt.Errorf("page title is required")
	}
	parent, _, err := s.reader.Block(ctx, parentID)
	if err != nil {
		return "", err
	}
	b, err := s.builder(ctx, parent.SpaceID)
	if err != nil {
		return "", err
	}
	ops, id := b.Page(parent.ID, title, children)
	if err := s.submit(ctx, b, ops); err != nil {
		return "", err
	}
	return id, nil
}

// Append adds blocks to the end of a page or block.
func (s *Service) Append(ctx context.Context, parentID string, specs []txn.BlockSpec) ([]string, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("nothing to append")
	}
	parent, _, err := s.reader.Block(ctx, parentID)
	if err != nil {
		return nil, err
	}
	b, err := s.builder(ctx, parent.SpaceID)
	if err != nil {
		return nil, err
	}
	ops, ids := b.Append(parent.ID, specs)
	if err := s.submit(ctx, b, ops); err != nil {
		return nil, err
	}
	return ids, nil
}

// DeleteBlock soft-deletes a block and unlinks it from its parent.
func (s *Service) DeleteBlock(ctx context.Context, id string) error {
	block, _, err := s.reader.Block(ctx, id)
	if err != nil {
		return err
	}
	b, err := s.builder(ctx, block.SpaceID)
	if err != nil {
		return err
	}
	return s.submit(ctx, b, b.Delete(block.ID, block.ParentID, block.ParentTable))
}

// Check sets the checked state of a to_do block.
func (s *Service) Check(ctx context.Context, id string, checked bool) error {
	block, _, err := s.reader.Block(ctx, id)
	if err != nil {
		return err
	}
	if block.Type != recordmap.BlockToDo {
		return fmt.Errorf("block %s is a %s, not a %s", id, block.Type, recordmap.BlockToDo)
	}
	b, err := s.builder(ctx, block.SpaceID)
	if err != nil {
		return err
	}
	return s.submit(ctx, b, b.Check(block.ID, checked))
}
