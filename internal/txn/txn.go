// Package txn builds the record operations submitted through
// saveTransactions. Builders are pure: they return operations and never talk
// to the network.
package txn

import (
	"time"

	"github.com/aidanlsb/ntn/internal/notionid"
	"github.com/aidanlsb/ntn/internal/recordmap"
)

// Command is the kind of mutation an operation applies.
type Command string

const (
	CommandSet        Command = "set"
	CommandUpdate     Command = "update"
	CommandListAfter  Command = "listAfter"
	CommandListRemove Command = "listRemove"
)

// Pointer addresses one record.
type Pointer struct {
	Table   string `json:"table"`
	ID      string `json:"id"`
	SpaceID string `json:"spaceId,omitempty"`
}

// Operation is a single mutation of a record at path.
type Operation struct {
	Pointer Pointer     `json:"pointer"`
	Command Command     `json:"command"`
	Path    []string    `json:"path"`
	Args    interface{} `json:"args"`
}

// Transaction groups operations that are applied together within a space.
type Transaction struct {
	ID         string      `json:"id"`
	SpaceID    string      `json:"spaceId"`
	Operations []Operation `json:"operations"`
}

// Request is the saveTransactions request body.
type Request struct {
	RequestID    string        `json:"requestId"`
	Transactions []Transaction `json:"transactions"`
}

// NewRequest wraps transactions in a request with a fresh request id.
func NewRequest(txs ...Transaction) Request {
	return Request{RequestID: notionid.New(), Transactions: txs}
}

// Builder produces operations for one space on behalf of one user.
type Builder struct {
	SpaceID string
	UserID  string

	// Now defaults to time.Now.
	Now func() time.Time
	// NewID defaults to notionid.New.
	NewID func() string
}

// Transaction wraps ops in a transaction for the builder's space.
func (b *Builder) Transaction(ops ...Operation) Transaction {
	return Transaction{ID: b.id(), SpaceID: b.SpaceID, Operations: ops}
}

func (b *Builder) now() int64 {
	if b.Now != nil {
		return b.Now().UnixMilli()
	}
	return time.Now().UnixMilli()
}

func (b *Builder) id() string {
	if b.NewID != nil {
		return b.NewID()
	}
	return notionid.New()
}

func (b *Builder) pointer(table, id string) Pointer {
	return Pointer{Table: table, ID: id, SpaceID: b.SpaceID}
}

func (b *Builder) set(table, id string, path []string, args interface{}) Operation {
	return Operation{Pointer: b.pointer(table, id), Command: CommandSet, Path: nonNilPath(path), Args: args}
}

func (b *Builder) update(table, id string, path []string, args interface{}) Operation {
	return Operation{Pointer: b.pointer(table, id), Command: CommandUpdate, Path: nonNilPath(path), Args: args}
}

// touch records an edit on a block.
func (b *Builder) touch(blockID string) Operation {
	return b.update(recordmap.TableBlock, blockID, nil, map[string]interface{}{
		"last_edited_time":     b.now(),
		"last_edited_by_id":    b.UserID,
		"last_edited_by_table": recordmap.TableUser,
	})
}

func nonNilPath(path []string) []string {
	if path == nil {
		return []string{}
	}
	return path
}
