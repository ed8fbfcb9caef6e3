package mutate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aidanlsb/ntn/internal/fetch"
	"github.com/aidanlsb/ntn/internal/notion"
	"github.com/aidanlsb/ntn/internal/property"
	"github.com/aidanlsb/ntn/internal/recordmap"
	"github.com/aidanlsb/ntn/internal/richtext"
	"github.com/aidanlsb/ntn/internal/schema"
	"github.com/aidanlsb/ntn/internal/txn"
)

// ErrUnknownProperty is returned when an assignment names no live property.
var ErrUnknownProperty = errors.New("unknown property")

// Assignment sets the property called Name (display name or property id)
// to Value, given in the same text form the CLI accepts.
type Assignment struct {
	Name  string
	Value string
}

// ParseAssignments parses Name=value arguments.
func ParseAssignments(args []string) ([]Assignment, error) {
	out := make([]Assignment, 0, len(args))
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid assignment %q: expected Name=value", arg)
		}
		out = append(out, Assignment{Name: name, Value: value})
	}
	return out, nil
}

type encoded struct {
	id   string
	text richtext.Text
}

// encode resolves each assignment to a property id and encodes its value
// for the property's type. Order follows values.
func (s *Service) encode(raw schema.Raw, values []Assignment) ([]encoded, error) {
	out := make([]encoded, 0, len(values))
	for _, a := range values {
		id, prop, ok := raw.IDForName(a.Name)
		if !ok {
			if p, found := raw.Lookup(a.Name); found && p.IsAlive() {
				id, prop, ok = a.Name, p, true
			}
		}
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownProperty, a.Name)
		}
		text, err := property.Encode(prop.Type, a.Value, s.opts.Now())
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", a.Name, err)
		}
		out = append(out, encoded{id: id, text: text})
	}
	return out, nil
}

// AddRow creates a row in a database.
func (s *Service) AddRow(ctx context.Context, databaseID string, values []Assignment) (string, error) {
	db, err := s.reader.Database(ctx, databaseID)
	if err != nil {
		return "", err
	}
	assigned, err := s.encode(db.Collection.Schema, values)
	if err != nil {
		return "", err
	}
	props := make(map[string]richtext.Text, len(assigned))
	for _, v := range assigned {
		props[v.id] = v.text
	}
	b, err := s.builder(ctx, db.SpaceID())
	if err != nil {
		return "", err
	}
	ops, id := b.Row(db.Collection.ID, props)
	if err := s.submit(ctx, b, ops); err != nil {
		return "", err
	}
	return id, nil
}

// SetRow updates properties of an existing row.
func (s *Service) SetRow(ctx context.Context, rowID string, values []Assignment) error {
	if len(values) == 0 {
		return fmt.Errorf("nothing to set")
	}
	row, _, err := s.reader.Block(ctx, rowID)
	if err != nil {
		return err
	}
	if row.ParentTable != recordmap.TableCollection {
		return fmt.Errorf("block %s is not a database row: %w", rowID, fetch.ErrNotDatabase)
	}
	db, err := s.reader.Database(ctx, row.ParentID)
	if err != nil {
		return err
	}
	props, err := s.encode(db.Collection.Schema, values)
	if err != nil {
		return err
	}
	b, err := s.builder(ctx, row.SpaceID)
	if err != nil {
		return err
	}

	var ops []txn.Operation
	for _, p := range props {
		ops = append(ops, b.SetProperty(row.ID, p.id, p.text)...)
	}
	return s.submit(ctx, b, ops)
}

// PatchProperty edits one property of a database schema. It is the remedy
// suggested by schema hints.
func (s *Service) PatchProperty(ctx context.Context, databaseID, propertyID string, patch txn.Patch) error {
	if patch.Empty() {
		return fmt.Errorf("nothing to patch: use --set, --unset or --remove")
	}
	db, err := s.reader.Database(ctx, databaseID)
	if err != nil {
		return err
	}
	fields, ok := db.RecordMap.Record(recordmap.TableCollection, db.Collection.ID)
	if !ok {
		return fmt.Errorf("collection %s: %w", db.Collection.ID, notion.ErrNotFound)
	}
	var record struct {
		Schema map[string]json.RawMessage `json:"schema"`
	}
	if err := json.Unmarshal(fields, &record); err != nil {
		return fmt.Errorf("decode schema: %w", err)
	}

	patched, err := txn.PatchSchema(record.Schema, propertyID, patch)
	if err != nil {
		return err
	}
	b, err := s.builder(ctx, db.SpaceID())
	if err != nil {
		return err
	}
	return s.submit(ctx, b, b.SetSchema(db.Collection.ID, patched))
}
