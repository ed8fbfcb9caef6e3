package batch

import (
	"context"
	"strings"

	"github.com/aidanlsb/ntn/internal/mdblocks"
	"github.com/aidanlsb/ntn/internal/mutate"
	"github.com/aidanlsb/ntn/internal/notionid"
	"github.com/aidanlsb/ntn/internal/recordmap"
	"github.com/aidanlsb/ntn/internal/txn"
)

// Handlers returns the registry of write operations backed by svc.
func Handlers(svc *mutate.Service) Registry {
	return Registry{
		"page.create": func(ctx context.Context, a Args) (string, error) {
			parent, err := id(a, "parent")
			if err != nil {
				return "", err
			}
			title, err := a.String("title")
			if err != nil {
				return "", err
			}
			specs, err := content(a)
			if err != nil {
				return "", err
			}
			return svc.CreatePage(ctx, parent, title, specs)
		},
		"page.append": func(ctx context.Context, a Args) (string, error) {
			parent, err := id(a, "parent")
			if err != nil {
				return "", err
			}
			specs, err := content(a)
			if err != nil {
				return "", err
			}
			ids, err := svc.Append(ctx, parent, specs)
			if err != nil {
				return "", err
			}
			return strings.Join(ids, ","), nil
		},
		"block.delete": func(ctx context.Context, a Args) (string, error) {
			block, err := id(a, "id")
			if err != nil {
				return "", err
			}
			return block, svc.DeleteBlock(ctx, block)
		},
		"block.check": func(ctx context.Context, a Args) (string, error) {
			block, err := id(a, "id")
			if err != nil {
				return "", err
			}
			checked := true
			if _, ok := a["checked"]; ok {
				if checked, err = a.Bool("checked"); err != nil {
					return "", err
				}
			}
			return block, svc.Check(ctx, block, checked)
		},
		"db.add": func(ctx context.Context, a Args) (string, error) {
			db, err := id(a, "database")
			if err != nil {
				return "", err
			}
			values, err := assignments(a)
			if err != nil {
				return "", err
			}
			return svc.AddRow(ctx, db, values)
		},
		"db.set": func(ctx context.Context, a Args) (string, error) {
			row, err := id(a, "row")
			if err != nil {
				return "", err
			}
			values, err := assignments(a)
			if err != nil {
				return "", err
			}
			return row, svc.SetRow(ctx, row, values)
		},
		"db.patch-property": func(ctx context.Context, a Args) (string, error) {
			db, err := id(a, "database")
			if err != nil {
				return "", err
			}
			prop, err := a.String("property")
			if err != nil {
				return "", err
			}
			patch, err := schemaPatch(a)
			if err != nil {
				return "", err
			}
			return prop, svc.PatchProperty(ctx, db, prop, patch)
		},
		"comment.add": func(ctx context.Context, a Args) (string, error) {
			page, err := id(a, "page")
			if err != nil {
				return "", err
			}
			text, err := a.String("text")
			if err != nil {
				return "", err
			}
			return svc.Comment(ctx, page, text)
		},
	}
}

func id(a Args, key string) (string, error) {
	raw, err := a.String(key)
	if err != nil {
		return "", err
	}
	return notionid.Normalize(raw)
}

// content builds block specs from the "markdown", "text" and "todos"
// arguments, in that order.
func content(a Args) ([]txn.BlockSpec, error) {
	var specs []txn.BlockSpec
	if md := a.OptionalString("markdown"); strings.TrimSpace(md) != "" {
		specs = append(specs, mdblocks.Parse([]byte(md))...)
	}
	lines, err := a.Strings("text")
	if err != nil {
		return nil, err
	}
	for _, line := range lines {
		specs = append(specs, txn.Text(recordmap.BlockText, line))
	}
	todos, err := a.Strings("todos")
	if err != nil {
		return nil, err
	}
	for _, todo := range todos {
		specs = append(specs, txn.Todo(todo))
	}
	return specs, nil
}

func assignments(a Args) ([]mutate.Assignment, error) {
	pairs, err := a.Map("values")
	if err != nil {
		return nil, err
	}
	return mutate.ParseAssignments(pairs)
}

func schemaPatch(a Args) (txn.Patch, error) {
	var p txn.Patch
	pairs, err := a.Map("set")
	if err != nil {
		return p, err
	}
	for _, pair := range pairs {
		k, v, _ := strings.Cut(pair, "=")
		if p.Set == nil {
			p.Set = map[string]string{}
		}
		p.Set[k] = v
	}
	if p.Unset, err = a.Strings("unset"); err != nil {
		return p, err
	}
	if p.Remove, err = a.Bool("remove"); err != nil {
		return p, err
	}
	return p, nil
}
