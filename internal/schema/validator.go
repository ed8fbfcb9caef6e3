package schema

import (
	"fmt"
	"strings"

	"github.com/aidanlsb/ntn/internal/shellquote"
)

// Hint describes one structural problem with a schema property. Hints are
// advisory: nothing in the decode path stops because of them.
type Hint struct {
	PropertyID string `json:"property_id"`
	Property   string `json:"property"`
	Type       string `json:"type"`
	Problem    string `json:"problem"`
	Fix        string `json:"fix"`
}

func (h Hint) String() string {
	return fmt.Sprintf("Property '%s' (%s, id %s): %s. Try: %s", h.Property, h.Type, h.PropertyID, h.Problem, h.Fix)
}

// Strings renders every hint.
func Strings(hints []Hint) []string {
	out := make([]string, len(hints))
	for i, h := range hints {
		out[i] = h.String()
	}
	return out
}

// Validate inspects a raw schema and returns one hint per defect. Unlike
// Simplify it also looks at dead properties. collectionID is only used to
// render the suggested commands.
func Validate(raw Raw, collectionID string) []Hint {
	if collectionID == "" {
		collectionID = "<collection-id>"
	}

	var hints []Hint
	add := func(e Entry, problem, fix string) {
		hints = append(hints, Hint{
			PropertyID: e.ID,
			Property:   e.Property.Name,
			Type:       e.Property.Type,
			Problem:    problem,
			Fix:        fix,
		})
	}
	patch := func(e Entry, args string) string {
		return fmt.Sprintf("ntn db patch-property %s %s %s", collectionID, shellquote.QuoteIfNeeded(e.ID), args)
	}

	for _, e := range raw {
		p := e.Property

		if !p.IsAlive() {
			add(e, "property is deleted (alive: false) but still present in the schema, so it is hidden from output",
				patch(e, "--remove"))
			continue
		}

		switch p.Type {
		case TypeRelation:
			if p.CollectionID == "" {
				add(e, "relation has no collection_id, so its target collection is unknown",
					patch(e, "--set collection_id=<target-collection-id>"))
			}

		case TypeRollup:
			hints = append(hints, validateRollup(raw, e, patch)...)
		}
	}

	hints = append(hints, duplicateNames(raw, patch)...)
	return hints
}

func validateRollup(raw Raw, e Entry, patch func(Entry, string) string) []Hint {
	var hints []Hint
	add := func(problem, fix string) {
		hints = append(hints, Hint{
			PropertyID: e.ID,
			Property:   e.Property.Name,
			Type:       e.Property.Type,
			Problem:    problem,
			Fix:        fix,
		})
	}

	p := e.Property
	candidates := relationIDs(raw)
	relationFix := patch(e, "--set "+relationArg(candidates))
	addRelation := func(problem string) {
		if len(candidates) > 1 {
			problem += fmt.Sprintf(" (other relations: %s)", strings.Join(candidates[1:], ", "))
		}
		add(problem, relationFix)
	}

	if p.RelationProperty == "" {
		addRelation("rollup has no relation_property")
	} else if target, ok := raw.Lookup(p.RelationProperty); !ok {
		addRelation(fmt.Sprintf("rollup relation_property '%s' does not exist in the schema", p.RelationProperty))
	} else if !target.IsAlive() {
		addRelation(fmt.Sprintf("rollup relation_property '%s' (%s) is deleted", p.RelationProperty, target.Name))
	} else if target.Type != TypeRelation {
		addRelation(fmt.Sprintf("rollup relation_property '%s' (%s) is a %s property, not a relation", p.RelationProperty, target.Name, target.Type))
	}

	if p.RollupType == "" {
		add("rollup is missing rollup_type", patch(e, "--set rollup_type=relation"))
	}

	if p.HasAggregation() {
		add("rollup carries an aggregation field, which the service rejects", patch(e, "--unset aggregation"))
	}

	return hints
}

// relationIDs returns the ids of live relation properties in schema order.
func relationIDs(raw Raw) []string {
	var ids []string
	for _, e := range raw.Live() {
		if e.Property.Type == TypeRelation {
			ids = append(ids, e.ID)
		}
	}
	return ids
}

// relationArg is the --set value pointing a rollup at the first candidate.
func relationArg(candidates []string) string {
	if len(candidates) == 0 {
		return "relation_property=<relation-property-id>"
	}
	return shellquote.QuoteIfNeeded("relation_property=" + candidates[0])
}

// duplicateNames reports every live property shadowed by a later live
// property with the same display name.
func duplicateNames(raw Raw, patch func(Entry, string) string) []Hint {
	owner := make(map[string]string)
	for _, e := range raw.Live() {
		owner[e.Property.Name] = e.ID
	}

	var hints []Hint
	for _, e := range raw.Live() {
		winner := owner[e.Property.Name]
		if winner == e.ID {
			continue
		}
		hints = append(hints, Hint{
			PropertyID: e.ID,
			Property:   e.Property.Name,
			Type:       e.Property.Type,
			Problem:    fmt.Sprintf("display name is shared with property %s, which hides this one from output", winner),
			Fix:        patch(e, "--set "+shellquote.QuoteIfNeeded("name="+e.Property.Name+" ("+e.ID+")")),
		})
	}
	return hints
}
