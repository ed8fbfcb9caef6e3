package property

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/aidanlsb/ntn/internal/recordmap"
	"github.com/aidanlsb/ntn/internal/richtext"
	"github.com/aidanlsb/ntn/internal/schema"
)

// Extract decodes one raw property payload according to its schema type.
// It is total: every (payload, type) pair yields exactly one Value, and
// unknown types fall back to plain text tagged with the original type.
func Extract(raw richtext.Text, typ, prefix string) Value {
	switch typ {
	case schema.TypeTitle, schema.TypeText:
		return Value{Type: typ, Kind: KindText, Text: raw.Plain(), Mentions: mentions(raw)}

	case schema.TypeNumber:
		return Value{Type: typ, Kind: KindNumber, Number: parseNumber(raw.Plain())}

	case schema.TypeSelect:
		return Value{Type: typ, Kind: KindSelect, Text: raw.Plain()}

	case schema.TypeMultiSelect:
		return Value{Type: typ, Kind: KindMultiSelect, Strings: splitOptions(raw.Plain())}

	case schema.TypeDate:
		v := Value{Type: typ, Kind: KindDate}
		if arg, ok := raw.FirstDate(); ok {
			v.Date = &Date{Start: arg.StartDate, End: arg.EndDate}
		}
		return v

	case schema.TypeRelation:
		return Value{Type: typ, Kind: KindRefs, IDs: raw.IDs(richtext.TagPage)}

	case schema.TypePerson:
		return Value{Type: typ, Kind: KindRefs, IDs: raw.IDs(richtext.TagUser)}

	case schema.TypeRollup, schema.TypeFormula:
		v := Value{Type: typ, Kind: KindOpaque}
		if len(raw) > 0 {
			v.Raw, _ = json.Marshal(raw)
		}
		return v

	case schema.TypeCheckbox:
		return Value{Type: typ, Kind: KindCheckbox, Bool: raw.Plain() == "Yes"}

	case schema.TypeURL, schema.TypeEmail, schema.TypePhoneNumber, schema.TypeStatus:
		return Value{Type: typ, Kind: KindString, Text: raw.Plain()}

	case schema.TypeAutoIncrementID:
		return Value{Type: typ, Kind: KindAutoIncrement, Number: parseNumber(raw.Plain()), Prefix: prefix}

	default:
		return Value{Type: typ, Kind: KindGeneric, Text: raw.Plain()}
	}
}

// ExtractRow decodes every live schema property of a row block. Properties
// missing from the row decode from an empty payload.
func ExtractRow(block *recordmap.Block, raw schema.Raw) Row {
	row := Row{ID: block.ID, Properties: make(map[string]Value)}
	for _, e := range raw.Live() {
		p := e.Property
		row.Properties[p.Name] = Extract(block.Properties[e.ID], p.Type, p.Prefix)
	}
	return row
}

func parseNumber(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return nil
	}
	return &n
}

// splitOptions splits the comma-joined wire form of a multi_select.
func splitOptions(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func mentions(raw richtext.Text) []Mention {
	found := raw.Mentions()
	if len(found) == 0 {
		return nil
	}
	out := make([]Mention, len(found))
	for i, m := range found {
		out[i] = Mention{ID: m.ID, Kind: m.Kind}
	}
	return out
}
