package property

import (
	"strconv"
	"strings"
)

// Display renders the value as a single line of text for tables.
func (v Value) Display() string {
	switch v.Kind {
	case KindText, KindSelect, KindString, KindGeneric:
		return v.Text
	case KindNumber:
		if v.Number == nil {
			return ""
		}
		return strconv.FormatFloat(*v.Number, 'f', -1, 64)
	case KindAutoIncrement:
		if v.Number == nil {
			return ""
		}
		n := strconv.FormatFloat(*v.Number, 'f', -1, 64)
		if v.Prefix != "" {
			return v.Prefix + "-" + n
		}
		return n
	case KindMultiSelect:
		return strings.Join(v.Strings, ", ")
	case KindDate:
		if v.Date == nil {
			return ""
		}
		if v.Date.End != "" {
			return v.Date.Start + " → " + v.Date.End
		}
		return v.Date.Start
	case KindRefs:
		if !v.Resolved {
			return strings.Join(v.IDs, ", ")
		}
		names := make([]string, 0, len(v.Refs))
		for _, r := range v.Refs {
			switch {
			case r.Title != "":
				names = append(names, r.Title)
			case r.Name != "":
				names = append(names, r.Name)
			default:
				names = append(names, r.ID)
			}
		}
		return strings.Join(names, ", ")
	case KindCheckbox:
		if v.Bool {
			return "✓"
		}
		return ""
	case KindOpaque:
		return string(v.Raw)
	}
	return v.Text
}
