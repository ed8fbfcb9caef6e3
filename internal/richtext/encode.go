package richtext

import "encoding/json"

// FromString builds an undecorated text value. The empty string encodes as an
// empty list.
func FromString(s string) Text {
	if s == "" {
		return Text{}
	}
	return Text{{Text: s}}
}

// RelationRefs encodes each page id as its own mention segment.
func RelationRefs(ids []string) Text {
	return refs(TagPage, ids)
}

// UserRefs encodes each user id as its own mention segment.
func UserRefs(ids []string) Text {
	return refs(TagUser, ids)
}

func refs(tag string, ids []string) Text {
	out := make(Text, 0, len(ids))
	for _, id := range ids {
		out = append(out, Segment{
			Text:        Marker,
			Decorations: []Decoration{{Tag: tag, Arg: stringArg(id)}},
		})
	}
	return out
}

// DateRange encodes a date mention. An empty end produces a single date.
func DateRange(start, end string) Text {
	arg := DateArg{Type: "date", StartDate: start}
	if end != "" {
		arg.Type = "daterange"
		arg.EndDate = end
	}
	raw, _ := json.Marshal(arg)
	return Text{{
		Text:        Marker,
		Decorations: []Decoration{{Tag: TagDate, Arg: raw}},
	}}
}

// Checkbox encodes a boolean with the service's "Yes"/"No" convention.
func Checkbox(v bool) Text {
	if v {
		return FromString("Yes")
	}
	return FromString("No")
}

func stringArg(s string) json.RawMessage {
	raw, _ := json.Marshal(s)
	return raw
}

// Link returns a link decoration pointing at url.
func Link(url string) Decoration {
	return Decoration{Tag: TagLink, Arg: stringArg(url)}
}
