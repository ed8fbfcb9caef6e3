package official

import (
	"encoding/json"
	"fmt"
	"strings"
)

type richText struct {
	PlainText string `json:"plain_text"`
}

type option struct {
	Name string `json:"name"`
}

type reference struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Date is a simplified date or date range.
type Date struct {
	Start string `json:"start"`
	End   string `json:"end,omitempty"`
}

type rawProperty struct {
	Type           string          `json:"type"`
	Title          []richText      `json:"title"`
	RichText       []richText      `json:"rich_text"`
	Number         *float64        `json:"number"`
	Select         *option         `json:"select"`
	Status         *option         `json:"status"`
	MultiSelect    []option        `json:"multi_select"`
	Date           *Date           `json:"date"`
	Checkbox       bool            `json:"checkbox"`
	URL            *string         `json:"url"`
	Email          *string         `json:"email"`
	PhoneNumber    *string         `json:"phone_number"`
	Relation       []reference     `json:"relation"`
	People         []reference     `json:"people"`
	CreatedTime    string          `json:"created_time"`
	LastEditedTime string          `json:"last_edited_time"`
	Formula        json.RawMessage `json:"formula"`
	Rollup         json.RawMessage `json:"rollup"`
	UniqueID       *struct {
		Prefix *string `json:"prefix"`
		Number int     `json:"number"`
	} `json:"unique_id"`
}

// simplifyProperties maps each property name to a plain value and returns
// the page title alongside.
func simplifyProperties(raw map[string]json.RawMessage) (map[string]interface{}, string, error) {
	out := make(map[string]interface{}, len(raw))
	var title string
	for name, data := range raw {
		var p rawProperty
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, "", fmt.Errorf("property %q: %w", name, err)
		}
		v := p.value(data)
		if p.Type == "title" {
			title, _ = v.(string)
		}
		out[name] = v
	}
	return out, title, nil
}

func (p rawProperty) value(data json.RawMessage) interface{} {
	switch p.Type {
	case "title":
		return plain(p.Title)
	case "rich_text":
		return plain(p.RichText)
	case "number":
		if p.Number == nil {
			return nil
		}
		return *p.Number
	case "select":
		return optionName(p.Select)
	case "status":
		return optionName(p.Status)
	case "multi_select":
		names := make([]string, 0, len(p.MultiSelect))
		for _, o := range p.MultiSelect {
			names = append(names, o.Name)
		}
		return names
	case "date":
		if p.Date == nil {
			return nil
		}
		return *p.Date
	case "checkbox":
		return p.Checkbox
	case "url":
		return deref(p.URL)
	case "email":
		return deref(p.Email)
	case "phone_number":
		return deref(p.PhoneNumber)
	case "relation":
		ids := make([]string, 0, len(p.Relation))
		for _, r := range p.Relation {
			ids = append(ids, r.ID)
		}
		return ids
	case "people":
		people := make([]string, 0, len(p.People))
		for _, r := range p.People {
			if r.Name != "" {
				people = append(people, r.Name)
			} else {
				people = append(people, r.ID)
			}
		}
		return people
	case "created_time":
		return p.CreatedTime
	case "last_edited_time":
		return p.LastEditedTime
	case "formula":
		return p.Formula
	case "rollup":
		return p.Rollup
	case "unique_id":
		if p.UniqueID == nil {
			return nil
		}
		if p.UniqueID.Prefix != nil && *p.UniqueID.Prefix != "" {
			return fmt.Sprintf("%s-%d", *p.UniqueID.Prefix, p.UniqueID.Number)
		}
		return p.UniqueID.Number
	}
	return data
}

func plain(parts []richText) string {
	var b strings.Builder
	for _, r := range parts {
		b.WriteString(r.PlainText)
	}
	return b.String()
}

func optionName(o *option) interface{} {
	if o == nil {
		return nil
	}
	return o.Name
}

func deref(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}
