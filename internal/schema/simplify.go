package schema

// Descriptor is the minimal, name-keyed description of a live property.
type Descriptor struct {
	Type               string   `json:"type"`
	Options            []string `json:"options,omitempty"`
	CollectionID       string   `json:"collection_id,omitempty"`
	RelationProperty   string   `json:"relation_property,omitempty"`
	TargetProperty     string   `json:"target_property,omitempty"`
	TargetPropertyType string   `json:"target_property_type,omitempty"`
	RollupType         string   `json:"rollup_type,omitempty"`
	Prefix             string   `json:"prefix,omitempty"`
}

// Simplified maps display names to descriptors.
type Simplified map[string]Descriptor

// Simplify builds the name-keyed schema from live properties only. When two
// live properties share a display name the later one in document order
// wins; Validate reports every such collision.
func Simplify(raw Raw) Simplified {
	liveNames := make(map[string]string)
	for _, e := range raw.Live() {
		liveNames[e.ID] = e.Property.Name
	}

	out := make(Simplified)
	for _, e := range raw.Live() {
		out[e.Property.Name] = describe(e.Property, liveNames)
	}
	return out
}

func describe(p Property, liveNames map[string]string) Descriptor {
	d := Descriptor{Type: p.Type}

	switch p.Type {
	case TypeSelect, TypeMultiSelect, TypeStatus:
		for _, opt := range p.Options {
			d.Options = append(d.Options, opt.Value)
		}
	case TypeRelation:
		d.CollectionID = p.CollectionID
	case TypeRollup:
		// Only a live relation property has a name worth showing.
		d.RelationProperty = liveNames[p.RelationProperty]
		d.TargetProperty = p.TargetProperty
		d.TargetPropertyType = p.TargetPropertyType
		d.RollupType = p.RollupType
	case TypeAutoIncrementID:
		d.Prefix = p.Prefix
	}

	return d
}
