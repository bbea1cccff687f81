package domain

// PropertyKind is the type of a destination schema property. Values match
// the destination service's wire names exactly, since they round-trip
// through its schema endpoint unmodified.
type PropertyKind string

// Property kinds supported by the destination schema.
const (
	KindTitle       PropertyKind = "title"
	KindRichText    PropertyKind = "rich_text"
	KindMultiSelect PropertyKind = "multi_select"
	KindSelect      PropertyKind = "select"
	KindNumber      PropertyKind = "number"
	KindDate        PropertyKind = "date"
	KindURL         PropertyKind = "url"
	KindFiles       PropertyKind = "files"
	KindCheckbox    PropertyKind = "checkbox"
)

// TargetProperty is a named, typed slot in the destination schema. It is
// fetched fresh per reconciliation session and read-only to the engine.
type TargetProperty struct {
	ID   string       `json:"id,omitempty"`
	Name string       `json:"name"`
	Kind PropertyKind `json:"kind"`
}

// FieldMapping assigns a semantic field to a destination property.
// Confidence is derived by the mapper; a user edit overrides it
// unconditionally and is flagged so re-suggestion leaves it alone.
type FieldMapping struct {
	Field        SemanticField `json:"field"`
	PropertyName string        `json:"property_name"`
	Confidence   int           `json:"confidence"`
	UserEdited   bool          `json:"user_edited,omitempty"`
}

// MappingSet is the per-session collection of field mappings.
type MappingSet []FieldMapping

// ByField returns the mapping for a semantic field, or false.
func (m MappingSet) ByField(field SemanticField) (FieldMapping, bool) {
	for _, fm := range m {
		if fm.Field == field {
			return fm, true
		}
	}
	return FieldMapping{}, false
}

// ByProperty returns the mapping claiming a property name, or false.
func (m MappingSet) ByProperty(name string) (FieldMapping, bool) {
	for _, fm := range m {
		if fm.PropertyName == name {
			return fm, true
		}
	}
	return FieldMapping{}, false
}

// Set replaces or adds the mapping for a field, marking it user-edited.
// Any other mapping claiming the same property is removed so the
// one-field-per-property invariant holds through edits.
func (m MappingSet) Set(field SemanticField, propertyName string) MappingSet {
	out := make(MappingSet, 0, len(m)+1)
	for _, fm := range m {
		if fm.Field == field || fm.PropertyName == propertyName {
			continue
		}
		out = append(out, fm)
	}
	return append(out, FieldMapping{
		Field:        field,
		PropertyName: propertyName,
		Confidence:   100,
		UserEdited:   true,
	})
}

// Remove drops the mapping for a field, if present.
func (m MappingSet) Remove(field SemanticField) MappingSet {
	out := make(MappingSet, 0, len(m))
	for _, fm := range m {
		if fm.Field != field {
			out = append(out, fm)
		}
	}
	return out
}
