package dynaschema

// State discriminates an Entity's position in the CRUD lifecycle.
type State int

const (
	// Unchanged marks an entity exactly as loaded from a data bundle.
	Unchanged State = iota
	// Added marks an entity created by an explicit createEntity request.
	Added
	// Modified marks an Unchanged entity that has had a field set.
	Modified
	// Deleted marks an entity removed by deleteEntity, directly or via
	// cascade. Deleted entities remain addressable by id.
	Deleted
)

func (s State) String() string {
	switch s {
	case Unchanged:
		return "Unchanged"
	case Added:
		return "Added"
	case Modified:
		return "Modified"
	case Deleted:
		return "Deleted"
	default:
		return "Unchanged"
	}
}

// Entity is a named instance of an EntitySchema: one FieldValue per
// declared field, plus identity, an optional parent link, and lifecycle
// state. The fields key-set always equals the schema's field key-set.
type Entity struct {
	ID       string
	ParentID string
	Schema   *EntitySchema

	order  []string
	fields map[string]FieldValue

	State State
}

// NewEntity constructs an entity from schema, eagerly instantiating one
// FieldValue per declared field via the Value Factory.
func NewEntity(id string, schema *EntitySchema) *Entity {
	fields := schema.Fields()
	order := make([]string, len(fields))
	values := make(map[string]FieldValue, len(fields))
	for i, f := range fields {
		order[i] = f.Name()
		values[f.Name()] = NewFieldValue(f)
	}
	return &Entity{ID: id, Schema: schema, order: order, fields: values}
}

// Field returns the named field value.
func (e *Entity) Field(name string) (FieldValue, bool) {
	v, ok := e.fields[name]
	return v, ok
}

// Fields returns the entity's declared field names in declaration order.
func (e *Entity) Fields() []string { return e.order }

// SetField routes raw into the named field's SetFromString. Lifecycle
// state transitions are the Engine's responsibility, not the Entity's.
func (e *Entity) SetField(name, raw string) error {
	v, ok := e.fields[name]
	if !ok {
		return &UnknownFieldError{Field: name}
	}
	return v.SetFromString(raw)
}

// Validate iterates fields in declaration order, failing fast on the
// first missing-required or variant-specific violation.
func (e *Entity) Validate(resolver ReferenceResolver) error {
	return validateFieldMap(e.order, e.fields, resolver)
}

// Dict renders every field's ToString(), keyed by field name.
func (e *Entity) Dict() map[string]string {
	out := make(map[string]string, len(e.order))
	for _, name := range e.order {
		out[name] = e.fields[name].ToString()
	}
	return out
}

// ToJSON renders the entity's canonical wire form:
// {id, schema, parentId (or null), <field>: <value-json>, …, state}.
func (e *Entity) ToJSON() map[string]interface{} {
	m := make(map[string]interface{}, len(e.order)+4)
	m["id"] = e.ID
	m["schema"] = e.Schema.Name()
	if e.ParentID == "" {
		m["parentId"] = nil
	} else {
		m["parentId"] = e.ParentID
	}
	for _, name := range e.order {
		m[name] = e.fields[name].ToJSON()
	}
	m["state"] = e.State.String()
	return m
}

// clearReferencesTo clears any reference field (recursively, through
// object/array fields) whose stored id is in deadIDs. Reports whether any
// field actually changed.
func (e *Entity) clearReferencesTo(deadIDs map[string]bool) bool {
	changed := false
	for _, name := range e.order {
		if clearFieldReferences(e.fields[name], deadIDs) {
			changed = true
		}
	}
	return changed
}

func clearFieldReferences(v FieldValue, deadIDs map[string]bool) bool {
	switch value := v.(type) {
	case *ReferenceValue:
		if value.value != nil && deadIDs[*value.value] {
			value.Clear()
			return true
		}
		return false
	case *ObjectValue:
		changed := false
		for _, name := range value.order {
			if clearFieldReferences(value.values[name], deadIDs) {
				changed = true
			}
		}
		return changed
	case *ArrayValue:
		changed := false
		for _, element := range value.elements {
			if clearFieldReferences(element, deadIDs) {
				changed = true
			}
		}
		return changed
	default:
		return false
	}
}
