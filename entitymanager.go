package dynaschema

import "github.com/dynaschema/dynaschema/docdecoder"

// EntityManager is process-wide state owning every Entity, live or
// Deleted, plus two
// derived indexes whose insertion order is part of the observable
// contract: childrenByParent (ordered children per parent id) and roots
// (ordered parentless entities).
type EntityManager struct {
	entities map[string]*Entity
	idOrder  []string

	childrenByParent map[string][]*Entity
	roots            []*Entity
}

// NewEntityManager returns an empty Entity Manager.
func NewEntityManager() *EntityManager {
	m := &EntityManager{}
	m.clear()
	return m
}

func (m *EntityManager) clear() {
	m.entities = make(map[string]*Entity)
	m.idOrder = nil
	m.childrenByParent = make(map[string][]*Entity)
	m.roots = nil
}

// Add inserts entity into the registry and its parent/root index.
// Duplicate ids fail with DuplicateEntityError.
func (m *EntityManager) Add(entity *Entity) error {
	if _, exists := m.entities[entity.ID]; exists {
		return &DuplicateEntityError{ID: entity.ID}
	}
	m.entities[entity.ID] = entity
	m.idOrder = append(m.idOrder, entity.ID)
	if entity.ParentID == "" {
		m.roots = append(m.roots, entity)
	} else {
		m.childrenByParent[entity.ParentID] = append(m.childrenByParent[entity.ParentID], entity)
	}
	return nil
}

// GetByID returns the entity with the given id, live or Deleted.
func (m *EntityManager) GetByID(id string) (*Entity, bool) {
	e, ok := m.entities[id]
	return e, ok
}

// GetChildren returns parentId's children in insertion order. Deleted
// children are unlinked from this index as part of cascade delete, so a
// non-empty result only ever contains live entities.
func (m *EntityManager) GetChildren(parentID string) []*Entity {
	return m.childrenByParent[parentID]
}

// GetParents returns the registry's roots (parentless entities) in
// insertion order.
func (m *EntityManager) GetParents() []*Entity {
	return m.roots
}

// GetParent returns entityId's parent entity, if it has one and the
// parent still exists.
func (m *EntityManager) GetParent(entityID string) (*Entity, bool) {
	e, ok := m.entities[entityID]
	if !ok || e.ParentID == "" {
		return nil, false
	}
	return m.GetByID(e.ParentID)
}

// SetFieldValue looks up id and delegates to the entity's SetField. Does
// not adjust lifecycle state; the Engine owns that transition.
func (m *EntityManager) SetFieldValue(id, field, raw string) error {
	e, ok := m.entities[id]
	if !ok {
		return &EntityNotFoundError{ID: id}
	}
	return e.SetField(field, raw)
}

// Validate delegates to the entity's own Validate, using m itself as the
// reference resolver.
func (m *EntityManager) Validate(id string) error {
	e, ok := m.entities[id]
	if !ok {
		return &EntityNotFoundError{ID: id}
	}
	return e.Validate(m)
}

// ResolveSchema implements ReferenceResolver: it reports the schema name
// of a live (non-Deleted) entity.
func (m *EntityManager) ResolveSchema(id string) (string, bool) {
	e, ok := m.entities[id]
	if !ok || e.State == Deleted {
		return "", false
	}
	return e.Schema.Name(), true
}

// Query runs q against the registry and returns the matching entities.
func (m *EntityManager) Query(q EntityQuery) []*Entity {
	return q.Execute(m)
}

// QueryAll is an escape hatch for a manager-wide query that does not fit
// EntityQuery's per-request shape, such as a caller-supplied predicate
// combining schema and state.
func (m *EntityManager) QueryAll(fn func(*EntityManager) []*Entity) []*Entity {
	return fn(m)
}

// unlinkFromIndexes removes entity from childrenByParent/roots without
// deleting it from the owning map, used by cascade delete to keep tree
// traversal free of tombstones while preserving id-lookup.
func (m *EntityManager) unlinkFromIndexes(entity *Entity) {
	if entity.ParentID == "" {
		m.roots = removeEntity(m.roots, entity)
	} else {
		m.childrenByParent[entity.ParentID] = removeEntity(m.childrenByParent[entity.ParentID], entity)
	}
}

func removeEntity(list []*Entity, target *Entity) []*Entity {
	out := list[:0]
	for _, e := range list {
		if e != target {
			out = append(out, e)
		}
	}
	return out
}

// ParseDataBundle resets the registry, then imports bundle: a map from
// document name to document text, each document a top-level mapping of
// entity id to a mapping carrying `_schema`, optional `_parentid`, and one
// entry per declared field. All created entities land with
// state=Unchanged; the caller (Engine) is responsible for this being the
// intended state for a bulk load.
func (m *EntityManager) ParseDataBundle(bundle map[string]string, schemas *SchemaManager) error {
	m.clear()
	for _, name := range sortedKeys(bundle) {
		doc, err := docdecoder.Decode(name, bundle[name])
		if err != nil {
			return err
		}
		if doc.IsNull() {
			continue
		}
		if doc.Kind != docdecoder.Mapping {
			return &WrongShapeError{File: name, Path: "<root>", Want: "mapping"}
		}
		for _, entry := range doc.Entries {
			if err := m.loadEntity(entry.Key, entry.Value, schemas); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *EntityManager) loadEntity(id string, node docdecoder.Node, schemas *SchemaManager) error {
	schemaNode, ok := node.Get("_schema")
	if !ok {
		return &MissingSchemaError{EntityID: id}
	}
	schema, ok := schemas.Get(schemaNode.Text)
	if !ok {
		return &UnknownSchemaError{Name: schemaNode.Text}
	}

	entity := NewEntity(id, schema)
	if parentNode, ok := node.Get("_parentid"); ok && !parentNode.IsNull() {
		entity.ParentID = parentNode.Text
	}

	for _, entry := range node.Entries {
		if entry.Key == "_schema" || entry.Key == "_parentid" {
			continue
		}
		value, ok := entity.fields[entry.Key]
		if !ok {
			return &UnknownFieldError{Field: entry.Key}
		}
		if err := populateFieldFromNode(value, entry.Value); err != nil {
			return err
		}
	}

	entity.State = Unchanged
	return m.Add(entity)
}

// populateFieldFromNode mirrors a decoded document node into value:
// scalar nodes feed SetFromString directly, object nodes recurse per
// declared child, sequence nodes build a fresh element value per entry.
func populateFieldFromNode(value FieldValue, node docdecoder.Node) error {
	switch v := value.(type) {
	case *ObjectValue:
		if node.Kind != docdecoder.Mapping {
			return &WrongShapeError{File: v.schema.Name(), Path: v.schema.Name(), Want: "mapping"}
		}
		for _, entry := range node.Entries {
			child, ok := v.values[entry.Key]
			if !ok {
				return &UnknownFieldError{Field: entry.Key}
			}
			if err := populateFieldFromNode(child, entry.Value); err != nil {
				return err
			}
		}
		return nil
	case *ArrayValue:
		if node.Kind != docdecoder.Sequence {
			return &WrongShapeError{File: v.schema.Name(), Path: v.schema.Name(), Want: "sequence"}
		}
		for _, el := range node.Elements {
			element := NewFieldValue(v.schema.Element)
			if err := populateFieldFromNode(element, el); err != nil {
				return err
			}
			v.Append(element)
		}
		return nil
	default:
		if node.IsNull() {
			return nil
		}
		return value.SetFromString(node.Text)
	}
}
