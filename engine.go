package dynaschema

// Engine is the only component that touches both the Schema Manager and
// the Entity Manager; it is the sole authority on lifecycle-state
// transitions and referential integrity. The JSON Façade holds a borrow
// of one Engine and never reaches around it into the managers directly.
type Engine struct {
	schemas  *SchemaManager
	entities *EntityManager
	scripts  ScriptRunner
}

// ScriptRunner is the Engine's view of the Script Bridge, narrow enough
// that engine.go does not need to import the script package's concrete
// types.
type ScriptRunner interface {
	RunScript(path string, entityID string, params map[string]string) error
}

// NewEngine wires a fresh Schema Manager and Entity Manager together.
// scripts may be nil if no commands will be invoked.
func NewEngine(scripts ScriptRunner) *Engine {
	return &Engine{
		schemas:  NewSchemaManager(),
		entities: NewEntityManager(),
		scripts:  scripts,
	}
}

// LoadSchemas replaces the schema graph. Per design decision, this does
// NOT reset the entity registry — entities loaded under the prior schema
// graph remain addressable (their Schema pointers stay valid for their
// lifetime, per the borrow invariant); only loadData resets entities.
func (e *Engine) LoadSchemas(bundle map[string]string) error {
	return e.schemas.Load(bundle)
}

// SetScriptRunner installs the Script Bridge after construction, needed
// because the Bridge itself is built from a Registry view of this same
// Engine (a one-step wiring cycle broken by deferring the assignment).
func (e *Engine) SetScriptRunner(scripts ScriptRunner) {
	e.scripts = scripts
}

// GetSchemaList returns every loaded entity schema name.
func (e *Engine) GetSchemaList() []string {
	return e.schemas.List()
}

// GetSchema returns the named entity schema.
func (e *Engine) GetSchema(name string) (*EntitySchema, bool) {
	return e.schemas.Get(name)
}

// LoadData resets the entity registry and imports bundle; every created
// entity lands with state=Unchanged.
func (e *Engine) LoadData(bundle map[string]string) error {
	return e.entities.ParseDataBundle(bundle, e.schemas)
}

// CreateEntity constructs a new entity of schemaName, sets each provided
// field via SetFromString, links parentID (which must resolve to a live,
// non-Deleted entity if non-empty), and adds it to the registry with
// state=Added.
func (e *Engine) CreateEntity(schemaName, id, parentID string, fieldRaws map[string]string) (*Entity, error) {
	schema, ok := e.schemas.Get(schemaName)
	if !ok {
		return nil, &UnknownSchemaError{Name: schemaName}
	}
	if parentID != "" {
		parent, ok := e.entities.GetByID(parentID)
		if !ok || parent.State == Deleted {
			return nil, &InvalidParentError{ParentID: parentID}
		}
	}
	entity := NewEntity(id, schema)
	entity.ParentID = parentID
	for field, raw := range fieldRaws {
		if err := entity.SetField(field, raw); err != nil {
			return nil, err
		}
	}
	entity.State = Added
	if err := e.entities.Add(entity); err != nil {
		return nil, err
	}
	return entity, nil
}

// SetField rejects not-found or Deleted entities, delegates the mutation,
// then transitions state: Added stays Added, anything else becomes
// Modified.
func (e *Engine) SetField(id, field, raw string) (*Entity, error) {
	entity, ok := e.entities.GetByID(id)
	if !ok {
		return nil, &EntityNotFoundError{ID: id}
	}
	if entity.State == Deleted {
		return nil, &DeletedEntityMutationError{ID: id}
	}
	if err := entity.SetField(field, raw); err != nil {
		return nil, err
	}
	if entity.State != Added {
		entity.State = Modified
	}
	return entity, nil
}

// ValidateEntity delegates to the entity, surfacing the first failure.
func (e *Engine) ValidateEntity(id string) error {
	return e.entities.Validate(id)
}

// GetEntity returns the entity with the given id, live or Deleted.
func (e *Engine) GetEntity(id string) (*Entity, bool) {
	return e.entities.GetByID(id)
}

// GetParents returns the registry's roots in insertion order.
func (e *Engine) GetParents() []*Entity {
	return e.entities.GetParents()
}

// GetChildren returns parentID's live children in insertion order.
func (e *Engine) GetChildren(parentID string) []*Entity {
	return e.entities.GetChildren(parentID)
}

// GetParent returns entityID's parent, if any.
func (e *Engine) GetParent(entityID string) (*Entity, bool) {
	return e.entities.GetParent(entityID)
}

// DeleteEntity performs a deep cascade:
//  1. mark the target Deleted;
//  2. recursively mark every descendant (via childrenByParent reachability)
//     Deleted;
//  3. registry-wide, clear any reference field whose stored id is now one
//     of the deleted ids;
//  4. unlink every deleted entity from the parent/root indexes, while
//     keeping the entity objects addressable so queries report Deleted
//     rather than not-found.
func (e *Engine) DeleteEntity(id string) error {
	root, ok := e.entities.GetByID(id)
	if !ok {
		return &EntityNotFoundError{ID: id}
	}
	if root.State == Deleted {
		return nil
	}

	deleted := e.collectCascade(root)

	deadIDs := make(map[string]bool, len(deleted))
	for _, entity := range deleted {
		deadIDs[entity.ID] = true
	}

	for _, entityID := range e.entities.idOrder {
		entity := e.entities.entities[entityID]
		if deadIDs[entity.ID] {
			continue
		}
		entity.clearReferencesTo(deadIDs)
	}

	for _, entity := range deleted {
		entity.State = Deleted
		e.entities.unlinkFromIndexes(entity)
	}

	return nil
}

// collectCascade returns root and every descendant reachable through
// childrenByParent, in breadth-first discovery order.
func (e *Engine) collectCascade(root *Entity) []*Entity {
	collected := []*Entity{root}
	queue := []*Entity{root}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, child := range e.entities.GetChildren(current.ID) {
			collected = append(collected, child)
			queue = append(queue, child)
		}
	}
	return collected
}

// RunCommand invokes the named command declared on entity id's schema.
func (e *Engine) RunCommand(entityID, commandID string) error {
	entity, ok := e.entities.GetByID(entityID)
	if !ok {
		return &EntityNotFoundError{ID: entityID}
	}
	command, ok := entity.Schema.Command(commandID)
	if !ok {
		return &ScriptNotFoundError{Path: commandID}
	}
	if e.scripts == nil {
		return &ScriptNotFoundError{Path: command.ScriptPath}
	}
	return e.scripts.RunScript(command.ScriptPath, entityID, command.Params)
}

// Entities exposes the underlying Entity Manager for read-only
// inspection by the Script Bridge's host functions (getField, getDict).
func (e *Engine) Entities() *EntityManager { return e.entities }
