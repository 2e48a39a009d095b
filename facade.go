package dynaschema

import "github.com/goccy/go-json"

// Facade translates Engine operations into JSON request/response
// envelopes. Every method returns a JSON string shaped
// {status: "ok"|"error"|"not_found", ...}; this envelope is the stable
// external contract, never the Go error values underneath it.
type Facade struct {
	engine *Engine
}

// NewFacade wraps engine in a JSON Façade.
func NewFacade(engine *Engine) *Facade {
	return &Facade{engine: engine}
}

func envelope(payload map[string]interface{}) string {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return `{"status":"error","message":"internal: failed to encode response"}`
	}
	return string(encoded)
}

func okEnvelope(payload map[string]interface{}) string {
	if payload == nil {
		payload = map[string]interface{}{}
	}
	payload["status"] = "ok"
	return envelope(payload)
}

func errEnvelope(err error) string {
	return envelope(map[string]interface{}{"status": "error", "message": err.Error()})
}

func notFoundEnvelope() string {
	return envelope(map[string]interface{}{"status": "not_found"})
}

// LoadSchemas loads bundle into the schema graph.
func (f *Facade) LoadSchemas(bundle map[string]string) string {
	if err := f.engine.LoadSchemas(bundle); err != nil {
		return errEnvelope(err)
	}
	return okEnvelope(nil)
}

// GetSchemaList lists every loaded entity schema name.
func (f *Facade) GetSchemaList() string {
	return okEnvelope(map[string]interface{}{"schemas": f.engine.GetSchemaList()})
}

// GetSchema returns the named entity schema's JSON form.
func (f *Facade) GetSchema(name string) string {
	schema, ok := f.engine.GetSchema(name)
	if !ok {
		return notFoundEnvelope()
	}
	return okEnvelope(map[string]interface{}{"schema": schema.ToJSON()})
}

// LoadData resets the registry and imports bundle.
func (f *Facade) LoadData(bundle map[string]string) string {
	if err := f.engine.LoadData(bundle); err != nil {
		return errEnvelope(err)
	}
	return okEnvelope(nil)
}

// QueryEntity returns the entity's JSON form, or a not_found envelope for
// an unknown id — this is the one operation where "missing" is not an
// error.
func (f *Facade) QueryEntity(id string) string {
	entity, ok := f.engine.GetEntity(id)
	if !ok {
		return notFoundEnvelope()
	}
	return okEnvelope(map[string]interface{}{"entity": entity.ToJSON()})
}

// SetField mutates a single field and returns the updated entity.
func (f *Facade) SetField(id, field, raw string) string {
	entity, err := f.engine.SetField(id, field, raw)
	if err != nil {
		return errEnvelope(err)
	}
	return okEnvelope(map[string]interface{}{"entity": entity.ToJSON()})
}

// ValidateEntity validates id, reporting the first failure if any.
func (f *Facade) ValidateEntity(id string) string {
	if err := f.engine.ValidateEntity(id); err != nil {
		return errEnvelope(err)
	}
	return okEnvelope(nil)
}

// GetTree returns every root and its descendants, recursively.
func (f *Facade) GetTree() string {
	roots := f.engine.GetParents()
	tree := make([]interface{}, len(roots))
	for i, root := range roots {
		tree[i] = f.treeNode(root)
	}
	return okEnvelope(map[string]interface{}{"tree": tree})
}

func (f *Facade) treeNode(entity *Entity) map[string]interface{} {
	children := f.engine.GetChildren(entity.ID)
	nodes := make([]interface{}, len(children))
	for i, child := range children {
		nodes[i] = f.treeNode(child)
	}
	return map[string]interface{}{
		"id":       entity.ID,
		"schema":   entity.Schema.Name(),
		"state":    entity.State.String(),
		"children": nodes,
	}
}

// GetRoot returns just the top-level list, without descending into
// children.
func (f *Facade) GetRoot() string {
	roots := f.engine.GetParents()
	out := make([]interface{}, len(roots))
	for i, root := range roots {
		out[i] = map[string]interface{}{
			"id":     root.ID,
			"schema": root.Schema.Name(),
			"state":  root.State.String(),
		}
	}
	return okEnvelope(map[string]interface{}{"roots": out})
}

// GetChildren returns parentID's immediate children.
func (f *Facade) GetChildren(parentID string) string {
	children := f.engine.GetChildren(parentID)
	out := make([]interface{}, len(children))
	for i, child := range children {
		out[i] = child.ToJSON()
	}
	return okEnvelope(map[string]interface{}{"children": out})
}

// GetParent returns id's parent entity, or a not_found envelope if id has
// no parent.
func (f *Facade) GetParent(id string) string {
	parent, ok := f.engine.GetParent(id)
	if !ok {
		return notFoundEnvelope()
	}
	return okEnvelope(map[string]interface{}{"entity": parent.ToJSON()})
}

// CreateEntity constructs a new entity; each payload value has already
// been re-serialized to a JSON fragment string by the Router so it can
// flow through SetFromString uniformly for scalars and structured fields
// alike.
func (f *Facade) CreateEntity(schemaName, id, parentID string, payload map[string]string) string {
	entity, err := f.engine.CreateEntity(schemaName, id, parentID, payload)
	if err != nil {
		return errEnvelope(err)
	}
	return okEnvelope(map[string]interface{}{"entity": entity.ToJSON()})
}

// DeleteEntity performs a deep cascade delete rooted at id.
func (f *Facade) DeleteEntity(id string) string {
	if err := f.engine.DeleteEntity(id); err != nil {
		return errEnvelope(err)
	}
	return okEnvelope(nil)
}
