package dynaschema

// EntityQuery is a polymorphic predicate object: implementations expose a
// single Execute capability over the registry, so ad-hoc lookups don't
// need a dedicated Entity Manager method per query kind.
type EntityQuery interface {
	Execute(manager *EntityManager) []*Entity
}

// BySchemaQuery matches every live entity whose schema name equals Name.
type BySchemaQuery struct{ Name string }

func (q BySchemaQuery) Execute(manager *EntityManager) []*Entity {
	var out []*Entity
	for _, id := range manager.idOrder {
		e := manager.entities[id]
		if e.State != Deleted && e.Schema.Name() == q.Name {
			out = append(out, e)
		}
	}
	return out
}

// ByStateQuery matches every entity currently in State.
type ByStateQuery struct{ State State }

func (q ByStateQuery) Execute(manager *EntityManager) []*Entity {
	var out []*Entity
	for _, id := range manager.idOrder {
		e := manager.entities[id]
		if e.State == q.State {
			out = append(out, e)
		}
	}
	return out
}
