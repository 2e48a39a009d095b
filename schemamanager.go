package dynaschema

import (
	"sort"

	"github.com/dynaschema/dynaschema/docdecoder"
)

var topLevelKeys = map[string]bool{
	"profile_name": true,
	"entity_name":  true,
	"fields":       true,
	"children":     true,
	"commands":     true,
}

// SchemaManager is process-wide state owning the schema graph: every
// EntitySchema the runtime knows about, keyed by name. A load either
// succeeds with a fully consistent graph or leaves the manager empty —
// there is no partial state between loads.
type SchemaManager struct {
	schemas map[string]*EntitySchema
	order   []string
}

// NewSchemaManager returns an empty Schema Manager.
func NewSchemaManager() *SchemaManager {
	m := &SchemaManager{}
	m.clear()
	return m
}

// clear drops every schema, resetting the manager to its zero state.
func (m *SchemaManager) clear() {
	m.schemas = make(map[string]*EntitySchema)
	m.order = nil
}

// Get returns the named entity schema.
func (m *SchemaManager) Get(name string) (*EntitySchema, bool) {
	s, ok := m.schemas[name]
	return s, ok
}

// List returns every loaded entity schema name, in load order.
func (m *SchemaManager) List() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Load replaces the schema graph with one built from bundle, a map from
// document name to document text. Two passes, mirroring the teacher's
// compile-then-resolve batching: Pass 1 registers an empty EntitySchema per
// document so forward references have somewhere to land; Pass 2 populates
// fields, children, and commands, resolving those references by name. Any
// failure aborts the whole load and the manager reverts to empty.
func (m *SchemaManager) Load(bundle map[string]string) error {
	next, err := m.compile(bundle)
	if err != nil {
		m.clear()
		return err
	}
	m.schemas = next.schemas
	m.order = next.order
	return nil
}

func (m *SchemaManager) compile(bundle map[string]string) (*SchemaManager, error) {
	names := sortedKeys(bundle)

	docs := make(map[string]docdecoder.Node, len(bundle))
	for _, name := range names {
		node, err := docdecoder.Decode(name, bundle[name])
		if err != nil {
			return nil, err
		}
		docs[name] = node
	}

	next := &SchemaManager{schemas: make(map[string]*EntitySchema), order: nil}

	// Pass 1 — registration.
	schemaNameOf := make(map[string]string, len(bundle)) // document name -> schema name
	for _, name := range names {
		doc := docs[name]
		if doc.Kind != docdecoder.Mapping {
			return nil, &WrongShapeError{File: name, Path: "<root>", Want: "mapping"}
		}
		for _, key := range doc.Keys() {
			if !topLevelKeys[key] {
				return nil, &InvalidTopLevelKeyError{File: name, Key: key}
			}
		}
		profileNode, hasProfile := doc.Get("profile_name")
		entityNode, hasEntity := doc.Get("entity_name")
		if hasProfile == hasEntity {
			return nil, &MissingSchemaNameError{File: name}
		}
		var schemaName string
		var isProfile bool
		if hasProfile {
			schemaName, isProfile = profileNode.Text, true
		} else {
			schemaName, isProfile = entityNode.Text, false
		}
		if _, exists := next.schemas[schemaName]; exists {
			return nil, &DuplicateSchemaError{Name: schemaName}
		}
		next.schemas[schemaName] = newEntitySchema(schemaName, isProfile)
		next.order = append(next.order, schemaName)
		schemaNameOf[name] = schemaName
	}

	// Pass 2 — population.
	for _, name := range names {
		doc := docs[name]
		schema := next.schemas[schemaNameOf[name]]

		if fieldsNode, ok := doc.Get("fields"); ok && !fieldsNode.IsNull() {
			if fieldsNode.Kind != docdecoder.Mapping {
				return nil, &WrongShapeError{File: name, Path: "fields", Want: "mapping"}
			}
			fields, err := buildFields(name, fieldsNode, next.schemas)
			if err != nil {
				return nil, err
			}
			schema.setFields(fields)
		}

		if childrenNode, ok := doc.Get("children"); ok && !childrenNode.IsNull() {
			if childrenNode.Kind != docdecoder.Mapping {
				return nil, &WrongShapeError{File: name, Path: "children", Want: "mapping"}
			}
			for _, tag := range childrenNode.Keys() {
				relNode, _ := childrenNode.Get(tag)
				entityNode, ok := relNode.Get("entity")
				if !ok {
					return nil, &WrongShapeError{File: name, Path: "children." + tag, Want: "mapping with 'entity'"}
				}
				target, ok := next.schemas[entityNode.Text]
				if !ok {
					return nil, &UnknownChildEntityError{Relation: tag, Name: entityNode.Text}
				}
				if !schema.addChild(tag, target) {
					return nil, &DuplicateRelationError{Schema: schema.Name(), Relation: tag}
				}
			}
		}

		if commandsNode, ok := doc.Get("commands"); ok && !commandsNode.IsNull() {
			if commandsNode.Kind != docdecoder.Mapping {
				return nil, &WrongShapeError{File: name, Path: "commands", Want: "mapping"}
			}
			for _, id := range commandsNode.Keys() {
				cmdNode, _ := commandsNode.Get(id)
				fileNode, _ := cmdNode.Get("file")
				command := &Command{ID: id, ScriptPath: fileNode.Text, Params: map[string]string{}}
				if paramsNode, ok := cmdNode.Get("params"); ok && paramsNode.Kind == docdecoder.Mapping {
					for _, key := range paramsNode.Keys() {
						valueNode, _ := paramsNode.Get(key)
						command.Params[key] = valueNode.Text
					}
				}
				schema.addCommand(id, command)
			}
		}
	}

	return next, nil
}

// buildFields recursively builds an ordered slice of FieldSchema from a
// fields mapping node, keyed on each descriptor's `type`.
func buildFields(file string, fieldsNode docdecoder.Node, schemas map[string]*EntitySchema) ([]FieldSchema, error) {
	seen := make(map[string]bool, len(fieldsNode.Entries))
	fields := make([]FieldSchema, 0, len(fieldsNode.Entries))
	for _, entry := range fieldsNode.Entries {
		if seen[entry.Key] {
			return nil, &DuplicateFieldError{Parent: file, Field: entry.Key}
		}
		seen[entry.Key] = true
		field, err := buildField(file, entry.Key, entry.Value, schemas)
		if err != nil {
			return nil, err
		}
		fields = append(fields, field)
	}
	return fields, nil
}

func buildField(file, name string, desc docdecoder.Node, schemas map[string]*EntitySchema) (FieldSchema, error) {
	if desc.Kind != docdecoder.Mapping {
		return nil, &WrongShapeError{File: file, Path: "fields." + name, Want: "mapping"}
	}
	typeNode, ok := desc.Get("type")
	if !ok {
		return nil, &UnknownFieldTypeError{File: file, Field: name, Type: ""}
	}

	required := false
	if reqNode, ok := desc.Get("required"); ok {
		required = reqNode.Text == "true"
	}
	alias := ""
	if aliasNode, ok := desc.Get("alias"); ok {
		alias = aliasNode.Text
	}
	base := fieldBase{name: name, required: required, alias: alias}

	switch typeNode.Text {
	case "string":
		return &StringFieldSchema{fieldBase: base}, nil
	case "boolean":
		return &BooleanFieldSchema{fieldBase: base}, nil
	case "integer":
		min, max, err := intRange(file, name, desc)
		if err != nil {
			return nil, err
		}
		return &IntegerFieldSchema{fieldBase: base, Min: min, Max: max}, nil
	case "float":
		min, max, err := floatRange(file, name, desc)
		if err != nil {
			return nil, err
		}
		return &FloatFieldSchema{fieldBase: base, Min: min, Max: max}, nil
	case "enum":
		valuesNode, ok := desc.Get("values")
		if !ok || valuesNode.Kind != docdecoder.Sequence || len(valuesNode.Elements) == 0 {
			return nil, &EmptyEnumError{File: file, Field: name}
		}
		values := make([]string, len(valuesNode.Elements))
		for i, el := range valuesNode.Elements {
			values[i] = el.Text
		}
		return &EnumFieldSchema{fieldBase: base, Values: values}, nil
	case "reference":
		targetNode, ok := desc.Get("target")
		if !ok {
			return nil, &UnknownReferenceTargetError{Field: name, Target: ""}
		}
		if _, ok := schemas[targetNode.Text]; !ok {
			return nil, &UnknownReferenceTargetError{Field: name, Target: targetNode.Text}
		}
		return &ReferenceFieldSchema{fieldBase: base, Target: targetNode.Text}, nil
	case "object":
		childFieldsNode, ok := desc.Get("fields")
		if !ok || childFieldsNode.Kind != docdecoder.Mapping {
			return nil, &WrongShapeError{File: file, Path: "fields." + name + ".fields", Want: "mapping"}
		}
		children, err := buildFields(file, childFieldsNode, schemas)
		if err != nil {
			return nil, err
		}
		return NewObjectFieldSchema(name, required, alias, children), nil
	case "array":
		elementNode, ok := desc.Get("element")
		if !ok {
			return nil, &WrongShapeError{File: file, Path: "fields." + name + ".element", Want: "mapping"}
		}
		element, err := buildField(file, name, elementNode, schemas)
		if err != nil {
			return nil, err
		}
		return &ArrayFieldSchema{fieldBase: base, Element: element}, nil
	default:
		return nil, &UnknownFieldTypeError{File: file, Field: name, Type: typeNode.Text}
	}
}

func intRange(file, field string, desc docdecoder.Node) (*int64, *int64, error) {
	min, err := parseOptionalInt(desc, "min")
	if err != nil {
		return nil, nil, err
	}
	max, err := parseOptionalInt(desc, "max")
	if err != nil {
		return nil, nil, err
	}
	if min != nil && max != nil && *min > *max {
		return nil, nil, &InvalidRangeError{Field: field}
	}
	return min, max, nil
}

func floatRange(file, field string, desc docdecoder.Node) (*float64, *float64, error) {
	min, err := parseOptionalFloat(desc, "min")
	if err != nil {
		return nil, nil, err
	}
	max, err := parseOptionalFloat(desc, "max")
	if err != nil {
		return nil, nil, err
	}
	if min != nil && max != nil && *min > *max {
		return nil, nil, &InvalidRangeError{Field: field}
	}
	return min, max, nil
}

func parseOptionalInt(desc docdecoder.Node, key string) (*int64, error) {
	node, ok := desc.Get(key)
	if !ok || node.IsNull() {
		return nil, nil
	}
	value := &IntegerValue{schema: &IntegerFieldSchema{}}
	if err := value.SetFromString(node.Text); err != nil {
		return nil, err
	}
	return value.value, nil
}

func parseOptionalFloat(desc docdecoder.Node, key string) (*float64, error) {
	node, ok := desc.Get(key)
	if !ok || node.IsNull() {
		return nil, nil
	}
	value := &FloatValue{schema: &FloatFieldSchema{}}
	if err := value.SetFromString(node.Text); err != nil {
		return nil, err
	}
	return value.value, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
