package dynaschema

// FieldSchema is the abstract node of the schema graph's field tree: one
// concrete type per discriminant, all sharing the common accessors a
// caller needs regardless of variant. Implementations are immutable once
// built by the Schema Manager.
type FieldSchema interface {
	Name() string
	Required() bool
	Alias() string
	TypeName() string
	ToJSON() map[string]interface{}
}

// fieldBase carries the attributes common to every Field Schema variant.
type fieldBase struct {
	name     string
	required bool
	alias    string
}

func (b fieldBase) Name() string     { return b.name }
func (b fieldBase) Required() bool   { return b.required }
func (b fieldBase) Alias() string    { return b.alias }

func (b fieldBase) baseJSON(typeName string) map[string]interface{} {
	m := map[string]interface{}{
		"type":     typeName,
		"required": b.required,
	}
	if b.alias != "" {
		m["alias"] = b.alias
	}
	return m
}

// StringFieldSchema describes a string-valued field. No variant attributes.
type StringFieldSchema struct{ fieldBase }

func (f *StringFieldSchema) TypeName() string { return "string" }
func (f *StringFieldSchema) ToJSON() map[string]interface{} {
	return f.baseJSON("string")
}

// BooleanFieldSchema describes a boolean-valued field. No variant attributes.
type BooleanFieldSchema struct{ fieldBase }

func (f *BooleanFieldSchema) TypeName() string { return "boolean" }
func (f *BooleanFieldSchema) ToJSON() map[string]interface{} {
	return f.baseJSON("boolean")
}

// IntegerFieldSchema describes a 64-bit integer-valued field with an
// optional inclusive range.
type IntegerFieldSchema struct {
	fieldBase
	Min *int64
	Max *int64
}

func (f *IntegerFieldSchema) TypeName() string { return "integer" }
func (f *IntegerFieldSchema) ToJSON() map[string]interface{} {
	m := f.baseJSON("integer")
	if f.Min != nil {
		m["min"] = *f.Min
	}
	if f.Max != nil {
		m["max"] = *f.Max
	}
	return m
}

// FloatFieldSchema describes a 64-bit float-valued field with an optional
// inclusive range.
type FloatFieldSchema struct {
	fieldBase
	Min *float64
	Max *float64
}

func (f *FloatFieldSchema) TypeName() string { return "float" }
func (f *FloatFieldSchema) ToJSON() map[string]interface{} {
	m := f.baseJSON("float")
	if f.Min != nil {
		m["min"] = *f.Min
	}
	if f.Max != nil {
		m["max"] = *f.Max
	}
	return m
}

// EnumFieldSchema describes a string field constrained to a non-empty,
// ordered set of allowed values.
type EnumFieldSchema struct {
	fieldBase
	Values []string
}

func (f *EnumFieldSchema) TypeName() string { return "enum" }
func (f *EnumFieldSchema) ToJSON() map[string]interface{} {
	m := f.baseJSON("enum")
	m["values"] = append([]string(nil), f.Values...)
	return m
}

// Allowed reports whether v is one of the enum's declared members.
func (f *EnumFieldSchema) Allowed(v string) bool {
	for _, want := range f.Values {
		if want == v {
			return true
		}
	}
	return false
}

// ReferenceFieldSchema describes a field holding the id of another entity,
// constrained to instances of the Target entity schema.
type ReferenceFieldSchema struct {
	fieldBase
	Target string
}

func (f *ReferenceFieldSchema) TypeName() string { return "reference" }
func (f *ReferenceFieldSchema) ToJSON() map[string]interface{} {
	m := f.baseJSON("reference")
	m["target"] = f.Target
	return m
}

// ObjectFieldSchema describes a field whose value is an ordered mapping of
// declared child fields. Child order is declaration order and significant.
type ObjectFieldSchema struct {
	fieldBase
	fields     []FieldSchema
	fieldIndex map[string]int
}

// NewObjectFieldSchema builds an ObjectFieldSchema over fields in
// declaration order. Callers must ensure names are unique; the Schema
// Manager enforces this at load time via DuplicateFieldError.
func NewObjectFieldSchema(name string, required bool, alias string, fields []FieldSchema) *ObjectFieldSchema {
	idx := make(map[string]int, len(fields))
	for i, f := range fields {
		idx[f.Name()] = i
	}
	return &ObjectFieldSchema{
		fieldBase:  fieldBase{name: name, required: required, alias: alias},
		fields:     fields,
		fieldIndex: idx,
	}
}

func (f *ObjectFieldSchema) TypeName() string { return "object" }

// Fields returns the object's child field schemas in declaration order.
func (f *ObjectFieldSchema) Fields() []FieldSchema { return f.fields }

// Field returns the named child field schema.
func (f *ObjectFieldSchema) Field(name string) (FieldSchema, bool) {
	i, ok := f.fieldIndex[name]
	if !ok {
		return nil, false
	}
	return f.fields[i], true
}

func (f *ObjectFieldSchema) ToJSON() map[string]interface{} {
	m := f.baseJSON("object")
	children := make(map[string]interface{}, len(f.fields))
	for _, child := range f.fields {
		children[child.Name()] = child.ToJSON()
	}
	m["fields"] = children
	return m
}

// ArrayFieldSchema describes a field whose value is an ordered sequence of
// elements, all conforming to a single Element schema.
type ArrayFieldSchema struct {
	fieldBase
	Element FieldSchema
}

func (f *ArrayFieldSchema) TypeName() string { return "array" }
func (f *ArrayFieldSchema) ToJSON() map[string]interface{} {
	m := f.baseJSON("array")
	m["element"] = f.Element.ToJSON()
	return m
}
