package dynaschema

// NewFieldValue is the Value Factory: tag-dispatched on the field schema's
// concrete type, it constructs a fresh, always-shape-correct FieldValue.
// Object schemas recurse, building one child value per declared field;
// array values start empty, and each element is built from the element
// schema when it is parsed or appended.
func NewFieldValue(schema FieldSchema) FieldValue {
	switch s := schema.(type) {
	case *StringFieldSchema:
		return &StringValue{schema: s}
	case *BooleanFieldSchema:
		return &BooleanValue{schema: s}
	case *IntegerFieldSchema:
		return &IntegerValue{schema: s}
	case *FloatFieldSchema:
		return &FloatValue{schema: s}
	case *EnumFieldSchema:
		return &EnumValue{schema: s}
	case *ReferenceFieldSchema:
		return &ReferenceValue{schema: s}
	case *ObjectFieldSchema:
		return newObjectValue(s)
	case *ArrayFieldSchema:
		return &ArrayValue{schema: s}
	default:
		panic("dynaschema: unknown field schema variant")
	}
}

func newObjectValue(schema *ObjectFieldSchema) *ObjectValue {
	fields := schema.Fields()
	order := make([]string, len(fields))
	values := make(map[string]FieldValue, len(fields))
	for i, f := range fields {
		order[i] = f.Name()
		values[f.Name()] = NewFieldValue(f)
	}
	return &ObjectValue{schema: schema, order: order, values: values}
}
