package dynaschema

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// ReferenceResolver looks up the schema name of a live entity by id, so a
// ReferenceValue can validate its target without the Value Model knowing
// about the Entity Manager.
type ReferenceResolver interface {
	ResolveSchema(id string) (schemaName string, found bool)
}

// FieldValue is the abstract node of the value tree: one concrete type per
// Field Schema discriminant, all conforming to this surface. Every
// FieldValue holds an immutable borrow of the schema it mirrors.
type FieldValue interface {
	Schema() FieldSchema
	SetFromString(raw string) error
	Validate(resolver ReferenceResolver) error
	ToString() string
	ToJSON() interface{}
	IsEmpty() bool
}

var integerGrammar = regexp.MustCompile(`^[+-]?\d+$`)

func stripQuotes(raw string) string {
	if len(raw) >= 2 && raw[0] == '"' && raw[len(raw)-1] == '"' {
		return raw[1 : len(raw)-1]
	}
	return raw
}

// validateFieldMap enforces required-ness and per-child validation over an
// ordered set of child fields, shared by ObjectValue and Entity so both
// apply the identical declaration-order, fail-fast rule.
func validateFieldMap(order []string, values map[string]FieldValue, resolver ReferenceResolver) error {
	for _, name := range order {
		v := values[name]
		if v.Schema().Required() && v.IsEmpty() {
			return &MissingRequiredError{Field: v.Schema().Name()}
		}
		if err := v.Validate(resolver); err != nil {
			return err
		}
	}
	return nil
}

// StringValue holds an optional string scalar.
type StringValue struct {
	schema *StringFieldSchema
	value  *string
}

func (v *StringValue) Schema() FieldSchema { return v.schema }
func (v *StringValue) SetFromString(raw string) error {
	s := raw
	v.value = &s
	return nil
}
func (v *StringValue) Validate(ReferenceResolver) error { return nil }
func (v *StringValue) ToString() string {
	if v.value == nil {
		return ""
	}
	return *v.value
}
func (v *StringValue) ToJSON() interface{} {
	if v.value == nil {
		return nil
	}
	return *v.value
}
func (v *StringValue) IsEmpty() bool { return v.value == nil || *v.value == "" }

// BooleanValue holds an optional bool scalar.
type BooleanValue struct {
	schema *BooleanFieldSchema
	value  *bool
}

func (v *BooleanValue) Schema() FieldSchema { return v.schema }
func (v *BooleanValue) SetFromString(raw string) error {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1":
		b := true
		v.value = &b
	case "false", "0":
		b := false
		v.value = &b
	default:
		return &BadValueFormatError{Field: v.schema.Name(), Got: raw}
	}
	return nil
}
func (v *BooleanValue) Validate(ReferenceResolver) error { return nil }
func (v *BooleanValue) ToString() string {
	if v.value == nil {
		return ""
	}
	if *v.value {
		return "true"
	}
	return "false"
}
func (v *BooleanValue) ToJSON() interface{} {
	if v.value == nil {
		return nil
	}
	return *v.value
}
func (v *BooleanValue) IsEmpty() bool { return v.value == nil }

// IntegerValue holds an optional 64-bit integer scalar, range-checked
// against its schema's Min/Max at Validate time.
type IntegerValue struct {
	schema *IntegerFieldSchema
	value  *int64
}

func (v *IntegerValue) Schema() FieldSchema { return v.schema }
func (v *IntegerValue) SetFromString(raw string) error {
	trimmed := strings.TrimSpace(raw)
	if !integerGrammar.MatchString(trimmed) {
		return &BadValueFormatError{Field: v.schema.Name(), Got: raw}
	}
	n, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		return &BadValueFormatError{Field: v.schema.Name(), Got: raw}
	}
	v.value = &n
	return nil
}
func (v *IntegerValue) Validate(ReferenceResolver) error {
	if v.value == nil {
		return nil
	}
	s := v.schema
	if (s.Min != nil && *v.value < *s.Min) || (s.Max != nil && *v.value > *s.Max) {
		return rangeViolation(s.Name(), strconv.FormatInt(*v.value, 10), s.Min, s.Max)
	}
	return nil
}
func rangeViolation(field, value string, min, max *int64) error {
	err := &RangeViolationError{Field: field, Value: value}
	if min != nil {
		err.Min = strconv.FormatInt(*min, 10)
	}
	if max != nil {
		err.Max = strconv.FormatInt(*max, 10)
	}
	return err
}
func (v *IntegerValue) ToString() string {
	if v.value == nil {
		return ""
	}
	return strconv.FormatInt(*v.value, 10)
}
func (v *IntegerValue) ToJSON() interface{} {
	if v.value == nil {
		return nil
	}
	return *v.value
}
func (v *IntegerValue) IsEmpty() bool { return v.value == nil }

// FloatValue holds an optional 64-bit float scalar, range-checked against
// its schema's Min/Max at Validate time.
type FloatValue struct {
	schema *FloatFieldSchema
	value  *float64
}

func (v *FloatValue) Schema() FieldSchema { return v.schema }
func (v *FloatValue) SetFromString(raw string) error {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return &BadValueFormatError{Field: v.schema.Name(), Got: raw}
	}
	lower := strings.ToLower(trimmed)
	if strings.Contains(lower, "inf") || strings.Contains(lower, "nan") {
		return &BadValueFormatError{Field: v.schema.Name(), Got: raw}
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return &BadValueFormatError{Field: v.schema.Name(), Got: raw}
	}
	v.value = &f
	return nil
}
func (v *FloatValue) Validate(ReferenceResolver) error {
	if v.value == nil {
		return nil
	}
	s := v.schema
	if (s.Min != nil && *v.value < *s.Min) || (s.Max != nil && *v.value > *s.Max) {
		err := &RangeViolationError{Field: s.Name(), Value: strconv.FormatFloat(*v.value, 'g', -1, 64)}
		if s.Min != nil {
			err.Min = strconv.FormatFloat(*s.Min, 'g', -1, 64)
		}
		if s.Max != nil {
			err.Max = strconv.FormatFloat(*s.Max, 'g', -1, 64)
		}
		return err
	}
	return nil
}
func (v *FloatValue) ToString() string {
	if v.value == nil {
		return ""
	}
	return strconv.FormatFloat(*v.value, 'g', -1, 64)
}
func (v *FloatValue) ToJSON() interface{} {
	if v.value == nil {
		return nil
	}
	return *v.value
}
func (v *FloatValue) IsEmpty() bool { return v.value == nil }

// EnumValue holds an optional string chosen from its schema's allowed
// values.
type EnumValue struct {
	schema *EnumFieldSchema
	value  *string
}

func (v *EnumValue) Schema() FieldSchema { return v.schema }
func (v *EnumValue) SetFromString(raw string) error {
	s := stripQuotes(raw)
	v.value = &s
	return nil
}
func (v *EnumValue) Validate(ReferenceResolver) error {
	if v.value == nil || *v.value == "" {
		return nil
	}
	if !v.schema.Allowed(*v.value) {
		return &EnumViolationError{Field: v.schema.Name(), Value: *v.value}
	}
	return nil
}
func (v *EnumValue) ToString() string {
	if v.value == nil {
		return ""
	}
	return *v.value
}
func (v *EnumValue) ToJSON() interface{} {
	if v.value == nil {
		return nil
	}
	return *v.value
}
func (v *EnumValue) IsEmpty() bool { return v.value == nil || *v.value == "" }

// ReferenceValue holds an optional entity id, validated against the
// resolver passed to Validate.
type ReferenceValue struct {
	schema *ReferenceFieldSchema
	value  *string
}

func (v *ReferenceValue) Schema() FieldSchema { return v.schema }
func (v *ReferenceValue) SetFromString(raw string) error {
	s := stripQuotes(raw)
	v.value = &s
	return nil
}

// Clear empties the reference, used by the Engine's cascade-delete sweep.
func (v *ReferenceValue) Clear() { v.value = nil }

func (v *ReferenceValue) Validate(resolver ReferenceResolver) error {
	if v.value == nil || *v.value == "" {
		return nil
	}
	if resolver == nil {
		return nil
	}
	schemaName, found := resolver.ResolveSchema(*v.value)
	if !found || schemaName != v.schema.Target {
		return &DanglingReferenceError{Field: v.schema.Name(), Target: v.schema.Target, Got: *v.value}
	}
	return nil
}
func (v *ReferenceValue) ToString() string {
	if v.value == nil {
		return ""
	}
	return *v.value
}
func (v *ReferenceValue) ToJSON() interface{} {
	if v.value == nil {
		return nil
	}
	return *v.value
}
func (v *ReferenceValue) IsEmpty() bool { return v.value == nil || *v.value == "" }

// ObjectValue is a mapping from field name to child FieldValue, eagerly
// populated with one empty value per schema-declared child.
type ObjectValue struct {
	schema *ObjectFieldSchema
	order  []string
	values map[string]FieldValue
}

func (v *ObjectValue) Schema() FieldSchema { return v.schema }

// Field returns the named child value.
func (v *ObjectValue) Field(name string) (FieldValue, bool) {
	child, ok := v.values[name]
	return child, ok
}

// SetFromString interprets raw as a JSON object fragment, rejecting
// unknown keys and recursing per declared child.
func (v *ObjectValue) SetFromString(raw string) error {
	var fragment map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &fragment); err != nil {
		return &BadValueFormatError{Field: v.schema.Name(), Got: raw}
	}
	for key := range fragment {
		if _, ok := v.values[key]; !ok {
			return &UnknownFieldError{Field: key}
		}
	}
	for name, child := range v.values {
		raw, present := fragment[name]
		if !present {
			continue
		}
		if err := setFromJSONValue(child, raw); err != nil {
			return err
		}
	}
	return nil
}

func (v *ObjectValue) Validate(resolver ReferenceResolver) error {
	return validateFieldMap(v.order, v.values, resolver)
}

func (v *ObjectValue) ToString() string {
	parts := make([]string, 0, len(v.order))
	for _, name := range v.order {
		child := v.values[name]
		rendered := child.ToString()
		switch child.(type) {
		case *StringValue, *EnumValue:
			rendered = strconv.Quote(rendered)
		}
		parts = append(parts, name+": "+rendered)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (v *ObjectValue) ToJSON() interface{} {
	m := make(map[string]interface{}, len(v.order))
	for _, name := range v.order {
		m[name] = v.values[name].ToJSON()
	}
	return m
}

func (v *ObjectValue) IsEmpty() bool {
	for _, name := range v.order {
		if !v.values[name].IsEmpty() {
			return false
		}
	}
	return true
}

// ArrayValue is an ordered sequence of FieldValues, all conforming to the
// schema's single Element schema.
type ArrayValue struct {
	schema   *ArrayFieldSchema
	elements []FieldValue
}

func (v *ArrayValue) Schema() FieldSchema { return v.schema }

// Elements returns the array's current elements in order.
func (v *ArrayValue) Elements() []FieldValue { return v.elements }

// Append adds element to the end of the array.
func (v *ArrayValue) Append(element FieldValue) { v.elements = append(v.elements, element) }

// SetFromString interprets raw as a JSON array fragment, parsing each
// element through the element schema's value constructor.
func (v *ArrayValue) SetFromString(raw string) error {
	var fragment []interface{}
	if err := json.Unmarshal([]byte(raw), &fragment); err != nil {
		return &BadValueFormatError{Field: v.schema.Name(), Got: raw}
	}
	elements := make([]FieldValue, 0, len(fragment))
	for _, item := range fragment {
		element := NewFieldValue(v.schema.Element)
		if err := setFromJSONValue(element, item); err != nil {
			return err
		}
		elements = append(elements, element)
	}
	v.elements = elements
	return nil
}

func (v *ArrayValue) Validate(resolver ReferenceResolver) error {
	for _, element := range v.elements {
		if err := element.Validate(resolver); err != nil {
			return err
		}
	}
	return nil
}

func (v *ArrayValue) ToString() string {
	parts := make([]string, len(v.elements))
	for i, element := range v.elements {
		parts[i] = element.ToString()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (v *ArrayValue) ToJSON() interface{} {
	out := make([]interface{}, len(v.elements))
	for i, element := range v.elements {
		out[i] = element.ToJSON()
	}
	return out
}

func (v *ArrayValue) IsEmpty() bool { return len(v.elements) == 0 }

// setFromJSONValue routes an already-decoded JSON value (from an
// enclosing object/array fragment) into child's SetFromString, without a
// redundant marshal/unmarshal round trip for scalars.
func setFromJSONValue(child FieldValue, raw interface{}) error {
	switch child.(type) {
	case *ObjectValue, *ArrayValue:
		encoded, err := json.Marshal(raw)
		if err != nil {
			return &BadValueFormatError{Field: child.Schema().Name(), Got: "<unencodable>"}
		}
		return child.SetFromString(string(encoded))
	}
	if raw == nil {
		return nil
	}
	switch v := raw.(type) {
	case string:
		return child.SetFromString(v)
	case bool:
		if v {
			return child.SetFromString("true")
		}
		return child.SetFromString("false")
	case float64:
		if _, isInt := child.(*IntegerValue); isInt {
			return child.SetFromString(strconv.FormatInt(int64(v), 10))
		}
		return child.SetFromString(strconv.FormatFloat(v, 'g', -1, 64))
	default:
		encoded, err := json.Marshal(raw)
		if err != nil {
			return &BadValueFormatError{Field: child.Schema().Name(), Got: "<unencodable>"}
		}
		return child.SetFromString(string(encoded))
	}
}
