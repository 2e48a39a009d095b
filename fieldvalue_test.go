package dynaschema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegerValueRangeValidation(t *testing.T) {
	min, max := int64(0), int64(100)
	schema := &IntegerFieldSchema{fieldBase: fieldBase{name: "volume"}, Min: &min, Max: &max}
	v := NewFieldValue(schema)

	require.NoError(t, v.SetFromString("50"))
	assert.NoError(t, v.Validate(nil))
	assert.Equal(t, "50", v.ToString())
	assert.Equal(t, int64(50), v.ToJSON())

	require.NoError(t, v.SetFromString("150"))
	err := v.Validate(nil)
	require.Error(t, err)
	var rangeErr *RangeViolationError
	assert.ErrorAs(t, err, &rangeErr)
}

func TestIntegerValueRejectsTrailingGarbage(t *testing.T) {
	v := NewFieldValue(&IntegerFieldSchema{fieldBase: fieldBase{name: "n"}})
	err := v.SetFromString("12abc")
	require.Error(t, err)
	var badFormat *BadValueFormatError
	assert.ErrorAs(t, err, &badFormat)
}

func TestBooleanValueCaseInsensitive(t *testing.T) {
	v := NewFieldValue(&BooleanFieldSchema{fieldBase: fieldBase{name: "active"}})
	require.NoError(t, v.SetFromString("TRUE"))
	assert.Equal(t, true, v.ToJSON())
	require.NoError(t, v.SetFromString("0"))
	assert.Equal(t, false, v.ToJSON())
	assert.Error(t, v.SetFromString("yes"))
}

func TestEnumValueMembership(t *testing.T) {
	schema := &EnumFieldSchema{fieldBase: fieldBase{name: "mode"}, Values: []string{"eco", "boost"}}
	v := NewFieldValue(schema)
	require.NoError(t, v.SetFromString("eco"))
	assert.NoError(t, v.Validate(nil))

	require.NoError(t, v.SetFromString("turbo"))
	err := v.Validate(nil)
	require.Error(t, err)
	var enumErr *EnumViolationError
	assert.ErrorAs(t, err, &enumErr)
}

type stubResolver map[string]string

func (r stubResolver) ResolveSchema(id string) (string, bool) {
	name, ok := r[id]
	return name, ok
}

func TestReferenceValueValidation(t *testing.T) {
	schema := &ReferenceFieldSchema{fieldBase: fieldBase{name: "sibling"}, Target: "Device"}
	v := NewFieldValue(schema)
	require.NoError(t, v.SetFromString("device1"))

	resolver := stubResolver{"device1": "Device"}
	assert.NoError(t, v.Validate(resolver))

	resolver2 := stubResolver{"device1": "Sensor"}
	err := v.Validate(resolver2)
	require.Error(t, err)
	var danglingErr *DanglingReferenceError
	assert.ErrorAs(t, err, &danglingErr)
}

func TestObjectValueShapeAndRoundTrip(t *testing.T) {
	object := NewObjectFieldSchema("settings", false, "", []FieldSchema{
		&IntegerFieldSchema{fieldBase: fieldBase{name: "volume"}},
		&StringFieldSchema{fieldBase: fieldBase{name: "mode"}},
	})
	v := NewFieldValue(object).(*ObjectValue)
	require.NoError(t, v.SetFromString(`{"volume": 50, "mode": "eco"}`))

	got := v.ToJSON().(map[string]interface{})
	assert.Equal(t, int64(50), got["volume"])
	assert.Equal(t, "eco", got["mode"])
}

func TestObjectValueRejectsUnknownField(t *testing.T) {
	object := NewObjectFieldSchema("settings", false, "", []FieldSchema{
		&IntegerFieldSchema{fieldBase: fieldBase{name: "volume"}},
	})
	v := NewFieldValue(object)
	err := v.SetFromString(`{"brightness": 10}`)
	require.Error(t, err)
	var unknownErr *UnknownFieldError
	assert.ErrorAs(t, err, &unknownErr)
}

func TestArrayValueOfObjects(t *testing.T) {
	element := NewObjectFieldSchema("", false, "", []FieldSchema{
		&StringFieldSchema{fieldBase: fieldBase{name: "timestamp"}},
		&FloatFieldSchema{fieldBase: fieldBase{name: "value"}},
	})
	arraySchema := &ArrayFieldSchema{fieldBase: fieldBase{name: "readings"}, Element: element}
	v := NewFieldValue(arraySchema)
	require.NoError(t, v.SetFromString(`[{"timestamp":"t1","value":1.5},{"timestamp":"t2","value":2.5}]`))

	arr := v.ToJSON().([]interface{})
	require.Len(t, arr, 2)
	first := arr[0].(map[string]interface{})
	assert.Equal(t, "t1", first["timestamp"])
	assert.Equal(t, 1.5, first["value"])
}

func TestIsEmpty(t *testing.T) {
	v := NewFieldValue(&StringFieldSchema{fieldBase: fieldBase{name: "name"}})
	assert.True(t, v.IsEmpty())
	require.NoError(t, v.SetFromString(""))
	assert.True(t, v.IsEmpty())
	require.NoError(t, v.SetFromString("Villa"))
	assert.False(t, v.IsEmpty())
}
