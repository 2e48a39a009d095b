package dynaschema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFieldSchemaToJSONShapes(t *testing.T) {
	min, max := int64(0), int64(10)

	cases := []struct {
		name   string
		schema FieldSchema
		want   map[string]interface{}
	}{
		{
			"string",
			&StringFieldSchema{fieldBase: fieldBase{name: "label", required: true}},
			map[string]interface{}{"type": "string", "required": true},
		},
		{
			"boolean",
			&BooleanFieldSchema{fieldBase: fieldBase{name: "active"}},
			map[string]interface{}{"type": "boolean", "required": false},
		},
		{
			"integer with range",
			&IntegerFieldSchema{fieldBase: fieldBase{name: "volume"}, Min: &min, Max: &max},
			map[string]interface{}{"type": "integer", "required": false, "min": int64(0), "max": int64(10)},
		},
		{
			"reference",
			&ReferenceFieldSchema{fieldBase: fieldBase{name: "sibling"}, Target: "Room"},
			map[string]interface{}{"type": "reference", "required": false, "target": "Room"},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, c.schema.ToJSON())
		})
	}
}

func TestFieldSchemaAlias(t *testing.T) {
	f := &StringFieldSchema{fieldBase: fieldBase{name: "label", alias: "title"}}
	assert.Equal(t, "title", f.Alias())
	assert.Equal(t, "title", f.ToJSON()["alias"])
}

func TestEnumFieldSchemaAllowed(t *testing.T) {
	f := &EnumFieldSchema{fieldBase: fieldBase{name: "mode"}, Values: []string{"eco", "boost"}}
	assert.True(t, f.Allowed("eco"))
	assert.False(t, f.Allowed("turbo"))
	assert.Equal(t, []string{"eco", "boost"}, f.ToJSON()["values"])
}

func TestObjectFieldSchemaFieldAccess(t *testing.T) {
	inner := []FieldSchema{
		&IntegerFieldSchema{fieldBase: fieldBase{name: "volume"}},
		&StringFieldSchema{fieldBase: fieldBase{name: "mode"}},
	}
	obj := NewObjectFieldSchema("settings", false, "", inner)

	got, ok := obj.Field("volume")
	assert.True(t, ok)
	assert.Equal(t, "integer", got.TypeName())

	_, ok = obj.Field("missing")
	assert.False(t, ok)

	assert.Len(t, obj.Fields(), 2)
}

func TestArrayFieldSchemaToJSON(t *testing.T) {
	arr := &ArrayFieldSchema{
		fieldBase: fieldBase{name: "readings"},
		Element:   &FloatFieldSchema{fieldBase: fieldBase{name: ""}},
	}
	json := arr.ToJSON()
	assert.Equal(t, "array", json["type"])
	element := json["element"].(map[string]interface{})
	assert.Equal(t, "float", element["type"])
}
