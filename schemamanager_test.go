package dynaschema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smartHomeBundle() map[string]string {
	return map[string]string{
		"smarthome.yaml": `
profile_name: SmartHome
fields:
  name:
    type: string
    required: true
children:
  devices:
    entity: Device
`,
		"device.yaml": `
entity_name: Device
fields:
  name:
    type: string
  active:
    type: boolean
`,
	}
}

func TestSchemaManagerLoadAndList(t *testing.T) {
	m := NewSchemaManager()
	require.NoError(t, m.Load(smartHomeBundle()))

	assert.ElementsMatch(t, []string{"SmartHome", "Device"}, m.List())

	home, ok := m.Get("SmartHome")
	require.True(t, ok)
	assert.True(t, home.IsProfile())
	target, ok := home.ChildSchema("devices")
	require.True(t, ok)
	assert.Equal(t, "Device", target.Name())
}

func TestSchemaManagerUnknownReferenceTargetFailsLoad(t *testing.T) {
	m := NewSchemaManager()
	bundle := map[string]string{
		"device.yaml": `
entity_name: Device
fields:
  sibling:
    type: reference
    target: Ghost
`,
	}
	err := m.Load(bundle)
	require.Error(t, err)
	var unknownTarget *UnknownReferenceTargetError
	assert.ErrorAs(t, err, &unknownTarget)

	// S6: a failed load clears state.
	assert.Empty(t, m.List())
}

func TestSchemaManagerDuplicateNameFailsLoad(t *testing.T) {
	m := NewSchemaManager()
	bundle := map[string]string{
		"a.yaml": "entity_name: Device\n",
		"b.yaml": "entity_name: Device\n",
	}
	err := m.Load(bundle)
	require.Error(t, err)
	var dup *DuplicateSchemaError
	assert.ErrorAs(t, err, &dup)
	assert.Empty(t, m.List())
}

func TestSchemaManagerRejectsUnknownTopLevelKey(t *testing.T) {
	m := NewSchemaManager()
	bundle := map[string]string{
		"a.yaml": "entity_name: Device\nbogus: true\n",
	}
	err := m.Load(bundle)
	require.Error(t, err)
	var badKey *InvalidTopLevelKeyError
	assert.ErrorAs(t, err, &badKey)
}

func TestSchemaManagerNestedObjectAndArrayFields(t *testing.T) {
	m := NewSchemaManager()
	bundle := map[string]string{
		"device.yaml": `
entity_name: Device
fields:
  settings:
    type: object
    fields:
      volume:
        type: integer
        min: 0
        max: 100
      mode:
        type: string
  readings:
    type: array
    element:
      type: object
      fields:
        timestamp:
          type: string
        value:
          type: float
`,
	}
	require.NoError(t, m.Load(bundle))

	device, ok := m.Get("Device")
	require.True(t, ok)

	settings, ok := device.Field("settings")
	require.True(t, ok)
	obj, ok := settings.(*ObjectFieldSchema)
	require.True(t, ok)
	volume, ok := obj.Field("volume")
	require.True(t, ok)
	assert.Equal(t, "integer", volume.TypeName())

	readings, ok := device.Field("readings")
	require.True(t, ok)
	arr, ok := readings.(*ArrayFieldSchema)
	require.True(t, ok)
	assert.Equal(t, "object", arr.Element.TypeName())
}
