package dynaschema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dynaschema/dynaschema/script"
)

func houseSchemaBundle() map[string]string {
	return map[string]string{
		"house.yaml": `
profile_name: House
fields:
  name:
    type: string
    required: true
children:
  rooms:
    entity: Room
`,
		"room.yaml": `
entity_name: Room
fields:
  label:
    type: string
  thermostat:
    type: reference
    target: Room
`,
	}
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e := NewEngine(nil)
	require.NoError(t, e.LoadSchemas(houseSchemaBundle()))
	return e
}

// S1: load a schema bundle and a matching data bundle, then query roots and
// children back out in insertion order.
func TestScenarioLoadAndQuery(t *testing.T) {
	e := newTestEngine(t)

	data := map[string]string{
		"data.yaml": `
house1:
  _schema: House
  name: Villa
room1:
  _schema: Room
  _parentid: house1
  label: Kitchen
room2:
  _schema: Room
  _parentid: house1
  label: Den
`,
	}
	require.NoError(t, e.LoadData(data))

	roots := e.GetParents()
	require.Len(t, roots, 1)
	assert.Equal(t, "house1", roots[0].ID)

	children := e.GetChildren("house1")
	require.Len(t, children, 2)
	assert.Equal(t, "room1", children[0].ID)
	assert.Equal(t, "room2", children[1].ID)
}

// S2: setField transitions an Unchanged entity to Modified, and an Added
// entity stays Added.
func TestScenarioSetFieldStateTransition(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.LoadData(map[string]string{
		"data.yaml": "house1:\n  _schema: House\n  name: Villa\n",
	}))

	entity, err := e.SetField("house1", "name", "Cottage")
	require.NoError(t, err)
	assert.Equal(t, Modified, entity.State)

	created, err := e.CreateEntity("Room", "room9", "house1", map[string]string{"label": "Loft"})
	require.NoError(t, err)
	assert.Equal(t, Added, created.State)

	_, err = e.SetField("room9", "label", "Attic")
	require.NoError(t, err)
	assert.Equal(t, Added, created.State)
}

// S3: deleting a parent cascades to its children and clears sibling
// references to any deleted id, registry-wide.
func TestScenarioCascadeDeleteClearsReferences(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.LoadData(map[string]string{
		"data.yaml": `
house1:
  _schema: House
  name: Villa
room1:
  _schema: Room
  _parentid: house1
  label: Kitchen
room2:
  _schema: Room
  _parentid: house1
  label: Den
  thermostat: room1
`,
	}))

	require.NoError(t, e.DeleteEntity("room1"))

	room1, ok := e.GetEntity("room1")
	require.True(t, ok)
	assert.Equal(t, Deleted, room1.State)

	siblings := e.GetChildren("house1")
	require.Len(t, siblings, 1)
	assert.Equal(t, "room2", siblings[0].ID)

	room2, ok := e.GetEntity("room2")
	require.True(t, ok)
	therm, ok := room2.Field("thermostat")
	require.True(t, ok)
	assert.True(t, therm.IsEmpty())
}

// S3 continued: deleting the profile root cascades through every
// descendant.
func TestScenarioCascadeDeleteRoot(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.LoadData(map[string]string{
		"data.yaml": `
house1:
  _schema: House
  name: Villa
room1:
  _schema: Room
  _parentid: house1
  label: Kitchen
`,
	}))

	require.NoError(t, e.DeleteEntity("house1"))

	house1, ok := e.GetEntity("house1")
	require.True(t, ok)
	assert.Equal(t, Deleted, house1.State)

	room1, ok := e.GetEntity("room1")
	require.True(t, ok)
	assert.Equal(t, Deleted, room1.State)

	assert.Empty(t, e.GetParents())
}

// A SetField on a Deleted entity is rejected.
func TestDeletedEntityMutationRejected(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.LoadData(map[string]string{
		"data.yaml": "house1:\n  _schema: House\n  name: Villa\n",
	}))
	require.NoError(t, e.DeleteEntity("house1"))

	_, err := e.SetField("house1", "name", "Cottage")
	require.Error(t, err)
	var mutationErr *DeletedEntityMutationError
	assert.ErrorAs(t, err, &mutationErr)
}

// S6: a schema bundle referencing an unknown entity target fails to load,
// and a subsequent getSchemaList reports empty state, not a partial graph.
func TestScenarioUnknownReferenceTargetClearsSchemaState(t *testing.T) {
	e := NewEngine(nil)
	err := e.LoadSchemas(map[string]string{
		"room.yaml": `
entity_name: Room
fields:
  sibling:
    type: reference
    target: Ghost
`,
	})
	require.Error(t, err)
	assert.Empty(t, e.GetSchemaList())
}

// loadSchemas does not reset the entity registry: entities loaded under a
// prior schema graph remain addressable after a second schema load.
func TestLoadSchemasDoesNotResetEntities(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.LoadData(map[string]string{
		"data.yaml": "house1:\n  _schema: House\n  name: Villa\n",
	}))

	require.NoError(t, e.LoadSchemas(houseSchemaBundle()))

	entity, ok := e.GetEntity("house1")
	require.True(t, ok)
	assert.Equal(t, "Villa", entity.Dict()["name"])
}

// The Script Bridge and schema-declared commands wire end to end through
// the Engine, independent of the router's JSON command surface.
func TestRunCommandInvokesDeclaredScript(t *testing.T) {
	e := NewEngine(nil)
	require.NoError(t, e.LoadSchemas(map[string]string{
		"device.yaml": `
entity_name: Device
fields:
  active:
    type: boolean
commands:
  activate:
    file: scripts/activate.expr
`,
	}))

	bridge := script.NewBridge(e, script.NewMemFileSystem(map[string]string{
		"scripts/activate.expr": `getField(EntityID, "active") == "true"`,
	}))
	e.SetScriptRunner(bridge)

	_, err := e.CreateEntity("Device", "device1", "", map[string]string{"active": "true"})
	require.NoError(t, err)

	require.NoError(t, e.RunCommand("device1", "activate"))
}

func TestRunCommandUnknownCommandFails(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.CreateEntity("House", "house1", "", map[string]string{"name": "Villa"})
	require.NoError(t, err)

	err = e.RunCommand("house1", "bogus")
	require.Error(t, err)
	var notFound *ScriptNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

// Invariant 3: an entity's parentId must name a live, non-Deleted entity
// at creation time.
func TestCreateEntityRejectsUnknownParent(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.CreateEntity("Room", "room1", "ghost-house", map[string]string{"label": "Kitchen"})
	require.Error(t, err)
	var invalidParent *InvalidParentError
	assert.ErrorAs(t, err, &invalidParent)
}

func TestCreateEntityRejectsDeletedParent(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.CreateEntity("House", "house1", "", map[string]string{"name": "Villa"})
	require.NoError(t, err)
	require.NoError(t, e.DeleteEntity("house1"))

	_, err = e.CreateEntity("Room", "room1", "house1", map[string]string{"label": "Kitchen"})
	require.Error(t, err)
	var invalidParent *InvalidParentError
	assert.ErrorAs(t, err, &invalidParent)
}

func TestValidateEntityReportsMissingRequired(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.CreateEntity("House", "house2", "", nil)
	require.NoError(t, err)

	err = e.ValidateEntity("house2")
	require.Error(t, err)
	var missing *MissingRequiredError
	assert.ErrorAs(t, err, &missing)
}
