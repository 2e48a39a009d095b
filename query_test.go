package dynaschema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBySchemaQuery(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.CreateEntity("House", "house1", "", map[string]string{"name": "Villa"})
	require.NoError(t, err)
	_, err = e.CreateEntity("Room", "room1", "house1", map[string]string{"label": "Kitchen"})
	require.NoError(t, err)

	matches := e.Entities().Query(BySchemaQuery{Name: "Room"})
	require.Len(t, matches, 1)
	assert.Equal(t, "room1", matches[0].ID)
}

func TestByStateQuery(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.CreateEntity("House", "house1", "", map[string]string{"name": "Villa"})
	require.NoError(t, err)

	matches := e.Entities().Query(ByStateQuery{State: Added})
	require.Len(t, matches, 1)
	assert.Equal(t, "house1", matches[0].ID)

	matches = e.Entities().Query(ByStateQuery{State: Unchanged})
	assert.Empty(t, matches)
}

func TestQueryAllEscapeHatch(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.CreateEntity("House", "house1", "", map[string]string{"name": "Villa"})
	require.NoError(t, err)
	_, err = e.CreateEntity("Room", "room1", "house1", map[string]string{"label": "Kitchen"})
	require.NoError(t, err)

	matches := e.Entities().QueryAll(func(m *EntityManager) []*Entity {
		var out []*Entity
		for _, id := range m.idOrder {
			entity := m.entities[id]
			if entity.Schema.Name() == "Room" && entity.State == Added {
				out = append(out, entity)
			}
		}
		return out
	})
	require.Len(t, matches, 1)
	assert.Equal(t, "room1", matches[0].ID)
}
