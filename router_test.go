package dynaschema

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) *Router {
	t.Helper()
	engine := NewEngine(nil)
	return NewRouter(NewFacade(engine))
}

func decodeEnvelope(t *testing.T, raw string) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(raw), &out))
	return out
}

func TestRouterUnknownCommand(t *testing.T) {
	r := newTestRouter(t)
	resp := decodeEnvelope(t, r.Dispatch([]byte(`{"command":"doTheThing"}`)))
	assert.Equal(t, "error", resp["status"])
}

func TestRouterMalformedRequest(t *testing.T) {
	r := newTestRouter(t)
	resp := decodeEnvelope(t, r.Dispatch([]byte(`not json`)))
	assert.Equal(t, "error", resp["status"])
}

func TestRouterFullLifecycle(t *testing.T) {
	r := newTestRouter(t)

	loadSchemas := map[string]interface{}{
		"command": "loadSchemas",
		"schemas": houseSchemaBundle(),
	}
	raw, err := json.Marshal(loadSchemas)
	require.NoError(t, err)
	resp := decodeEnvelope(t, r.Dispatch(raw))
	assert.Equal(t, "ok", resp["status"])

	resp = decodeEnvelope(t, r.Dispatch([]byte(`{"command":"getSchemaList"}`)))
	assert.Equal(t, "ok", resp["status"])
	schemas := resp["schemas"].([]interface{})
	assert.ElementsMatch(t, []interface{}{"House", "Room"}, schemas)

	resp = decodeEnvelope(t, r.Dispatch([]byte(`{"command":"getSchema","schema":"House"}`)))
	assert.Equal(t, "ok", resp["status"])
	assert.NotNil(t, resp["schema"])

	resp = decodeEnvelope(t, r.Dispatch([]byte(`{"command":"getSchema","schema":"Ghost"}`)))
	assert.Equal(t, "not_found", resp["status"])

	createReq := map[string]interface{}{
		"command": "createEntity",
		"schema":  "House",
		"id":      "house1",
		"payload": map[string]interface{}{"name": "Villa"},
	}
	raw, err = json.Marshal(createReq)
	require.NoError(t, err)
	resp = decodeEnvelope(t, r.Dispatch(raw))
	require.Equal(t, "ok", resp["status"])

	resp = decodeEnvelope(t, r.Dispatch([]byte(`{"command":"queryEntity","id":"house1"}`)))
	assert.Equal(t, "ok", resp["status"])

	resp = decodeEnvelope(t, r.Dispatch([]byte(`{"command":"queryEntity","id":"ghost"}`)))
	assert.Equal(t, "not_found", resp["status"])

	resp = decodeEnvelope(t, r.Dispatch([]byte(`{"command":"setField","id":"house1","field":"name","value":"Cottage"}`)))
	require.Equal(t, "ok", resp["status"])
	entity := resp["entity"].(map[string]interface{})
	assert.Equal(t, "Cottage", entity["name"])

	resp = decodeEnvelope(t, r.Dispatch([]byte(`{"command":"getRoot"}`)))
	assert.Equal(t, "ok", resp["status"])
	roots := resp["roots"].([]interface{})
	assert.Len(t, roots, 1)

	resp = decodeEnvelope(t, r.Dispatch([]byte(`{"command":"getTree"}`)))
	assert.Equal(t, "ok", resp["status"])

	resp = decodeEnvelope(t, r.Dispatch([]byte(`{"command":"deleteEntity","id":"house1"}`)))
	assert.Equal(t, "ok", resp["status"])
}

func TestRouterMissingArguments(t *testing.T) {
	r := newTestRouter(t)

	cases := []string{
		`{"command":"getSchema"}`,
		`{"command":"loadData"}`,
		`{"command":"queryEntity"}`,
		`{"command":"setField","id":"x"}`,
		`{"command":"getChildren"}`,
		`{"command":"createEntity","id":"x"}`,
		`{"command":"deleteEntity"}`,
	}
	for _, raw := range cases {
		resp := decodeEnvelope(t, r.Dispatch([]byte(raw)))
		assert.Equal(t, "error", resp["status"], raw)
	}
}
