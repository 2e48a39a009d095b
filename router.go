package dynaschema

import "github.com/goccy/go-json"

// Router is the single dispatch entry point for one JSON request. It
// parses the envelope, validates per-command arguments, and delegates to
// the Façade — it never calls the Engine directly.
type Router struct {
	facade *Facade
}

// NewRouter wraps facade in a Router.
func NewRouter(facade *Facade) *Router {
	return &Router{facade: facade}
}

type request struct {
	Command  string            `json:"command"`
	Schemas  map[string]string `json:"schemas"`
	Schema   string            `json:"schema"`
	Data     map[string]string `json:"data"`
	ID       string            `json:"id"`
	Field    string            `json:"field"`
	Value    string            `json:"value"`
	ParentID string            `json:"parentId"`
	Payload  map[string]interface{} `json:"payload"`
}

// Dispatch parses raw as a single JSON command request and returns the
// façade's JSON response string.
func (r *Router) Dispatch(raw []byte) string {
	var req request
	if err := json.Unmarshal(raw, &req); err != nil || req.Command == "" {
		return errEnvelope(&MissingArgumentError{Command: "<unknown>", Field: "command"})
	}

	switch req.Command {
	case "loadSchemas":
		if req.Schemas == nil {
			return errEnvelope(&MissingArgumentError{Command: req.Command, Field: "schemas"})
		}
		return r.facade.LoadSchemas(req.Schemas)

	case "getSchemaList":
		return r.facade.GetSchemaList()

	case "getSchema":
		if req.Schema == "" {
			return errEnvelope(&MissingArgumentError{Command: req.Command, Field: "schema"})
		}
		return r.facade.GetSchema(req.Schema)

	case "loadData":
		if req.Data == nil {
			return errEnvelope(&MissingArgumentError{Command: req.Command, Field: "data"})
		}
		return r.facade.LoadData(req.Data)

	case "queryEntity":
		if req.ID == "" {
			return errEnvelope(&MissingArgumentError{Command: req.Command, Field: "id"})
		}
		return r.facade.QueryEntity(req.ID)

	case "setField":
		if req.ID == "" {
			return errEnvelope(&MissingArgumentError{Command: req.Command, Field: "id"})
		}
		if req.Field == "" {
			return errEnvelope(&MissingArgumentError{Command: req.Command, Field: "field"})
		}
		return r.facade.SetField(req.ID, req.Field, req.Value)

	case "validateEntity":
		if req.ID == "" {
			return errEnvelope(&MissingArgumentError{Command: req.Command, Field: "id"})
		}
		return r.facade.ValidateEntity(req.ID)

	case "getTree":
		return r.facade.GetTree()

	case "getRoot":
		return r.facade.GetRoot()

	case "getChildren":
		if req.ParentID == "" {
			return errEnvelope(&MissingArgumentError{Command: req.Command, Field: "parentId"})
		}
		return r.facade.GetChildren(req.ParentID)

	case "getParent":
		if req.ID == "" {
			return errEnvelope(&MissingArgumentError{Command: req.Command, Field: "id"})
		}
		return r.facade.GetParent(req.ID)

	case "createEntity":
		if req.Schema == "" {
			return errEnvelope(&MissingArgumentError{Command: req.Command, Field: "schema"})
		}
		if req.ID == "" {
			return errEnvelope(&MissingArgumentError{Command: req.Command, Field: "id"})
		}
		payload, err := reencodePayload(req.Payload)
		if err != nil {
			return errEnvelope(&MissingArgumentError{Command: req.Command, Field: "payload"})
		}
		return r.facade.CreateEntity(req.Schema, req.ID, req.ParentID, payload)

	case "deleteEntity":
		if req.ID == "" {
			return errEnvelope(&MissingArgumentError{Command: req.Command, Field: "id"})
		}
		return r.facade.DeleteEntity(req.ID)

	default:
		return errEnvelope(&UnknownCommandError{Name: req.Command})
	}
}

// reencodePayload re-serializes each createEntity payload value as its own
// JSON fragment string, so object/array fields round-trip through
// SetFromString the same way scalars do.
func reencodePayload(payload map[string]interface{}) (map[string]string, error) {
	out := make(map[string]string, len(payload))
	for key, value := range payload {
		switch v := value.(type) {
		case string:
			out[key] = v
		default:
			encoded, err := json.Marshal(v)
			if err != nil {
				return nil, err
			}
			out[key] = string(encoded)
		}
	}
	return out, nil
}
