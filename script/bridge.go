package script

import (
	"regexp"
	"strconv"
	"strings"
	"text/template"

	"github.com/expr-lang/expr"
	"github.com/goccy/go-json"

	"github.com/dynaschema/dynaschema"
)

// Registry is the Bridge's view of the entity registry: just enough to
// serve getField/getDict without depending on the whole Engine surface.
type Registry interface {
	GetEntity(id string) (*dynaschema.Entity, bool)
}

// Bridge is the Script Bridge: a per-process scripting host built on
// expr-lang, exposing registry reads and a file-system-backed template
// renderer to compiled expressions.
type Bridge struct {
	registry Registry
	fs       FileSystem
}

// NewBridge wires a Bridge over registry (for getField/getDict) and fs
// (for script sources, readFile/writeFile, and renderTemplate).
func NewBridge(registry Registry, fs FileSystem) *Bridge {
	return &Bridge{registry: registry, fs: fs}
}

// buildEnv assembles the expression environment exposed to a running
// script: a map[string]any keyed by the exact identifiers scripts
// reference, with each host function a closure over bridge. expr-lang
// resolves identifiers against a map's entries directly, so this is the
// only env shape under which a lowercase host-function name like
// getField is actually callable — an exported method on a struct would
// work too, but an unexported one (the prior shape of this file) is
// invisible to expr's reflection and never resolves.
func buildEnv(bridge *Bridge, entityID string, params map[string]string) map[string]interface{} {
	return map[string]interface{}{
		"EntityID": entityID,
		"Params":   params,

		"getField": func(id, fieldName string) interface{} {
			entity, ok := bridge.registry.GetEntity(id)
			if !ok {
				return nil
			}
			field, ok := entity.Field(fieldName)
			if !ok || field.IsEmpty() {
				return nil
			}
			return field.ToString()
		},

		"getDict": func(id string) map[string]string {
			entity, ok := bridge.registry.GetEntity(id)
			if !ok {
				return map[string]string{}
			}
			return entity.Dict()
		},

		"regexMatch": func(pattern, input string) bool {
			matched, err := regexp.MatchString(pattern, input)
			return err == nil && matched
		},

		"writeFile": func(relPath, content string) map[string]interface{} {
			if err := bridge.fs.Write(relPath, content); err != nil {
				return map[string]interface{}{"ok": false, "error": err.Error()}
			}
			return map[string]interface{}{"ok": true, "error": ""}
		},

		"readFile": func(relPath string) map[string]interface{} {
			content, err := bridge.fs.Read(relPath)
			if err != nil {
				return map[string]interface{}{"ok": false, "error": err.Error(), "content": ""}
			}
			return map[string]interface{}{"ok": true, "error": "", "content": content}
		},

		"renderTemplate": func(templatePath, outputPath string, data map[string]interface{}) map[string]interface{} {
			raw, err := bridge.fs.Read(templatePath)
			if err != nil {
				return map[string]interface{}{"ok": false, "error": err.Error()}
			}
			tmpl, err := template.New(templatePath).Parse(raw)
			if err != nil {
				return map[string]interface{}{"ok": false, "error": err.Error()}
			}
			var rendered strings.Builder
			if err := tmpl.Execute(&rendered, data); err != nil {
				return map[string]interface{}{"ok": false, "error": err.Error()}
			}
			if err := bridge.fs.Write(outputPath, rendered.String()); err != nil {
				return map[string]interface{}{"ok": false, "error": err.Error()}
			}
			return map[string]interface{}{"ok": true, "error": ""}
		},

		"jsonDecode": func(raw string) map[string]interface{} {
			decoded, err := decodeTable(raw)
			if err != nil {
				return map[string]interface{}{"value": nil, "error": err.Error()}
			}
			return map[string]interface{}{"value": decoded, "error": ""}
		},

		"jsonEncode": func(table interface{}) map[string]interface{} {
			encoded, err := json.Marshal(tableToJSON(table))
			if err != nil {
				return map[string]interface{}{"value": "", "error": err.Error()}
			}
			return map[string]interface{}{"value": string(encoded), "error": ""}
		},
	}
}

// RunScript loads the script at path, compiles it against an environment
// carrying entityID and params, and runs it to completion. The script
// must evaluate to a bool (success) or a map carrying "ok"/"error" keys;
// anything else surfaces as ScriptReturnShapeError. The whole environment
// is discarded on every exit path, so no stack state leaks between runs.
func (b *Bridge) RunScript(path string, entityID string, params map[string]string) error {
	source, err := b.fs.Read(path)
	if err != nil {
		return &dynaschema.ScriptNotFoundError{Path: path}
	}

	env := buildEnv(b, entityID, params)

	program, err := expr.Compile(source, expr.Env(env))
	if err != nil {
		return &dynaschema.ScriptFailedError{Path: path, Message: err.Error()}
	}

	result, err := expr.Run(program, env)
	if err != nil {
		return &dynaschema.ScriptFailedError{Path: path, Message: err.Error()}
	}

	ok, message, shapeErr := interpretResult(result)
	if shapeErr {
		return &dynaschema.ScriptReturnShapeError{Path: path}
	}
	if !ok {
		return &dynaschema.ScriptFailedError{Path: path, Message: message}
	}
	return nil
}

// interpretResult accepts the two required script return shapes: a bare
// bool, or a map carrying "ok" (bool) and optionally "error" (string).
func interpretResult(result interface{}) (ok bool, message string, shapeErr bool) {
	switch v := result.(type) {
	case bool:
		return v, "", false
	case map[string]interface{}:
		okVal, hasOK := v["ok"].(bool)
		if !hasOK {
			return false, "", true
		}
		msg, _ := v["error"].(string)
		return okVal, msg, false
	default:
		return false, "", true
	}
}

// decodeTable parses raw as JSON into native expr-lang tables: objects
// become map[string]interface{}, arrays become []interface{}.
func decodeTable(raw string) (interface{}, error) {
	var value interface{}
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return nil, err
	}
	return value, nil
}

// tableToJSON is the inverse conversion: a native expr-lang table
// (map/slice, arbitrarily nested) back to a JSON-marshalable value. Slices
// become arrays. A non-empty map whose keys are exactly "1".."n" also
// becomes an array, ordered by key; any other map becomes an object.
func tableToJSON(table interface{}) interface{} {
	switch v := table.(type) {
	case map[string]interface{}:
		if len(v) > 0 {
			items := make([]interface{}, len(v))
			isArray := true
			for k, val := range v {
				i, err := strconv.Atoi(k)
				if err != nil || i < 1 || i > len(v) || strconv.Itoa(i) != k {
					isArray = false
					break
				}
				items[i-1] = tableToJSON(val)
			}
			if isArray {
				return items
			}
		}
		out := make(map[string]interface{}, len(v))
		for k, val := range v {
			out[k] = tableToJSON(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, val := range v {
			out[i] = tableToJSON(val)
		}
		return out
	default:
		return v
	}
}
