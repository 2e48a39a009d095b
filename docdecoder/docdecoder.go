// Package docdecoder parses a named YAML document into a generic tree of
// mappings, sequences, scalars and nulls. It is the only package in this
// module that knows the concrete document syntax; every caller deals only
// with the generic Node shape, deferring scalar typing (int/float/bool) to
// the field-value layer.
package docdecoder

import (
	"fmt"
	"strings"

	"github.com/goccy/go-yaml/ast"
	"github.com/goccy/go-yaml/parser"
)

// Kind discriminates the shape of a decoded Node.
type Kind int

const (
	// Null marks an explicit YAML null, a tilde, or an omitted value.
	Null Kind = iota
	// Scalar marks a leaf value; its lexical form is preserved as text and
	// typed later by the caller.
	Scalar
	// Mapping marks an ordered set of key/value pairs.
	Mapping
	// Sequence marks an ordered list of nodes.
	Sequence
)

// Node is a single element of the decoded document tree. Exactly one of its
// fields is meaningful, selected by Kind.
type Node struct {
	Kind     Kind
	Text     string          // valid when Kind == Scalar
	Entries  []Entry         // valid when Kind == Mapping, in document order
	Elements []Node          // valid when Kind == Sequence, in document order
}

// Entry is a single key/value pair of a Mapping node. Keys are always
// rendered as their scalar text form; YAML permits non-string mapping keys
// but this decoder's callers (schema and data bundles) never use them.
type Entry struct {
	Key   string
	Value Node
}

// Get returns the value bound to key and whether it was present.
func (n Node) Get(key string) (Node, bool) {
	if n.Kind != Mapping {
		return Node{}, false
	}
	for _, e := range n.Entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return Node{}, false
}

// Keys returns the mapping's keys in document order. Returns nil for any
// other Kind.
func (n Node) Keys() []string {
	if n.Kind != Mapping {
		return nil
	}
	keys := make([]string, len(n.Entries))
	for i, e := range n.Entries {
		keys[i] = e.Key
	}
	return keys
}

// IsNull reports whether the node is an explicit null or the zero Node.
func (n Node) IsNull() bool {
	return n.Kind == Null
}

// BadSyntax is returned when a named document fails to parse as YAML.
type BadSyntax struct {
	File    string
	Message string
}

func (e *BadSyntax) Error() string {
	return fmt.Sprintf("%s: bad syntax: %s", e.File, e.Message)
}

// Decode parses content (the text of the document named name) into a Node
// tree. An empty document decodes to a Null node rather than an error.
func Decode(name string, content string) (Node, error) {
	file, err := parser.ParseBytes([]byte(content), 0)
	if err != nil {
		return Node{}, &BadSyntax{File: name, Message: err.Error()}
	}
	if len(file.Docs) == 0 || file.Docs[0].Body == nil {
		return Node{Kind: Null}, nil
	}
	node, err := convert(file.Docs[0].Body)
	if err != nil {
		return Node{}, &BadSyntax{File: name, Message: err.Error()}
	}
	return node, nil
}

func convert(n ast.Node) (Node, error) {
	switch v := n.(type) {
	case nil:
		return Node{Kind: Null}, nil
	case *ast.NullNode:
		return Node{Kind: Null}, nil
	case *ast.MappingNode:
		entries := make([]Entry, 0, len(v.Values))
		for _, mv := range v.Values {
			entry, err := convertMappingValue(mv)
			if err != nil {
				return Node{}, err
			}
			entries = append(entries, entry)
		}
		return Node{Kind: Mapping, Entries: entries}, nil
	case *ast.MappingValueNode:
		entry, err := convertMappingValue(v)
		if err != nil {
			return Node{}, err
		}
		return Node{Kind: Mapping, Entries: []Entry{entry}}, nil
	case *ast.SequenceNode:
		elements := make([]Node, 0, len(v.Values))
		for _, item := range v.Values {
			child, err := convert(item)
			if err != nil {
				return Node{}, err
			}
			elements = append(elements, child)
		}
		return Node{Kind: Sequence, Elements: elements}, nil
	case *ast.StringNode:
		return Node{Kind: Scalar, Text: v.Value}, nil
	case *ast.IntegerNode:
		return Node{Kind: Scalar, Text: fmt.Sprint(v.Value)}, nil
	case *ast.FloatNode:
		return Node{Kind: Scalar, Text: fmt.Sprint(v.Value)}, nil
	case *ast.BoolNode:
		return Node{Kind: Scalar, Text: fmt.Sprint(v.Value)}, nil
	case *ast.LiteralNode:
		if v.Value != nil {
			return Node{Kind: Scalar, Text: v.Value.Value}, nil
		}
		return Node{Kind: Scalar, Text: v.String()}, nil
	case *ast.TagNode:
		return convert(v.Value)
	case *ast.AnchorNode:
		return convert(v.Value)
	case *ast.AliasNode:
		return convert(v.Value)
	case *ast.CommentNode:
		return Node{Kind: Null}, nil
	default:
		text := strings.TrimSpace(n.String())
		if text == "" || text == "~" || strings.EqualFold(text, "null") {
			return Node{Kind: Null}, nil
		}
		return Node{Kind: Scalar, Text: unquote(text)}, nil
	}
}

func convertMappingValue(mv *ast.MappingValueNode) (Entry, error) {
	keyNode, err := convert(mv.Key)
	if err != nil {
		return Entry{}, err
	}
	if keyNode.Kind != Scalar {
		return Entry{}, fmt.Errorf("mapping key at line %d is not a scalar", mv.GetToken().Position.Line)
	}
	value, err := convert(mv.Value)
	if err != nil {
		return Entry{}, err
	}
	return Entry{Key: keyNode.Text, Value: value}, nil
}

func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
