// Package dynaschema implements a schema-driven, in-memory entity store:
// a dynamic schema graph loaded from a declarative document bundle, a
// polymorphic value tree that mirrors each schema, an entity registry
// enforcing parent/child and reference integrity with cascading lifecycle
// state, and a JSON request router exposing the whole runtime through a
// single command surface.
package dynaschema
