package dynaschema

import "fmt"

// Category sentinels group the taxonomy of failures by kind, matched with
// errors.Is. Concrete failures are typed structs below that wrap one of
// these via Unwrap, carrying the structured detail a caller needs.
var (
	// ErrEnvelope marks a malformed request: bad JSON, unknown command, or a
	// missing/mistyped argument.
	ErrEnvelope = fmt.Errorf("envelope error")

	// ErrSchemaLoad marks a failure while parsing or resolving a schema
	// bundle. The Schema Manager reverts to empty state on any such error.
	ErrSchemaLoad = fmt.Errorf("schema load error")

	// ErrDataLoad marks a failure while importing a data bundle.
	ErrDataLoad = fmt.Errorf("data load error")

	// ErrRegistry marks a failure from the entity registry itself (not the
	// values it holds): duplicate ids, unknown ids, mutation of a deleted
	// entity.
	ErrRegistry = fmt.Errorf("registry error")

	// ErrValidation marks a failure discovered by Validate(): a missing
	// required field, a range/enum violation, or a dangling reference.
	ErrValidation = fmt.Errorf("validation error")

	// ErrScript marks a failure raised by the Script Bridge.
	ErrScript = fmt.Errorf("script error")
)

// BadSyntaxError reports a document that failed to parse.
type BadSyntaxError struct {
	File    string
	Message string
}

func (e *BadSyntaxError) Error() string {
	return fmt.Sprintf("%s: %s", e.File, e.Message)
}
func (e *BadSyntaxError) Unwrap() error { return ErrSchemaLoad }

// DuplicateSchemaError reports two documents declaring the same schema name.
type DuplicateSchemaError struct{ Name string }

func (e *DuplicateSchemaError) Error() string {
	return fmt.Sprintf("duplicate schema %q", e.Name)
}
func (e *DuplicateSchemaError) Unwrap() error { return ErrSchemaLoad }

// InvalidTopLevelKeyError reports an unrecognized key at a schema
// document's root.
type InvalidTopLevelKeyError struct {
	File string
	Key  string
}

func (e *InvalidTopLevelKeyError) Error() string {
	return fmt.Sprintf("%s: unknown top-level key %q", e.File, e.Key)
}
func (e *InvalidTopLevelKeyError) Unwrap() error { return ErrSchemaLoad }

// MissingSchemaNameError reports a schema document with neither
// profile_name nor entity_name (or both).
type MissingSchemaNameError struct{ File string }

func (e *MissingSchemaNameError) Error() string {
	return fmt.Sprintf("%s: exactly one of 'profile_name' or 'entity_name' is required", e.File)
}
func (e *MissingSchemaNameError) Unwrap() error { return ErrSchemaLoad }

// WrongShapeError reports a schema document section that is present but
// not the mapping/sequence shape the loader requires.
type WrongShapeError struct {
	File string
	Path string
	Want string
}

func (e *WrongShapeError) Error() string {
	return fmt.Sprintf("%s: %s must be a %s", e.File, e.Path, e.Want)
}
func (e *WrongShapeError) Unwrap() error { return ErrSchemaLoad }

// UnknownFieldTypeError reports a field descriptor with an unrecognized or
// missing `type`.
type UnknownFieldTypeError struct {
	File  string
	Field string
	Type  string
}

func (e *UnknownFieldTypeError) Error() string {
	return fmt.Sprintf("%s: field %q has unknown type %q", e.File, e.Field, e.Type)
}
func (e *UnknownFieldTypeError) Unwrap() error { return ErrSchemaLoad }

// EmptyEnumError reports an enum field descriptor with no allowed values.
type EmptyEnumError struct {
	File  string
	Field string
}

func (e *EmptyEnumError) Error() string {
	return fmt.Sprintf("%s: enum field %q must declare at least one value", e.File, e.Field)
}
func (e *EmptyEnumError) Unwrap() error { return ErrSchemaLoad }

// UnknownReferenceTargetError reports a reference field whose target does
// not resolve to a known entity schema.
type UnknownReferenceTargetError struct {
	Field  string
	Target string
}

func (e *UnknownReferenceTargetError) Error() string {
	return fmt.Sprintf("field %q references unknown entity schema %q", e.Field, e.Target)
}
func (e *UnknownReferenceTargetError) Unwrap() error { return ErrSchemaLoad }

// UnknownChildEntityError reports a child-relation whose target entity name
// does not resolve.
type UnknownChildEntityError struct {
	Relation string
	Name     string
}

func (e *UnknownChildEntityError) Error() string {
	return fmt.Sprintf("relation %q references unknown entity schema %q", e.Relation, e.Name)
}
func (e *UnknownChildEntityError) Unwrap() error { return ErrSchemaLoad }

// DuplicateRelationError reports the same child-relation tag declared
// twice within one entity schema.
type DuplicateRelationError struct {
	Schema   string
	Relation string
}

func (e *DuplicateRelationError) Error() string {
	return fmt.Sprintf("entity %q declares relation %q more than once", e.Schema, e.Relation)
}
func (e *DuplicateRelationError) Unwrap() error { return ErrSchemaLoad }

// DuplicateFieldError reports a duplicate field name within one object
// field schema.
type DuplicateFieldError struct {
	Parent string
	Field  string
}

func (e *DuplicateFieldError) Error() string {
	return fmt.Sprintf("%s: duplicate field %q", e.Parent, e.Field)
}
func (e *DuplicateFieldError) Unwrap() error { return ErrSchemaLoad }

// InvalidRangeError reports a primitive field whose declared min exceeds
// its declared max.
type InvalidRangeError struct {
	Field string
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("field %q has min greater than max", e.Field)
}
func (e *InvalidRangeError) Unwrap() error { return ErrSchemaLoad }

// MissingSchemaError reports a data document entity with no `_schema` key.
type MissingSchemaError struct{ EntityID string }

func (e *MissingSchemaError) Error() string {
	return fmt.Sprintf("entity %q is missing required key '_schema'", e.EntityID)
}
func (e *MissingSchemaError) Unwrap() error { return ErrDataLoad }

// UnknownSchemaError reports a reference (in data or createEntity) to an
// entity schema name the Schema Manager does not know.
type UnknownSchemaError struct{ Name string }

func (e *UnknownSchemaError) Error() string {
	return fmt.Sprintf("unknown schema %q", e.Name)
}
func (e *UnknownSchemaError) Unwrap() error { return ErrDataLoad }

// UnknownFieldError reports a key present in a value's source document that
// is not declared by its schema.
type UnknownFieldError struct{ Field string }

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown field %q", e.Field)
}
func (e *UnknownFieldError) Unwrap() error { return ErrDataLoad }

// BadValueFormatError reports a scalar that does not parse as its field's
// declared type.
type BadValueFormatError struct {
	Field string
	Got   string
}

func (e *BadValueFormatError) Error() string {
	return fmt.Sprintf("field %q: %q is not a valid value", e.Field, e.Got)
}
func (e *BadValueFormatError) Unwrap() error { return ErrDataLoad }

// MissingRequiredError reports a required field left empty at Validate time.
type MissingRequiredError struct{ Field string }

func (e *MissingRequiredError) Error() string {
	return fmt.Sprintf("field %q is required", e.Field)
}
func (e *MissingRequiredError) Unwrap() error { return ErrValidation }

// RangeViolationError reports a numeric value outside its field's declared
// min/max.
type RangeViolationError struct {
	Field string
	Value string
	Min   string
	Max   string
}

func (e *RangeViolationError) Error() string {
	switch {
	case e.Min != "" && e.Max != "":
		return fmt.Sprintf("field %q: %s is outside [%s, %s]", e.Field, e.Value, e.Min, e.Max)
	case e.Min != "":
		return fmt.Sprintf("field %q: %s is below minimum %s", e.Field, e.Value, e.Min)
	default:
		return fmt.Sprintf("field %q: %s is above maximum %s", e.Field, e.Value, e.Max)
	}
}
func (e *RangeViolationError) Unwrap() error { return ErrValidation }

// EnumViolationError reports a value that is not one of its field's
// declared members.
type EnumViolationError struct {
	Field string
	Value string
}

func (e *EnumViolationError) Error() string {
	return fmt.Sprintf("field %q: %q is not an allowed value", e.Field, e.Value)
}
func (e *EnumViolationError) Unwrap() error { return ErrValidation }

// DanglingReferenceError reports a reference field whose stored id does
// not name a live entity of the expected schema.
type DanglingReferenceError struct {
	Field  string
	Target string
	Got    string
}

func (e *DanglingReferenceError) Error() string {
	if e.Got == "" {
		return fmt.Sprintf("field %q: reference target is empty", e.Field)
	}
	return fmt.Sprintf("field %q: %q is not a live %s", e.Field, e.Got, e.Target)
}
func (e *DanglingReferenceError) Unwrap() error { return ErrValidation }

// DuplicateEntityError reports an attempt to add an entity id already
// present in the registry.
type DuplicateEntityError struct{ ID string }

func (e *DuplicateEntityError) Error() string {
	return fmt.Sprintf("duplicate entity %q", e.ID)
}
func (e *DuplicateEntityError) Unwrap() error { return ErrRegistry }

// EntityNotFoundError reports a reference to an id with no matching entity.
type EntityNotFoundError struct{ ID string }

func (e *EntityNotFoundError) Error() string {
	return fmt.Sprintf("entity %q not found", e.ID)
}
func (e *EntityNotFoundError) Unwrap() error { return ErrRegistry }

// DeletedEntityMutationError reports a mutation attempt against an entity
// whose state is already Deleted.
type DeletedEntityMutationError struct{ ID string }

func (e *DeletedEntityMutationError) Error() string {
	return fmt.Sprintf("entity %q is deleted", e.ID)
}
func (e *DeletedEntityMutationError) Unwrap() error { return ErrRegistry }

// InvalidParentError reports a parentId that does not name a live entity.
type InvalidParentError struct{ ParentID string }

func (e *InvalidParentError) Error() string {
	return fmt.Sprintf("parent %q does not exist or is deleted", e.ParentID)
}
func (e *InvalidParentError) Unwrap() error { return ErrRegistry }

// ScriptNotFoundError reports a script path the file-system abstraction
// could not read.
type ScriptNotFoundError struct{ Path string }

func (e *ScriptNotFoundError) Error() string {
	return fmt.Sprintf("script %q not found", e.Path)
}
func (e *ScriptNotFoundError) Unwrap() error { return ErrScript }

// ScriptFailedError reports a script that ran to completion but returned
// ok=false.
type ScriptFailedError struct {
	Path    string
	Message string
}

func (e *ScriptFailedError) Error() string {
	return fmt.Sprintf("script %q failed: %s", e.Path, e.Message)
}
func (e *ScriptFailedError) Unwrap() error { return ErrScript }

// ScriptReturnShapeError reports a script whose result did not have the
// required (ok bool, message string) shape.
type ScriptReturnShapeError struct{ Path string }

func (e *ScriptReturnShapeError) Error() string {
	return fmt.Sprintf("script %q did not return (ok bool, message string)", e.Path)
}
func (e *ScriptReturnShapeError) Unwrap() error { return ErrScript }

// UnknownCommandError reports a router request naming a command the
// Router does not recognize.
type UnknownCommandError struct{ Name string }

func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("unknown command %q", e.Name)
}
func (e *UnknownCommandError) Unwrap() error { return ErrEnvelope }

// MissingArgumentError reports a request missing a required field, or
// carrying it with the wrong JSON type.
type MissingArgumentError struct {
	Command string
	Field   string
}

func (e *MissingArgumentError) Error() string {
	return fmt.Sprintf("%s: missing or invalid %q", e.Command, e.Field)
}
func (e *MissingArgumentError) Unwrap() error { return ErrEnvelope }
