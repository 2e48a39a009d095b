package dynaschema

// Command is the sole concrete command variant: a scripted command that
// invokes a script at ScriptPath with Params passed through verbatim.
type Command struct {
	ID         string
	ScriptPath string
	Params     map[string]string
}

func (c *Command) ToJSON() map[string]interface{} {
	params := make(map[string]interface{}, len(c.Params))
	for k, v := range c.Params {
		params[k] = v
	}
	return map[string]interface{}{
		"id":         c.ID,
		"scriptPath": c.ScriptPath,
		"params":     params,
	}
}

// EntitySchema is a named node in the schema graph: an ordered set of
// declared fields, a set of child relations (weak references to other
// entity schemas, resolved by name at load time), and a set of scripted
// commands. Profile schemas are EntitySchemas declared with profile_name
// instead of entity_name and are eligible to appear as data roots.
type EntitySchema struct {
	name      string
	isProfile bool

	fields     []FieldSchema
	fieldIndex map[string]int

	childrenTags  []string
	childrenByTag map[string]*EntitySchema

	commands   []string
	commandSet map[string]*Command
}

// newEntitySchema returns an empty Entity Schema ready for Pass 2
// population by the Schema Manager.
func newEntitySchema(name string, isProfile bool) *EntitySchema {
	return &EntitySchema{
		name:          name,
		isProfile:     isProfile,
		fieldIndex:    make(map[string]int),
		childrenByTag: make(map[string]*EntitySchema),
		commandSet:    make(map[string]*Command),
	}
}

func (s *EntitySchema) Name() string     { return s.name }
func (s *EntitySchema) IsProfile() bool  { return s.isProfile }

// setFields installs the entity's declared fields in declaration order.
// Called once by the Schema Manager during Pass 2.
func (s *EntitySchema) setFields(fields []FieldSchema) {
	s.fields = fields
	s.fieldIndex = make(map[string]int, len(fields))
	for i, f := range fields {
		s.fieldIndex[f.Name()] = i
	}
}

// Field returns the named declared field schema.
func (s *EntitySchema) Field(name string) (FieldSchema, bool) {
	i, ok := s.fieldIndex[name]
	if !ok {
		return nil, false
	}
	return s.fields[i], true
}

// Fields returns the entity's declared fields in declaration order.
func (s *EntitySchema) Fields() []FieldSchema { return s.fields }

// addChild links relation tag to target, the target schema it resolves
// to. Called once per relation by the Schema Manager during Pass 2;
// returns false if tag is already linked (duplicate relation).
func (s *EntitySchema) addChild(tag string, target *EntitySchema) bool {
	if _, exists := s.childrenByTag[tag]; exists {
		return false
	}
	s.childrenByTag[tag] = target
	s.childrenTags = append(s.childrenTags, tag)
	return true
}

// ChildrenTags returns the entity's declared relation tags in declaration
// order.
func (s *EntitySchema) ChildrenTags() []string { return s.childrenTags }

// ChildSchema returns the target entity schema linked under tag.
func (s *EntitySchema) ChildSchema(tag string) (*EntitySchema, bool) {
	target, ok := s.childrenByTag[tag]
	return target, ok
}

// addCommand registers command under id. Called once per command by the
// Schema Manager during Pass 2; returns false if id is already taken.
func (s *EntitySchema) addCommand(id string, command *Command) bool {
	if _, exists := s.commandSet[id]; exists {
		return false
	}
	s.commandSet[id] = command
	s.commands = append(s.commands, id)
	return true
}

// Command returns the command registered under id.
func (s *EntitySchema) Command(id string) (*Command, bool) {
	c, ok := s.commandSet[id]
	return c, ok
}

// CommandIDs returns the entity's declared command ids in declaration
// order.
func (s *EntitySchema) CommandIDs() []string { return s.commands }

func (s *EntitySchema) ToJSON() map[string]interface{} {
	fields := make(map[string]interface{}, len(s.fields))
	for _, f := range s.fields {
		fields[f.Name()] = f.ToJSON()
	}
	children := make(map[string]interface{}, len(s.childrenTags))
	for _, tag := range s.childrenTags {
		children[tag] = s.childrenByTag[tag].name
	}
	commands := make([]string, len(s.commands))
	copy(commands, s.commands)
	return map[string]interface{}{
		"name":     s.name,
		"fields":   fields,
		"children": children,
		"commands": commands,
	}
}
