package mapping

// File represents the root of a YAML descriptor file.
type File struct {
	// Version of the descriptor schema.
	Version string `yaml:"version,omitempty"`

	// Containers declares constant containers.
	Containers []ContainerDef `yaml:"containers,omitempty"`

	// Types declares the operations of named types.
	Types []TypeDef `yaml:"types,omitempty"`
}

// ContainerDef declares a constant container.
type ContainerDef struct {
	Namespace string         `yaml:"namespace"`
	Data      map[string]any `yaml:"data"`
}

// TypeDef declares the operations of one type.
type TypeDef struct {
	// Type is the name the type was registered under in a TypeRegistry.
	Type string `yaml:"type"`

	Assemble    []AssembleDef    `yaml:"assemble,omitempty"`
	Disassemble []DisassembleDef `yaml:"disassemble,omitempty"`
}

// AssembleDef declares an assemble operation.
type AssembleDef struct {
	// Key is the property path holding the lookup key.
	Key string `yaml:"key"`

	// Container is the namespace looked up. Empty uses the object itself.
	Container string `yaml:"container,omitempty"`

	Groups StringOrArray `yaml:"groups,omitempty"`
	Sort   int           `yaml:"sort,omitempty"`

	// Handler is one of one-to-one, one-to-many or many-to-many.
	Handler string `yaml:"handler,omitempty"`

	// Separator splits string keys of many-to-many operations.
	Separator string `yaml:"separator,omitempty"`

	// Strategy is one of overwrite, overwrite-not-null or reference-merge.
	Strategy string `yaml:"strategy,omitempty"`

	Props PropArray `yaml:"props,omitempty"`
}

// Prop copies the Src property of a looked-up value into the Ref property
// of the target.
type Prop struct {
	Src string `yaml:"src,omitempty"`
	Ref string `yaml:"ref,omitempty"`
}

// DisassembleDef declares a disassemble operation.
type DisassembleDef struct {
	Key    string        `yaml:"key"`
	Groups StringOrArray `yaml:"groups,omitempty"`
	Sort   int           `yaml:"sort,omitempty"`

	// Type fixes the nested type. Empty resolves each nested instance by its
	// runtime type.
	Type string `yaml:"type,omitempty"`
}

// StringOrArray accepts a single string or a list of strings.
type StringOrArray []string

// PropArray accepts a single ref, a single mapping or a list of either.
type PropArray []Prop
