// Package manifest holds the collaborator-facing input types: the JSON
// package manifests produced by the declaration scanner and the YAML
// locale configuration. The core engine only ever sees these values;
// how they were discovered from source code is not its concern.
package manifest

// TypeInfo describes one localizable type and its variants, as declared
// by the external scanner.
type TypeInfo struct {
	TypeName string    `json:"type_name"`
	Variants []Variant `json:"variants"`
}

// Variant is a single generated entry of a type. A key without a "-"
// separator denotes the type-level ("this") entry.
type Variant struct {
	Name   string   `json:"name"`
	FTLKey string   `json:"ftl_key"`
	Args   []string `json:"args,omitempty"`
}

// IsThis reports whether the variant is the type-level entry. "this"
// keys sort before their dashed sibling variant keys.
func (v Variant) IsThis() bool {
	for _, r := range v.FTLKey {
		if r == '-' {
			return false
		}
	}
	return true
}

// ExpectedKey declares one key the translations must contain, with the
// variables its value is expected to reference.
type ExpectedKey struct {
	Key        string   `json:"key"`
	Variables  []string `json:"variables,omitempty"`
	SourceFile string   `json:"source_file,omitempty"`
	SourceLine int      `json:"source_line,omitempty"`
}

// Manifest is one package's declaration record: the types fed to the
// merge engine and the expected key set fed to the validator.
type Manifest struct {
	Package string        `json:"package"`
	Types   []TypeInfo    `json:"types,omitempty"`
	Keys    []ExpectedKey `json:"keys,omitempty"`
}
