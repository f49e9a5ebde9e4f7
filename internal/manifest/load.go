package manifest

import (
	"encoding/json"
	"fmt"
	"os"
)

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric       = "E001" // Generic/unknown error
	ErrCodeScanError     = "E002" // Directory scan error
	ErrCodeNotFound      = "E003" // Path not found
	ErrCodeManifestParse = "E004" // Manifest JSON invalid
	ErrCodeManifestEmpty = "E005" // Manifest has no package name
	ErrCodeConfigInvalid = "E006" // Locale config unreadable/invalid
	ErrCodeWriteFailed   = "E007" // File write error
)

// LoadError is a typed loading failure carrying an error code and the
// offending path.
type LoadError struct {
	Code    string
	Message string
	Path    string
}

func (e *LoadError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %s", e.Path, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Load reads and decodes a package manifest. Duplicate expected keys are
// merged, their variable sets unioned, so downstream consumers can rely
// on key uniqueness.
func Load(path string) (*Manifest, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: "manifest not found", Path: path}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeScanError, Message: err.Error(), Path: path}
	}

	var m Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, &LoadError{Code: ErrCodeManifestParse, Message: err.Error(), Path: path}
	}
	if m.Package == "" {
		return nil, &LoadError{Code: ErrCodeManifestEmpty, Message: "manifest declares no package name", Path: path}
	}

	m.Keys = mergeKeys(m.Keys)
	return &m, nil
}

// LoadAll loads every manifest path, failing on the first error.
func LoadAll(paths []string) ([]*Manifest, error) {
	manifests := make([]*Manifest, 0, len(paths))
	for _, path := range paths {
		m, err := Load(path)
		if err != nil {
			return nil, err
		}
		manifests = append(manifests, m)
	}
	return manifests, nil
}

func mergeKeys(keys []ExpectedKey) []ExpectedKey {
	seen := make(map[string]int)
	merged := make([]ExpectedKey, 0, len(keys))
	for _, key := range keys {
		idx, ok := seen[key.Key]
		if !ok {
			seen[key.Key] = len(merged)
			merged = append(merged, key)
			continue
		}
		merged[idx].Variables = unionVariables(merged[idx].Variables, key.Variables)
	}
	return merged
}

func unionVariables(a, b []string) []string {
	present := make(map[string]struct{}, len(a))
	for _, v := range a {
		present[v] = struct{}{}
	}
	for _, v := range b {
		if _, ok := present[v]; !ok {
			present[v] = struct{}{}
			a = append(a, v)
		}
	}
	return a
}
