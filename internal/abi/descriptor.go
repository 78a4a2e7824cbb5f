package abi

import "encoding/json"

// LibraryType distinguishes long-lived Services from one-shot Skills.
type LibraryType string

const (
	// LibraryTypeService marks a plugin that runs for the process lifetime
	// via Start/Stop.
	LibraryTypeService LibraryType = "Service"
	// LibraryTypeSkill marks a plugin invoked on demand via Run.
	LibraryTypeSkill LibraryType = "Skill"
)

// Provision names a single capability a plugin exports and the symbol
// that implements it.
type Provision struct {
	Capability string `json:"capability" yaml:"capability"`
	Entry      string `json:"entry" yaml:"entry"`
}

// Descriptor is the self-description a plugin returns over its Summary
// symbol: name, version, kind, the capabilities it provides, and the
// plugins it requires by name. It is exchanged as a NUL-terminated JSON
// string in the reference ABI; here it is parsed straight from the
// plugin's Summary() return value.
type Descriptor struct {
	Name        string      `json:"name"`
	Version     string      `json:"version"`
	LibraryType LibraryType `json:"library_type"`
	Provides    []Provision `json:"provides"`
	Requires    []string    `json:"requires"`
}

// ParseDescriptor decodes a Descriptor from the JSON text returned by a
// plugin's Summary symbol.
func ParseDescriptor(jsonText string) (Descriptor, error) {
	var d Descriptor
	if err := json.Unmarshal([]byte(jsonText), &d); err != nil {
		return Descriptor{}, err
	}
	return d, nil
}

// ProvisionEntry looks up the entry symbol name for a provided capability,
// reporting whether the descriptor provides it at all.
func (d Descriptor) ProvisionEntry(capability string) (string, bool) {
	for _, p := range d.Provides {
		if p.Capability == capability {
			return p.Entry, true
		}
	}
	return "", false
}
