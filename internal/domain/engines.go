package domain

import "sort"

// Engines maps a tool name (node, yarn) to the version range a template wants,
// as declared by the "engines" field of its package.json.
type Engines map[string]string

// Names returns tool names in a stable order.
func (e Engines) Names() []string {
	out := make([]string, 0, len(e))
	for k := range e {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// VersionCheck is the outcome of comparing one installed tool against its range.
type VersionCheck struct {
	Name      string
	Wanted    string
	Have      string
	Satisfied bool
}

// PackageManifest is the subset of package.json the scaffolder reads.
type PackageManifest struct {
	Name    string  `json:"name"`
	Engines Engines `json:"engines"`
}
