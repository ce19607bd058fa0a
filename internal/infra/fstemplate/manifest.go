package fstemplate

import (
	"encoding/json"
	"io/fs"

	"github.com/v-gjy/redwood/internal/domain"
)

// ReadManifest parses the root package.json of a template tree.
func ReadManifest(tree fs.FS) (domain.PackageManifest, error) {
	b, err := fs.ReadFile(tree, "package.json")
	if err != nil {
		return domain.PackageManifest{}, &domain.OpError{
			Op:   "fstemplate.manifest",
			Kind: domain.KindNotFound,
			Path: "package.json",
			Err:  err,
		}
	}

	var m domain.PackageManifest
	if err := json.Unmarshal(b, &m); err != nil {
		return domain.PackageManifest{}, &domain.OpError{
			Op:   "fstemplate.manifest",
			Kind: domain.KindInvalidConfig,
			Path: "package.json",
			Err:  err,
		}
	}
	if m.Engines == nil {
		m.Engines = domain.Engines{}
	}
	return m, nil
}
