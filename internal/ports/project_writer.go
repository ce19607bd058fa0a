package ports

import (
	"io/fs"
)

// ProjectWriter materializes a template tree into a project directory.
type ProjectWriter interface {
	Write(tree fs.FS, root string, overwrite bool) error
}
