package ports

import (
	"context"
	"io/fs"
)

// TemplateSource yields the file tree a new project is created from.
type TemplateSource interface {
	// Open returns the template tree rooted at its top directory. The returned
	// cleanup func releases any temporary files and is never nil.
	Open(ctx context.Context) (fs.FS, func() error, error)
}
