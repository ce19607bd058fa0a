package fstemplate

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/v-gjy/redwood/internal/domain"
	"github.com/v-gjy/redwood/internal/ports"
)

// Dir serves a template from a directory on disk.
type Dir struct {
	Path string
}

func NewDir(path string) *Dir {
	return &Dir{Path: path}
}

var _ ports.TemplateSource = (*Dir)(nil)

func (d *Dir) Open(_ context.Context) (fs.FS, func() error, error) {
	abs, err := filepath.Abs(d.Path)
	if err != nil {
		return nil, noop, &domain.OpError{Op: "fstemplate.dir", Kind: domain.KindInvalidConfig, Path: d.Path, Err: err}
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, noop, &domain.OpError{Op: "fstemplate.dir", Kind: domain.KindNotFound, Path: abs, Err: err}
	}
	if !info.IsDir() {
		return nil, noop, &domain.OpError{
			Op:   "fstemplate.dir",
			Kind: domain.KindInvalidConfig,
			Path: abs,
			Err:  fmt.Errorf("template is not a directory"),
		}
	}

	return os.DirFS(abs), noop, nil
}
