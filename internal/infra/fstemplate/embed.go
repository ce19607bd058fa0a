package fstemplate

import (
	"context"
	"embed"
	"io/fs"

	"github.com/v-gjy/redwood/internal/ports"
)

//go:embed all:template
var templatesFS embed.FS

// Embedded serves the template bundled into the binary.
type Embedded struct{}

func NewEmbedded() *Embedded {
	return &Embedded{}
}

var _ ports.TemplateSource = (*Embedded)(nil)

func (e *Embedded) Open(_ context.Context) (fs.FS, func() error, error) {
	sub, err := fs.Sub(templatesFS, "template")
	if err != nil {
		return nil, noop, err
	}
	return sub, noop, nil
}

func noop() error { return nil }
