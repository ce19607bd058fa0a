package fstemplate

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/v-gjy/redwood/internal/domain"
	"github.com/v-gjy/redwood/internal/ports"
)

// gitignoreTemplate is renamed to .gitignore on write. Package registries
// strip dotfiles named .gitignore, so templates ship it under this name.
const gitignoreTemplate = "gitignore.template"

// Writer copies a template tree into a project directory.
type Writer struct{}

func NewWriter() *Writer {
	return &Writer{}
}

var _ ports.ProjectWriter = (*Writer)(nil)

// Write copies every file of tree under root. Existing files are kept unless
// overwrite is set.
func (w *Writer) Write(tree fs.FS, root string, overwrite bool) error {
	root = filepath.Clean(root)

	if err := os.MkdirAll(root, 0o755); err != nil {
		return &domain.OpError{Op: "fstemplate.mkdir", Kind: domain.KindExecution, Path: root, Err: err}
	}

	err := fs.WalkDir(tree, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p == "." {
				return nil
			}
			return os.MkdirAll(filepath.Join(root, filepath.FromSlash(p)), 0o755)
		}

		rel := p
		if path.Base(rel) == gitignoreTemplate {
			rel = path.Join(path.Dir(rel), ".gitignore")
		}
		dst := filepath.Join(root, filepath.FromSlash(rel))

		if !overwrite {
			if _, statErr := os.Stat(dst); statErr == nil {
				return nil
			}
		}

		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return err
		}

		b, err := fs.ReadFile(tree, p)
		if err != nil {
			return err
		}

		return os.WriteFile(dst, b, fileMode(rel, d))
	})
	if err != nil {
		return &domain.OpError{Op: "fstemplate.copy", Kind: domain.KindExecution, Path: root, Err: err}
	}

	if err := ensureGitignore(root); err != nil {
		return &domain.OpError{Op: "fstemplate.gitignore", Kind: domain.KindExecution, Path: root, Err: err}
	}
	return nil
}

func fileMode(rel string, d fs.DirEntry) fs.FileMode {
	if info, err := d.Info(); err == nil && info.Mode().Perm()&0o111 != 0 {
		return 0o755
	}
	if strings.HasSuffix(rel, ".sh") {
		return 0o755
	}
	return 0o644
}

func ensureGitignore(root string) error {
	const header = "# Redwood"
	entries := []string{
		"node_modules",
		".env",
		".redwood",
		"dist",
		"web/types/graphql.d.ts",
		"api/types/graphql.d.ts",
	}

	path := filepath.Join(root, ".gitignore")
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			lines := append([]string{header}, entries...)
			lines = append(lines, "")
			return os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644)
		}
		return err
	}

	existing := string(b)
	present := map[string]bool{}
	for _, line := range strings.Split(existing, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		present[trimmed] = true
	}

	var missing []string
	for _, e := range entries {
		if !present[e] {
			missing = append(missing, e)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	var out strings.Builder
	out.Grow(len(existing) + 64)

	out.WriteString(existing)
	if existing != "" && !strings.HasSuffix(existing, "\n") {
		out.WriteByte('\n')
	}
	out.WriteByte('\n')
	if !present[header] {
		out.WriteString(header)
		out.WriteByte('\n')
	}
	for _, e := range missing {
		out.WriteString(e)
		out.WriteByte('\n')
	}

	return os.WriteFile(path, []byte(out.String()), 0o644)
}
