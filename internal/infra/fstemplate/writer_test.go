package fstemplate

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
)

func TestWriter_Write_EmbeddedTemplate(t *testing.T) {
	tmp := t.TempDir()
	root := filepath.Join(tmp, "my-redwood-app")

	tree, cleanup, err := NewEmbedded().Open(context.Background())
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	defer cleanup()

	if err := NewWriter().Write(tree, root, false); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	assertFileExists(t, filepath.Join(root, "package.json"))
	assertFileExists(t, filepath.Join(root, "redwood.toml"))
	assertFileExists(t, filepath.Join(root, ".env.defaults"))
	assertFileExists(t, filepath.Join(root, "api", "src", "functions", "graphql.ts"))
	assertFileExists(t, filepath.Join(root, "web", "src", "App.tsx"))
	assertFileExists(t, filepath.Join(root, ".gitignore"))

	if _, err := os.Stat(filepath.Join(root, gitignoreTemplate)); !os.IsNotExist(err) {
		t.Fatalf("expected %s to be renamed, stat err=%v", gitignoreTemplate, err)
	}
}

func TestWriter_Write_SkipsExistingFilesUnlessOverwrite(t *testing.T) {
	tmp := t.TempDir()

	readme := filepath.Join(tmp, "README.md")
	if err := os.WriteFile(readme, []byte("custom\n"), 0o644); err != nil {
		t.Fatalf("write existing README.md: %v", err)
	}

	tree := fstest.MapFS{
		"README.md":    {Data: []byte("# Redwood\n")},
		"package.json": {Data: []byte("{}")},
	}

	w := NewWriter()
	if err := w.Write(tree, tmp, false); err != nil {
		t.Fatalf("Write (overwrite=false) error: %v", err)
	}

	b, err := os.ReadFile(readme)
	if err != nil {
		t.Fatalf("read README.md: %v", err)
	}
	if string(b) != "custom\n" {
		t.Fatalf("expected README.md preserved, got %q", string(b))
	}
	assertFileExists(t, filepath.Join(tmp, "package.json"))

	if err := w.Write(tree, tmp, true); err != nil {
		t.Fatalf("Write (overwrite=true) error: %v", err)
	}

	b, err = os.ReadFile(readme)
	if err != nil {
		t.Fatalf("read README.md after overwrite: %v", err)
	}
	if !strings.Contains(string(b), "# Redwood") {
		t.Fatalf("expected README.md overwritten with template, got %q", string(b))
	}
}

func TestWriter_Write_ExecutableScripts(t *testing.T) {
	tmp := t.TempDir()
	tree := fstest.MapFS{
		"scripts/setup.sh": {Data: []byte("#!/bin/sh\n")},
	}

	if err := NewWriter().Write(tree, tmp, false); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	info, err := os.Stat(filepath.Join(tmp, "scripts", "setup.sh"))
	if err != nil {
		t.Fatalf("stat script: %v", err)
	}
	if info.Mode().Perm()&0o100 == 0 {
		t.Fatalf("expected script to be executable, got %o", info.Mode().Perm())
	}
}

func TestDir_Open(t *testing.T) {
	tmp := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmp, "package.json"), []byte(`{"name":"tpl"}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	tree, cleanup, err := NewDir(tmp).Open(context.Background())
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	defer cleanup()

	m, err := ReadManifest(tree)
	if err != nil {
		t.Fatalf("ReadManifest error: %v", err)
	}
	if m.Name != "tpl" {
		t.Fatalf("expected name tpl, got %q", m.Name)
	}
}

func TestDir_Open_Missing(t *testing.T) {
	_, _, err := NewDir(filepath.Join(t.TempDir(), "nope")).Open(context.Background())
	if err == nil {
		t.Fatalf("expected error for missing template dir")
	}
}

func assertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected file %s, stat err=%v", path, err)
	}
}
