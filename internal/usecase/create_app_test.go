package usecase

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"github.com/v-gjy/redwood/internal/domain"
	"github.com/v-gjy/redwood/internal/infra/fstemplate"
	"github.com/v-gjy/redwood/internal/tasks"
)

// --- fakes ---

type mapSource struct {
	tree    fstest.MapFS
	opened  int
	cleaned int
}

func (m *mapSource) Open(context.Context) (fs.FS, func() error, error) {
	m.opened++
	return m.tree, func() error { m.cleaned++; return nil }, nil
}

type fakePM struct {
	calls    []string
	failOn   string
	failWith error
}

func (f *fakePM) Install(ctx context.Context, dir string) error {
	return f.Run(ctx, dir, "install")
}

func (f *fakePM) Run(_ context.Context, _ string, args ...string) error {
	call := strings.Join(args, " ")
	f.calls = append(f.calls, call)
	if call == f.failOn {
		return f.failWith
	}
	return nil
}

type eventLog struct {
	events []tasks.Event
}

func (l *eventLog) OnEvent(e tasks.Event) { l.events = append(l.events, e) }

func (l *eventLog) titles(kind tasks.EventKind) []string {
	var out []string
	for _, e := range l.events {
		if e.Kind == kind {
			out = append(out, e.Title)
		}
	}
	return out
}

func templateTree() fstest.MapFS {
	return fstest.MapFS{
		"package.json":       {Data: []byte(`{"engines":{"node":">=14.19 <=16.x","yarn":">=1.15"}}`)},
		"gitignore.template": {Data: []byte("node_modules\n")},
		"web/src/App.tsx":    {Data: []byte("export default App\n")},
	}
}

func goodProbe() fakeProbe {
	return fakeProbe{versions: map[string]string{"node": "v16.13.0", "yarn": "1.22.17"}}
}

func newTestCreateApp(src *mapSource, pm *fakePM, probe fakeProbe) *CreateApp {
	return NewCreateApp(CreateDeps{
		Template:       src,
		Writer:         fstemplate.NewWriter(),
		PackageManager: pm,
		Probe:          probe,
	})
}

// --- tests ---

func TestCreateApp_DefaultRunsEveryStep(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "my-redwood-app")
	src := &mapSource{tree: templateTree()}
	pm := &fakePM{}
	log := &eventLog{}

	opts := domain.DefaultCreateOptions()
	opts.TargetDir = dir

	res, err := newTestCreateApp(src, pm, goodProbe()).Execute(context.Background(), opts, log)
	require.NoError(t, err)
	require.Equal(t, dir, res.Dir)
	require.True(t, res.DirCreated)
	require.Len(t, res.Checks, 2)

	require.Equal(t, []string{"install", "rw ts-to-js", "rw-gen"}, pm.calls)
	require.FileExists(t, filepath.Join(dir, "web", "src", "App.tsx"))
	require.FileExists(t, filepath.Join(dir, ".gitignore"))
	require.Equal(t, 1, src.opened, "template must be opened once")
	require.Equal(t, 1, src.cleaned, "template cleanup must run")

	require.Equal(t, []string{
		TitleVersions,
		TitleCreate,
		TitleMkdir + " '" + dir + "'",
		TitleCopy,
		TitleInstall,
		TitleConvert,
		TitleGenerate,
	}, log.titles(tasks.EventStarted))
}

func TestCreateApp_TypeScriptSkipsConversion(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "app")
	pm := &fakePM{}

	opts := domain.CreateOptions{TargetDir: dir, YarnInstall: true, TypeScript: true}
	_, err := newTestCreateApp(&mapSource{tree: templateTree()}, pm, goodProbe()).Execute(context.Background(), opts, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"install", "rw-gen"}, pm.calls)
}

func TestCreateApp_NoYarnInstallSkipsInstallAndTypes(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "app")
	pm := &fakePM{}
	log := &eventLog{}

	opts := domain.CreateOptions{TargetDir: dir, YarnInstall: false}
	_, err := newTestCreateApp(&mapSource{tree: templateTree()}, pm, goodProbe()).Execute(context.Background(), opts, log)
	require.NoError(t, err)

	require.Empty(t, pm.calls)
	require.Equal(t, []string{TitleInstall}, log.titles(tasks.EventSkipped))
	require.NotContains(t, log.titles(tasks.EventStarted), TitleGenerate)
	require.NotContains(t, log.titles(tasks.EventStarted), TitleConvert)

	for _, e := range log.events {
		if e.Kind == tasks.EventSkipped {
			require.Equal(t, SkipInstallNote, e.Reason)
		}
	}
}

func TestCreateApp_NonEmptyTargetWithoutOverwrite(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "keep.txt"), []byte("x"), 0o644))

	src := &mapSource{tree: templateTree()}
	pm := &fakePM{}

	_, err := newTestCreateApp(src, pm, goodProbe()).Execute(context.Background(), domain.CreateOptions{TargetDir: dir, YarnInstall: true}, nil)
	require.Error(t, err)
	require.True(t, domain.IsKind(err, domain.KindTargetExists))
	require.ErrorIs(t, err, domain.ErrTargetNotEmpty)
	require.Contains(t, err.Error(), "already exists and is not empty")
	require.Zero(t, src.opened)
	require.Empty(t, pm.calls)
}

func TestCreateApp_OverwriteAllowsNonEmptyTarget(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "keep.txt"), []byte("x"), 0o644))

	opts := domain.CreateOptions{TargetDir: dir, Overwrite: true}
	_, err := newTestCreateApp(&mapSource{tree: templateTree()}, &fakePM{}, goodProbe()).Execute(context.Background(), opts, nil)
	require.NoError(t, err)
	require.FileExists(t, filepath.Join(dir, "keep.txt"))
	require.FileExists(t, filepath.Join(dir, "package.json"))
}

func TestCreateApp_VersionMismatchStopsBeforeCreatingDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "app")
	pm := &fakePM{}
	probe := fakeProbe{versions: map[string]string{"node": "v12.0.0", "yarn": "1.0.0"}}

	res, err := newTestCreateApp(&mapSource{tree: templateTree()}, pm, probe).Execute(context.Background(), domain.CreateOptions{TargetDir: dir, YarnInstall: true}, nil)
	require.Error(t, err)
	require.True(t, domain.IsKind(err, domain.KindVersionMismatch))

	var te *tasks.Error
	require.ErrorAs(t, err, &te)
	require.Equal(t, TitleVersions, te.Title)

	require.False(t, res.DirCreated)
	require.NoDirExists(t, dir)
	require.Empty(t, pm.calls)
}

func TestCreateApp_InstallFailureLeavesPartialDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "app")
	boom := errors.New("network unreachable")
	pm := &fakePM{failOn: "install", failWith: boom}

	res, err := newTestCreateApp(&mapSource{tree: templateTree()}, pm, goodProbe()).Execute(context.Background(), domain.CreateOptions{TargetDir: dir, YarnInstall: true}, nil)
	require.ErrorIs(t, err, boom)
	require.True(t, res.DirCreated)
	require.Equal(t, []string{"install"}, pm.calls, "later steps must not run")
}

func TestCreateApp_RemoteTemplateAddsDownloadStep(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "app")
	log := &eventLog{}

	uc := NewCreateApp(CreateDeps{
		Template:       &mapSource{tree: templateTree()},
		Writer:         fstemplate.NewWriter(),
		PackageManager: &fakePM{},
		Probe:          goodProbe(),
		RemoteTemplate: true,
	})
	_, err := uc.Execute(context.Background(), domain.CreateOptions{TargetDir: dir}, log)
	require.NoError(t, err)
	require.Equal(t, TitleDownload, log.titles(tasks.EventStarted)[0])
}

func TestCreateApp_ValidateOptions(t *testing.T) {
	uc := newTestCreateApp(&mapSource{}, &fakePM{}, goodProbe())

	err := uc.Validate(domain.CreateOptions{})
	require.True(t, domain.IsKind(err, domain.KindInvalidConfig))
	require.Contains(t, err.Error(), "TargetDir is required")

	err = uc.Validate(domain.CreateOptions{TargetDir: "app", Template: "ftp://example.com/t.zip"})
	require.True(t, domain.IsKind(err, domain.KindInvalidConfig))
	require.Contains(t, err.Error(), "Template")

	require.NoError(t, uc.Validate(domain.CreateOptions{TargetDir: "app", Template: "https://example.com/t.zip"}))
	require.NoError(t, uc.Validate(domain.CreateOptions{TargetDir: "app", Template: "../templates/app"}))
}

func TestCheckTarget(t *testing.T) {
	tmp := t.TempDir()

	require.NoError(t, CheckTarget(filepath.Join(tmp, "missing"), false))
	require.NoError(t, CheckTarget(tmp, false), "empty directory is fine")

	file := filepath.Join(tmp, "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	require.True(t, domain.IsKind(CheckTarget(file, true), domain.KindTargetExists))

	require.True(t, domain.IsKind(CheckTarget(tmp, false), domain.KindTargetExists))
	require.NoError(t, CheckTarget(tmp, true))
}
