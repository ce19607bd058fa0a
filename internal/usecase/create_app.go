package usecase

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/v-gjy/redwood/internal/ctxlog"
	"github.com/v-gjy/redwood/internal/domain"
	"github.com/v-gjy/redwood/internal/infra/fstemplate"
	"github.com/v-gjy/redwood/internal/ports"
	"github.com/v-gjy/redwood/internal/tasks"
)

// Task titles, shared with the renderers and tests.
const (
	TitleDownload   = "Downloading template"
	TitleVersions   = "Checking node and yarn compatibility"
	TitleCreate     = "Creating Redwood app"
	TitleMkdir      = "Creating directory"
	TitleCopy       = "Copying template files"
	TitleInstall    = "Installing packages"
	TitleConvert    = "Convert TypeScript files to JavaScript"
	TitleGenerate   = "Generating types"
	SkipInstallNote = "Skipped yarn install step"
)

// CreateDeps are the adapters CreateApp drives.
type CreateDeps struct {
	Template       ports.TemplateSource
	Writer         ports.ProjectWriter
	PackageManager ports.PackageManager
	Probe          ports.VersionProbe

	// RemoteTemplate adds a visible download step before the version check.
	RemoteTemplate bool
}

// CreateResult describes what a run produced.
type CreateResult struct {
	Dir    string
	Checks []domain.VersionCheck

	// DirCreated is true when the target exists after the run. On failure it
	// means the directory was left partially populated.
	DirCreated bool
}

// CreateApp scaffolds a new project: version check, template copy, install,
// optional TypeScript-to-JavaScript conversion, type generation.
type CreateApp struct {
	deps     CreateDeps
	versions *CheckVersions
	validate *validator.Validate
}

func NewCreateApp(deps CreateDeps) *CreateApp {
	return &CreateApp{
		deps:     deps,
		versions: NewCheckVersions(deps.Probe),
		validate: newValidator(),
	}
}

// Validate checks the options before anything touches the disk.
func (uc *CreateApp) Validate(opts domain.CreateOptions) error {
	if err := uc.validate.Struct(opts); err != nil {
		return &domain.OpError{Op: "create.options", Kind: domain.KindInvalidConfig, Err: describeValidation(err)}
	}
	return nil
}

// CheckTarget fails when dir exists and is not an empty directory, unless
// overwrite is set.
func CheckTarget(dir string, overwrite bool) error {
	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return &domain.OpError{Op: "create.target", Kind: domain.KindExecution, Path: dir, Err: err}
	}
	if !info.IsDir() {
		return &domain.OpError{
			Op:   "create.target",
			Kind: domain.KindTargetExists,
			Path: dir,
			Err:  fmt.Errorf("%q exists and is not a directory", dir),
		}
	}
	if overwrite {
		return nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return &domain.OpError{Op: "create.target", Kind: domain.KindExecution, Path: dir, Err: err}
	}
	if len(entries) > 0 {
		return &domain.OpError{
			Op:   "create.target",
			Kind: domain.KindTargetExists,
			Path: dir,
			Err:  fmt.Errorf("'%s' already exists and is not empty: %w", dir, domain.ErrTargetNotEmpty),
		}
	}
	return nil
}

// Execute validates opts, checks the target and runs the task list. The
// observer sees every task transition.
func (uc *CreateApp) Execute(ctx context.Context, opts domain.CreateOptions, obs tasks.Observer) (CreateResult, error) {
	if err := uc.Validate(opts); err != nil {
		return CreateResult{}, err
	}

	dir, err := filepath.Abs(strings.TrimSpace(opts.TargetDir))
	if err != nil {
		return CreateResult{}, &domain.OpError{Op: "create.target", Kind: domain.KindInvalidConfig, Path: opts.TargetDir, Err: err}
	}
	res := CreateResult{Dir: dir}

	if err := CheckTarget(dir, opts.Overwrite); err != nil {
		return res, err
	}

	run := &createRun{uc: uc, opts: opts, dir: dir}
	defer run.close(ctx)

	ctxlog.FromContext(ctx).Info("create.start",
		"dir", dir,
		"yarn_install", opts.YarnInstall,
		"typescript", opts.TypeScript,
		"overwrite", opts.Overwrite,
	)

	err = tasks.New(run.tasks(), tasks.WithObserver(obs)).Run(ctx)

	res.Checks = run.checks
	res.DirCreated = dirExists(dir)
	return res, err
}

// createRun carries the state shared by the tasks of a single Execute.
type createRun struct {
	uc   *CreateApp
	opts domain.CreateOptions
	dir  string

	tree    fs.FS
	cleanup func() error
	checks  []domain.VersionCheck
}

func (r *createRun) tasks() []tasks.Task {
	var list []tasks.Task

	if r.uc.deps.RemoteTemplate {
		list = append(list, tasks.Task{
			Title: TitleDownload,
			Run:   r.openTemplate,
		})
	}

	list = append(list,
		tasks.Task{
			Title: TitleVersions,
			Run:   r.checkVersions,
		},
		tasks.Task{
			Title: TitleCreate,
			Subtasks: []tasks.Task{
				{
					Title: fmt.Sprintf("%s '%s'", TitleMkdir, r.dir),
					Run: func(context.Context) error {
						if err := os.MkdirAll(r.dir, 0o755); err != nil {
							return &domain.OpError{Op: "create.mkdir", Kind: domain.KindExecution, Path: r.dir, Err: err}
						}
						return nil
					},
				},
				{
					Title: TitleCopy,
					Run: func(ctx context.Context) error {
						if err := r.openTemplate(ctx); err != nil {
							return err
						}
						return r.uc.deps.Writer.Write(r.tree, r.dir, r.opts.Overwrite)
					},
				},
			},
		},
		tasks.Task{
			Title: TitleInstall,
			Skip: func() string {
				if !r.opts.YarnInstall {
					return SkipInstallNote
				}
				return ""
			},
			Run: func(ctx context.Context) error {
				return r.uc.deps.PackageManager.Install(ctx, r.dir)
			},
		},
		tasks.Task{
			Title:   TitleConvert,
			Enabled: r.opts.ConvertToJS,
			Run: func(ctx context.Context) error {
				return r.uc.deps.PackageManager.Run(ctx, r.dir, "rw", "ts-to-js")
			},
		},
		tasks.Task{
			Title:   TitleGenerate,
			Enabled: r.opts.GenerateTypes,
			Run: func(ctx context.Context) error {
				return r.uc.deps.PackageManager.Run(ctx, r.dir, "rw-gen")
			},
		},
	)
	return list
}

func (r *createRun) openTemplate(ctx context.Context) error {
	if r.tree != nil {
		return nil
	}
	tree, cleanup, err := r.uc.deps.Template.Open(ctx)
	if err != nil {
		return err
	}
	r.tree = tree
	r.cleanup = cleanup
	return nil
}

func (r *createRun) checkVersions(ctx context.Context) error {
	if err := r.openTemplate(ctx); err != nil {
		return err
	}
	manifest, err := fstemplate.ReadManifest(r.tree)
	if err != nil {
		return err
	}
	checks, err := r.uc.versions.Execute(ctx, manifest.Engines)
	r.checks = checks
	return err
}

func (r *createRun) close(ctx context.Context) {
	if r.cleanup == nil {
		return
	}
	if err := r.cleanup(); err != nil {
		ctxlog.FromContext(ctx).Warn("template.cleanup_failed", "error", err)
	}
}

func dirExists(dir string) bool {
	info, err := os.Stat(dir)
	return err == nil && info.IsDir()
}
