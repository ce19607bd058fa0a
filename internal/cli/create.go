package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/v-gjy/redwood/internal/ctxlog"
	"github.com/v-gjy/redwood/internal/domain"
	"github.com/v-gjy/redwood/internal/infra/fstemplate"
	"github.com/v-gjy/redwood/internal/infra/logger"
	"github.com/v-gjy/redwood/internal/infra/remotetemplate"
	"github.com/v-gjy/redwood/internal/infra/shell"
	"github.com/v-gjy/redwood/internal/infra/yarn"
	"github.com/v-gjy/redwood/internal/ports"
	"github.com/v-gjy/redwood/internal/tasks"
	"github.com/v-gjy/redwood/internal/ui/tui"
	"github.com/v-gjy/redwood/internal/usecase"
)

const (
	envYarnBin = "REDWOOD_YARN_BIN"
	envNodeBin = "REDWOOD_NODE_BIN"
)

func (a *app) create(ctx context.Context, targetDir string, f flags) error {
	cleanup, err := logger.Setup(logger.Config{Path: f.logFile, Debug: f.debug, Out: a.errOut})
	if err != nil {
		return err
	}
	defer func() { _ = cleanup() }()

	log := logger.L()
	ctx = ctxlog.WithLogger(ctx, log)

	opts := domain.DefaultCreateOptions()
	opts.TargetDir = targetDir
	opts.YarnInstall = f.yarnInstall
	opts.TypeScript = f.typescript
	opts.Overwrite = f.overwrite
	opts.Template = f.template

	shellOpts := []shell.Option{shell.WithLogger(log)}
	if f.debug {
		shellOpts = append(shellOpts, shell.WithStream(a.errOut))
	}
	pm := yarn.New(shell.New(shellOpts...),
		yarn.WithBinary("yarn", a.getenv(envYarnBin)),
		yarn.WithBinary("node", a.getenv(envNodeBin)),
	)

	uc := usecase.NewCreateApp(usecase.CreateDeps{
		Template:       templateSource(opts.Template, log),
		Writer:         fstemplate.NewWriter(),
		PackageManager: pm,
		Probe:          pm,
		RemoteTemplate: remotetemplate.IsRemote(opts.Template),
	})

	fmt.Fprintf(a.out, "%s\n\n", styles.title.Render("Welcome to Redwood!"))

	var res usecase.CreateResult
	err = a.renderer(f.debug).Run(ctx, func(ctx context.Context, obs tasks.Observer) error {
		var execErr error
		res, execErr = uc.Execute(ctx, opts, obs)
		return execErr
	})
	if err != nil {
		log.Error("create.failed", "dir", res.Dir, "error", err)
		printFailure(a.errOut, err, res, logger.Path())
		return errReported
	}

	log.Info("create.done", "dir", res.Dir)
	if f.debug {
		printChecks(a.out, res.Checks)
	}
	printSuccess(a.out, res.Dir)
	return nil
}

// templateSource resolves --template: the bundled tree when empty, an archive
// download for http(s) URLs, a local directory otherwise.
func templateSource(loc string, log *slog.Logger) ports.TemplateSource {
	switch {
	case loc == "":
		return fstemplate.NewEmbedded()
	case remotetemplate.IsRemote(loc):
		return remotetemplate.New(loc, remotetemplate.WithLogger(log))
	default:
		return fstemplate.NewDir(loc)
	}
}

// renderer picks the spinner list on a terminal and plain lines otherwise.
// Debug output interleaves with subprocess logs, so it always uses lines.
func (a *app) renderer(debug bool) tui.Renderer {
	if a.isTTY(a.out) && !debug {
		return tui.NewInteractive(a.out, logger.L())
	}
	theme := tui.PlainTheme()
	if a.isTTY(a.out) {
		theme = tui.DefaultTheme()
	}
	return tui.NewPlain(a.out, theme)
}

func printSuccess(w io.Writer, dir string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, styles.title.Render("Thanks for trying out Redwood!"))
	fmt.Fprintln(w)
	fmt.Fprintf(w, " ⚡️ %s\n", "Get up and running fast with this Quick Start guide: "+styles.accent.Render("https://redwoodjs.com/docs/quick-start"))
	fmt.Fprintln(w)
	fmt.Fprintln(w, styles.title.Render("Join the Community"))
	fmt.Fprintf(w, " ❖ Join our Forums: %s\n", styles.accent.Render("https://community.redwoodjs.com"))
	fmt.Fprintf(w, " ❖ Join our Chat: %s\n", styles.accent.Render("https://discord.gg/redwoodjs"))
	fmt.Fprintln(w)
	fmt.Fprintln(w, styles.title.Render("Get some help"))
	fmt.Fprintf(w, " ❖ Get started with the Tutorial: %s\n", styles.accent.Render("https://redwoodjs.com/docs/tutorial"))
	fmt.Fprintf(w, " ❖ Read the Documentation: %s\n", styles.accent.Render("https://redwoodjs.com/docs"))
	fmt.Fprintln(w)
	fmt.Fprintln(w, styles.title.Render("Fire it up! 🚀"))
	fmt.Fprintln(w)
	fmt.Fprintf(w, " > %s\n", styles.path.Render("cd "+displayDir(dir)))
	fmt.Fprintf(w, " > %s\n", styles.path.Render("yarn rw dev"))
	fmt.Fprintln(w)
}

// printChecks lists the toolchain versions the engines check compared.
func printChecks(w io.Writer, checks []domain.VersionCheck) {
	if len(checks) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, styles.faint.Render(fmt.Sprintf("%-6s %-20s %s", "tool", "wanted", "installed")))
	for _, c := range checks {
		have := styles.path.Render(c.Have)
		if !c.Satisfied {
			have = styles.err.Render(c.Have)
		}
		fmt.Fprintf(w, "%-6s %-20s %s\n", c.Name, c.Wanted, have)
	}
}

func printFailure(w io.Writer, err error, res usecase.CreateResult, logPath string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, styles.err.Render(err.Error()))
	if res.DirCreated {
		fmt.Fprintln(w)
		fmt.Fprintln(w, styles.warn.Render(fmt.Sprintf(
			"Warning: Directory `%s` was created, however the installation could not complete.",
			res.Dir,
		)))
	}
	if logPath != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, styles.faint.Render("Details were logged to "+logPath))
	}
}

// displayDir prefers a path relative to the working directory.
func displayDir(dir string) string {
	wd, err := os.Getwd()
	if err != nil {
		return dir
	}
	rel, err := filepath.Rel(wd, dir)
	if err != nil || strings.HasPrefix(rel, "..") {
		return dir
	}
	return rel
}
