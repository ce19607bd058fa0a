package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/v-gjy/redwood/internal/buildinfo"
)

const commandName = "create-redwood-app"

// errReported marks an error that was already printed to the user.
var errReported = errors.New("reported")

// Execute runs the command with the process arguments and exits non-zero on
// failure. Interrupts cancel the running task.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := newApp(os.Stdout, os.Stderr).run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}

// app holds the process boundary so tests can swap it.
type app struct {
	out    io.Writer
	errOut io.Writer
	getenv func(string) string
	isTTY  func(io.Writer) bool
}

func newApp(out, errOut io.Writer) *app {
	return &app{
		out:    out,
		errOut: errOut,
		getenv: os.Getenv,
		isTTY:  isTerminal,
	}
}

func (a *app) run(ctx context.Context, args []string) int {
	cmd := a.newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(a.out)
	cmd.SetErr(a.errOut)

	if err := cmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(a.errOut, styles.err.Render("Error: "+err.Error()))
		}
		return 1
	}
	return 0
}

type flags struct {
	yarnInstall   bool
	noYarnInstall bool
	typescript    bool
	overwrite     bool
	template      string
	debug         bool
	logFile       string
}

func (a *app) newRootCmd() *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:           commandName + " <project-directory>",
		Short:         "Create a new Redwood project",
		Version:       buildinfo.Version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 || args[0] == "" {
				printUsageHint(a.errOut)
				return errReported
			}
			if f.noYarnInstall {
				f.yarnInstall = false
			}
			return a.create(cmd.Context(), args[0], f)
		},
	}
	cmd.SetVersionTemplate(buildinfo.String() + "\n")

	fl := cmd.Flags()
	fl.BoolVar(&f.yarnInstall, "yarn-install", true, "install node modules (use --no-yarn-install to skip)")
	fl.BoolVar(&f.noYarnInstall, "no-yarn-install", false, "skip installing node modules")
	fl.BoolVar(&f.typescript, "typescript", false, "generate a TypeScript project (alias --ts)")
	fl.BoolVar(&f.overwrite, "overwrite", false, "create even if the target directory is not empty")
	fl.StringVar(&f.template, "template", "", "template directory or .zip/.tar.gz URL (defaults to the bundled template)")
	fl.BoolVar(&f.debug, "debug", false, "log every step and subprocess to stderr")
	fl.StringVar(&f.logFile, "log-file", "", "append JSON logs to this file instead")
	_ = fl.MarkHidden("no-yarn-install")
	fl.SetNormalizeFunc(aliasFlags)

	return cmd
}

// aliasFlags maps short aliases onto their canonical flag names.
func aliasFlags(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	if name == "ts" {
		name = "typescript"
	}
	return pflag.NormalizedName(name)
}

func printUsageHint(w io.Writer) {
	fmt.Fprintln(w, "Please specify the project directory")
	fmt.Fprintf(w, "  %s %s\n\n", styles.accent.Render(commandName), styles.path.Render("<project-directory>"))
	fmt.Fprintln(w, "For example:")
	fmt.Fprintf(w, "  %s %s\n", styles.accent.Render(commandName), styles.path.Render("my-redwood-app"))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
