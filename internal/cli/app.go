// Package cli wires the wsm commands to the workspace, sync and foreach
// engines.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/tasuku43/wsm/internal/domain/config"
	"github.com/tasuku43/wsm/internal/infra/debuglog"
	"github.com/tasuku43/wsm/internal/infra/gitcmd"
	"github.com/tasuku43/wsm/internal/infra/output"
	"github.com/tasuku43/wsm/internal/infra/paths"
	"github.com/tasuku43/wsm/internal/ui"
)

const (
	timeoutEnv = "WSM_GIT_TIMEOUT"
	jobsEnv    = "WSM_JOBS"
)

// exitError carries an exit code for a failure that was already reported
// to the user.
type exitError struct {
	code int
}

func (e exitError) Error() string {
	return "exit status " + strconv.Itoa(e.code)
}

type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	rootFlag   string
	configFlag string
	jobs       int
	timeout    time.Duration
	noPrompt   bool
	verbose    bool
	debug      bool

	cwd      string
	root     string
	legacy   string
	backend  *gitcmd.Backend
	renderer *ui.Renderer
	theme    ui.Theme
	useColor bool
}

// Run executes the command line in args, where args[0] is the program name,
// and returns the process exit code.
func Run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	return RunContext(context.Background(), args, stdin, stdout, stderr)
}

func RunContext(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr, theme: ui.DefaultTheme()}
	a.useColor = isTerminal(stdout)
	a.renderer = ui.NewRenderer(stdout, a.theme, a.useColor)
	if file, ok := stdout.(*os.File); ok && a.useColor {
		ui.DetectWrapWidth(file.Fd())
	}
	defer a.teardown()

	root := a.rootCommand()
	if len(args) > 0 {
		args = args[1:]
	}
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	var exit exitError
	if errors.As(err, &exit) {
		return exit.code
	}
	a.reportError(err)
	return 1
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "wsm",
		Short:         "Workspace Manager",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
	root.Version = versionLine()
	root.SetVersionTemplate("{{.Version}}\n")

	flags := root.PersistentFlags()
	flags.StringVar(&a.rootFlag, "root", "", "workspace root (default: $"+paths.RootEnv+" or nearest root above cwd)")
	flags.StringVar(&a.configFlag, "config", "", "legacy configuration file (default: $"+paths.ConfigFileEnv+" or <root>/workspace.conf)")
	flags.IntVarP(&a.jobs, "jobs", "j", envInt(jobsEnv, 1), "repositories processed in parallel")
	flags.DurationVar(&a.timeout, "timeout", envDuration(timeoutEnv, gitcmd.DefaultTimeout), "timeout for each git command")
	flags.BoolVar(&a.noPrompt, "no-prompt", false, "never ask for confirmation")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "echo git commands")
	flags.BoolVar(&a.debug, "debug", false, "write a debug log under .wsm/logs")

	root.AddCommand(
		a.initCommand(),
		a.switchCommand(),
		a.syncCommand(),
		a.statusCommand(),
		a.foreachCommand(),
		a.listCommand(),
		a.cleanCommand(),
		a.configCommand(),
		a.repairCommand(),
		a.completionCommand(),
		a.versionCommand(),
	)
	root.SetHelpFunc(a.help)
	return root
}

func (a *app) setup() error {
	if a.jobs < 1 {
		return fmt.Errorf("--jobs must be at least 1, got %d", a.jobs)
	}
	if a.timeout <= 0 {
		return fmt.Errorf("--timeout must be positive, got %s", a.timeout)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	root, err := paths.ResolveRoot(a.rootFlag, cwd)
	if err != nil {
		return fmt.Errorf("resolve root: %w", err)
	}
	legacy, err := paths.ResolveLegacyConfig(a.configFlag, root)
	if err != nil {
		return fmt.Errorf("resolve config file: %w", err)
	}
	a.cwd = cwd
	a.root = root
	a.legacy = legacy
	a.backend = gitcmd.NewBackend(a.timeout)

	gitcmd.SetVerbose(a.verbose)
	output.SetWriter(a.stdout)
	output.SetStepLogger(a.renderer)
	if a.debug {
		if _, err := debuglog.Enable(debuglog.Dir(root)); err != nil {
			a.renderer.Warn(fmt.Sprintf("debug log disabled: %v", err))
		}
	}
	return nil
}

func (a *app) teardown() {
	gitcmd.SetVerbose(false)
	output.SetStepLogger(nil)
	output.SetWriter(nil)
	if debuglog.Enabled() {
		_ = debuglog.Close()
	}
}

func (a *app) reportError(err error) {
	if isTerminal(a.stderr) {
		r := ui.NewRenderer(a.stderr, a.theme, true)
		r.Blank()
		r.BulletError(fmt.Sprintf("error: %s", err.Error()))
		return
	}
	fmt.Fprintf(a.stderr, "Error: %s\n", err)
}

func (a *app) configPaths() config.Paths {
	return config.PathsFor(a.root, a.legacy)
}

func (a *app) loadConfig() (*config.Context, error) {
	ctx, err := config.Load(a.configPaths())
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	return ctx, nil
}

// resolve loads the configuration and resolves workspace, printing any
// malformed records as warnings.
func (a *app) resolve(workspace string) (config.Resolution, error) {
	ctx, err := a.loadConfig()
	if err != nil {
		return config.Resolution{}, err
	}
	res := ctx.Resolve(workspace)
	for _, diag := range res.Diagnostics {
		a.renderer.Warn("skipping malformed record: " + diag.Error())
	}
	return res, nil
}

func (a *app) prompter() *ui.Prompter {
	return &ui.Prompter{
		In:          a.stdin,
		Out:         a.stdout,
		Interactive: !a.noPrompt && isTerminal(a.stdin) && isTerminal(a.stdout),
		Theme:       a.theme,
		UseColor:    a.useColor,
	}
}

func isTerminal(v any) bool {
	file, ok := v.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}

func envInt(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
