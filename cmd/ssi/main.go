// Command ssi runs, checks and formats simplesyntax programs.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/inconshreveable/log15"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"gopkg.in/urfave/cli.v1"

	"github.com/hackhud/simplesyntax/pkg/config"
	"github.com/hackhud/simplesyntax/pkg/diagnostics"
	"github.com/hackhud/simplesyntax/pkg/runtime"
)

const (
	exitOK     = 0
	exitUsage  = 1 // bad arguments or unreadable files
	exitSyntax = 2 // lex or parse errors
	exitVet    = 3 // validator warnings
	exitFault  = 4 // runtime faults
)

// demoProgram runs when ssi is started without a program.
const demoProgram = `int x;
int y;
x = 1;
y = 10;
while (x < y) {
  print(x);
  x = x + 1;
}
if (x == y) { print(999); } else { print(0); }
`

var (
	configFileFlag = cli.StringFlag{
		Name:  "config",
		Usage: "TOML configuration file",
	}
	prettyFlag = cli.BoolFlag{
		Name:  "pretty",
		Usage: "Human readable diagnostics (--pretty=false prints JSON)",
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Usage: "Logging verbosity: 0=silent, 1=crit, 2=error, 3=warn, 4=info, 5=debug",
		Value: config.Defaults.Verbosity,
	}
	noColorFlag = cli.BoolFlag{
		Name:  "nocolor",
		Usage: "Disable colored output",
	}
)

// env is the state shared by all commands of one invocation.
type env struct {
	cfg     config.Config
	cfgPath string
	log     log15.Logger
	stdin   io.Reader
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *cli.App {
	e := &env{stdin: stdin}

	app := cli.NewApp()
	app.Name = "ssi"
	app.Usage = "the simplesyntax interpreter"
	app.Version = "0.3.0"
	app.ArgsUsage = "[<file>]"
	app.Writer = stdout
	app.ErrWriter = stderr
	app.Flags = []cli.Flag{
		configFileFlag,
		prettyFlag,
		verbosityFlag,
		noColorFlag,
	}
	app.Commands = []cli.Command{
		runCommand(e),
		checkCommand(e),
		vetCommand(e),
		fmtCommand(e),
		tokensCommand(e),
		astCommand(e),
		traceCommand(e),
		replCommand(e),
		dumpConfigCommand(e),
	}
	app.Action = e.with(e.runDefault)
	return app
}

func main() {
	app := newApp(os.Stdin, os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		// Exit coders have already terminated the process.
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitUsage)
	}
}

// with runs setup before fn. Setup failures are returned from the action,
// where cli.v1 turns them into exit codes without printing the app help as
// it does for a failing Before.
func (e *env) with(fn func(*cli.Context) error) func(*cli.Context) error {
	return func(ctx *cli.Context) error {
		if err := e.setup(ctx); err != nil {
			return err
		}
		return fn(ctx)
	}
}

// setup resolves the configuration, applies the global flags on top of it and
// builds the root logger.
func (e *env) setup(ctx *cli.Context) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	cfg, path, err := config.Resolve(ctx.GlobalString(configFileFlag.Name), cwd)
	if err != nil {
		fmt.Fprintln(ctx.App.ErrWriter, err)
		return cli.NewExitError("", exitUsage)
	}
	if ctx.GlobalIsSet(prettyFlag.Name) {
		cfg.Pretty = ctx.GlobalBool(prettyFlag.Name)
	}
	if ctx.GlobalIsSet(verbosityFlag.Name) {
		cfg.Verbosity = ctx.GlobalInt(verbosityFlag.Name)
	}
	if ctx.GlobalBool(noColorFlag.Name) {
		cfg.Color = false
	}
	e.cfg, e.cfgPath = cfg, path

	w, tty := terminalWriter(ctx.App.ErrWriter)
	useColor := cfg.Color && tty
	color.NoColor = !useColor
	e.log = newLogger(w, cfg.Verbosity, useColor)
	if path != "" {
		e.log.Debug("Loaded configuration", "file", path)
	}
	return nil
}

// terminalWriter wraps w for ANSI output when it is a terminal.
func terminalWriter(w io.Writer) (io.Writer, bool) {
	f, ok := w.(*os.File)
	if !ok {
		return w, false
	}
	if isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()) {
		return colorable.NewColorable(f), true
	}
	return w, false
}

// newLogger returns a logger writing to w. Verbosity 0 discards everything,
// 5 lets debug records through.
func newLogger(w io.Writer, verbosity int, useColor bool) log15.Logger {
	logger := log15.New()
	if verbosity <= 0 {
		logger.SetHandler(log15.DiscardHandler())
		return logger
	}
	format := log15.LogfmtFormat()
	if useColor {
		format = log15.TerminalFormat()
	}
	logger.SetHandler(log15.LvlFilterHandler(log15.Lvl(verbosity-1), log15.StreamHandler(w, format)))
	return logger
}

func (e *env) runtime(opts ...runtime.Option) *runtime.Runtime {
	base := []runtime.Option{
		runtime.WithLogger(e.log),
		runtime.WithCacheSize(e.cfg.CacheSize),
		runtime.WithDebugTrace(e.cfg.Verbosity > int(log15.LvlDebug)),
	}
	return runtime.New(append(base, opts...)...)
}

// runDefault runs the file named on the command line, or the demo program
// when there is none.
func (e *env) runDefault(ctx *cli.Context) error {
	if ctx.NArg() == 0 {
		fmt.Fprintln(ctx.App.ErrWriter, "no program given, running the demo program")
		return e.execute(ctx, demoProgram, "<demo>", runOptions{})
	}
	source, filename, err := e.readSource(ctx.Args().First())
	if err != nil {
		return e.fail(ctx, err)
	}
	return e.execute(ctx, source, filename, runOptions{})
}

// readSource reads a program from file, or from standard input when file
// is "-".
func (e *env) readSource(file string) (string, string, error) {
	if file == "-" {
		data, err := io.ReadAll(e.stdin)
		if err != nil {
			return "", "", ioError(fmt.Sprintf("reading stdin: %v", err))
		}
		return string(data), "<stdin>", nil
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return "", "", ioError(fmt.Sprintf("cannot read file: %s", file))
	}
	return string(data), file, nil
}

// usageError prints msg and the command usage line.
func usageError(ctx *cli.Context, msg string) error {
	fmt.Fprintf(ctx.App.ErrWriter, "%s\nusage: %s %s %s\n", msg, ctx.App.Name, ctx.Command.Name, ctx.Command.ArgsUsage)
	return cli.NewExitError("", exitUsage)
}

// fail reports err as a diagnostic and returns the matching exit error.
func (e *env) fail(ctx *cli.Context, err error) error {
	var diags []diagnostics.Diagnostic
	if de, ok := err.(*runtime.DiagnosticError); ok {
		diags = de.Diagnostics
	} else {
		diags = []diagnostics.Diagnostic{diagnostics.FromError(err)}
	}
	e.report(ctx, diags)
	return cli.NewExitError("", exitCode(diags))
}

func (e *env) report(ctx *cli.Context, diags []diagnostics.Diagnostic) {
	if e.cfg.Pretty {
		for _, d := range diags {
			fmt.Fprintln(ctx.App.ErrWriter, diagnostics.FormatDiagnostic(d, true))
		}
		return
	}
	fmt.Fprintln(ctx.App.ErrWriter, diagnostics.FormatDiagnostics(diags, false))
}

// exitCode picks the exit status for a set of diagnostics. I/O problems take
// precedence over syntax errors, and syntax errors over warnings.
func exitCode(diags []diagnostics.Diagnostic) int {
	code := exitOK
	for _, d := range diags {
		switch {
		case d.Code == diagnostics.EIO:
			return exitUsage
		case d.Code == diagnostics.ELex || d.Code == diagnostics.EParse:
			code = exitSyntax
		case diagnostics.IsWarning(d.Code):
			if code == exitOK {
				code = exitVet
			}
		case code == exitOK:
			code = exitFault
		}
	}
	return code
}

// ioDiagError is an I/O failure of the CLI itself.
type ioDiagError struct {
	Diag diagnostics.Diagnostic
}

func ioError(msg string) error {
	return &ioDiagError{Diag: diagnostics.MakeDiag(diagnostics.EIO, msg, nil, "")}
}

func (e *ioDiagError) Error() string                      { return e.Diag.Message }
func (e *ioDiagError) Diagnostic() diagnostics.Diagnostic { return e.Diag }
