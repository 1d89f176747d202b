package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/davecgh/go-spew/spew"
	"github.com/olekukonko/tablewriter"
	"golang.org/x/sync/errgroup"
	"gopkg.in/urfave/cli.v1"

	"github.com/hackhud/simplesyntax/pkg/diagnostics"
	"github.com/hackhud/simplesyntax/pkg/evaluator"
	"github.com/hackhud/simplesyntax/pkg/formatter"
	"github.com/hackhud/simplesyntax/pkg/lexer"
	"github.com/hackhud/simplesyntax/pkg/parser"
	"github.com/hackhud/simplesyntax/pkg/runtime"
)

var (
	traceFileFlag = cli.StringFlag{
		Name:  "trace",
		Usage: "Write execution trace events as JSON lines to `FILE`",
	}
	envFlag = cli.BoolFlag{
		Name:  "env",
		Usage: "Print the final variable bindings after the program output",
	}
	writeFlag = cli.BoolFlag{
		Name:  "write",
		Usage: "Write the formatted program back to the file",
	}
)

func runCommand(e *env) cli.Command {
	return cli.Command{
		Action:    e.with(e.run),
		Name:      "run",
		Usage:     "Execute a program",
		ArgsUsage: "<file|->",
		Flags:     []cli.Flag{traceFileFlag, envFlag},
		Description: `
Executes the program and writes one line per print statement to standard
output. A runtime fault stops the program; the output printed so far is kept.`,
	}
}

func checkCommand(e *env) cli.Command {
	return cli.Command{
		Action:    e.with(e.check),
		Name:      "check",
		Usage:     "Parse programs without executing them",
		ArgsUsage: "<file> [<file>...]",
	}
}

func vetCommand(e *env) cli.Command {
	return cli.Command{
		Action:    e.with(e.vet),
		Name:      "vet",
		Usage:     "Report likely runtime faults without executing",
		ArgsUsage: "<file> [<file>...]",
		Description: `
Reports use before declaration, declarations inside loops, non-bool
conditions, operand type mismatches and constant division by zero. The
checks follow the program text, so they can miss faults and can report
code that never runs.`,
	}
}

func fmtCommand(e *env) cli.Command {
	return cli.Command{
		Action:    e.with(e.format),
		Name:      "fmt",
		Usage:     "Print a program in canonical form",
		ArgsUsage: "<file>",
		Flags:     []cli.Flag{writeFlag},
		Description: `
Comments are not preserved; a warning is printed when the input has any.`,
	}
}

func tokensCommand(e *env) cli.Command {
	return cli.Command{
		Action:    e.with(e.tokens),
		Name:      "tokens",
		Usage:     "Print the token stream of a program",
		ArgsUsage: "<file|->",
	}
}

func astCommand(e *env) cli.Command {
	return cli.Command{
		Action:    e.with(e.dumpAST),
		Name:      "ast",
		Usage:     "Print the syntax tree of a program",
		ArgsUsage: "<file|->",
	}
}

type runOptions struct {
	trace   io.Writer
	showEnv bool
}

func (e *env) run(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return usageError(ctx, "run takes exactly one program")
	}
	source, filename, err := e.readSource(ctx.Args().First())
	if err != nil {
		return e.fail(ctx, err)
	}

	opts := runOptions{showEnv: ctx.Bool(envFlag.Name)}
	if path := ctx.String(traceFileFlag.Name); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return e.fail(ctx, ioError(fmt.Sprintf("cannot create trace file: %v", err)))
		}
		defer f.Close()
		opts.trace = f
	}
	return e.execute(ctx, source, filename, opts)
}

func (e *env) execute(ctx *cli.Context, source, filename string, opts runOptions) error {
	rtOpts := []runtime.Option{runtime.WithStdout(ctx.App.Writer)}
	if opts.trace != nil {
		enc := json.NewEncoder(opts.trace)
		rtOpts = append(rtOpts, runtime.WithTrace(func(ev evaluator.TraceEvent) {
			if err := enc.Encode(ev); err != nil {
				e.log.Warn("Failed to write trace event", "event", ev.Event, "err", err)
			}
		}))
	}

	res, err := e.runtime(rtOpts...).Run(source, filename)
	if res != nil && opts.showEnv {
		e.printEnv(ctx.App.Writer, res.Env)
	}
	if err != nil {
		return e.fail(ctx, err)
	}
	return nil
}

func (e *env) printEnv(w io.Writer, env evaluator.Snapshot) {
	if !e.cfg.Pretty {
		b, _ := json.Marshal(env)
		fmt.Fprintln(w, string(b))
		return
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Name", "Type", "Value"})
	table.SetAutoFormatHeaders(false)
	for _, b := range env {
		table.Append([]string{b.Name, b.Value.TypeName(), b.Value.String()})
	}
	table.Render()
}

func (e *env) check(ctx *cli.Context) error {
	if ctx.NArg() == 0 {
		return usageError(ctx, "check needs at least one program")
	}
	return e.analyze(ctx, func(rt *runtime.Runtime, source, filename string) []diagnostics.Diagnostic {
		return rt.Check(source, filename)
	})
}

func (e *env) vet(ctx *cli.Context) error {
	if ctx.NArg() == 0 {
		return usageError(ctx, "vet needs at least one program")
	}
	return e.analyze(ctx, func(rt *runtime.Runtime, source, filename string) []diagnostics.Diagnostic {
		warnings, err := rt.Vet(source, filename)
		if de, ok := err.(*runtime.DiagnosticError); ok {
			return de.Diagnostics
		}
		return warnings
	})
}

// analyze runs fn over every file argument in parallel and reports the
// diagnostics in argument order.
func (e *env) analyze(ctx *cli.Context, fn func(rt *runtime.Runtime, source, filename string) []diagnostics.Diagnostic) error {
	files := ctx.Args()
	stdinArgs := 0
	for _, file := range files {
		if file == "-" {
			stdinArgs++
		}
	}
	if stdinArgs > 1 {
		return usageError(ctx, "standard input ('-') can only be read once")
	}
	rt := e.runtime()

	results := make([][]diagnostics.Diagnostic, len(files))
	var g errgroup.Group
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			source, filename, err := e.readSource(file)
			if err != nil {
				results[i] = []diagnostics.Diagnostic{diagnostics.FromError(err)}
				return nil
			}
			results[i] = fn(rt, source, filename)
			return nil
		})
	}
	// Failures are collected in results.
	g.Wait()

	var diags []diagnostics.Diagnostic
	for i, r := range results {
		e.log.Debug("Analyzed program", "command", ctx.Command.Name, "file", files[i], "diagnostics", len(r))
		diags = append(diags, r...)
	}
	if len(diags) > 0 {
		e.report(ctx, diags)
		return cli.NewExitError("", exitCode(diags))
	}
	if e.cfg.Pretty {
		fmt.Fprintln(ctx.App.Writer, "No errors found.")
	} else {
		fmt.Fprintln(ctx.App.Writer, "[]")
	}
	return nil
}

func (e *env) format(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return usageError(ctx, "fmt takes exactly one program")
	}
	file := ctx.Args().First()
	source, filename, err := e.readSource(file)
	if err != nil {
		return e.fail(ctx, err)
	}
	formatted, err := e.runtime().Format(source, filename)
	if err != nil {
		return e.fail(ctx, err)
	}
	if formatter.HasComments(source) {
		fmt.Fprintln(ctx.App.ErrWriter, "warning: comments are not preserved by the formatter")
	}

	if !ctx.Bool(writeFlag.Name) || file == "-" {
		fmt.Fprint(ctx.App.Writer, formatted)
		return nil
	}
	if formatted == source {
		return nil
	}
	if err := os.WriteFile(file, []byte(formatted), 0644); err != nil {
		return e.fail(ctx, ioError(fmt.Sprintf("cannot write file: %v", err)))
	}
	e.log.Info("Formatted program", "file", file)
	return nil
}

type tokenJSON struct {
	Type   string `json:"type"`
	Text   string `json:"text,omitempty"`
	Offset int    `json:"offset"`
	Line   int    `json:"line"`
	Col    int    `json:"col"`
}

func (e *env) tokens(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return usageError(ctx, "tokens takes exactly one program")
	}
	source, filename, err := e.readSource(ctx.Args().First())
	if err != nil {
		return e.fail(ctx, err)
	}

	// Print what was scanned before a lex error, then report it.
	var toks []lexer.Token
	lx := lexer.New(source, filename)
	var lexErr error
	for {
		tok, err := lx.NextToken()
		if err != nil {
			lexErr = err
			break
		}
		toks = append(toks, tok)
		if tok.Type == lexer.TokEOF {
			break
		}
	}

	if e.cfg.Pretty {
		table := tablewriter.NewWriter(ctx.App.Writer)
		table.SetHeader([]string{"Offset", "Pos", "Type", "Text"})
		table.SetAutoFormatHeaders(false)
		for _, tok := range toks {
			table.Append([]string{
				strconv.Itoa(tok.Pos.Offset),
				fmt.Sprintf("%d:%d", tok.Pos.Line, tok.Pos.Col),
				tok.Type.String(),
				tok.Text,
			})
		}
		table.Render()
	} else {
		out := make([]tokenJSON, len(toks))
		for i, tok := range toks {
			out[i] = tokenJSON{tok.Type.String(), tok.Text, tok.Pos.Offset, tok.Pos.Line, tok.Pos.Col}
		}
		b, _ := json.Marshal(out)
		fmt.Fprintln(ctx.App.Writer, string(b))
	}

	if lexErr != nil {
		return e.fail(ctx, lexErr)
	}
	return nil
}

var astDumper = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

func (e *env) dumpAST(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return usageError(ctx, "ast takes exactly one program")
	}
	source, filename, err := e.readSource(ctx.Args().First())
	if err != nil {
		return e.fail(ctx, err)
	}
	program, err := parser.Parse(source, filename)
	if err != nil {
		return e.fail(ctx, err)
	}
	astDumper.Fdump(ctx.App.Writer, program)
	return nil
}
