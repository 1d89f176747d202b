// Package runtime wires the lexer, parser, formatter and interpreter
// together behind one entry point.
package runtime

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"
	"github.com/inconshreveable/log15"

	"github.com/hackhud/simplesyntax/pkg/ast"
	"github.com/hackhud/simplesyntax/pkg/diagnostics"
	"github.com/hackhud/simplesyntax/pkg/evaluator"
	"github.com/hackhud/simplesyntax/pkg/formatter"
	"github.com/hackhud/simplesyntax/pkg/parser"
	"github.com/hackhud/simplesyntax/pkg/validator"
)

// DefaultCacheSize is the number of parsed programs kept by default.
const DefaultCacheSize = 64

// Result holds the outcome of a program execution.
type Result struct {
	RunID  string
	Output []string
	Env    evaluator.Snapshot
}

// Runtime wires together all components for program execution.
type Runtime struct {
	stdout     io.Writer
	trace      func(event evaluator.TraceEvent)
	debugTrace bool
	runID      string
	log        log15.Logger
	cacheSize  int
	programs   *lru.Cache // filename+source -> *ast.Block
}

// Option is a functional option for configuring the Runtime.
type Option func(*Runtime)

// WithStdout sets where printed values are written.
func WithStdout(w io.Writer) Option {
	return func(rt *Runtime) {
		rt.stdout = w
	}
}

// WithRunID fixes the run ID for trace events. By default every run gets a
// fresh UUID.
func WithRunID(id string) Option {
	return func(rt *Runtime) {
		rt.runID = id
	}
}

// WithTrace sets the trace callback.
func WithTrace(fn func(event evaluator.TraceEvent)) Option {
	return func(rt *Runtime) {
		rt.trace = fn
	}
}

// WithDebugTrace logs every trace event at debug level. Off by default,
// since it costs a log record per executed statement.
func WithDebugTrace(on bool) Option {
	return func(rt *Runtime) {
		rt.debugTrace = on
	}
}

// WithLogger sets the logger. By default nothing is logged.
func WithLogger(l log15.Logger) Option {
	return func(rt *Runtime) {
		rt.log = l
	}
}

// WithCacheSize sets how many parsed programs are kept. Zero disables the
// cache.
func WithCacheSize(n int) Option {
	return func(rt *Runtime) {
		rt.cacheSize = n
	}
}

// New creates a new Runtime with the given options.
func New(opts ...Option) *Runtime {
	rt := &Runtime{
		stdout:    io.Discard,
		cacheSize: DefaultCacheSize,
	}
	for _, opt := range opts {
		opt(rt)
	}
	if rt.log == nil {
		rt.log = log15.New()
		rt.log.SetHandler(log15.DiscardHandler())
	}
	if rt.cacheSize > 0 {
		// lru.New only fails for non-positive sizes.
		rt.programs, _ = lru.New(rt.cacheSize)
	}
	return rt
}

func cacheKey(source, filename string) string {
	return filename + "\x00" + source
}

// Parse parses source, reusing a cached tree when the same file content was
// parsed before. Trees are never modified after parsing, so sharing them
// between runs is safe.
func (rt *Runtime) Parse(source, filename string) (*ast.Block, error) {
	key := cacheKey(source, filename)
	if rt.programs != nil {
		if cached, ok := rt.programs.Get(key); ok {
			rt.log.Debug("Program cache hit", "file", filename)
			return cached.(*ast.Block), nil
		}
	}

	start := time.Now()
	program, err := parser.Parse(source, filename)
	if err != nil {
		d := diagnostics.FromError(err)
		rt.log.Debug("Parse failed", "file", filename, "code", d.Code, "err", d.Message)
		return nil, &DiagnosticError{Diagnostics: []diagnostics.Diagnostic{d}, Err: err}
	}
	rt.log.Debug("Parsed program", "file", filename, "statements", len(program.Statements), "elapsed", time.Since(start))

	if rt.programs != nil {
		rt.programs.Add(key, program)
	}
	return program, nil
}

// Run parses and executes a program from an empty environment. Runtime
// faults are returned as *evaluator.RuntimeError together with the partial
// result.
func (rt *Runtime) Run(source, filename string) (*Result, error) {
	program, err := rt.Parse(source, filename)
	if err != nil {
		return nil, err
	}

	runID := rt.newRunID()
	log := rt.log.New("run", runID)
	log.Debug("Executing program", "file", filename)

	start := time.Now()
	res, err := evaluator.Execute(program, rt.execOptions(runID, log))
	result := &Result{RunID: runID, Output: res.Output, Env: res.Env}
	if err != nil {
		d := diagnostics.FromError(err)
		log.Info("Program faulted", "file", filename, "code", d.Code, "err", d.Message, "prints", len(res.Output))
		return result, err
	}
	log.Debug("Program finished", "file", filename, "prints", len(res.Output), "vars", len(res.Env), "elapsed", time.Since(start))
	return result, nil
}

// Check parses a program without executing it.
func (rt *Runtime) Check(source, filename string) []diagnostics.Diagnostic {
	_, err := rt.Parse(source, filename)
	if err == nil {
		return nil
	}
	if de, ok := err.(*DiagnosticError); ok {
		return de.Diagnostics
	}
	return []diagnostics.Diagnostic{diagnostics.FromError(err)}
}

// Vet parses a program and reports the validator warnings for it. Lex and
// parse failures are returned as a *DiagnosticError.
func (rt *Runtime) Vet(source, filename string) ([]diagnostics.Diagnostic, error) {
	program, err := rt.Parse(source, filename)
	if err != nil {
		return nil, err
	}
	warnings := validator.Validate(program)
	rt.log.Debug("Vetted program", "file", filename, "warnings", len(warnings))
	return warnings, nil
}

// Format parses and formats a program.
func (rt *Runtime) Format(source, filename string) (string, error) {
	program, err := rt.Parse(source, filename)
	if err != nil {
		return "", err
	}
	return formatter.Format(program), nil
}

func (rt *Runtime) newRunID() string {
	if rt.runID != "" {
		return rt.runID
	}
	return uuid.New().String()
}

// execOptions builds evaluator options. Trace events go to the trace
// callback and, with debug tracing on, to the logger. Without either the
// evaluator gets no callback at all.
func (rt *Runtime) execOptions(runID string, log log15.Logger) evaluator.ExecOptions {
	opts := evaluator.ExecOptions{
		Stdout: rt.stdout,
		RunID:  runID,
	}
	if rt.trace == nil && !rt.debugTrace {
		return opts
	}
	opts.Trace = func(ev evaluator.TraceEvent) {
		if rt.debugTrace {
			ctx := []interface{}{"event", ev.Event}
			if ev.Pos != nil {
				ctx = append(ctx, "pos", ev.Pos.String())
			}
			for _, k := range sortedKeys(ev.Data) {
				ctx = append(ctx, k, ev.Data[k])
			}
			log.Debug("Trace", ctx...)
		}
		if rt.trace != nil {
			rt.trace(ev)
		}
	}
	return opts
}

// DiagnosticError wraps lex and parse diagnostics as an error.
type DiagnosticError struct {
	Diagnostics []diagnostics.Diagnostic
	Err         error
}

func (e *DiagnosticError) Error() string {
	msgs := make([]string, len(e.Diagnostics))
	for i, d := range e.Diagnostics {
		msgs[i] = fmt.Sprintf("%s: %s", d.Code, d.Message)
	}
	return strings.Join(msgs, "; ")
}

// Unwrap returns the underlying lexer or parser error.
func (e *DiagnosticError) Unwrap() error {
	return e.Err
}
