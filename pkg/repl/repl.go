// Package repl implements the interactive prompt. Input is collected until
// it forms complete statements, then executed in one long-lived session.
package repl

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/peterh/liner"

	"github.com/hackhud/simplesyntax/pkg/diagnostics"
	"github.com/hackhud/simplesyntax/pkg/lexer"
	"github.com/hackhud/simplesyntax/pkg/runtime"
)

// SourceName is the file name used in positions of REPL input.
const SourceName = "<repl>"

// Config configures a REPL.
type Config struct {
	Prompter       Prompter
	Session        *runtime.Session
	Out            io.Writer // command output
	Err            io.Writer // diagnostics
	Pretty         bool
	PromptPrimary  string
	PromptContinue string
}

// REPL reads snippets from a Prompter and executes them.
type REPL struct {
	cfg     Config
	pending []string
	// held is set while a complete snippet ending in an if block waits for
	// a possible else on the next line.
	held    bool
	quit    bool
}

type command struct {
	help string
	run  func(r *REPL, args []string)
}

var commands map[string]command

func init() {
	commands = map[string]command{
		":env":   {"list variables and their values", (*REPL).cmdEnv},
		":reset": {"forget all variables", (*REPL).cmdReset},
		":quit":  {"leave the REPL", (*REPL).cmdQuit},
		":help":  {"show this help", (*REPL).cmdHelp},
	}
}

func commandNames() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New creates a REPL. Empty prompts fall back to ">> " and ".. ".
func New(cfg Config) *REPL {
	if cfg.PromptPrimary == "" {
		cfg.PromptPrimary = ">> "
	}
	if cfg.PromptContinue == "" {
		cfg.PromptContinue = ".. "
	}
	if cfg.Out == nil {
		cfg.Out = io.Discard
	}
	if cfg.Err == nil {
		cfg.Err = io.Discard
	}
	return &REPL{cfg: cfg}
}

// Run prompts until the input ends or :quit is entered. Ctrl-C discards
// the pending input.
func (r *REPL) Run() error {
	for !r.quit {
		prompt := r.cfg.PromptPrimary
		if len(r.pending) > 0 {
			prompt = r.cfg.PromptContinue
		}
		line, err := r.cfg.Prompter.PromptInput(prompt)
		switch {
		case errors.Is(err, liner.ErrPromptAborted):
			r.pending, r.held = nil, false
			continue
		case errors.Is(err, io.EOF):
			if r.held {
				r.flush()
			}
			return nil
		case err != nil:
			return err
		}
		r.Feed(line)
	}
	return nil
}

// Pending reports whether an incomplete snippet is buffered.
func (r *REPL) Pending() bool {
	return len(r.pending) > 0
}

// Quit reports whether :quit was entered.
func (r *REPL) Quit() bool {
	return r.quit
}

// Feed processes one input line. Lines are buffered until the snippet is
// complete, then executed. A snippet ending in an if block runs once the
// next line turns out not to start with else.
func (r *REPL) Feed(line string) {
	trimmed := strings.TrimSpace(line)
	if r.held {
		r.held = false
		if !startsWithElse(trimmed) {
			r.flush()
		}
	}
	if len(r.pending) == 0 {
		if stripComment(trimmed) == "" {
			return
		}
		if strings.HasPrefix(trimmed, ":") {
			r.runCommand(trimmed)
			return
		}
	}

	r.pending = append(r.pending, line)
	source := strings.Join(r.pending, "\n")
	if !complete(source) {
		return
	}
	if awaitsElse(source) {
		r.held = true
		return
	}
	r.flush()
}

func (r *REPL) flush() {
	source := strings.Join(r.pending, "\n")
	r.pending, r.held = nil, false
	r.cfg.Prompter.AppendHistory(source)
	r.exec(source)
}

func (r *REPL) exec(source string) {
	if _, err := r.cfg.Session.Exec(source, SourceName); err != nil {
		fmt.Fprintln(r.cfg.Err, diagnostics.FormatDiagnostic(diagnostics.FromError(err), r.cfg.Pretty))
	}
}

func (r *REPL) runCommand(line string) {
	fields := strings.Fields(line)
	cmd, ok := commands[fields[0]]
	if !ok {
		fmt.Fprintf(r.cfg.Err, "unknown command %s, try :help\n", fields[0])
		return
	}
	cmd.run(r, fields[1:])
}

func (r *REPL) cmdEnv(args []string) {
	env := r.cfg.Session.Env()
	if len(env) == 0 {
		fmt.Fprintln(r.cfg.Out, "(no variables)")
		return
	}
	for _, b := range env {
		fmt.Fprintf(r.cfg.Out, "%s = %s\n", b.Name, b.Value)
	}
}

func (r *REPL) cmdReset(args []string) {
	r.cfg.Session.Reset()
	fmt.Fprintln(r.cfg.Out, "environment cleared")
}

func (r *REPL) cmdQuit(args []string) {
	r.quit = true
}

func (r *REPL) cmdHelp(args []string) {
	for _, name := range commandNames() {
		fmt.Fprintf(r.cfg.Out, "  %-7s %s\n", name, commands[name].help)
	}
}

// complete reports whether source can be handed to the parser: braces are
// balanced (or over-closed, which the parser will reject) and the last
// significant character ends a statement.
func complete(source string) bool {
	depth := 0
	last := byte(0)
	for _, line := range strings.Split(source, "\n") {
		line = strings.TrimSpace(stripComment(line))
		for i := 0; i < len(line); i++ {
			switch line[i] {
			case '{':
				depth++
			case '}':
				depth--
			}
		}
		if line != "" {
			last = line[len(line)-1]
		}
	}
	if depth < 0 {
		return true
	}
	return depth == 0 && (last == ';' || last == '}')
}

// awaitsElse reports whether source ends with '}' closing an if statement
// that an else could still attach to.
func awaitsElse(source string) bool {
	lx := lexer.New(source, SourceName)
	depth, ifs, elses := 0, 0, 0
	prev := lexer.TokEOF
	for {
		tok, err := lx.NextToken()
		if err != nil {
			return false
		}
		if tok.Type == lexer.TokEOF {
			return prev == lexer.TokRBrace && ifs > elses
		}
		// Top-level statements end after ';' or '}' unless an else follows.
		if depth == 0 && (prev == lexer.TokSemi || prev == lexer.TokRBrace) && tok.Type != lexer.TokElse {
			ifs, elses = 0, 0
		}
		switch tok.Type {
		case lexer.TokLBrace:
			depth++
		case lexer.TokRBrace:
			depth--
		case lexer.TokIf:
			if depth == 0 {
				ifs++
			}
		case lexer.TokElse:
			if depth == 0 {
				elses++
			}
		}
		prev = tok.Type
	}
}

func startsWithElse(line string) bool {
	return strings.HasPrefix(line, "else") && (len(line) == 4 || !isWordByte(line[4]))
}

func stripComment(line string) string {
	if i := strings.Index(line, "//"); i >= 0 {
		return line[:i]
	}
	return line
}
