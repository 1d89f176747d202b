package repl

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/peterh/liner"
)

// Prompter reads input lines from the user. TerminalPrompter is the
// interactive implementation.
type Prompter interface {
	// PromptInput displays prompt and returns the line entered without the
	// trailing newline. It returns io.EOF when input ends and
	// liner.ErrPromptAborted when the user pressed Ctrl-C.
	PromptInput(prompt string) (string, error)
	// AppendHistory records a completed entry.
	AppendHistory(entry string)
}

// TerminalPrompter is a Prompter backed by a liner line editor.
type TerminalPrompter struct {
	state       *liner.State
	historyFile string
	words       func() []string
}

// NewTerminalPrompter puts the terminal into raw mode and loads history from
// historyFile, if it exists. words supplies extra completion candidates
// such as variable names; it may be nil.
func NewTerminalPrompter(historyFile string, words func() []string) *TerminalPrompter {
	p := &TerminalPrompter{
		state:       liner.NewLiner(),
		historyFile: historyFile,
		words:       words,
	}
	p.state.SetCtrlCAborts(true)
	p.state.SetMultiLineMode(true)
	p.state.SetTabCompletionStyle(liner.TabPrints)
	p.state.SetWordCompleter(p.complete)

	if historyFile != "" {
		if f, err := os.Open(historyFile); err == nil {
			p.state.ReadHistory(f)
			f.Close()
		}
	}
	return p
}

// PromptInput implements Prompter.
func (p *TerminalPrompter) PromptInput(prompt string) (string, error) {
	return p.state.Prompt(prompt)
}

// AppendHistory implements Prompter.
func (p *TerminalPrompter) AppendHistory(entry string) {
	p.state.AppendHistory(entry)
}

// Close saves the history and restores the terminal.
func (p *TerminalPrompter) Close() error {
	defer p.state.Close()
	if p.historyFile == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(p.historyFile), 0755); err != nil {
		return err
	}
	f, err := os.Create(p.historyFile)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = p.state.WriteHistory(f)
	return err
}

var keywords = []string{"else", "if", "int", "print", "while", "and", "or"}

func (p *TerminalPrompter) complete(line string, pos int) (string, []string, string) {
	var extra []string
	if p.words != nil {
		extra = p.words()
	}
	return completeWord(line, pos, extra)
}

// completeWord offers keywords, commands and extra words for the word that
// ends at pos.
func completeWord(line string, pos int, extra []string) (head string, completions []string, tail string) {
	start := pos
	for start > 0 && isWordByte(line[start-1]) {
		start--
	}
	head, word, tail := line[:start], line[start:pos], line[pos:]
	if word == "" {
		return head, nil, tail
	}

	candidates := append(append([]string{}, keywords...), extra...)
	if strings.HasPrefix(word, ":") {
		candidates = commandNames()
	}
	for _, c := range candidates {
		if strings.HasPrefix(c, word) {
			completions = append(completions, c)
		}
	}
	sort.Strings(completions)
	return head, completions, tail
}

func isWordByte(b byte) bool {
	return b == '_' || b == ':' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}
