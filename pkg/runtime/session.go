package runtime

import (
	"sort"

	"github.com/inconshreveable/log15"

	"github.com/hackhud/simplesyntax/pkg/evaluator"
)

// Session executes successive snippets against one environment, as an
// interactive prompt does.
type Session struct {
	rt    *Runtime
	runID string
	log   log15.Logger
	in    *evaluator.Interpreter
}

// NewSession starts a session with an empty environment.
func (rt *Runtime) NewSession() *Session {
	runID := rt.newRunID()
	log := rt.log.New("session", runID)
	s := &Session{rt: rt, runID: runID, log: log}
	s.in = evaluator.NewInterpreter(rt.execOptions(runID, log))
	log.Debug("Session started")
	return s
}

// Exec parses and executes one snippet. Declarations made by earlier
// snippets stay visible. After a fault the environment keeps whatever the
// snippet changed before failing.
func (s *Session) Exec(source, filename string) (*Result, error) {
	program, err := s.rt.Parse(source, filename)
	if err != nil {
		return nil, err
	}
	res, err := s.in.Exec(program)
	if err != nil {
		s.log.Info("Snippet faulted", "err", err)
	}
	return &Result{RunID: s.runID, Output: res.Output, Env: res.Env}, err
}

// Env returns a snapshot of the session environment.
func (s *Session) Env() evaluator.Snapshot {
	return s.in.Env().Snapshot()
}

// Reset discards all declarations.
func (s *Session) Reset() {
	s.in.Reset()
	s.log.Debug("Session reset")
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
