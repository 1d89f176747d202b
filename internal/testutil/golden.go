// Package testutil loads the YAML scenarios shared by the conformance test
// and the CLI tests.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ScenariosDir is the scenario directory relative to the module root.
const ScenariosDir = "testdata/scenarios"

// Scenario is one program together with the expected outcome of a command.
type Scenario struct {
	Name        string   `yaml:"-"`
	Description string   `yaml:"description"`
	Cmd         string   `yaml:"cmd"` // run, check, vet or fmt
	Program     string   `yaml:"program"`
	Tags        []string `yaml:"tags,omitempty"`
	Expect      Expected `yaml:"expect"`
}

// Expected describes the outcome of running a scenario.
type Expected struct {
	ExitCode int `yaml:"exitCode"`
	// Output lists the printed lines. Nil means no output is expected.
	Output []string `yaml:"output"`
	// Env lists the final bindings. Nil skips the check.
	Env       map[string]interface{} `yaml:"env"`
	Error     *ExpectedError         `yaml:"error"`
	Formatted string                 `yaml:"formatted"`
}

// ExpectedError describes the diagnostic a scenario must produce. Zero
// fields are not checked.
type ExpectedError struct {
	Code            string `yaml:"code"`
	MessageContains string `yaml:"messageContains"`
	Offset          *int   `yaml:"offset"`
	Line            int    `yaml:"line"`
	Col             int    `yaml:"col"`
	Hint            string `yaml:"hint"`
}

// LoadScenario decodes a scenario file. Unknown keys are rejected.
func LoadScenario(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	var s Scenario
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if s.Cmd == "" {
		s.Cmd = "run"
	}
	return &s, nil
}

// ListScenarios returns the scenario files under root in name order.
func ListScenarios(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".yaml" {
			files = append(files, filepath.Join(root, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// LoadAll loads every scenario under root.
func LoadAll(root string) ([]*Scenario, error) {
	files, err := ListScenarios(root)
	if err != nil {
		return nil, err
	}
	scenarios := make([]*Scenario, 0, len(files))
	for _, file := range files {
		s, err := LoadScenario(file)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// ModuleRoot walks up from the working directory to the directory holding
// go.mod.
func ModuleRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("go.mod not found")
		}
		dir = parent
	}
}

// OutputText joins printed lines the way the CLI writes them.
func OutputText(lines []string) string {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	return b.String()
}
