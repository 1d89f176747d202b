package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/urfave/cli.v1"

	"github.com/hackhud/simplesyntax/pkg/evaluator"
)

func traceCommand(e *env) cli.Command {
	return cli.Command{
		Action:    e.with(e.summarizeTrace),
		Name:      "trace",
		Usage:     "Summarize a trace file written by run --trace",
		ArgsUsage: "<file.jsonl>",
	}
}

// TraceSummary aggregates the events of a trace file.
type TraceSummary struct {
	RunID          string  `json:"runId"`
	TotalEvents    int     `json:"totalEvents"`
	Statements     int     `json:"statements"`
	Prints         int     `json:"prints"`
	Assignments    int     `json:"assignments"`
	LoopIterations int     `json:"loopIterations"`
	Fault          string  `json:"fault,omitempty"`
	StartTime      string  `json:"startTime,omitempty"`
	EndTime        string  `json:"endTime,omitempty"`
	DurationMs     float64 `json:"durationMs"`
}

type traceEvent struct {
	Event evaluator.TraceEventType `json:"event"`
	RunID string                   `json:"runId"`
	TS    string                   `json:"ts"`
	Data  map[string]any           `json:"data,omitempty"`
}

func (e *env) summarizeTrace(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return usageError(ctx, "trace takes exactly one trace file")
	}
	file := ctx.Args().First()
	f, err := os.Open(file)
	if err != nil {
		return e.fail(ctx, ioError(fmt.Sprintf("cannot read file: %s", file)))
	}
	defer f.Close()

	summary, skipped, err := computeTraceSummary(f)
	if err != nil {
		return e.fail(ctx, ioError(fmt.Sprintf("reading %s: %v", file, err)))
	}
	if skipped > 0 {
		e.log.Warn("Skipped malformed trace lines", "file", file, "count", skipped)
	}

	if e.cfg.Pretty {
		printTraceSummaryText(ctx.App.Writer, summary)
		return nil
	}
	b, _ := json.Marshal(summary)
	fmt.Fprintln(ctx.App.Writer, string(b))
	return nil
}

// computeTraceSummary reads JSON lines from r. Lines that are not valid
// events are counted in skipped.
func computeTraceSummary(r io.Reader) (summary *TraceSummary, skipped int, err error) {
	summary = &TraceSummary{}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var event traceEvent
		if err := json.Unmarshal([]byte(line), &event); err != nil {
			skipped++
			continue
		}

		summary.TotalEvents++
		if summary.RunID == "" {
			summary.RunID = event.RunID
		}

		switch event.Event {
		case evaluator.TraceRunStart:
			if summary.StartTime == "" {
				summary.StartTime = event.TS
			}
		case evaluator.TraceRunEnd:
			summary.EndTime = event.TS
			if code, ok := event.Data["error"].(string); ok {
				summary.Fault = code
			}
		case evaluator.TraceStmtStart:
			summary.Statements++
		case evaluator.TracePrint:
			summary.Prints++
		case evaluator.TraceAssign:
			summary.Assignments++
		case evaluator.TraceWhileIter:
			summary.LoopIterations++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, skipped, err
	}

	if summary.StartTime != "" && summary.EndTime != "" {
		start, err1 := time.Parse(time.RFC3339Nano, summary.StartTime)
		end, err2 := time.Parse(time.RFC3339Nano, summary.EndTime)
		if err1 == nil && err2 == nil {
			summary.DurationMs = float64(end.Sub(start).Microseconds()) / 1000
		}
	}
	return summary, skipped, nil
}

func printTraceSummaryText(w io.Writer, s *TraceSummary) {
	fmt.Fprintf(w, "Run: %s\n", s.RunID)
	fmt.Fprintf(w, "Events: %d\n", s.TotalEvents)
	fmt.Fprintf(w, "Statements: %d\n", s.Statements)
	fmt.Fprintf(w, "Prints: %d\n", s.Prints)
	fmt.Fprintf(w, "Assignments: %d\n", s.Assignments)
	fmt.Fprintf(w, "Loop iterations: %d\n", s.LoopIterations)
	if s.Fault != "" {
		fmt.Fprintf(w, "Fault: %s\n", s.Fault)
	}
	if s.DurationMs > 0 {
		fmt.Fprintf(w, "Duration: %.3fms\n", s.DurationMs)
	}
}
