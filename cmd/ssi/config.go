package main

import (
	"fmt"

	"gopkg.in/urfave/cli.v1"

	"github.com/hackhud/simplesyntax/pkg/config"
	"github.com/hackhud/simplesyntax/pkg/repl"
	"github.com/hackhud/simplesyntax/pkg/runtime"
)

func replCommand(e *env) cli.Command {
	return cli.Command{
		Action: e.with(e.repl),
		Name:   "repl",
		Usage:  "Start an interactive session",
		Description: `
Statements are executed as soon as they are complete. Variables persist
between inputs; :help lists the session commands.`,
	}
}

func dumpConfigCommand(e *env) cli.Command {
	return cli.Command{
		Action: e.with(e.dumpConfig),
		Name:   "dumpconfig",
		Usage:  "Show configuration values",
		Description: `The dumpconfig command shows the resolved configuration, including the
effect of command line flags, in TOML.`,
	}
}

func (e *env) dumpConfig(ctx *cli.Context) error {
	out, err := config.Marshal(&e.cfg)
	if err != nil {
		return err
	}
	if e.cfgPath != "" {
		fmt.Fprintf(ctx.App.Writer, "# loaded from %s\n", e.cfgPath)
	}
	ctx.App.Writer.Write(out)
	return nil
}

func (e *env) repl(ctx *cli.Context) error {
	historyFile := e.cfg.HistoryFile
	if historyFile == "" {
		historyFile = config.DefaultHistoryFile()
	}

	session := e.runtime(runtime.WithStdout(ctx.App.Writer)).NewSession()
	words := func() []string {
		var names []string
		for _, b := range session.Env() {
			names = append(names, b.Name)
		}
		return names
	}

	prompter := repl.NewTerminalPrompter(historyFile, words)
	defer func() {
		if err := prompter.Close(); err != nil {
			e.log.Warn("Failed to save REPL history", "file", historyFile, "err", err)
		}
	}()

	fmt.Fprintf(ctx.App.Writer, "%s %s, :help for commands\n", ctx.App.Name, ctx.App.Version)
	r := repl.New(repl.Config{
		Prompter:       prompter,
		Session:        session,
		Out:            ctx.App.Writer,
		Err:            ctx.App.ErrWriter,
		Pretty:         e.cfg.Pretty,
		PromptPrimary:  e.cfg.PromptPrimary,
		PromptContinue: e.cfg.PromptContinue,
	})
	return r.Run()
}
