package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"
	cli "gopkg.in/urfave/cli.v1"

	"golox/lox"
)

const (
	exitUsage   = 64
	exitStatic  = 65
	exitRuntime = 70
)

var errPrefix = color.New(color.FgRed, color.Bold)

func main() {
	app := cli.NewApp()
	app.Name = "golox"
	app.Usage = "run a lox script, or start an interactive session"
	app.ArgsUsage = "[script]"
	app.HideVersion = true
	app.Action = func(ctx *cli.Context) error {
		switch ctx.NArg() {
		case 0:
			return runPrompt()
		case 1:
			return runFile(ctx.Args().First())
		default:
			fmt.Fprintln(os.Stderr, "usage: golox [script]")
			os.Exit(exitUsage)
			return nil
		}
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runFile(path string) error {
	source, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	outcome := lox.NewRunner(os.Stdout).Run(string(source))
	report(outcome)

	switch outcome.Class {
	case lox.ClassStaticError:
		os.Exit(exitStatic)
	case lox.ClassRuntimeError:
		os.Exit(exitRuntime)
	}
	return nil
}

func runPrompt() error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	runner := lox.NewRunner(os.Stdout)
	for {
		input, err := line.Prompt("> ")
		if err == liner.ErrPromptAborted || err == io.EOF {
			fmt.Println()
			return nil
		}
		if err != nil {
			return err
		}
		if strings.TrimSpace(input) == "" {
			continue
		}

		line.AppendHistory(input)
		report(runner.Run(input))
	}
}

func report(outcome lox.Outcome) {
	for _, err := range outcome.StaticErrors {
		fmt.Fprintf(os.Stderr, "%s %s\n", errPrefix.Sprint("error:"), err)
	}
	if outcome.RuntimeError != nil {
		fmt.Fprintf(os.Stderr, "%s %s\n", errPrefix.Sprint("runtime error:"), outcome.RuntimeError)
	}
}
