// Command scm is the interactive interpreter's process entry point: a
// single urfave/cli/v2 command (no subcommands, per §4.G) that wires the
// syntax reader to the REPL driver against stdin, or against --eval/--load
// sources.
package main

import (
	"log"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/urfave/cli/v2"

	"github.com/tinylisp/scm/repl"
	"github.com/tinylisp/scm/syntax"
)

func main() {
	app := &cli.App{
		Name:    AppName,
		Usage:   "an interactive interpreter for a lexically-scoped Scheme dialect",
		Version: Version(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "eval",
				Aliases: []string{"e"},
				Usage:   "evaluate a single top-level form and exit instead of reading from stdin",
			},
			&cli.StringFlag{
				Name:    "load",
				Aliases: []string{"l"},
				Usage:   "load and evaluate every top-level form in FILE before the interactive loop",
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "suppress the scm> prompt even when stdin is a terminal",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Value: "off",
				Usage: "driver state-machine log verbosity (off, debug)",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	logger := hclog.New(&hclog.LoggerOptions{
		Name:   AppName,
		Level:  hclog.LevelFromString(c.String("log-level")),
		Output: os.Stderr,
	})

	d := repl.New(logger, os.Stdout)

	if loadPath := c.String("load"); loadPath != "" {
		fd, err := os.Open(loadPath)
		if err != nil {
			return err
		}
		rd, err := syntax.NewReader(fd, loadPath)
		if err != nil {
			fd.Close()
			return err
		}
		runErr := d.Run(rd, false)
		fd.Close()
		if runErr != nil {
			return runErr
		}
		if d.Failed() {
			return cli.Exit("", 1)
		}
	}

	if expr := c.String("eval"); expr != "" {
		rd, err := syntax.NewReader(strings.NewReader(expr), "<eval>")
		if err != nil {
			return err
		}
		if err := d.Run(rd, false); err != nil {
			return err
		}
		if d.Failed() {
			return cli.Exit("", 1)
		}
		return nil
	}

	interactive := !c.Bool("quiet") && isTerminal(os.Stdin)
	rd, err := syntax.NewReader(os.Stdin, "<stdin>")
	if err != nil {
		return err
	}
	return d.Run(rd, interactive)
}

// isTerminal reports whether f looks like an interactive terminal, the
// same stat-based check described by §4.G and §6: when stdin is not a
// character device (i.e. it's piped or redirected), the prompt is never
// printed regardless of --quiet.
func isTerminal(f *os.File) bool {
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return stat.Mode()&os.ModeCharDevice != 0
}
