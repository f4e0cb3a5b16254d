// Package cmd implements the CLI application to compute capital gains.
package cmd

import (
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/capgains/config"
	"github.com/etnz/capgains/logger"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
)

// Commands are the subcommands of the application.
var Commands = []subcommands.Command{
	&gainsCmd{},
	&dividendsCmd{},
	&serveCmd{},
	&topicCmd{},
}

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(c.HelpCommand(), "")
	c.Register(c.FlagsCommand(), "")
	for _, cmd := range Commands {
		c.Register(cmd, "")
	}
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var envFile = flag.String("env-file", ".env", "Path to an optional file of CGC_* environment variables")
var verbose = flag.Bool("v", false, "Log debug messages")

// setup loads the configuration and builds the logger of a command.
func setup() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(*envFile)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	level := cfg.LogLevel
	if *verbose {
		level = "debug"
	}
	return cfg, logger.New(logger.Config{Level: level, Pretty: cfg.LogPretty}), nil
}

// printMarkdown renders md for the terminal, or prints it raw when stdout is not one.
func printMarkdown(md string) {
	if fi, err := os.Stdout.Stat(); err != nil || fi.Mode()&os.ModeCharDevice == 0 {
		fmt.Print(md)
		return
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err != nil {
		fmt.Print(md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}
