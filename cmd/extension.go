package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"github.com/google/subcommands"
	"github.com/rs/zerolog"
)

// ExtensionPrefix is the prefix of the programs run as cgc subcommands.
const ExtensionPrefix = "cgc-"

// Environment variables passed to extensions, on top of the CGC_* configuration.
const (
	EnvEnvFile = "CGC_ENV_FILE"
	EnvVerbose = "CGC_VERBOSE"
)

// Extension is an external program run as a cgc subcommand: `cgc itr` runs
// `cgc-itr`. Extensions turn the files written by `cgc gains` into other
// formats, such as the capital gains schedule of a tax return, without
// the calculator knowing about them.
type Extension struct {
	Name string // subcommand name
	Path string // absolute path of the program
}

// LookupExtension finds the program of the subcommand name in PATH.
func LookupExtension(name string) (Extension, bool) {
	p, err := exec.LookPath(ExtensionPrefix + name)
	if err != nil {
		return Extension{}, false
	}
	return Extension{Name: name, Path: p}, true
}

// Run executes the extension with args and the global flags in its
// environment, and returns its exit code.
func (e Extension) Run(ctx context.Context, log zerolog.Logger, args []string) int {
	c := exec.CommandContext(ctx, e.Path, args...)
	c.Stdin = os.Stdin
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	c.Env = append(os.Environ(),
		EnvEnvFile+"="+*envFile,
		EnvVerbose+"="+strconv.FormatBool(*verbose),
	)

	log.Debug().Str("extension", e.Name).Str("path", e.Path).Strs("args", args).Msg("running extension")
	err := c.Run()
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &exitErr):
		log.Debug().Str("extension", e.Name).Int("code", exitErr.ExitCode()).Msg("extension failed")
		return exitErr.ExitCode()
	default:
		log.Error().Err(err).Str("extension", e.Name).Msg("cannot run extension")
		return int(subcommands.ExitFailure)
	}
}

// RunExtension runs the extension of the subcommand name, if there is one.
// It returns false when no extension was found.
func RunExtension(ctx context.Context, name string, args []string) (bool, int) {
	ext, ok := LookupExtension(name)
	if !ok {
		return false, 0
	}
	_, log, err := setup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return true, int(subcommands.ExitFailure)
	}
	return true, ext.Run(ctx, log, args)
}
