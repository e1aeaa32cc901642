// Package main implements sclc, the SCL front end and executor.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/you-not-fish/scl/internal/interp"
)

// Exit codes.
const (
	exitOK     = 0
	exitFailed = 1 // diagnostics or runtime error
	exitUsage  = 2 // bad invocation, unreadable input, config errors
)

// errFailed reports a compilation whose diagnostics were already printed.
var errFailed = errors.New("compilation failed")

func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes the command line args and returns the exit code.
func run(args []string) int {
	root := newRootCmd(&cli{})
	root.SetArgs(args)
	return exitCode(root.ExecuteContext(context.Background()))
}

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	if errors.Is(err, errFailed) {
		return exitFailed
	}
	var rt *interp.RuntimeError
	if errors.As(err, &rt) {
		fmt.Fprintln(os.Stderr, err)
		return exitFailed
	}
	fmt.Fprintf(os.Stderr, "sclc: %v\n", err)
	return exitUsage
}
