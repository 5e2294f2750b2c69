// Package main is the entry point for the procrun CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/victoralfred/procrun/runner"
)

func main() {
	code, err := newRootCmd().execute()
	if err != nil {
		var exitErr *runner.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Error())
			os.Exit(exitErr.ExitCode)
		}
		fmt.Fprintln(os.Stderr, "procrun:", err)
		os.Exit(1)
	}
	os.Exit(code)
}
