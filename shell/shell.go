// Package shell resolves the interpreter prelude prefixed to a command
// when it is run through the system shell.
package shell

import (
	"os"
	"runtime"

	"github.com/sirupsen/logrus"
)

// DefaultShell is used on non-Windows hosts when SHELL is not set.
const DefaultShell = "/bin/sh"

// Prelude returns the interpreter invocation prefix for the current host.
//
// On Windows the prelude is always ["cmd", "/C"] and extra is ignored,
// because /C already takes the command string. Everywhere else it is the
// value of SHELL, falling back to /bin/sh with a warning, followed by the
// supplied suffix arguments, typically "-c".
func Prelude(log *logrus.Entry, extra ...string) []string {
	return preludeFor(runtime.GOOS, os.Getenv("SHELL"), log, extra)
}

func preludeFor(goos, shellVar string, log *logrus.Entry, extra []string) []string {
	if goos == "windows" {
		return []string{"cmd", "/C"}
	}
	sh := shellVar
	if sh == "" {
		sh = DefaultShell
		if log != nil {
			log.Warnf("SHELL is not set, falling back to %s", DefaultShell)
		}
	}
	return append([]string{sh}, extra...)
}
