// Package envutil builds the flat KEY=value environment handed to the child process.
package envutil

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// Build resolves an override map into the environment slice for the child.
//
// A nil map signals "inherit unchanged" and is reported as a nil slice,
// which os/exec interprets as the parent environment. When replace is set
// the result is exactly the supplied entries. Otherwise the inherited
// environment is overlaid with the supplied entries, the supplied value
// winning on key collision. The result is never a partial merge of the
// wrong precedence.
func Build(env map[string]string, replace bool) []string {
	if env == nil {
		return nil
	}
	if replace {
		return Flatten(env)
	}
	merged := make(map[string]string, len(env))
	for _, kv := range os.Environ() {
		if k, v, ok := Split(kv); ok {
			merged[k] = v
		}
	}
	for k, v := range env {
		merged[k] = v
	}
	return Flatten(merged)
}

// Flatten converts an environment map into sorted KEY=value form.
func Flatten(env map[string]string) []string {
	out := make([]string, 0, len(env))
	for k, v := range env {
		out = append(out, fmt.Sprintf("%s=%s", k, v))
	}
	sort.Strings(out)
	return out
}

// Split separates a KEY=value entry. Entries without a key are rejected.
func Split(kv string) (key, value string, ok bool) {
	i := strings.IndexByte(kv, '=')
	if i <= 0 {
		return "", "", false
	}
	return kv[:i], kv[i+1:], true
}
