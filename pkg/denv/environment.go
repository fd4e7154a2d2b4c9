package denv

import (
	"fmt"
	"runtime"
	"slices"
)

const PathEnvVar = "PATH"

// LibraryPathEnvVar returns the dynamic-linker search path variable for the
// current platform.
func LibraryPathEnvVar() string {
	if runtime.GOOS == "darwin" {
		return "DYLD_FALLBACK_LIBRARY_PATH"
	}
	return "LD_LIBRARY_PATH"
}

// Environment is the end product of a build: the variable mapping handed to
// a launched process, plus the ordered bin directories PATH was assembled
// from. Built once, never mutated afterwards.
type Environment struct {
	Vars     map[string]string
	BinPaths []string
}

// Environ renders the variables as k=v pairs for exec.Cmd.
func (e *Environment) Environ() []string {
	result := make([]string, 0, len(e.Vars))

	for k, v := range e.Vars {
		result = append(result, fmt.Sprintf("%s=%s", k, v))
	}

	return result
}

// ExportLines renders the variables as shell export statements, sorted by
// key so output is stable.
func (e *Environment) ExportLines() []string {
	keys := make([]string, 0, len(e.Vars))
	for k := range e.Vars {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	result := make([]string, 0, len(keys))
	for _, k := range keys {
		result = append(result, fmt.Sprintf("export %s=%q", k, e.Vars[k]))
	}

	return result
}
