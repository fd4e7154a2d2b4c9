package denv

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/nxtcoder17/denv/pkg/resolver"
	"github.com/nxtcoder17/denv/pkg/set"
)

// Build turns a validated spec into a concrete Environment. Every declared
// package is resolved up front, in declaration order; any resolver failure
// aborts the whole build and no partial environment is returned.
func Build(ctx context.Context, spec *Spec, r resolver.Resolver) (*Environment, error) {
	resolved := make(map[string]resolver.ResolvedPackage, len(spec.packages))

	for _, name := range spec.packages {
		pkg, err := r.Resolve(ctx, name)
		if err != nil {
			return nil, &PackageError{Op: "resolve", Package: name, Err: ErrResolutionFailed, Cause: err}
		}
		slog.Debug("resolved package", "name", name, "out", pkg.OutPath)
		resolved[name] = pkg
	}

	// resolvers leave BinPath/LibPath empty when the package ships no such
	// directory, so lib-only packages do not pollute PATH
	binDirs := make([]string, 0, len(spec.packages))
	for _, name := range spec.packages {
		if p := resolved[name].BinPath; p != "" {
			binDirs = append(binDirs, p)
		}
	}
	binDirs = mergePaths(binDirs)

	libDirs := make([]string, 0, len(spec.libraries))
	for _, name := range spec.libraries {
		if p := resolved[name].LibPath; p != "" {
			libDirs = append(libDirs, p)
		}
	}
	libDirs = mergePaths(libDirs)

	vars := make(map[string]string, len(spec.env)+2)
	if len(binDirs) > 0 {
		vars[PathEnvVar] = strings.Join(binDirs, string(os.PathListSeparator))
	}
	if len(libDirs) > 0 {
		vars[LibraryPathEnvVar()] = strings.Join(libDirs, string(os.PathListSeparator))
	}

	for k, v := range spec.env {
		if _, ok := vars[k]; ok {
			slog.Warn("static env var overrides a computed variable", "key", k)
		}
		vars[k] = v
	}

	return &Environment{Vars: vars, BinPaths: binDirs}, nil
}

// mergePaths de-duplicates directories, keeping the first occurrence of each
// so declaration order decides precedence.
func mergePaths(paths []string) []string {
	var s set.Set[string]
	for _, p := range paths {
		s.Add(p)
	}
	return s.ToList()
}
