package resolver

import (
	"context"
	"os"
	"path/filepath"
)

type Mode string

const (
	LocalMode Mode = "local"
	CacheMode Mode = "cache"
)

func (m Mode) String() string {
	return string(m)
}

// ResolvedPackage is the resolver's answer for one declared package.
type ResolvedPackage struct {
	Name    string
	OutPath string
	BinPath string
	LibPath string
}

// Resolver maps a declared package name to its installed location.
type Resolver interface {
	Resolve(ctx context.Context, name string) (ResolvedPackage, error)
}

// packageAt describes the package installed at outPath. BinPath and LibPath
// stay empty when the package ships no such subdirectory.
func packageAt(name, outPath string) ResolvedPackage {
	rp := ResolvedPackage{Name: name, OutPath: outPath}

	if p := filepath.Join(outPath, "bin"); dirExists(p) {
		rp.BinPath = p
	}
	if p := filepath.Join(outPath, "lib"); dirExists(p) {
		rp.LibPath = p
	}

	return rp
}

func dirExists(p string) bool {
	fi, err := os.Stat(p)
	return err == nil && fi.IsDir()
}

func XDGDataDir() string {
	xdgDataHome := os.Getenv("XDG_DATA_HOME")
	if xdgDataHome == "" {
		xdgDataHome = filepath.Join(os.Getenv("HOME"), ".local", "share")
	}

	return filepath.Join(xdgDataHome, "denv")
}
