package resolver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Nix resolves packages by asking a locally installed nix to realise them.
type Nix struct {
	// NixPkgs is the default nixpkgs commit for unpinned references.
	NixPkgs string
}

func NewNix(nixpkgs string) *Nix {
	return &Nix{NixPkgs: nixpkgs}
}

func (n *Nix) Resolve(ctx context.Context, name string) (ResolvedPackage, error) {
	ref, err := ParseRef(name)
	if err != nil {
		return ResolvedPackage{}, err
	}

	nixBin, err := exec.LookPath("nix")
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return ResolvedPackage{}, fmt.Errorf("nix is not installed on your machine. Please follow docs over `https://nixos.org/download/` to install nix on your machine")
		}
		return ResolvedPackage{}, err
	}

	cmd := exec.CommandContext(ctx, nixBin,
		"build",
		"--extra-experimental-features", "nix-command flakes",
		"--no-link",
		"--print-out-paths",
		ref.Installable(n.NixPkgs),
	)

	b := new(bytes.Buffer)
	cmd.Stdout = b
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return ResolvedPackage{}, fmt.Errorf("nix build failed for %s: %w", name, err)
	}

	// multi-output derivations print one path per line, the first is "out"
	outPath, _, _ := strings.Cut(strings.TrimSpace(b.String()), "\n")

	if _, _, err := parseStorePath(outPath); err != nil {
		return ResolvedPackage{}, fmt.Errorf("nix printed an invalid store path (%s): %w", outPath, err)
	}

	return packageAt(ref.Name, outPath), nil
}
