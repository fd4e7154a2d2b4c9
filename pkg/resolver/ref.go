package resolver

import (
	"fmt"
	"strings"
)

// Ref is a package reference: either a bare attribute name resolved against
// the default nixpkgs commit, or a pinned "nixpkgs/COMMIT#name" form.
type Ref struct {
	Name   string
	Commit string
}

func ParseRef(pkg string) (*Ref, error) {
	if !strings.HasPrefix(pkg, "nixpkgs/") {
		return &Ref{Name: pkg, Commit: ""}, nil
	}
	// Parse nixpkgs/COMMIT#package format
	parts := strings.Split(pkg, "#")
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid package format: %s", pkg)
	}

	return &Ref{
		Name:   parts[1],
		Commit: strings.TrimPrefix(parts[0], "nixpkgs/"),
	}, nil
}

// Installable renders the reference as a nix flake installable, filling in
// defaultCommit when the reference carries no pin of its own.
func (r *Ref) Installable(defaultCommit string) string {
	commit := r.Commit
	if commit == "" {
		commit = defaultCommit
	}

	if commit == "" {
		return fmt.Sprintf("nixpkgs#%s", r.Name)
	}
	return fmt.Sprintf("nixpkgs/%s#%s", commit, r.Name)
}
