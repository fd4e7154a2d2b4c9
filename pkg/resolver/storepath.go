package resolver

import (
	"fmt"
	"path/filepath"
	"strings"

	"zombiezen.com/go/nix/nixbase32"
)

const storeDir = "/nix/store"

// parseStorePath splits a /nix/store path into its digest and name parts,
// validating the digest against nix's base32 alphabet.
func parseStorePath(p string) (digest, name string, err error) {
	dir, base := filepath.Split(p)
	if filepath.Clean(dir) != storeDir {
		return "", "", fmt.Errorf("not a store path: %s", p)
	}

	digest, name, ok := strings.Cut(base, "-")
	if !ok || name == "" {
		return "", "", fmt.Errorf("store path has no name part: %s", p)
	}
	if len(digest) != 32 {
		return "", "", fmt.Errorf("store path digest must be 32 characters: %s", p)
	}
	if _, err := nixbase32.DecodeString(digest); err != nil {
		return "", "", fmt.Errorf("invalid store path digest (%s): %w", digest, err)
	}

	return digest, name, nil
}
