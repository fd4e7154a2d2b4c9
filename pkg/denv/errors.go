package denv

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicatePackage indicates the same package was declared twice in one spec.
	ErrDuplicatePackage = errors.New("duplicate package")

	// ErrUnknownPackage indicates a library exposure references an undeclared package.
	ErrUnknownPackage = errors.New("unknown package")

	// ErrResolutionFailed indicates the resolver could not supply paths for a declared package.
	ErrResolutionFailed = errors.New("package resolution failed")
)

// PackageError wraps one of the sentinel errors with the package that
// triggered it, plus the underlying resolver error when there is one.
type PackageError struct {
	Op      string
	Package string
	Err     error
	Cause   error
}

func (e *PackageError) Error() string {
	switch {
	case e.Cause != nil:
		return fmt.Sprintf("%s %s: %v: %v", e.Op, e.Package, e.Err, e.Cause)
	case e.Package != "":
		return fmt.Sprintf("%s %s: %v", e.Op, e.Package, e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
}

func (e *PackageError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Err, e.Cause}
	}
	return []error{e.Err}
}
