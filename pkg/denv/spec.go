package denv

import "slices"

// Spec accumulates the packages and library exposures that make up one
// environment. The order of AddPackage calls decides PATH precedence in the
// built environment.
type Spec struct {
	packages  []string
	libraries []string
	env       map[string]string

	seen map[string]struct{}
}

func NewSpec() *Spec {
	return &Spec{seen: map[string]struct{}{}}
}

// AddPackage declares a package. Declaring the same name twice fails with
// ErrDuplicatePackage.
func (s *Spec) AddPackage(name string) error {
	if _, ok := s.seen[name]; ok {
		return &PackageError{Op: "add package", Package: name, Err: ErrDuplicatePackage}
	}
	s.seen[name] = struct{}{}
	s.packages = append(s.packages, name)
	return nil
}

// AddLibrary flags a previously declared package as needing its lib
// directory on the dynamic-linker search path. Referencing a package that
// was never declared fails with ErrUnknownPackage.
func (s *Spec) AddLibrary(name string) error {
	if _, ok := s.seen[name]; !ok {
		return &PackageError{Op: "expose library", Package: name, Err: ErrUnknownPackage}
	}
	s.libraries = append(s.libraries, name)
	return nil
}

// SetEnv records a static environment variable. Static variables merge into
// the built environment after the computed path variables, last write wins.
func (s *Spec) SetEnv(key, value string) {
	if s.env == nil {
		s.env = map[string]string{}
	}
	s.env[key] = value
}

func (s *Spec) Packages() []string {
	return slices.Clone(s.packages)
}

func (s *Spec) Libraries() []string {
	return slices.Clone(s.libraries)
}
