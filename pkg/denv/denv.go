package denv

import (
	"fmt"
	"os"

	"github.com/nxtcoder17/denv/pkg/resolver"
	"gopkg.in/yaml.v3"
)

// Denv mirrors denv.yml.
type Denv struct {
	ConfigFile string `yaml:"-"`

	// NixPkgs is the default nixpkgs commit used for unpinned package
	// references.
	NixPkgs string `yaml:"nixpkgs,omitempty"`

	Resolver string `yaml:"resolver,omitempty"`

	Packages []string `yaml:"packages"`

	// Libraries names declared packages whose lib directory must land on
	// the dynamic-linker search path.
	Libraries []string `yaml:"libraries,omitempty"`

	Env map[string]string `yaml:"env,omitempty"`

	// Pins maps package names to /nix/store paths, used by the cache
	// resolver on hosts without a nix installation.
	Pins map[string]string `yaml:"pins,omitempty"`
}

func LoadFromFile(f string) (*Denv, error) {
	b, err := os.ReadFile(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read denv file (%s): %w", f, err)
	}

	var d Denv
	if err := yaml.Unmarshal(b, &d); err != nil {
		return nil, err
	}

	d.ConfigFile = f

	if d.Resolver == "" {
		if v, ok := os.LookupEnv("DENV_RESOLVER"); ok {
			d.Resolver = v
		}
	}

	return &d, nil
}

// ToSpec validates the declared packages and exposures into a Spec,
// surfacing duplicate or unknown identifiers before any build happens.
func (d *Denv) ToSpec() (*Spec, error) {
	spec := NewSpec()

	for _, pkg := range d.Packages {
		if err := spec.AddPackage(pkg); err != nil {
			return nil, err
		}
	}

	for _, lib := range d.Libraries {
		if err := spec.AddLibrary(lib); err != nil {
			return nil, err
		}
	}

	for k, v := range d.Env {
		spec.SetEnv(k, v)
	}

	return spec, nil
}

// NewResolver picks the resolver implementation the config asks for.
func (d *Denv) NewResolver() (resolver.Resolver, error) {
	switch resolver.Mode(d.Resolver) {
	case "", resolver.LocalMode:
		return resolver.NewNix(d.NixPkgs), nil
	case resolver.CacheMode:
		return resolver.NewCache(resolver.CacheConfig{Pins: d.Pins}), nil
	default:
		return nil, fmt.Errorf("unknown resolver: %s, only local and cache resolvers are supported", d.Resolver)
	}
}

// AddPackages appends packages to the config, rejecting duplicates against
// everything already declared.
func (d *Denv) AddPackages(names ...string) error {
	spec, err := d.ToSpec()
	if err != nil {
		return err
	}

	for _, name := range names {
		if err := spec.AddPackage(name); err != nil {
			return err
		}
		d.Packages = append(d.Packages, name)
	}

	return nil
}

// ExposeLibraries appends library exposures, rejecting names that do not
// match a declared package.
func (d *Denv) ExposeLibraries(names ...string) error {
	spec, err := d.ToSpec()
	if err != nil {
		return err
	}

	for _, name := range names {
		if err := spec.AddLibrary(name); err != nil {
			return err
		}
		d.Libraries = append(d.Libraries, name)
	}

	return nil
}

func (d *Denv) SyncToDisk() error {
	upkg := make([]string, 0, len(d.Packages))

	set := make(map[string]struct{}, len(d.Packages))
	for _, pkg := range d.Packages {
		if _, ok := set[pkg]; ok {
			continue
		}
		set[pkg] = struct{}{}
		upkg = append(upkg, pkg)
	}

	d.Packages = upkg

	b, err := yaml.Marshal(d)
	if err != nil {
		return err
	}

	if d.ConfigFile != "" {
		if err := os.WriteFile(d.ConfigFile, b, 0o644); err != nil {
			return err
		}
	}

	return nil
}

// InitFile writes a starter denv.yml at dest.
func InitFile(dest string) error {
	if _, err := os.Stat(dest); err == nil {
		return fmt.Errorf("%s already exists", dest)
	}

	d := Denv{ConfigFile: dest, Packages: []string{}}
	return d.SyncToDisk()
}
