package engine

import "sort"

// PackageID identifies a package inside a PackageStore.
type PackageID int

// Package is a compiled unit of callables. The core package holds only
// intrinsics; user packages hold parsed callables.
type Package struct {
	ID         PackageID
	Name       string
	Namespaces []string
	callables  map[string]*callable
	intrinsics []string
}

// Callables lists the qualified names of the package's user callables.
func (p *Package) Callables() []string {
	names := make([]string, 0, len(p.callables))
	for name := range p.callables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ordered returns the user callables in source order.
func (p *Package) ordered() []*callable {
	out := make([]*callable, 0, len(p.callables))
	for _, c := range p.callables {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].span.Lo < out[j].span.Lo
	})
	return out
}

func (p *Package) Intrinsics() []string {
	return p.intrinsics
}

// Core returns a fresh copy of the intrinsic package every store is seeded with.
func Core() *Package {
	names := make([]string, 0, len(intrinsics))
	for name := range intrinsics {
		names = append(names, name)
	}
	sort.Strings(names)

	return &Package{
		Name:       "core",
		Namespaces: []string{"Microsoft.Quantum.Core", "Microsoft.Quantum.Intrinsic"},
		callables:  map[string]*callable{},
		intrinsics: names,
	}
}

type PackageStore struct {
	packages []*Package
}

func NewPackageStore(core *Package) *PackageStore {
	store := &PackageStore{}
	store.Insert(core)
	return store
}

func (s *PackageStore) Insert(pkg *Package) PackageID {
	pkg.ID = PackageID(len(s.packages))
	s.packages = append(s.packages, pkg)
	return pkg.ID
}

func (s *PackageStore) Get(id PackageID) (*Package, bool) {
	if id < 0 || int(id) >= len(s.packages) {
		return nil, false
	}
	return s.packages[id], true
}

func (s *PackageStore) Core() *Package {
	return s.packages[0]
}
