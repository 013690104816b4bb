package engine

import "strings"

// CompileUnit is the result of compiling a SourceMap. It is returned even
// when compilation reports errors so diagnostics can be traced to sources.
type CompileUnit struct {
	Package *Package
	Sources *SourceMap
}

/*
Compile parses and resolves every source in the map against the store's core
package and the listed dependencies. Errors are collected across sources
rather than stopping at the first failing file.
*/
func Compile(store *PackageStore, dependencies []PackageID, sources *SourceMap) (*CompileUnit, []*Error) {
	unit := &CompileUnit{
		Package: &Package{Name: "user", callables: map[string]*callable{}},
		Sources: sources,
	}

	var errs []*Error

	deps := []*Package{store.Core()}
	for _, id := range dependencies {
		pkg, ok := store.Get(id)
		if !ok {
			errs = append(errs, newUnspannedError(DependencyError, "package %d not found in store", id))
			continue
		}
		deps = append(deps, pkg)
	}

	for _, src := range sources.Sources() {
		namespaces, err := parseSource(src)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		for _, ns := range namespaces {
			unit.Package.Namespaces = append(unit.Package.Namespaces, ns.name)
			for _, c := range ns.callables {
				qualified := c.qualifiedName()
				if _, exists := unit.Package.callables[qualified]; exists {
					errs = append(errs, newError(ResolveError, c.span, "duplicate callable `%s`", qualified))
					continue
				}
				unit.Package.callables[qualified] = c
			}
		}
	}

	if len(errs) > 0 {
		return unit, errs
	}

	r := newResolver(unit.Package, deps)
	for _, c := range unit.Package.ordered() {
		r.resolveCallable(c)
	}

	return unit, r.errs
}

/*
lookupTable maps callee spellings to callables. A callee is matched by its
fully qualified name first, then by its last path segment, which is how
`open`ed namespaces and intrinsics are reached.
*/
type lookupTable struct {
	qualified map[string]*callable
	simple    map[string]*callable
	intrinsic map[string]bool
}

func newLookupTable(user *Package, deps []*Package) *lookupTable {
	t := &lookupTable{
		qualified: map[string]*callable{},
		simple:    map[string]*callable{},
		intrinsic: map[string]bool{},
	}

	for _, pkg := range append([]*Package{user}, deps...) {
		for name, c := range pkg.callables {
			if _, ok := t.qualified[name]; !ok {
				t.qualified[name] = c
			}
			if _, ok := t.simple[c.name]; !ok {
				t.simple[c.name] = c
			}
		}
		for _, name := range pkg.Intrinsics() {
			t.intrinsic[name] = true
		}
	}

	return t
}

// find returns the user callable, or reports that the name is an intrinsic.
func (t *lookupTable) find(name string) (*callable, bool, bool) {
	if c, ok := t.qualified[name]; ok {
		return c, false, true
	}

	short := lastSegment(name)
	if c, ok := t.simple[short]; ok {
		return c, false, true
	}
	if t.intrinsic[short] {
		return nil, true, true
	}

	return nil, false, false
}

func lastSegment(name string) string {
	if idx := strings.LastIndexByte(name, '.'); idx >= 0 {
		return name[idx+1:]
	}
	return name
}
