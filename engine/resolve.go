package engine

type resolveScope struct {
	parent *resolveScope
	names  map[string]bool // name -> mutable
}

func (s *resolveScope) lookup(name string) (mutable, ok bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if m, found := cur.names[name]; found {
			return m, true
		}
	}
	return false, false
}

// resolver checks names, call targets and arities before evaluation.
type resolver struct {
	table *lookupTable
	errs  []*Error
}

func newResolver(user *Package, deps []*Package) *resolver {
	return &resolver{table: newLookupTable(user, deps)}
}

func (r *resolver) fail(kind ErrorKind, span Span, format string, args ...any) {
	r.errs = append(r.errs, newError(kind, span, format, args...))
}

func (r *resolver) resolveCallable(c *callable) {
	scope := &resolveScope{names: map[string]bool{}}
	for _, p := range c.params {
		if _, dup := scope.names[p.name]; dup {
			r.fail(ResolveError, p.span, "duplicate parameter `%s`", p.name)
		}
		scope.names[p.name] = false
	}
	r.resolveBlock(c.body, scope)
}

func (r *resolver) resolveBlock(b *block, parent *resolveScope) {
	scope := &resolveScope{parent: parent, names: map[string]bool{}}
	for _, s := range b.stmts {
		r.resolveStmt(s, scope)
	}
}

func (r *resolver) resolveStmt(s stmt, scope *resolveScope) {
	switch s := s.(type) {
	case *letStmt:
		r.resolveExpr(s.value, scope)
		scope.names[s.name] = s.mutable
	case *setStmt:
		r.resolveExpr(s.value, scope)
		mutable, ok := scope.lookup(s.name)
		switch {
		case !ok:
			r.fail(ResolveError, s.span, "unknown name `%s`", s.name)
		case !mutable:
			r.fail(ResolveError, s.span, "cannot update immutable variable `%s`", s.name)
		}
	case *useStmt:
		if s.size != nil {
			r.resolveExpr(s.size, scope)
		}
		scope.names[s.name] = false
	case *ifStmt:
		for i, cond := range s.conds {
			r.resolveExpr(cond, scope)
			r.resolveBlock(s.blocks[i], scope)
		}
		if s.orElse != nil {
			r.resolveBlock(s.orElse, scope)
		}
	case *forStmt:
		r.resolveExpr(s.from, scope)
		r.resolveExpr(s.to, scope)
		inner := &resolveScope{parent: scope, names: map[string]bool{s.name: false}}
		r.resolveBlock(s.body, inner)
	case *returnStmt:
		if s.value != nil {
			r.resolveExpr(s.value, scope)
		}
	case *failStmt:
		r.resolveExpr(s.message, scope)
	case *exprStmt:
		r.resolveExpr(s.value, scope)
	}
}

func (r *resolver) resolveExpr(e expr, scope *resolveScope) {
	switch e := e.(type) {
	case *identExpr:
		if _, ok := scope.lookup(e.name); !ok {
			r.fail(ResolveError, e.span, "unknown name `%s`", e.name)
		}
	case *interpExpr:
		for _, inner := range e.exprs {
			r.resolveExpr(inner, scope)
		}
	case *indexExpr:
		r.resolveExpr(e.target, scope)
		r.resolveExpr(e.index, scope)
	case *unaryExpr:
		r.resolveExpr(e.operand, scope)
	case *binaryExpr:
		r.resolveExpr(e.left, scope)
		r.resolveExpr(e.right, scope)
	case *arrayExpr:
		for _, item := range e.items {
			r.resolveExpr(item, scope)
		}
	case *callExpr:
		for _, arg := range e.args {
			r.resolveExpr(arg, scope)
		}
		target, intrinsic, ok := r.table.find(e.callee)
		switch {
		case !ok:
			r.fail(ResolveError, e.span, "unknown callable `%s`", e.callee)
		case intrinsic:
			want := intrinsics[lastSegment(e.callee)].arity
			if want != len(e.args) {
				r.fail(TypeError, e.span, "`%s` expects %d argument(s), found %d", e.callee, want, len(e.args))
			}
		case len(target.params) != len(e.args):
			r.fail(TypeError, e.span, "`%s` expects %d argument(s), found %d", e.callee, len(target.params), len(e.args))
		}
	}
}
