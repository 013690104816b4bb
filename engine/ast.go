package engine

type namespace struct {
	name      string
	callables []*callable
	span      Span
}

type param struct {
	name string
	typ  string
	span Span
}

type callable struct {
	namespace  string
	name       string
	operation  bool
	entryPoint bool
	params     []param
	returns    string
	body       *block
	span       Span
}

func (c *callable) qualifiedName() string {
	if c.namespace == "" {
		return c.name
	}
	return c.namespace + "." + c.name
}

type block struct {
	stmts []stmt
	span  Span
}

type stmt interface {
	stmtSpan() Span
}

type letStmt struct {
	name    string
	mutable bool
	value   expr
	span    Span
}

type setStmt struct {
	name  string
	value expr
	span  Span
}

// useStmt allocates one qubit, or an array of qubits when size is non-nil.
type useStmt struct {
	name string
	size expr
	span Span
}

type ifStmt struct {
	conds  []expr
	blocks []*block
	orElse *block
	span   Span
}

type forStmt struct {
	name string
	from expr
	to   expr
	body *block
	span Span
}

type returnStmt struct {
	value expr
	span  Span
}

type failStmt struct {
	message expr
	span    Span
}

type exprStmt struct {
	value expr
	span  Span
}

func (s *letStmt) stmtSpan() Span    { return s.span }
func (s *setStmt) stmtSpan() Span    { return s.span }
func (s *useStmt) stmtSpan() Span    { return s.span }
func (s *ifStmt) stmtSpan() Span     { return s.span }
func (s *forStmt) stmtSpan() Span    { return s.span }
func (s *returnStmt) stmtSpan() Span { return s.span }
func (s *failStmt) stmtSpan() Span   { return s.span }
func (s *exprStmt) stmtSpan() Span   { return s.span }

type expr interface {
	exprSpan() Span
}

type literalExpr struct {
	value Value
	span  Span
}

// interpExpr alternates literal text parts with embedded expressions.
type interpExpr struct {
	parts []string
	exprs []expr
	span  Span
}

type identExpr struct {
	name string
	span Span
}

type indexExpr struct {
	target expr
	index  expr
	span   Span
}

type callExpr struct {
	callee string
	args   []expr
	span   Span
}

type unaryExpr struct {
	op      string
	operand expr
	span    Span
}

type binaryExpr struct {
	op    string
	left  expr
	right expr
	span  Span
}

type arrayExpr struct {
	items []expr
	span  Span
}

func (e *literalExpr) exprSpan() Span { return e.span }
func (e *interpExpr) exprSpan() Span  { return e.span }
func (e *identExpr) exprSpan() Span   { return e.span }
func (e *indexExpr) exprSpan() Span   { return e.span }
func (e *callExpr) exprSpan() Span    { return e.span }
func (e *unaryExpr) exprSpan() Span   { return e.span }
func (e *binaryExpr) exprSpan() Span  { return e.span }
func (e *arrayExpr) exprSpan() Span   { return e.span }
