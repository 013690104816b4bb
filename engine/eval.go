package engine

import (
	"fmt"
	"strings"
)

type binding struct {
	value   Value
	mutable bool
}

type allocation struct {
	id   int
	span Span
}

type scope struct {
	parent *scope
	vars   map[string]*binding
	qubits []allocation
}

func newScope(parent *scope) *scope {
	return &scope{parent: parent, vars: map[string]*binding{}}
}

func (s *scope) lookup(name string) (*binding, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if b, ok := cur.vars[name]; ok {
			return b, true
		}
	}
	return nil, false
}

// MaxCallDepth bounds nested calls so runaway recursion surfaces as a
// runtime error instead of exhausting the goroutine stack.
const MaxCallDepth = 10000

// maxTraceFrames caps how many frames a rendered call stack lists.
const maxTraceFrames = 32

// frame records a callable on the stack and the span it was called from.
type frame struct {
	callable *callable
	callSite Span
}

type evaluator struct {
	ctx      *Context
	receiver Receiver
	sim      *simulator
	frames   []frame
}

func (e *evaluator) runtimeError(span Span, format string, args ...any) *Error {
	err := newError(RuntimeError, span, format, args...)
	if e.ctx.debug {
		err.trace = e.renderTrace(err)
	}
	return err
}

func (e *evaluator) outputError(span Span, cause error) *Error {
	err := e.runtimeError(span, "output error: %v", cause)
	err.cause = cause
	return err
}

/*
renderTrace prints the call stack innermost first. The innermost frame is
located at the failing span; each outer frame at the call site of the frame
above it.
*/
func (e *evaluator) renderTrace(err *Error) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Error: %s\nCall stack:", err.Message)

	at := err.Span
	for i := len(e.frames) - 1; i >= 0; i-- {
		if shown := len(e.frames) - 1 - i; shown == maxTraceFrames {
			fmt.Fprintf(&b, "\n    ... %d more frame(s)", i+1)
			break
		}
		f := e.frames[i]
		fmt.Fprintf(&b, "\n    at %s in %s", f.callable.qualifiedName(), e.location(at))
		at = f.callSite
	}

	return b.String()
}

func (e *evaluator) location(span Span) string {
	sources := e.ctx.unit.Sources
	src, ok := sources.Find(span.Lo)
	if !ok {
		return "<unknown>"
	}
	line, col := src.Position(span.Lo)
	return fmt.Sprintf("%s:%d:%d", sources.DisplayName(src), line, col)
}

func (e *evaluator) invoke(c *callable, args []Value, callSite Span) (Value, *Error) {
	if len(e.frames) >= MaxCallDepth {
		return nil, e.runtimeError(callSite, "call stack depth exceeded calling `%s`", c.qualifiedName())
	}

	e.frames = append(e.frames, frame{callable: c, callSite: callSite})
	defer func() { e.frames = e.frames[:len(e.frames)-1] }()

	params := newScope(nil)
	for i, p := range c.params {
		params.vars[p.name] = &binding{value: args[i]}
	}

	value, returned, err := e.execBlock(c.body, params)
	if err != nil {
		return nil, err
	}
	if !returned {
		return Unit, nil
	}
	return value, nil
}

// execBlock runs the statements of b in a fresh scope and releases the
// qubits allocated in it on the way out.
func (e *evaluator) execBlock(b *block, parent *scope) (Value, bool, *Error) {
	s := newScope(parent)

	for _, st := range b.stmts {
		value, returned, err := e.execStmt(st, s)
		if err != nil {
			return nil, false, err
		}
		if returned {
			if err := e.releaseScope(s); err != nil {
				return nil, false, err
			}
			return value, true, nil
		}
	}

	if err := e.releaseScope(s); err != nil {
		return nil, false, err
	}
	return nil, false, nil
}

func (e *evaluator) releaseScope(s *scope) *Error {
	for i := len(s.qubits) - 1; i >= 0; i-- {
		q := s.qubits[i]
		if cause := e.sim.release(q.id); cause != nil {
			err := e.runtimeError(q.span, "%v", cause)
			err.cause = cause
			return err
		}
	}
	s.qubits = nil
	return nil
}

func (e *evaluator) execStmt(st stmt, s *scope) (Value, bool, *Error) {
	switch st := st.(type) {
	case *letStmt:
		value, err := e.evalExpr(st.value, s)
		if err != nil {
			return nil, false, err
		}
		s.vars[st.name] = &binding{value: value, mutable: st.mutable}

	case *setStmt:
		value, err := e.evalExpr(st.value, s)
		if err != nil {
			return nil, false, err
		}
		b, ok := s.lookup(st.name)
		if !ok || !b.mutable {
			return nil, false, e.runtimeError(st.span, "cannot update `%s`", st.name)
		}
		b.value = value

	case *useStmt:
		value, err := e.allocate(st, s)
		if err != nil {
			return nil, false, err
		}
		s.vars[st.name] = &binding{value: value}

	case *ifStmt:
		for i, cond := range st.conds {
			v, err := e.evalExpr(cond, s)
			if err != nil {
				return nil, false, err
			}
			ok, err := e.asBool(v, cond.exprSpan())
			if err != nil {
				return nil, false, err
			}
			if ok {
				return e.execBlock(st.blocks[i], s)
			}
		}
		if st.orElse != nil {
			return e.execBlock(st.orElse, s)
		}

	case *forStmt:
		from, err := e.evalInt(st.from, s)
		if err != nil {
			return nil, false, err
		}
		to, err := e.evalInt(st.to, s)
		if err != nil {
			return nil, false, err
		}
		for i := from; i <= to; i++ {
			iter := newScope(s)
			iter.vars[st.name] = &binding{value: IntValue(i)}
			value, returned, err := e.execBlock(st.body, iter)
			if err != nil || returned {
				return value, returned, err
			}
		}

	case *returnStmt:
		if st.value == nil {
			return Unit, true, nil
		}
		value, err := e.evalExpr(st.value, s)
		if err != nil {
			return nil, false, err
		}
		return value, true, nil

	case *failStmt:
		v, err := e.evalExpr(st.message, s)
		if err != nil {
			return nil, false, err
		}
		msg, err := e.asString(v, st.message.exprSpan())
		if err != nil {
			return nil, false, err
		}
		return nil, false, e.runtimeError(st.span, "program failed: %s", msg)

	case *exprStmt:
		if _, err := e.evalExpr(st.value, s); err != nil {
			return nil, false, err
		}
	}

	return nil, false, nil
}

func (e *evaluator) allocate(st *useStmt, s *scope) (Value, *Error) {
	count := int64(1)
	if st.size != nil {
		n, err := e.evalInt(st.size, s)
		if err != nil {
			return nil, err
		}
		if n < 0 {
			return nil, e.runtimeError(st.size.exprSpan(), "cannot allocate %d qubits", n)
		}
		count = n
	}

	qubits := make(ArrayValue, 0, count)
	for i := int64(0); i < count; i++ {
		id, err := e.sim.allocate()
		if err != nil {
			return nil, e.runtimeError(st.span, "%v", err)
		}
		s.qubits = append(s.qubits, allocation{id: id, span: st.span})
		qubits = append(qubits, QubitValue{ID: id})
	}

	if st.size == nil {
		return qubits[0], nil
	}
	return qubits, nil
}

func (e *evaluator) evalInt(x expr, s *scope) (int64, *Error) {
	v, err := e.evalExpr(x, s)
	if err != nil {
		return 0, err
	}
	return e.asInt(v, x.exprSpan())
}

func (e *evaluator) evalExpr(x expr, s *scope) (Value, *Error) {
	switch x := x.(type) {
	case *literalExpr:
		return x.value, nil

	case *interpExpr:
		var b strings.Builder
		for i, part := range x.parts {
			b.WriteString(part)
			if i < len(x.exprs) {
				v, err := e.evalExpr(x.exprs[i], s)
				if err != nil {
					return nil, err
				}
				b.WriteString(v.String())
			}
		}
		return StringValue(b.String()), nil

	case *identExpr:
		b, ok := s.lookup(x.name)
		if !ok {
			return nil, e.runtimeError(x.span, "unknown name `%s`", x.name)
		}
		return b.value, nil

	case *indexExpr:
		target, err := e.evalExpr(x.target, s)
		if err != nil {
			return nil, err
		}
		arr, err := e.asArray(target, x.target.exprSpan())
		if err != nil {
			return nil, err
		}
		idx, err := e.evalInt(x.index, s)
		if err != nil {
			return nil, err
		}
		if idx < 0 || idx >= int64(len(arr)) {
			return nil, e.runtimeError(x.span, "index out of range: %d", idx)
		}
		return arr[idx], nil

	case *arrayExpr:
		arr := make(ArrayValue, 0, len(x.items))
		for _, item := range x.items {
			v, err := e.evalExpr(item, s)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil

	case *unaryExpr:
		return e.evalUnary(x, s)

	case *binaryExpr:
		return e.evalBinary(x, s)

	case *callExpr:
		return e.evalCall(x, s)
	}

	return nil, e.runtimeError(x.exprSpan(), "unsupported expression")
}

func (e *evaluator) evalCall(x *callExpr, s *scope) (Value, *Error) {
	args := make([]Value, len(x.args))
	for i, arg := range x.args {
		v, err := e.evalExpr(arg, s)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	target, isIntrinsic, ok := e.ctx.table.find(x.callee)
	switch {
	case !ok:
		return nil, e.runtimeError(x.span, "unknown callable `%s`", x.callee)
	case isIntrinsic:
		return intrinsics[lastSegment(x.callee)].fn(e, args, x.span)
	default:
		return e.invoke(target, args, x.span)
	}
}

func (e *evaluator) evalUnary(x *unaryExpr, s *scope) (Value, *Error) {
	v, err := e.evalExpr(x.operand, s)
	if err != nil {
		return nil, err
	}

	switch x.op {
	case "-":
		switch v := v.(type) {
		case IntValue:
			return -v, nil
		case DoubleValue:
			return -v, nil
		}
	case "not":
		if b, ok := v.(BoolValue); ok {
			return !b, nil
		}
	}

	return nil, e.runtimeError(x.span, "cannot apply `%s` to %s", x.op, v.Type())
}

func (e *evaluator) evalBinary(x *binaryExpr, s *scope) (Value, *Error) {
	left, err := e.evalExpr(x.left, s)
	if err != nil {
		return nil, err
	}

	if x.op == "and" || x.op == "or" {
		lb, err := e.asBool(left, x.left.exprSpan())
		if err != nil {
			return nil, err
		}
		if (x.op == "and" && !lb) || (x.op == "or" && lb) {
			return BoolValue(lb), nil
		}
		right, err := e.evalExpr(x.right, s)
		if err != nil {
			return nil, err
		}
		rb, err := e.asBool(right, x.right.exprSpan())
		if err != nil {
			return nil, err
		}
		return BoolValue(rb), nil
	}

	right, err := e.evalExpr(x.right, s)
	if err != nil {
		return nil, err
	}

	switch x.op {
	case "==":
		return BoolValue(valuesEqual(left, right)), nil
	case "!=":
		return BoolValue(!valuesEqual(left, right)), nil
	}

	mismatch := func() (Value, *Error) {
		return nil, e.runtimeError(x.span, "cannot apply `%s` to %s and %s", x.op, left.Type(), right.Type())
	}

	switch l := left.(type) {
	case IntValue:
		r, ok := right.(IntValue)
		if !ok {
			return mismatch()
		}
		return e.intOp(x, l, r)
	case DoubleValue:
		r, ok := right.(DoubleValue)
		if !ok {
			return mismatch()
		}
		return doubleOp(x.op, l, r, mismatch)
	case StringValue:
		r, ok := right.(StringValue)
		if !ok || x.op != "+" {
			return mismatch()
		}
		return l + r, nil
	case ArrayValue:
		r, ok := right.(ArrayValue)
		if !ok || x.op != "+" {
			return mismatch()
		}
		out := make(ArrayValue, 0, len(l)+len(r))
		return append(append(out, l...), r...), nil
	}

	return mismatch()
}

func (e *evaluator) intOp(x *binaryExpr, l, r IntValue) (Value, *Error) {
	switch x.op {
	case "+":
		return l + r, nil
	case "-":
		return l - r, nil
	case "*":
		return l * r, nil
	case "/", "%":
		if r == 0 {
			return nil, e.runtimeError(x.span, "division by zero")
		}
		if x.op == "/" {
			return l / r, nil
		}
		return l % r, nil
	case "<":
		return BoolValue(l < r), nil
	case "<=":
		return BoolValue(l <= r), nil
	case ">":
		return BoolValue(l > r), nil
	case ">=":
		return BoolValue(l >= r), nil
	}
	return nil, e.runtimeError(x.span, "cannot apply `%s` to Int", x.op)
}

func doubleOp(op string, l, r DoubleValue, mismatch func() (Value, *Error)) (Value, *Error) {
	switch op {
	case "+":
		return l + r, nil
	case "-":
		return l - r, nil
	case "*":
		return l * r, nil
	case "/":
		return l / r, nil
	case "<":
		return BoolValue(l < r), nil
	case "<=":
		return BoolValue(l <= r), nil
	case ">":
		return BoolValue(l > r), nil
	case ">=":
		return BoolValue(l >= r), nil
	}
	return mismatch()
}

func (e *evaluator) typeError(v Value, want string, span Span) *Error {
	return e.runtimeError(span, "expected %s, found %s", want, v.Type())
}

func (e *evaluator) asInt(v Value, span Span) (int64, *Error) {
	if n, ok := v.(IntValue); ok {
		return int64(n), nil
	}
	return 0, e.typeError(v, "Int", span)
}

func (e *evaluator) asDouble(v Value, span Span) (float64, *Error) {
	if d, ok := v.(DoubleValue); ok {
		return float64(d), nil
	}
	return 0, e.typeError(v, "Double", span)
}

func (e *evaluator) asBool(v Value, span Span) (bool, *Error) {
	if b, ok := v.(BoolValue); ok {
		return bool(b), nil
	}
	return false, e.typeError(v, "Bool", span)
}

func (e *evaluator) asString(v Value, span Span) (string, *Error) {
	if s, ok := v.(StringValue); ok {
		return string(s), nil
	}
	return "", e.typeError(v, "String", span)
}

func (e *evaluator) asQubit(v Value, span Span) (int, *Error) {
	if q, ok := v.(QubitValue); ok {
		return q.ID, nil
	}
	return 0, e.typeError(v, "Qubit", span)
}

func (e *evaluator) asArray(v Value, span Span) (ArrayValue, *Error) {
	if a, ok := v.(ArrayValue); ok {
		return a, nil
	}
	return nil, e.typeError(v, "array", span)
}
