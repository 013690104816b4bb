package engine

type intrinsicFn func(e *evaluator, args []Value, span Span) (Value, *Error)

type intrinsic struct {
	arity int
	fn    intrinsicFn
}

var intrinsics = map[string]intrinsic{
	"Message":     {1, message},
	"DumpMachine": {0, dumpMachine},
	"H":           {1, singleQubit(gateH)},
	"X":           {1, singleQubit(gateX)},
	"Y":           {1, singleQubit(gateY)},
	"Z":           {1, singleQubit(gateZ)},
	"S":           {1, singleQubit(gateS)},
	"T":           {1, singleQubit(gateT)},
	"Rx":          {2, rotation(gateRx)},
	"Ry":          {2, rotation(gateRy)},
	"Rz":          {2, rotation(gateRz)},
	"CNOT":        {2, controlled(gateX)},
	"CZ":          {2, controlled(gateZ)},
	"SWAP":        {2, swapQubits},
	"M":           {1, measure},
	"MResetZ":     {1, measureReset},
	"Reset":       {1, reset},
	"ResetAll":    {1, resetAll},
	"Length":      {1, length},
	"IntAsDouble": {1, intAsDouble},
}

func message(e *evaluator, args []Value, span Span) (Value, *Error) {
	text, err := e.asString(args[0], span)
	if err != nil {
		return nil, err
	}
	if cause := e.receiver.Message(text); cause != nil {
		return nil, e.outputError(span, cause)
	}
	return Unit, nil
}

func dumpMachine(e *evaluator, _ []Value, span Span) (Value, *Error) {
	states, count := e.sim.dump()
	if cause := e.receiver.State(states, count); cause != nil {
		return nil, e.outputError(span, cause)
	}
	return Unit, nil
}

func singleQubit(g gate) intrinsicFn {
	return func(e *evaluator, args []Value, span Span) (Value, *Error) {
		q, err := e.asQubit(args[0], span)
		if err != nil {
			return nil, err
		}
		if cause := e.sim.apply(q, g); cause != nil {
			return nil, e.runtimeError(span, "%v", cause)
		}
		return Unit, nil
	}
}

func rotation(build func(float64) gate) intrinsicFn {
	return func(e *evaluator, args []Value, span Span) (Value, *Error) {
		theta, err := e.asDouble(args[0], span)
		if err != nil {
			return nil, err
		}
		return singleQubit(build(theta))(e, args[1:], span)
	}
}

func controlled(g gate) intrinsicFn {
	return func(e *evaluator, args []Value, span Span) (Value, *Error) {
		control, err := e.asQubit(args[0], span)
		if err != nil {
			return nil, err
		}
		target, err := e.asQubit(args[1], span)
		if err != nil {
			return nil, err
		}
		if cause := e.sim.applyControlled(control, target, g); cause != nil {
			return nil, e.runtimeError(span, "%v", cause)
		}
		return Unit, nil
	}
}

func swapQubits(e *evaluator, args []Value, span Span) (Value, *Error) {
	a, err := e.asQubit(args[0], span)
	if err != nil {
		return nil, err
	}
	b, err := e.asQubit(args[1], span)
	if err != nil {
		return nil, err
	}
	if cause := e.sim.swap(a, b); cause != nil {
		return nil, e.runtimeError(span, "%v", cause)
	}
	return Unit, nil
}

func measure(e *evaluator, args []Value, span Span) (Value, *Error) {
	q, err := e.asQubit(args[0], span)
	if err != nil {
		return nil, err
	}
	one, cause := e.sim.measure(q)
	if cause != nil {
		return nil, e.runtimeError(span, "%v", cause)
	}
	return ResultValue(one), nil
}

func measureReset(e *evaluator, args []Value, span Span) (Value, *Error) {
	result, err := measure(e, args, span)
	if err != nil {
		return nil, err
	}
	if result == One {
		if _, err := singleQubit(gateX)(e, args, span); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func reset(e *evaluator, args []Value, span Span) (Value, *Error) {
	q, err := e.asQubit(args[0], span)
	if err != nil {
		return nil, err
	}
	if cause := e.sim.reset(q); cause != nil {
		return nil, e.runtimeError(span, "%v", cause)
	}
	return Unit, nil
}

func resetAll(e *evaluator, args []Value, span Span) (Value, *Error) {
	arr, err := e.asArray(args[0], span)
	if err != nil {
		return nil, err
	}
	for _, item := range arr {
		if _, err := reset(e, []Value{item}, span); err != nil {
			return nil, err
		}
	}
	return Unit, nil
}

func length(e *evaluator, args []Value, span Span) (Value, *Error) {
	arr, err := e.asArray(args[0], span)
	if err != nil {
		return nil, err
	}
	return IntValue(len(arr)), nil
}

func intAsDouble(e *evaluator, args []Value, span Span) (Value, *Error) {
	n, err := e.asInt(args[0], span)
	if err != nil {
		return nil, err
	}
	return DoubleValue(float64(n)), nil
}
