package engine

import (
	"fmt"
	"math/big"
	"strings"
)

/*
Receiver is the side-effect channel of an evaluation. The engine calls State
with the full state whenever a program dumps the machine, and Message for
every emitted message. A returned error aborts the evaluation.
*/
type Receiver interface {
	State(states []BasisAmplitude, qubitCount int) error
	Message(msg string) error
}

/*
FormatStateID renders a basis index as a ket label, e.g. |0110⟩, padded to
qubitCount binary digits with the first allocated qubit leftmost. An index
that does not fit in qubitCount bits is malformed.
*/
func FormatStateID(index *big.Int, qubitCount int) (string, error) {
	if index == nil || index.Sign() < 0 {
		return "", fmt.Errorf("%w: invalid basis index %v", ErrMalformedQubitCount, index)
	}
	if qubitCount < 0 {
		return "", fmt.Errorf("%w: %d", ErrMalformedQubitCount, qubitCount)
	}
	if index.BitLen() > qubitCount {
		return "", fmt.Errorf(
			"%w: basis index %s needs %d qubits, have %d",
			ErrMalformedQubitCount, index.Text(10), index.BitLen(), qubitCount,
		)
	}

	label := index.Text(2)
	if pad := qubitCount - len(label); pad > 0 {
		label = strings.Repeat("0", pad) + label
	}

	return "|" + label + "⟩", nil
}
