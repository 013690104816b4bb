package engine

import (
	"fmt"
	"math"
	"math/big"
	"math/bits"
	"math/cmplx"
	"math/rand/v2"
	"sort"
)

// MaxQubits bounds the dense state vector at 2^MaxQubits amplitudes.
const MaxQubits = 24

const zeroTolerance = 1e-12

type gate [2][2]complex128

var (
	gateH = gate{
		{complex(1/math.Sqrt2, 0), complex(1/math.Sqrt2, 0)},
		{complex(1/math.Sqrt2, 0), complex(-1/math.Sqrt2, 0)},
	}
	gateX = gate{{0, 1}, {1, 0}}
	gateY = gate{{0, -1i}, {1i, 0}}
	gateZ = gate{{1, 0}, {0, -1}}
	gateS = gate{{1, 0}, {0, 1i}}
	gateT = gate{{1, 0}, {0, cmplx.Exp(complex(0, math.Pi/4))}}
)

func gateRx(theta float64) gate {
	c, s := math.Cos(theta/2), math.Sin(theta/2)
	return gate{{complex(c, 0), complex(0, -s)}, {complex(0, -s), complex(c, 0)}}
}

func gateRy(theta float64) gate {
	c, s := math.Cos(theta/2), math.Sin(theta/2)
	return gate{{complex(c, 0), complex(-s, 0)}, {complex(s, 0), complex(c, 0)}}
}

func gateRz(theta float64) gate {
	return gate{
		{cmplx.Exp(complex(0, -theta/2)), 0},
		{0, cmplx.Exp(complex(0, theta/2))},
	}
}

// BasisAmplitude pairs a computational-basis index with its amplitude.
type BasisAmplitude struct {
	Index     *big.Int
	Amplitude complex128
}

/*
simulator is a dense state-vector simulator with dynamic allocation. Bit k of
a vector index is the qubit at position k; positions are compacted on
release so the vector always has exactly 2^len(ids) entries.
*/
type simulator struct {
	vector []complex128
	ids    []int
	nextID int
	rng    *rand.Rand
}

func newSimulator(rng *rand.Rand) *simulator {
	return &simulator{
		vector: []complex128{1},
		rng:    rng,
	}
}

func (s *simulator) qubitCount() int {
	return len(s.ids)
}

func (s *simulator) allocate() (int, error) {
	if len(s.ids) >= MaxQubits {
		return 0, fmt.Errorf("cannot allocate more than %d qubits", MaxQubits)
	}

	// New qubit starts in |0⟩, so the upper half of the vector is empty.
	grown := make([]complex128, len(s.vector)*2)
	copy(grown, s.vector)
	s.vector = grown

	id := s.nextID
	s.nextID++
	s.ids = append(s.ids, id)
	return id, nil
}

func (s *simulator) position(id int) (int, error) {
	for pos, candidate := range s.ids {
		if candidate == id {
			return pos, nil
		}
	}
	return 0, fmt.Errorf("Qubit%d is not allocated", id)
}

func (s *simulator) release(id int) error {
	pos, err := s.position(id)
	if err != nil {
		return err
	}

	if s.probabilityOne(pos) > zeroTolerance {
		return fmt.Errorf("%w: Qubit%d", ErrQubitNotReleasable, id)
	}

	low := uint(1)<<uint(pos) - 1
	shrunk := make([]complex128, len(s.vector)/2)
	for i, amp := range s.vector {
		if i&(1<<uint(pos)) != 0 {
			continue
		}
		shrunk[(uint(i)&low)|((uint(i)>>1)&^low)] = amp
	}

	s.vector = shrunk
	s.ids = append(s.ids[:pos], s.ids[pos+1:]...)
	return nil
}

func (s *simulator) apply(id int, g gate) error {
	pos, err := s.position(id)
	if err != nil {
		return err
	}
	s.applyAt(pos, -1, g)
	return nil
}

func (s *simulator) applyControlled(control, target int, g gate) error {
	if control == target {
		return fmt.Errorf("control and target must be distinct qubits")
	}
	cpos, err := s.position(control)
	if err != nil {
		return err
	}
	tpos, err := s.position(target)
	if err != nil {
		return err
	}
	s.applyAt(tpos, cpos, g)
	return nil
}

// applyAt applies g to the qubit at pos; when cpos >= 0 only basis states
// with that control bit set are touched.
func (s *simulator) applyAt(pos, cpos int, g gate) {
	mask := 1 << uint(pos)
	for i := range s.vector {
		if i&mask != 0 {
			continue
		}
		if cpos >= 0 && i&(1<<uint(cpos)) == 0 {
			continue
		}
		j := i | mask
		a, b := s.vector[i], s.vector[j]
		s.vector[i] = g[0][0]*a + g[0][1]*b
		s.vector[j] = g[1][0]*a + g[1][1]*b
	}
}

func (s *simulator) swap(a, b int) error {
	if a == b {
		return nil
	}
	apos, err := s.position(a)
	if err != nil {
		return err
	}
	bpos, err := s.position(b)
	if err != nil {
		return err
	}

	amask, bmask := 1<<uint(apos), 1<<uint(bpos)
	for i := range s.vector {
		if i&amask != 0 && i&bmask == 0 {
			j := (i &^ amask) | bmask
			s.vector[i], s.vector[j] = s.vector[j], s.vector[i]
		}
	}
	return nil
}

func (s *simulator) probabilityOne(pos int) float64 {
	mask := 1 << uint(pos)
	total := 0.0
	for i, amp := range s.vector {
		if i&mask != 0 {
			total += real(amp)*real(amp) + imag(amp)*imag(amp)
		}
	}
	return total
}

// measure collapses the qubit in the Z basis and reports whether it read One.
func (s *simulator) measure(id int) (bool, error) {
	pos, err := s.position(id)
	if err != nil {
		return false, err
	}

	p1 := s.probabilityOne(pos)
	one := s.rng.Float64() < p1

	norm := p1
	if !one {
		norm = 1 - p1
	}
	scale := complex(1/math.Sqrt(norm), 0)

	mask := 1 << uint(pos)
	for i := range s.vector {
		if (i&mask != 0) == one {
			s.vector[i] *= scale
		} else {
			s.vector[i] = 0
		}
	}

	return one, nil
}

func (s *simulator) reset(id int) error {
	one, err := s.measure(id)
	if err != nil || !one {
		return err
	}
	return s.apply(id, gateX)
}

/*
dump returns the non-zero amplitudes in ascending label order. Labels put the
first allocated qubit in the most significant position, so the bit order of
each index is reversed relative to the vector layout.
*/
func (s *simulator) dump() ([]BasisAmplitude, int) {
	n := len(s.ids)
	type entry struct {
		label uint64
		amp   complex128
	}

	entries := make([]entry, 0)
	for i, amp := range s.vector {
		if cmplx.Abs(amp) < zeroTolerance {
			continue
		}
		label := uint64(i)
		if n > 0 {
			label = bits.Reverse64(uint64(i)) >> uint(64-n)
		}
		entries = append(entries, entry{label: label, amp: amp})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].label < entries[j].label
	})

	out := make([]BasisAmplitude, len(entries))
	for i, e := range entries {
		out[i] = BasisAmplitude{
			Index:     new(big.Int).SetUint64(e.label),
			Amplitude: e.amp,
		}
	}

	return out, n
}
