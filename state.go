package qrun

/*
BasisState is one entry of a captured quantum state: a computational basis
label such as |01⟩ together with the amplitude the engine computed for it.
Values are copied verbatim from the engine, never rounded or normalized.
*/
type BasisState struct {
	ID                 string  `json:"id" yaml:"id"`
	AmplitudeReal      float64 `json:"amplitude_real" yaml:"amplitude_real"`
	AmplitudeImaginary float64 `json:"amplitude_imaginary" yaml:"amplitude_imaginary"`
}

// Amplitude recombines the stored parts into a complex number.
func (s BasisState) Amplitude() complex128 {
	return complex(s.AmplitudeReal, s.AmplitudeImaginary)
}

// Probability is the squared magnitude of the amplitude.
func (s BasisState) Probability() float64 {
	return s.AmplitudeReal*s.AmplitudeReal + s.AmplitudeImaginary*s.AmplitudeImaginary
}
