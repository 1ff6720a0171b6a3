package designgen

import "fmt"

// Phase names the active variant of a State.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseGenerating
	PhaseSucceeded
	PhaseFailed
)

var phaseNames = [...]string{
	PhaseIdle:       "idle",
	PhaseGenerating: "generating",
	PhaseSucceeded:  "succeeded",
	PhaseFailed:     "failed",
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return fmt.Sprintf("Phase(%d)", int(p))
	}
	return phaseNames[p]
}

// MarshalText encodes the phase by name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a phase name.
func (p *Phase) UnmarshalText(text []byte) error {
	for i, name := range phaseNames {
		if name == string(text) {
			*p = Phase(i)
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", text)
}

// State is the generation state: exactly one of Idle, Generating,
// Succeeded(imageRef) or Failed(errorMessage). The payload of the other
// variants cannot be set, so "loading with an error" is unrepresentable.
type State struct {
	phase  Phase
	image  ImageRef
	errMsg string
}

// Idle is the state before any generation.
func Idle() State { return State{phase: PhaseIdle} }

// Generating is the state while a provider call is in flight.
func Generating() State { return State{phase: PhaseGenerating} }

// Succeeded holds the image produced by the last generation.
func Succeeded(ref ImageRef) State { return State{phase: PhaseSucceeded, image: ref} }

// Failed holds the message of the last failed generation.
func Failed(message string) State { return State{phase: PhaseFailed, errMsg: message} }

func (s State) Phase() Phase { return s.phase }

// IsLoading reports whether a generation is in flight.
func (s State) IsLoading() bool { return s.phase == PhaseGenerating }

// ImageRef returns the image of a Succeeded state and "" otherwise.
func (s State) ImageRef() ImageRef { return s.image }

// ErrorMessage returns the message of a Failed state and "" otherwise.
func (s State) ErrorMessage() string { return s.errMsg }

func (s State) String() string {
	switch s.phase {
	case PhaseSucceeded:
		return fmt.Sprintf("succeeded(%.32s)", s.image)
	case PhaseFailed:
		return fmt.Sprintf("failed(%s)", s.errMsg)
	default:
		return s.phase.String()
	}
}
