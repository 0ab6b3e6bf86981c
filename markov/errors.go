package markov

import "github.com/pkg/errors"

var (
	// ErrInvalidState is returned when a state falls outside [0, n).
	ErrInvalidState = errors.New("invalid state")

	// ErrNotSeeded is returned by Next before the chain has a current state.
	ErrNotSeeded = errors.New("chain not seeded")

	// ErrDurationOverflow is returned when a bar cannot be filled with
	// negative powers of two, e.g. for a non-dyadic bar length.
	ErrDurationOverflow = errors.New("duration overflow")

	ErrInvalidWeight = errors.New("invalid weight")
	ErrInvalidChord  = errors.New("invalid chord")
	ErrInvalidSize   = errors.New("invalid state space size")
)
