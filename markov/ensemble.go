package markov

import (
	"math/rand"

	"github.com/pkg/errors"
)

// Ensemble holds one pitch chain per chord degree. The active chord selects
// which chain is drawn from; chains never share or reset each other's
// state, so a chord picks up its melody where it left off when it returns.
type Ensemble struct {
	chains [Degrees]*Chain
}

// NewEnsemble returns seven untrained chains over the given pitch space.
func NewEnsemble(pitches int, rng *rand.Rand) (e *Ensemble, err error) {
	e = new(Ensemble)
	for i := range e.chains {
		if e.chains[i], err = NewChain(pitches, rng); err != nil {
			e = nil
			return
		}
	}
	return
}

func checkChord(chord int) error {
	if chord < 0 || chord >= Degrees {
		return errors.Wrapf(ErrInvalidChord, "chord %d outside [0,%d)", chord, Degrees)
	}
	return nil
}

// Chain returns the pitch chain of a chord.
func (e *Ensemble) Chain(chord int) (*Chain, error) {
	if err := checkChord(chord); err != nil {
		return nil, err
	}
	return e.chains[chord], nil
}

// Pitches returns the size of the pitch space.
func (e *Ensemble) Pitches() int {
	return e.chains[0].Size()
}

// Train trains the chain of one chord.
func (e *Ensemble) Train(chord int, seq []int, weight int) error {
	c, err := e.Chain(chord)
	if err != nil {
		return err
	}
	return errors.Wrapf(c.Train(seq, weight), "chord %d", chord)
}

// Seed seeds the chain of one chord.
func (e *Ensemble) Seed(chord, pitch int) error {
	c, err := e.Chain(chord)
	if err != nil {
		return err
	}
	return errors.Wrapf(c.Seed(pitch), "chord %d", chord)
}

// SeedAll seeds every chain with the same pitch.
func (e *Ensemble) SeedAll(pitch int) error {
	for chord := range e.chains {
		if err := e.Seed(chord, pitch); err != nil {
			return err
		}
	}
	return nil
}

// Next draws the next pitch from the chain of chord.
func (e *Ensemble) Next(chord int) (int, error) {
	c, err := e.Chain(chord)
	if err != nil {
		return 0, err
	}
	pitch, err := c.Next()
	if err != nil {
		return 0, errors.Wrapf(err, "chord %d", chord)
	}
	return pitch, nil
}
