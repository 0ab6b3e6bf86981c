package markov

import (
	"math/big"
	"math/rand"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	// Categories is the number of rhythmic categories the bar chain models,
	// from the whole note (0) down to the sixty-fourth note (6).
	Categories = 7

	// MaxRepairs bounds how many times an overshooting draw is halved
	// before Next gives up with ErrDurationOverflow.
	MaxRepairs = 64
)

// Bar fills bars of a fixed length with rhythmic categories, where
// category r lasts 1/2^r of a whole note. Draws come from an embedded chain
// over the categories; a draw that overshoots the bar is repaired by
// halving it until it fits, so every closed bar sums exactly to its length.
type Bar struct {
	*Chain

	// length of the bar in whole notes, e.g. 3/4
	length *big.Rat

	// filled is how much of the current bar has been allocated. It is nil
	// between bars.
	filled *big.Rat
}

// NewBar returns a bar model for bars of the given length in whole notes.
// Dyadic lengths (3/4, 6/8, ...) always fill; any other length makes Next
// fail with ErrDurationOverflow.
func NewBar(length *big.Rat, rng *rand.Rand) (b *Bar, err error) {
	if length == nil || length.Sign() <= 0 {
		err = errors.Errorf("markov: bar length must be positive, got %v", length)
		return
	}
	c, err := NewChain(Categories, rng)
	if err != nil {
		return
	}
	b = &Bar{
		Chain:  c,
		length: new(big.Rat).Set(length),
	}
	return
}

// Length returns the bar length in whole notes.
func (b *Bar) Length() *big.Rat {
	return new(big.Rat).Set(b.length)
}

// InProgress reports whether a bar has been opened and not yet closed.
func (b *Bar) InProgress() bool {
	return b.filled != nil
}

// Remaining returns what is left of the current bar, or the full length if
// no bar is in progress.
func (b *Bar) Remaining() *big.Rat {
	if b.filled == nil {
		return b.Length()
	}
	return new(big.Rat).Sub(b.length, b.filled)
}

// Reset abandons the bar in progress; the next call to Next opens a new one.
func (b *Bar) Reset() {
	b.filled = nil
}

// Next advances the bar. When no bar is in progress it opens one and
// returns opened=true without drawing; the caller uses that to change chord
// before the first note. Otherwise it returns the category of the next note,
// closing the bar when the note completes it.
func (b *Bar) Next() (category int, opened bool, err error) {
	if b.filled == nil {
		b.filled = new(big.Rat)
		opened = true
		return
	}

	drawn, err := b.Chain.Next()
	if err != nil {
		return
	}

	gap := b.Remaining()
	category = drawn
	for repairs := 0; repairs <= MaxRepairs; repairs++ {
		d := Duration(category)
		switch d.Cmp(gap) {
		case 0:
			b.filled = nil
			return
		case -1:
			b.filled.Add(b.filled, d)
			return
		}
		category++
	}

	log.WithFields(log.Fields{
		"function": "Bar.Next",
		"drawn":    drawn,
		"gap":      gap.RatString(),
	}).Warn("could not fit note in bar")
	err = errors.Wrapf(ErrDurationOverflow, "gap %s after %d repairs", gap.RatString(), MaxRepairs)
	category = 0
	return
}

// Duration returns 1/2^category as an exact fraction of a whole note.
func Duration(category int) *big.Rat {
	denominator := new(big.Int).Lsh(big.NewInt(1), uint(category))
	return new(big.Rat).SetFrac(big.NewInt(1), denominator)
}
