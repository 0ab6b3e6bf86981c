// Package markov implements the discrete Markov chains that drive the
// composer: a generic chain over an integer state space, the bar model that
// fills a bar with negative powers of two, the chord progression and the
// chord-indexed ensemble of pitch chains.
package markov

import (
	"math/rand"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Chain is a discrete Markov chain over the states [0, n). Transitions are
// counted by Train and normalized lazily into a row-stochastic matrix the
// first time it is needed after a change.
//
// A row that was never trained has no signal; it normalizes to the uniform
// distribution over all n states.
//
// A Chain is not safe for concurrent use.
type Chain struct {
	n int

	// counts[i][j] is the weighted number of observed i -> j transitions
	counts [][]int

	// probabilities is derived from counts; dirty marks it stale
	probabilities [][]float64
	dirty         bool

	// prev is the current state, only meaningful when seeded
	prev   int
	seeded bool

	rng *rand.Rand
}

// NewChain returns an untrained, unseeded chain over n states that draws
// from rng.
func NewChain(n int, rng *rand.Rand) (c *Chain, err error) {
	if n <= 0 {
		err = errors.Wrapf(ErrInvalidSize, "n=%d", n)
		return
	}
	if rng == nil {
		err = errors.New("markov: nil random source")
		return
	}
	c = &Chain{
		n:             n,
		counts:        make([][]int, n),
		probabilities: make([][]float64, n),
		dirty:         true,
		rng:           rng,
	}
	for i := 0; i < n; i++ {
		c.counts[i] = make([]int, n)
		c.probabilities[i] = make([]float64, n)
	}
	return
}

// Size returns the number of states.
func (c *Chain) Size() int {
	return c.n
}

func (c *Chain) valid(state int) bool {
	return state >= 0 && state < c.n
}

func (c *Chain) check(state int) error {
	if !c.valid(state) {
		return errors.Wrapf(ErrInvalidState, "state %d outside [0,%d)", state, c.n)
	}
	return nil
}

// Train adds weight to the count of every consecutive pair in seq.
// Calls accumulate, so a corpus can be layered over presets with a larger
// weight. Nothing is counted unless every state in seq is valid.
func (c *Chain) Train(seq []int, weight int) (err error) {
	if weight <= 0 {
		return errors.Wrapf(ErrInvalidWeight, "weight=%d", weight)
	}
	for i, state := range seq {
		if err = c.check(state); err != nil {
			return errors.Wrapf(err, "position %d", i)
		}
	}
	for i := 1; i < len(seq); i++ {
		c.counts[seq[i-1]][seq[i]] += weight
	}
	if len(seq) > 1 {
		c.dirty = true
	}
	log.WithFields(log.Fields{
		"function": "Chain.Train",
	}).Debugf("trained %d transitions with weight %d", max(len(seq)-1, 0), weight)
	return
}

// Seed sets the current state without consuming randomness.
func (c *Chain) Seed(state int) (err error) {
	if err = c.check(state); err != nil {
		return
	}
	c.prev = state
	c.seeded = true
	return
}

// State returns the current state and whether the chain has been seeded.
func (c *Chain) State() (state int, seeded bool) {
	return c.prev, c.seeded
}

// Next draws the successor of the current state, makes it current and
// returns it.
func (c *Chain) Next() (state int, err error) {
	if !c.seeded {
		err = ErrNotSeeded
		return
	}
	row := c.matrix()[c.prev]
	state = pick(row, c.rng.Float64())
	c.prev = state
	return
}

// Counts returns a copy of the count matrix.
func (c *Chain) Counts() [][]int {
	out := make([][]int, c.n)
	for i := range c.counts {
		out[i] = append([]int(nil), c.counts[i]...)
	}
	return out
}

// Probabilities returns a copy of the normalized transition matrix.
func (c *Chain) Probabilities() [][]float64 {
	m := c.matrix()
	out := make([][]float64, c.n)
	for i := range m {
		out[i] = append([]float64(nil), m[i]...)
	}
	return out
}

// matrix returns the normalized matrix, renormalizing it if a Train
// happened since the last read.
func (c *Chain) matrix() [][]float64 {
	if !c.dirty {
		return c.probabilities
	}
	for i, row := range c.counts {
		total := 0
		for _, count := range row {
			total += count
		}
		for j, count := range row {
			if total == 0 {
				c.probabilities[i][j] = 1 / float64(c.n)
			} else {
				c.probabilities[i][j] = float64(count) / float64(total)
			}
		}
	}
	c.dirty = false
	return c.probabilities
}

// pick walks the cumulative distribution of row and returns the first state
// whose cumulative probability exceeds u. Zero-probability states are never
// returned.
func pick(row []float64, u float64) (state int) {
	cumulative := 0.0
	last := -1
	for j, p := range row {
		if p == 0 {
			continue
		}
		last = j
		cumulative += p
		if u < cumulative {
			return j
		}
	}
	// rounding left u above the final cumulative sum
	return last
}
