package markov

import "math/rand"

// Degrees is the number of diatonic chord degrees, I through vii.
const Degrees = 7

// Progression models chord-to-chord movement between bars.
type Progression struct {
	*Chain
}

// NewProgression returns an untrained progression over the seven degrees.
func NewProgression(rng *rand.Rand) (p *Progression, err error) {
	c, err := NewChain(Degrees, rng)
	if err != nil {
		return
	}
	p = &Progression{Chain: c}
	return
}
