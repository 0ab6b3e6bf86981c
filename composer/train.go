package composer

import (
	"math/big"

	"github.com/pedromxavier/EEL816/markov"
	"github.com/pedromxavier/EEL816/music"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Train reinforces all three models with a compiled phrase. The rhythm
// chain learns the run of categories, the progression learns the chord of
// each bar (bars are measured with the composer's time signature), and each
// chord's pitch chain learns the pitches heard under that chord, in order.
// Rests count for rhythm only.
//
// A large weight lets the phrase dominate the presets. The phrase is
// checked before anything is trained, so a rejected phrase changes nothing.
func (c *Composer) Train(steps []music.Step, weight int) (err error) {
	logger := log.WithFields(log.Fields{
		"function": "Composer.Train",
	})
	if weight <= 0 {
		return errors.Wrapf(markov.ErrInvalidWeight, "weight=%d", weight)
	}
	if err = c.check(steps); err != nil {
		return
	}

	categories := make([]int, len(steps))
	var pitches [markov.Degrees][]int
	for i, s := range steps {
		categories[i] = s.Category
		if !s.Rest {
			pitches[s.Chord] = append(pitches[s.Chord], s.Pitch)
		}
	}
	chords := barChords(steps, c.opts.Time.Length())

	if err = c.Bar.Train(categories, weight); err != nil {
		return errors.Wrap(err, "rhythm")
	}
	if err = c.Progression.Train(chords, weight); err != nil {
		return errors.Wrap(err, "progression")
	}
	for chord, seq := range pitches {
		if err = c.Ensemble.Train(chord, seq, weight); err != nil {
			return
		}
	}
	logger.Infof("trained %d steps over %d bars with weight %d", len(steps), len(chords), weight)
	return
}

func (c *Composer) check(steps []music.Step) error {
	for i, s := range steps {
		if s.Category < 0 || s.Category >= markov.Categories {
			return errors.Wrapf(markov.ErrInvalidState, "step %d: category %d", i, s.Category)
		}
		if s.Chord < 0 || s.Chord >= markov.Degrees {
			return errors.Wrapf(markov.ErrInvalidChord, "step %d: chord %d", i, s.Chord)
		}
		if !s.Rest && (s.Pitch < 0 || s.Pitch >= c.opts.Pitches) {
			return errors.Wrapf(markov.ErrInvalidState, "step %d: pitch %d", i, s.Pitch)
		}
	}
	return nil
}

// barChords returns the chord sounding at the start of every bar. A note
// tied over a bar line lends its chord to the bar it runs into.
func barChords(steps []music.Step, length *big.Rat) (chords []int) {
	filled := new(big.Rat)
	for _, s := range steps {
		if filled.Sign() == 0 {
			chords = append(chords, s.Chord)
		}
		filled.Add(filled, markov.Duration(s.Category))
		for filled.Cmp(length) >= 0 {
			filled.Sub(filled, length)
			if filled.Sign() > 0 {
				chords = append(chords, s.Chord)
			}
		}
	}
	return
}
