// Package composer strings the rhythm, progression and pitch chains
// together into a stream of notes, one bar at a time.
package composer

import (
	"math/rand"

	"github.com/pedromxavier/EEL816/markov"
	"github.com/pedromxavier/EEL816/music"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Composer pulls one note at a time out of its models. At every bar line it
// asks the progression for a new chord, and the chord decides which pitch
// chain the melody is drawn from.
//
// The models are exported so they can be trained and seeded individually;
// all of them draw from the random source given to New, so a fixed seed and
// the same training reproduce the same piece.
type Composer struct {
	// Bar fills each bar with rhythmic categories
	Bar *markov.Bar
	// Progression picks the chord of each bar
	Progression *markov.Progression
	// Ensemble holds one pitch chain per chord
	Ensemble *markov.Ensemble

	opts Options

	// chord is the chord of the current bar
	chord int
	// bars counts bars opened since the last Compose
	bars int
}

// New returns a composer with untrained models. Call TrainPresets, Train or
// the models' own Train and Seed methods before composing.
func New(opts Options, rng *rand.Rand) (c *Composer, err error) {
	logger := log.WithFields(log.Fields{
		"function": "Composer.New",
	})
	if err = opts.Validate(); err != nil {
		return
	}
	if rng == nil {
		err = errors.New("composer: nil random source")
		return
	}
	c = &Composer{opts: opts}
	if c.Bar, err = markov.NewBar(opts.Time.Length(), rng); err != nil {
		return nil, err
	}
	if c.Progression, err = markov.NewProgression(rng); err != nil {
		return nil, err
	}
	if c.Ensemble, err = markov.NewEnsemble(opts.Pitches, rng); err != nil {
		return nil, err
	}
	logger.Debugf("%s at %v bpm, %d pitches from %v Hz", opts.Time, opts.Tempo, opts.Pitches, opts.Reference)
	return
}

// TrainPresets gives every model its built-in training and seeds it: a
// quarter-note pulse, the I-IV-V-IV cadence and triad arpeggios.
func (c *Composer) TrainPresets() (err error) {
	if err = markov.TrainBarPreset(c.Bar); err != nil {
		return errors.Wrap(err, "rhythm preset")
	}
	if err = markov.TrainProgressionPreset(c.Progression); err != nil {
		return errors.Wrap(err, "progression preset")
	}
	if err = markov.TrainEnsemblePreset(c.Ensemble); err != nil {
		return errors.Wrap(err, "pitch preset")
	}
	c.chord, _ = c.Progression.State()
	return
}

// Options returns the settings the composer was built with.
func (c *Composer) Options() Options {
	return c.opts
}

// Bars returns how many bars have been opened since the last Compose.
func (c *Composer) Bars() int {
	return c.bars
}

// Chord returns the chord of the current bar.
func (c *Composer) Chord() int {
	return c.chord
}

// Next composes one note. When a bar starts it first moves the
// progression to the bar's chord.
func (c *Composer) Next() (note music.Note, err error) {
	category, opened, err := c.Bar.Next()
	if err != nil {
		return
	}
	if opened {
		if c.chord, err = c.Progression.Next(); err != nil {
			err = errors.Wrap(err, "progression")
			return
		}
		if category, _, err = c.Bar.Next(); err != nil {
			return
		}
		c.bars++
	}

	pitch, err := c.Ensemble.Next(c.chord)
	if err != nil {
		return
	}

	note = music.Note{
		Frequency: music.Frequency(c.opts.Reference, pitch),
		Duration:  music.Seconds(c.opts.Time.Unit, category, c.opts.Tempo),
		Pitch:     pitch,
		Category:  category,
		Chord:     c.chord,
		Bar:       c.bars,
	}
	return
}

// Compose returns k complete bars. The bar counter restarts at zero but
// the models keep their state, so consecutive calls continue the same
// harmonic and melodic line. A bar left half-written by an earlier failure
// is dropped first.
//
// If a step fails, the notes composed so far are returned with the error.
func (c *Composer) Compose(k int) (notes music.Notes, err error) {
	logger := log.WithFields(log.Fields{
		"function": "Composer.Compose",
	})
	c.bars = 0
	if c.Bar.InProgress() {
		logger.Warn("dropping unfinished bar")
		c.Bar.Reset()
	}
	for c.bars < k || c.Bar.InProgress() {
		var note music.Note
		if note, err = c.Next(); err != nil {
			err = errors.Wrapf(err, "bar %d", c.bars)
			logger.Warnf("stopped after %d notes: %s", len(notes), err)
			return
		}
		logger.Debugf("bar %d chord %d: pitch %d category %d", note.Bar, note.Chord, note.Pitch, note.Category)
		notes = append(notes, note)
	}
	logger.Infof("composed %d notes in %d bars", len(notes), c.bars)
	return
}

// Music composes k bars and packages them with the composer's settings.
func (c *Composer) Music(k int) (m *music.Music, err error) {
	notes, err := c.Compose(k)
	m = &music.Music{
		Time:      c.opts.Time,
		Tempo:     c.opts.Tempo,
		Reference: c.opts.Reference,
		Notes:     notes,
	}
	return
}
