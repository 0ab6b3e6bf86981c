package composer

import (
	"math"

	"github.com/pedromxavier/EEL816/music"
	"github.com/pkg/errors"
)

// Options are the fixed settings of a Composer.
type Options struct {
	// Time is the time signature; its unit must be a power of two
	Time music.TimeSignature
	// Tempo counts notes of value 1/Time.Unit per minute
	Tempo float64
	// Reference is the frequency of pitch 0 in hertz
	Reference float64
	// Pitches is the size of the pitch space of every chord chain. The
	// presets need the twelve pitch classes.
	Pitches int
}

// DefaultOptions returns 4/4 at 120 bpm over twelve pitch classes tuned to
// A440.
func DefaultOptions() Options {
	return Options{
		Time:      music.Common,
		Tempo:     120,
		Reference: music.DefaultReference,
		Pitches:   12,
	}
}

// Validate reports the first invalid option.
func (o Options) Validate() error {
	if err := o.Time.Validate(); err != nil {
		return err
	}
	if !(o.Tempo > 0) || math.IsInf(o.Tempo, 0) {
		return errors.Wrapf(music.ErrInvalidTempo, "%v bpm", o.Tempo)
	}
	if !(o.Reference > 0) || math.IsInf(o.Reference, 0) {
		return errors.Wrapf(music.ErrInvalidFrequency, "%v Hz", o.Reference)
	}
	if o.Pitches <= 0 {
		return errors.Errorf("composer: pitch space must be positive, got %d", o.Pitches)
	}
	return nil
}
