// Package music holds the note types exchanged between the composer, its
// training material and the renderers, along with the small amount of
// music theory needed to turn indices into hertz and seconds.
package music

import (
	"fmt"
	"math"
	"math/big"
	"math/bits"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// DefaultReference is the frequency of pitch 0, concert A.
const DefaultReference = 440.0

var (
	ErrInvalidTimeSignature = errors.New("invalid time signature")
	ErrInvalidTempo         = errors.New("invalid tempo")
	ErrInvalidFrequency     = errors.New("invalid reference frequency")
)

// TimeSignature is Beats notes of value 1/Unit per bar, e.g. 6/8.
type TimeSignature struct {
	Beats int `json:"beats" yaml:"beats"`
	Unit  int `json:"unit" yaml:"unit"`
}

// Common is 4/4.
var Common = TimeSignature{Beats: 4, Unit: 4}

// ParseTimeSignature reads "beats/unit".
func ParseTimeSignature(s string) (ts TimeSignature, err error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 2 {
		err = errors.Wrapf(ErrInvalidTimeSignature, "%q is not beats/unit", s)
		return
	}
	if ts.Beats, err = strconv.Atoi(parts[0]); err != nil {
		err = errors.Wrapf(ErrInvalidTimeSignature, "%q: %v", s, err)
		return
	}
	if ts.Unit, err = strconv.Atoi(parts[1]); err != nil {
		err = errors.Wrapf(ErrInvalidTimeSignature, "%q: %v", s, err)
		return
	}
	err = ts.Validate()
	return
}

// Validate checks that both numbers are positive and the unit is a power
// of two, so that every bar can be filled with negative powers of two.
func (ts TimeSignature) Validate() error {
	if ts.Beats <= 0 || ts.Unit <= 0 {
		return errors.Wrapf(ErrInvalidTimeSignature, "%s: must be positive", ts)
	}
	if bits.OnesCount(uint(ts.Unit)) != 1 {
		return errors.Wrapf(ErrInvalidTimeSignature, "%s: unit must be a power of two", ts)
	}
	return nil
}

// Length returns the length of a bar in whole notes.
func (ts TimeSignature) Length() *big.Rat {
	return big.NewRat(int64(ts.Beats), int64(ts.Unit))
}

func (ts TimeSignature) String() string {
	return fmt.Sprintf("%d/%d", ts.Beats, ts.Unit)
}

// Frequency returns the frequency of the pitch that lies the given number
// of equal-tempered semitones above reference.
func Frequency(reference float64, semitones int) float64 {
	return reference * math.Pow(2, float64(semitones)/12)
}

// Seconds returns how long a note of the given rhythmic category lasts
// when tempo counts notes of value 1/unit per minute.
func Seconds(unit, category int, tempo float64) float64 {
	return math.Ldexp(float64(unit), -category) * 60 / tempo
}

// Key returns the MIDI note number nearest to a frequency, with A4 = 69.
func Key(frequency float64) int {
	return 69 + int(math.Round(12*math.Log2(frequency/DefaultReference)))
}

// PitchClass folds a semitone offset into [0, 12).
func PitchClass(semitones int) int {
	return ((semitones % 12) + 12) % 12
}
