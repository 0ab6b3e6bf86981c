package music

import (
	"encoding/json"
	"math"
	"os"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Note is one composed event, ready to be rendered: how high and how long.
// The indices it was generated from are kept for exporters that work in
// note numbers rather than frequencies.
type Note struct {
	// Frequency in hertz, zero for a rest
	Frequency float64 `json:"frequency"`
	// Duration in seconds
	Duration float64 `json:"duration"`

	Pitch    int `json:"pitch"`
	Category int `json:"category"`
	Chord    int `json:"chord"`
	Bar      int `json:"bar"`
}

// Rest reports whether the note is silent.
func (n Note) Rest() bool {
	return n.Frequency == 0
}

// Notes is an ordered run of notes.
type Notes []Note

// Duration returns the total length in seconds.
func (ns Notes) Duration() (seconds float64) {
	for _, n := range ns {
		seconds += n.Duration
	}
	return
}

// Bars returns the notes grouped by their bar number, in order.
func (ns Notes) Bars() (bars []Notes) {
	for i, n := range ns {
		if i == 0 || n.Bar != ns[i-1].Bar {
			bars = append(bars, Notes{})
		}
		bars[len(bars)-1] = append(bars[len(bars)-1], n)
	}
	return
}

// Music is a composed piece together with the settings it was composed
// with, in the form handed to a renderer.
type Music struct {
	Time      TimeSignature `json:"time"`
	Tempo     float64       `json:"tempo"`
	Reference float64       `json:"reference"`
	Notes     Notes         `json:"notes"`
}

// Open loads music previously written with Save.
func Open(filename string) (m *Music, err error) {
	bMusic, err := os.ReadFile(filename)
	if err != nil {
		return
	}
	m = new(Music)
	if err = json.Unmarshal(bMusic, m); err != nil {
		err = errors.Wrapf(err, "decoding %s", filename)
		m = nil
	}
	return
}

// Save writes the music as JSON.
func (m *Music) Save(filename string) (err error) {
	logger := log.WithFields(log.Fields{
		"function": "Music.Save",
	})
	bMusic, err := json.MarshalIndent(m, "", " ")
	if err != nil {
		return err
	}
	logger.Debugf("writing %d notes to %s", len(m.Notes), filename)
	return os.WriteFile(filename, bMusic, 0644)
}

// Event switches a key on or off at a point in time from the start of the
// piece.
type Event struct {
	At  time.Duration
	On  bool
	Key int
}

// Events lays the notes out as key presses and releases in time order.
// Rests advance time without events, and a release sorts before a press
// that happens at the same instant.
func (ns Notes) Events() (events []Event) {
	var at float64
	for _, n := range ns {
		start := seconds(at)
		at += n.Duration
		if n.Rest() {
			continue
		}
		key := Key(n.Frequency)
		events = append(events,
			Event{At: start, On: true, Key: key},
			Event{At: seconds(at), On: false, Key: key},
		)
	}
	return
}

func seconds(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}
