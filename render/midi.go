package render

import (
	"io"
	"math"

	"github.com/pedromxavier/EEL816/music"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// Resolution is the number of ticks per quarter note in exported files.
const Resolution = 960

// Velocity is the loudness of exported notes.
const Velocity = 100

// MIDI converts composed music into a single-track Standard MIDI File.
// Note positions are taken from the rhythmic categories, so bars line up
// exactly with the meter written in the header.
func MIDI(m *music.Music) (*smf.SMF, error) {
	if err := m.Time.Validate(); err != nil {
		return nil, err
	}
	if m.Time.Beats > math.MaxUint8 || m.Time.Unit > math.MaxUint8 {
		return nil, errors.Errorf("render: %s does not fit a MIDI meter", m.Time)
	}
	if !(m.Tempo > 0) {
		return nil, errors.Wrapf(music.ErrInvalidTempo, "%v bpm", m.Tempo)
	}

	clock := smf.MetricTicks(Resolution)
	s := smf.New()
	s.TimeFormat = clock

	var tr smf.Track
	tr.Add(0, smf.MetaMeter(uint8(m.Time.Beats), uint8(m.Time.Unit)))
	// MIDI tempo counts quarter notes
	tr.Add(0, smf.MetaTempo(m.Tempo*4/float64(m.Time.Unit)))

	var (
		position float64 // in whole notes
		last     uint32  // tick of the previous event
	)
	tick := func(wholes float64) uint32 {
		return uint32(math.Round(wholes * 4 * float64(clock.Ticks4th())))
	}
	for _, n := range m.Notes {
		start := tick(position)
		position += math.Ldexp(1, -n.Category)
		if n.Rest() {
			continue
		}
		end := tick(position)
		key := uint8(clamp(music.Key(n.Frequency), 0, 127))
		tr.Add(start-last, midi.NoteOn(0, key, Velocity))
		tr.Add(end-start, midi.NoteOff(0, key))
		last = end
	}
	tr.Close(tick(position) - last)

	if err := s.Add(tr); err != nil {
		return nil, err
	}
	return s, nil
}

// WriteMIDI writes the music as a Standard MIDI File.
func WriteMIDI(w io.Writer, m *music.Music) error {
	s, err := MIDI(m)
	if err != nil {
		return err
	}
	_, err = s.WriteTo(w)
	return err
}

// SaveMIDI writes the music to a .mid file.
func SaveMIDI(filename string, m *music.Music) error {
	logger := log.WithFields(log.Fields{
		"function": "render.SaveMIDI",
	})
	s, err := MIDI(m)
	if err != nil {
		return err
	}
	logger.Debugf("writing %d notes to %s", len(m.Notes), filename)
	return s.WriteFile(filename)
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
