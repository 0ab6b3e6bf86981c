// Package render turns composed notes into files an audio player or a
// sequencer can use: WAV audio synthesized with beep and Standard MIDI
// Files written with gomidi.
package render

import (
	"io"
	"math"
	"os"

	"github.com/faiface/beep"
	"github.com/faiface/beep/wav"
	"github.com/pedromxavier/EEL816/music"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Envelope shapes the loudness of each note: a linear rise over Attack
// seconds, a fall to Sustain over Decay seconds and a fade to silence over
// the last Release seconds of the note.
type Envelope struct {
	Attack, Decay, Release float64
	Sustain                float64
}

// Voice is a sum of harmonics of the note frequency.
type Voice struct {
	// Harmonics[i] is the amplitude of frequency*(i+1)
	Harmonics []float64
	Envelope  Envelope
}

// Synth is the default voice, a soft organ-like tone.
var Synth = Voice{
	Harmonics: []float64{1, 0.5, 0.25, 0.125},
	Envelope:  Envelope{Attack: 0.02, Decay: 0.1, Release: 0.05, Sustain: 0.7},
}

// WAVOptions configures WriteWAV.
type WAVOptions struct {
	SampleRate int
	// Volume is the peak amplitude in (0, 1]
	Volume float64
	Voice  Voice
}

// DefaultWAVOptions returns CD-rate audio at half volume with the Synth
// voice.
func DefaultWAVOptions() WAVOptions {
	return WAVOptions{SampleRate: 44100, Volume: 0.5, Voice: Synth}
}

// at returns the gain at t seconds into a note lasting d seconds.
func (e Envelope) at(t, d float64) float64 {
	attack := math.Min(e.Attack, d/4)
	release := math.Min(e.Release, d/4)
	var gain float64
	switch {
	case attack > 0 && t < attack:
		gain = t / attack
	case e.Decay > 0 && t < attack+e.Decay:
		gain = 1 - (1-e.Sustain)*(t-attack)/e.Decay
	default:
		gain = e.Sustain
	}
	if release > 0 && t > d-release {
		gain *= math.Max(d-t, 0) / release
	}
	return gain
}

// tone streams one note of a voice.
type tone struct {
	voice     Voice
	frequency float64
	duration  float64
	rate      float64
	volume    float64
	norm      float64

	pos, total int
}

func (t *tone) Stream(samples [][2]float64) (n int, ok bool) {
	for n < len(samples) && t.pos < t.total {
		at := float64(t.pos) / t.rate
		v := 0.0
		for i, h := range t.voice.Harmonics {
			v += h * math.Sin(2*math.Pi*t.frequency*float64(i+1)*at)
		}
		v *= t.volume * t.voice.Envelope.at(at, t.duration) / t.norm
		samples[n][0], samples[n][1] = v, v
		n++
		t.pos++
	}
	return n, n > 0 || t.pos < t.total
}

func (t *tone) Err() error {
	return nil
}

// Samples returns how many frames a note lasting d seconds occupies.
func Samples(d float64, rate int) int {
	return int(math.Round(d * float64(rate)))
}

// Streamer returns a beep streamer that plays the notes one after another,
// with rests as silence.
func Streamer(notes music.Notes, opts WAVOptions) beep.Streamer {
	norm := 0.0
	for _, h := range opts.Voice.Harmonics {
		norm += math.Abs(h)
	}
	if norm == 0 {
		norm = 1
	}
	streamers := make([]beep.Streamer, 0, len(notes))
	for _, n := range notes {
		total := Samples(n.Duration, opts.SampleRate)
		if n.Rest() {
			streamers = append(streamers, beep.Silence(total))
			continue
		}
		streamers = append(streamers, &tone{
			voice:     opts.Voice,
			frequency: n.Frequency,
			duration:  n.Duration,
			rate:      float64(opts.SampleRate),
			volume:    opts.Volume,
			norm:      norm,
			total:     total,
		})
	}
	return beep.Seq(streamers...)
}

// WriteWAV synthesizes the notes as 16-bit stereo PCM.
func WriteWAV(w io.WriteSeeker, notes music.Notes, opts WAVOptions) error {
	if opts.SampleRate <= 0 {
		return errors.Errorf("render: sample rate must be positive, got %d", opts.SampleRate)
	}
	if opts.Volume <= 0 || opts.Volume > 1 {
		return errors.Errorf("render: volume must be in (0, 1], got %v", opts.Volume)
	}
	format := beep.Format{
		SampleRate:  beep.SampleRate(opts.SampleRate),
		NumChannels: 2,
		Precision:   2,
	}
	return wav.Encode(w, Streamer(notes, opts), format)
}

// SaveWAV writes the notes to a WAV file.
func SaveWAV(filename string, notes music.Notes, opts WAVOptions) (err error) {
	logger := log.WithFields(log.Fields{
		"function": "render.SaveWAV",
	})
	f, err := os.Create(filename)
	if err != nil {
		return
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	logger.Debugf("synthesizing %.1fs of audio into %s", notes.Duration(), filename)
	return WriteWAV(f, notes, opts)
}
