package music

import (
	"errors"
	"math"
	"math/big"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestParseTimeSignature(t *testing.T) {
	tests := []struct {
		in      string
		want    TimeSignature
		wantErr bool
	}{
		{"4/4", Common, false},
		{" 6/8 ", TimeSignature{6, 8}, false},
		{"3/4", TimeSignature{3, 4}, false},
		{"4/3", TimeSignature{}, true},
		{"0/4", TimeSignature{}, true},
		{"4", TimeSignature{}, true},
		{"a/4", TimeSignature{}, true},
		{"4/-4", TimeSignature{}, true},
	}
	for _, tt := range tests {
		got, err := ParseTimeSignature(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidTimeSignature) {
				t.Errorf("ParseTimeSignature(%q) error = %v, want ErrInvalidTimeSignature", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseTimeSignature(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseTimeSignature(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestTimeSignatureLength(t *testing.T) {
	if l := (TimeSignature{6, 8}).Length(); l.Cmp(big.NewRat(3, 4)) != 0 {
		t.Errorf("6/8 length = %s", l.RatString())
	}
	if s := (TimeSignature{7, 16}).String(); s != "7/16" {
		t.Errorf("String() = %q", s)
	}
}

func TestFrequency(t *testing.T) {
	tests := []struct {
		semitones int
		want      float64
	}{
		{0, 440},
		{12, 880},
		{-12, 220},
		{3, 523.2511306011972},
	}
	for _, tt := range tests {
		if got := Frequency(DefaultReference, tt.semitones); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Frequency(%d) = %f, want %f", tt.semitones, got, tt.want)
		}
	}
}

func TestSeconds(t *testing.T) {
	// a quarter at 120 bpm in 4/4 lasts half a second
	if got := Seconds(4, 2, 120); got != 0.5 {
		t.Errorf("quarter = %f", got)
	}
	if got := Seconds(4, 0, 120); got != 2 {
		t.Errorf("whole = %f", got)
	}
	// an eighth is the beat in 6/8
	if got := Seconds(8, 3, 60); got != 1 {
		t.Errorf("eighth in 6/8 = %f", got)
	}
}

func TestKeyAndPitchClass(t *testing.T) {
	if k := Key(440); k != 69 {
		t.Errorf("Key(440) = %d", k)
	}
	if k := Key(Frequency(440, 7)); k != 76 {
		t.Errorf("Key(E5) = %d", k)
	}
	for in, want := range map[int]int{0: 0, 11: 11, 12: 0, -1: 11, -13: 11, 25: 1} {
		if got := PitchClass(in); got != want {
			t.Errorf("PitchClass(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestNotesBars(t *testing.T) {
	ns := Notes{
		{Bar: 1, Duration: 1}, {Bar: 1, Duration: 1},
		{Bar: 2, Duration: 2},
		{Bar: 3, Duration: 0.5}, {Bar: 3, Duration: 1.5},
	}
	bars := ns.Bars()
	if len(bars) != 3 {
		t.Fatalf("got %d bars", len(bars))
	}
	for i, bar := range bars {
		if d := bar.Duration(); d != 2 {
			t.Errorf("bar %d lasts %f", i+1, d)
		}
	}
	if ns.Duration() != 6 {
		t.Errorf("total = %f", ns.Duration())
	}
	if !(Note{}).Rest() || (Note{Frequency: 1}).Rest() {
		t.Error("Rest() wrong")
	}
}

func TestSaveOpen(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "song.json")
	m := &Music{
		Time:      TimeSignature{3, 4},
		Tempo:     90,
		Reference: DefaultReference,
		Notes: Notes{
			{Frequency: 440, Duration: 0.5, Pitch: 0, Category: 2, Chord: 0, Bar: 1},
			{Frequency: 0, Duration: 1, Category: 1, Chord: 3, Bar: 1},
		},
	}
	if err := m.Save(filename); err != nil {
		t.Fatal(err)
	}
	got, err := Open(filename)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(m, got) {
		t.Errorf("Open() = %+v, want %+v", got, m)
	}
	if _, err := Open(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("opening a missing file should fail")
	}
}

func TestCorpus(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "corpus.json")
	c, err := OpenCorpus(filename)
	if err != nil {
		t.Fatal(err)
	}
	if len(c.Names()) != 0 {
		t.Fatalf("new corpus has phrases %v", c.Names())
	}

	tetris := []Step{
		{Chord: 5, Pitch: 7, Category: 2},
		{Chord: 5, Pitch: 2, Category: 3},
		{Chord: 5, Category: 3, Rest: true},
	}
	if err := c.SetPhrase("tetris", tetris); err != nil {
		t.Fatal(err)
	}
	if err := c.SetPhrase("arpeggio", []Step{{Pitch: 0}, {Pitch: 4}, {Pitch: 7}}); err != nil {
		t.Fatal(err)
	}
	if err := c.Save(); err != nil {
		t.Fatal(err)
	}

	reopened, err := OpenCorpus(filename)
	if err != nil {
		t.Fatal(err)
	}
	if names := reopened.Names(); !reflect.DeepEqual(names, []string{"arpeggio", "tetris"}) {
		t.Errorf("Names() = %v", names)
	}
	got, err := reopened.Phrase("tetris")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, tetris) {
		t.Errorf("Phrase() = %+v", got)
	}
	if _, err := reopened.Phrase("missing"); err == nil {
		t.Error("missing phrase should fail")
	}
}

func TestID(t *testing.T) {
	a, err := ID(42, 12)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := ID(42, 12)
	c, _ := ID(43, 12)
	if a != b {
		t.Errorf("ID not stable: %q %q", a, b)
	}
	if a == c {
		t.Errorf("different seeds share ID %q", a)
	}
	if len(a) < 8 {
		t.Errorf("ID %q shorter than 8", a)
	}
}

func TestEvents(t *testing.T) {
	ns := Notes{
		{Frequency: 440, Duration: 0.5},
		{Duration: 0.25},
		{Frequency: Frequency(440, 3), Duration: 0.25},
		{Frequency: 440, Duration: 1},
	}
	want := []Event{
		{At: 0, On: true, Key: 69},
		{At: 500 * time.Millisecond, On: false, Key: 69},
		{At: 750 * time.Millisecond, On: true, Key: 72},
		{At: time.Second, On: false, Key: 72},
		{At: time.Second, On: true, Key: 69},
		{At: 2 * time.Second, On: false, Key: 69},
	}
	if got := ns.Events(); !reflect.DeepEqual(got, want) {
		t.Errorf("Events() = %+v\nwant %+v", got, want)
	}
}
