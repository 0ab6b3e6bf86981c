package markov

import (
	"errors"
	"math"
	"math/rand"
	"reflect"
	"testing"
)

func newTestChain(t *testing.T, n int, seed int64) *Chain {
	t.Helper()
	c, err := NewChain(n, rand.New(rand.NewSource(seed)))
	if err != nil {
		t.Fatalf("NewChain(%d): %v", n, err)
	}
	return c
}

func TestNewChainInvalidSize(t *testing.T) {
	for _, n := range []int{0, -1} {
		if _, err := NewChain(n, rand.New(rand.NewSource(1))); !errors.Is(err, ErrInvalidSize) {
			t.Errorf("NewChain(%d) error = %v, want ErrInvalidSize", n, err)
		}
	}
	if _, err := NewChain(3, nil); err == nil {
		t.Error("NewChain with nil source should fail")
	}
}

func TestTrainRejectsInvalidStates(t *testing.T) {
	c := newTestChain(t, 4, 1)
	if err := c.Train([]int{0, 1, 2}, 1); err != nil {
		t.Fatal(err)
	}
	before := c.Counts()

	tests := []struct {
		name string
		seq  []int
	}{
		{"too large", []int{0, 1, 4}},
		{"negative", []int{-1, 0}},
		{"first position", []int{9}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.Train(tt.seq, 1)
			if !errors.Is(err, ErrInvalidState) {
				t.Fatalf("error = %v, want ErrInvalidState", err)
			}
			if !reflect.DeepEqual(before, c.Counts()) {
				t.Error("counts changed after rejected training")
			}
		})
	}
}

func TestTrainRejectsInvalidWeight(t *testing.T) {
	c := newTestChain(t, 2, 1)
	if err := c.Train([]int{0, 1}, 0); !errors.Is(err, ErrInvalidWeight) {
		t.Errorf("error = %v, want ErrInvalidWeight", err)
	}
}

func TestRowsSumToOne(t *testing.T) {
	c := newTestChain(t, 12, 1)
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		seq := make([]int, 30)
		for j := range seq {
			seq[j] = rng.Intn(12)
		}
		if err := c.Train(seq, 1+rng.Intn(5)); err != nil {
			t.Fatal(err)
		}
	}
	for i, row := range c.Probabilities() {
		sum := 0.0
		for _, p := range row {
			if p < 0 {
				t.Errorf("row %d has negative probability %f", i, p)
			}
			sum += p
		}
		if math.Abs(sum-1) > 1e-9 {
			t.Errorf("row %d sums to %.12f", i, sum)
		}
	}
}

func TestUntrainedRowIsUniform(t *testing.T) {
	c := newTestChain(t, 4, 1)
	if err := c.Train([]int{0, 1}, 1); err != nil {
		t.Fatal(err)
	}
	p := c.Probabilities()
	if !reflect.DeepEqual(p[0], []float64{0, 1, 0, 0}) {
		t.Errorf("row 0 = %v", p[0])
	}
	for _, row := range p[1:] {
		for _, v := range row {
			if v != 0.25 {
				t.Fatalf("untrained row = %v, want uniform", row)
			}
		}
	}
}

func TestTrainTwiceEqualsDoubleWeight(t *testing.T) {
	seq := []int{0, 2, 1, 2, 2, 0, 1}
	a := newTestChain(t, 3, 1)
	b := newTestChain(t, 3, 1)
	for i := 0; i < 2; i++ {
		if err := a.Train(seq, 3); err != nil {
			t.Fatal(err)
		}
	}
	if err := b.Train(seq, 6); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a.Counts(), b.Counts()) {
		t.Errorf("counts differ:\n%v\n%v", a.Counts(), b.Counts())
	}
	if !reflect.DeepEqual(a.Probabilities(), b.Probabilities()) {
		t.Error("probabilities differ")
	}
}

func TestProbabilitiesRefreshAfterTrain(t *testing.T) {
	c := newTestChain(t, 2, 1)
	if err := c.Train([]int{0, 0}, 1); err != nil {
		t.Fatal(err)
	}
	if p := c.Probabilities()[0][0]; p != 1 {
		t.Fatalf("p(0->0) = %f, want 1", p)
	}
	if err := c.Train([]int{0, 1}, 1); err != nil {
		t.Fatal(err)
	}
	if p := c.Probabilities()[0]; p[0] != 0.5 || p[1] != 0.5 {
		t.Errorf("row 0 after retraining = %v, want [0.5 0.5]", p)
	}
}

func TestNextRequiresSeed(t *testing.T) {
	c := newTestChain(t, 3, 1)
	if _, err := c.Next(); !errors.Is(err, ErrNotSeeded) {
		t.Errorf("error = %v, want ErrNotSeeded", err)
	}
	if err := c.Seed(3); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Seed(3) error = %v, want ErrInvalidState", err)
	}
	if _, seeded := c.State(); seeded {
		t.Error("failed seed marked the chain as seeded")
	}
}

func TestSelfLoopAlwaysReturnsItself(t *testing.T) {
	c := newTestChain(t, 5, 7)
	if err := c.Train([]int{3, 3}, 1); err != nil {
		t.Fatal(err)
	}
	if err := c.Seed(3); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 200; i++ {
		s, err := c.Next()
		if err != nil {
			t.Fatal(err)
		}
		if s != 3 {
			t.Fatalf("draw %d = %d, want 3", i, s)
		}
	}
}

func TestNextIsDeterministic(t *testing.T) {
	run := func() []int {
		c := newTestChain(t, 6, 99)
		if err := c.Train([]int{0, 1, 2, 3, 4, 5, 0, 2, 4, 0, 3, 0}, 1); err != nil {
			t.Fatal(err)
		}
		if err := c.Seed(0); err != nil {
			t.Fatal(err)
		}
		out := make([]int, 100)
		for i := range out {
			s, err := c.Next()
			if err != nil {
				t.Fatal(err)
			}
			out[i] = s
		}
		return out
	}
	if a, b := run(), run(); !reflect.DeepEqual(a, b) {
		t.Error("same seed produced different draws")
	}
}

func TestSeedConsumesNoRandomness(t *testing.T) {
	a := newTestChain(t, 3, 5)
	b := newTestChain(t, 3, 5)
	for _, c := range []*Chain{a, b} {
		if err := c.Train([]int{0, 1, 2, 0, 2, 1, 0}, 1); err != nil {
			t.Fatal(err)
		}
		if err := c.Seed(0); err != nil {
			t.Fatal(err)
		}
	}
	for i := 0; i < 10; i++ {
		if err := b.Seed(0); err != nil {
			t.Fatal(err)
		}
	}
	x, _ := a.Next()
	y, _ := b.Next()
	if x != y {
		t.Errorf("draws diverged after reseeding: %d != %d", x, y)
	}
}

func TestPick(t *testing.T) {
	row := []float64{0, 0.25, 0, 0.75}
	tests := []struct {
		u    float64
		want int
	}{
		{0, 1},
		{0.2499, 1},
		{0.25, 3},
		{0.9999, 3},
		{1.0, 3},
	}
	for _, tt := range tests {
		if got := pick(row, tt.u); got != tt.want {
			t.Errorf("pick(%v) = %d, want %d", tt.u, got, tt.want)
		}
	}
}
