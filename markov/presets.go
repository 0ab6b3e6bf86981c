package markov

// Major lists the pitch classes of the major scale degrees, relative to the
// tonic.
var Major = [Degrees]int{0, 2, 4, 5, 7, 9, 11}

// arpeggio walks root, third and fifth of a chord, as scale-degree offsets.
var arpeggio = []int{0, 0, 2, 2, 4, 4, 2, 0, 4, 0}

// TrainBarPreset teaches the bar chain to prefer halves and quarters after
// a whole note and to keep moving in quarters, then seeds it on the whole
// note.
func TrainBarPreset(b *Bar) (err error) {
	for _, seq := range [][]int{{0, 1}, {0, 2}, {1, 2}, {2, 2}} {
		if err = b.Train(seq, 1); err != nil {
			return
		}
	}
	return b.Seed(0)
}

// TrainProgressionPreset teaches the I-IV-V-IV cadence and seeds the tonic.
func TrainProgressionPreset(p *Progression) (err error) {
	if err = p.Train([]int{0, 3, 4, 3, 0, 3, 4, 3}, 1); err != nil {
		return
	}
	return p.Seed(0)
}

// TrainEnsemblePreset teaches every chord chain to arpeggiate its triad
// within the major scale and to resolve every other pitch class onto the
// chord root. Chains are seeded on the tonic. The ensemble must span at
// least the twelve pitch classes.
func TrainEnsemblePreset(e *Ensemble) (err error) {
	for chord := 0; chord < Degrees; chord++ {
		seq := make([]int, len(arpeggio))
		for i, step := range arpeggio {
			seq[i] = Major[(chord+step)%Degrees]
		}
		if err = e.Train(chord, seq, 1); err != nil {
			return
		}

		triad := map[int]bool{
			Major[chord]:             true,
			Major[(chord+2)%Degrees]: true,
			Major[(chord+4)%Degrees]: true,
		}
		for pitch := 0; pitch < 12; pitch++ {
			if triad[pitch] {
				continue
			}
			if err = e.Train(chord, []int{pitch, Major[chord]}, 1); err != nil {
				return
			}
		}
		if err = e.Seed(chord, 0); err != nil {
			return
		}
	}
	return
}
