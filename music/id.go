package music

import (
	hashids "github.com/speps/go-hashids/v2"
)

var hasher = func() *hashids.HashIDData {
	h := hashids.NewData()
	h.Salt = "babel"
	h.MinLength = 8
	return h
}()

// ID returns a short stable name for a composition made from a random seed
// and a number of bars, used to name output files.
func ID(seed int64, bars int) (string, error) {
	h, err := hashids.NewWithData(hasher)
	if err != nil {
		return "", err
	}
	if seed < 0 {
		seed = -seed
	}
	return h.EncodeInt64([]int64{seed, int64(bars)})
}
