package datasets

import "math/rand/v2"

// Split shuffles samples deterministically for the given seed and carves
// off the trailing fraction as the validation set.
func Split(samples []Sample, valFraction float64, seed uint64) (train, val []Sample) {
	shuffled := make([]Sample, len(samples))
	copy(shuffled, samples)
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	valSize := int(float64(len(shuffled)) * valFraction)
	cut := len(shuffled) - valSize
	return shuffled[:cut], shuffled[cut:]
}
