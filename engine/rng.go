package engine

import "hash/fnv"

// Randomness in the engine is confined to a seeded generator derived from a
// stable per-song seed. Nothing reads wall-clock entropy: for fixed inputs,
// two independent renders make identical choices.

// SongSeed derives the per-song seed from the title and the hook start time.
func SongSeed(title string, hookStart float64) uint64 {
	h := fnv.New64a()
	h.Write([]byte(title))
	h.Write([]byte{
		byte(int64(hookStart * 1000)),
		byte(int64(hookStart*1000) >> 8),
		byte(int64(hookStart*1000) >> 16),
		byte(int64(hookStart*1000) >> 24),
	})
	return h.Sum64()
}

// mix is a splitmix64 step: a cheap, stateless way to turn (seed, n) into a
// well-spread 64-bit value for effect jitter.
func mix(seed, n uint64) uint64 {
	z := seed + n*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// unit maps a mixed value onto [0,1).
func unit(seed, n uint64) float64 {
	return float64(mix(seed, n)>>11) / float64(1<<53)
}

// spread maps a mixed value onto [-1,1).
func spread(seed, n uint64) float64 {
	return unit(seed, n)*2 - 1
}
