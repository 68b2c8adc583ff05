/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package roulette

import "math/rand/v2"

// RandomSource is the single place a session draws randomness from.
type RandomSource interface {
	// IntRange returns a value in [min, max], inclusive on both ends.
	IntRange(min, max int) int
	// ChooseOne returns one element of candidates. It is never called
	// with an empty slice.
	ChooseOne(candidates []string) string
}

type pcgSource struct {
	r *rand.Rand
}

// NewRandomSource returns a PCG-backed RandomSource. A zero seed picks a
// random one.
func NewRandomSource(seed uint64) RandomSource {
	if seed == 0 {
		seed = rand.Uint64()
	}

	return &pcgSource{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (p *pcgSource) IntRange(min, max int) int {
	if max <= min {
		return min
	}

	return min + p.r.IntN(max-min+1)
}

func (p *pcgSource) ChooseOne(candidates []string) string {
	return candidates[p.r.IntN(len(candidates))]
}
