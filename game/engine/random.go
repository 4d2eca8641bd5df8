package engine

import (
	"math/rand"
	"time"
)

// RandomSource feeds every random decision the engine makes: dice, branch
// picks, event bands, charisma halving, catastrophes and cash shuffles.
type RandomSource interface {
	Intn(n int) int
	Float64() float64
	Perm(n int) []int
}

// NewRandomSource returns a seeded source. A zero seed uses the clock.
func NewRandomSource(seed int64) RandomSource {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// ScriptedSource replays fixed sequences. Once a sequence runs out Intn
// returns 0, Float64 returns 0.5 and Perm returns the identity.
type ScriptedSource struct {
	Ints   []int
	Floats []float64
	Perms  [][]int
}

func (s *ScriptedSource) Intn(n int) int {
	if len(s.Ints) == 0 || n <= 0 {
		return 0
	}
	v := s.Ints[0]
	s.Ints = s.Ints[1:]
	return ((v % n) + n) % n
}

func (s *ScriptedSource) Float64() float64 {
	if len(s.Floats) == 0 {
		return 0.5
	}
	v := s.Floats[0]
	s.Floats = s.Floats[1:]
	return v
}

func (s *ScriptedSource) Perm(n int) []int {
	if len(s.Perms) > 0 && len(s.Perms[0]) == n {
		v := s.Perms[0]
		s.Perms = s.Perms[1:]
		return append([]int(nil), v...)
	}
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
