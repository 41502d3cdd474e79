package domain

// scriptedRandom replays fixed variates so tests can pin every random draw.
// Exhausted scripts fall back to the midpoint for floats and zero for ints.
type scriptedRandom struct {
	floats []float64
	ints   []int
}

func (s *scriptedRandom) Float64() float64 {
	if len(s.floats) == 0 {
		return 0.5
	}
	v := s.floats[0]
	s.floats = s.floats[1:]
	return v
}

func (s *scriptedRandom) IntN(n int) int {
	if len(s.ints) == 0 {
		return 0
	}
	v := s.ints[0]
	s.ints = s.ints[1:]
	return v % n
}
