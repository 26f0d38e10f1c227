package funnel

// scriptedRand replays IntN results in order and falls back to 0 once the
// script runs out.
type scriptedRand struct {
	ints   []int
	floats []float64
}

func (r *scriptedRand) IntN(n int) int {
	if len(r.ints) == 0 {
		return 0
	}
	v := r.ints[0]
	r.ints = r.ints[1:]
	if v >= n {
		return n - 1
	}
	return v
}

func (r *scriptedRand) Float64() float64 {
	if len(r.floats) == 0 {
		return 0
	}
	v := r.floats[0]
	r.floats = r.floats[1:]
	return v
}

type fixedSampler struct {
	paths []Path
}

func (s *fixedSampler) Sample() Path {
	p := s.paths[0]
	if len(s.paths) > 1 {
		s.paths = s.paths[1:]
	}
	return clonePath(p)
}
