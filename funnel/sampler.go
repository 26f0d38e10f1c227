package funnel

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"
)

// Rand is the subset of *rand.Rand used by the generator. Injected so that
// sampling and date offsets are reproducible.
type Rand interface {
	IntN(n int) int
	Float64() float64
}

// NewRand returns a seeded PCG source.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Path is the ordered list of stages one deal traversed.
type Path []StageID

const pathKeySep = ">"

// Key is the stable name of a path, used to key weight tables.
func (p Path) Key() string {
	parts := make([]string, len(p))
	for i, id := range p {
		parts[i] = string(id)
	}
	return strings.Join(parts, pathKeySep)
}

// Final returns the last stage of the path, or "" for an empty path.
func (p Path) Final() StageID {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

// Validate checks that every stage is catalogued, that a closed stage only
// appears last and that the open prefix follows funnel order without skips.
func (p Path) Validate() error {
	if len(p) == 0 {
		return errors.New("empty path")
	}
	open := OpenStages()
	for i, id := range p {
		def, err := Lookup(id)
		if err != nil {
			return err
		}
		if def.Category.IsClosed() {
			if i != len(p)-1 {
				return fmt.Errorf("closed stage %q must be last in path %q", id, p.Key())
			}
			continue
		}
		if i >= len(open) || open[i] != id {
			return fmt.Errorf("path %q does not follow funnel order at %q", p.Key(), id)
		}
	}
	return nil
}

// CanonicalPaths lists every funnel progression a synthetic deal can take:
// closed paths first, then still-open ones.
func CanonicalPaths() []Path {
	return []Path{
		{StageSQL, StageAppointmentScheduled, StageQualifiedToBuy, StagePresentationScheduled, StageDecisionMakerBoughtIn, StageContractSent, StageClosedWon},
		{StageSQL, StageAppointmentScheduled, StageQualifiedToBuy, StagePresentationScheduled, StageDecisionMakerBoughtIn, StageContractSent, StageClosedLost},
		{StageSQL, StageAppointmentScheduled, StageQualifiedToBuy, StagePresentationScheduled, StageDecisionMakerBoughtIn, StageClosedLost},
		{StageSQL, StageAppointmentScheduled, StageQualifiedToBuy, StagePresentationScheduled, StageClosedLost},
		{StageSQL, StageAppointmentScheduled, StageQualifiedToBuy, StageClosedLost},
		{StageSQL, StageAppointmentScheduled, StageClosedLost},
		{StageSQL, StageClosedLost},

		{StageSQL},
		{StageSQL, StageAppointmentScheduled},
		{StageSQL, StageAppointmentScheduled, StageQualifiedToBuy},
		{StageSQL, StageAppointmentScheduled, StageQualifiedToBuy, StagePresentationScheduled},
		{StageSQL, StageAppointmentScheduled, StageQualifiedToBuy, StagePresentationScheduled, StageDecisionMakerBoughtIn},
		{StageSQL, StageAppointmentScheduled, StageQualifiedToBuy, StagePresentationScheduled, StageDecisionMakerBoughtIn, StageContractSent},
	}
}

// DefaultWeights favours won deals and deals lost after the presentation,
// with open deals thinning out towards the end of the funnel.
func DefaultWeights() map[string]float64 {
	weights := []float64{
		0.15, 0.01, 0.02, 0.30, 0.03, 0.03, 0.03,
		0.07, 0.06, 0.05, 0.06, 0.06, 0.06,
	}
	paths := CanonicalPaths()
	out := make(map[string]float64, len(paths))
	for i, p := range paths {
		out[p.Key()] = weights[i]
	}
	return out
}

type Sampler interface {
	Sample() Path
}

type uniformSampler struct {
	rnd   Rand
	paths []Path
}

func NewUniformSampler(rnd Rand) Sampler {
	return &uniformSampler{rnd: rnd, paths: CanonicalPaths()}
}

func (s *uniformSampler) Sample() Path {
	return clonePath(s.paths[s.rnd.IntN(len(s.paths))])
}

var ErrInvalidWeights = errors.New("invalid path weights")

const weightEpsilon = 1e-9

type weightedSampler struct {
	rnd        Rand
	paths      []Path
	cumulative []float64
	total      float64
}

// NewWeightedSampler picks canonical paths proportionally to weights keyed by
// Path.Key. Paths without a weight never get picked. Weights must be
// non-negative, sum to at most 1 and not all be zero.
func NewWeightedSampler(rnd Rand, weights map[string]float64) (Sampler, error) {
	paths := CanonicalPaths()
	known := make(map[string]bool, len(paths))
	for _, p := range paths {
		known[p.Key()] = true
	}

	keys := make([]string, 0, len(weights))
	for k := range weights {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !known[k] {
			return nil, fmt.Errorf("%w: unknown path %q", ErrInvalidWeights, k)
		}
		if weights[k] < 0 {
			return nil, fmt.Errorf("%w: negative weight for %q", ErrInvalidWeights, k)
		}
	}

	s := &weightedSampler{rnd: rnd}
	for _, p := range paths {
		w := weights[p.Key()]
		if w == 0 {
			continue
		}
		s.total += w
		s.paths = append(s.paths, p)
		s.cumulative = append(s.cumulative, s.total)
	}
	if s.total == 0 {
		return nil, fmt.Errorf("%w: all weights are zero", ErrInvalidWeights)
	}
	if s.total > 1+weightEpsilon {
		return nil, fmt.Errorf("%w: weights sum to %.4f (> 1)", ErrInvalidWeights, s.total)
	}
	return s, nil
}

func (s *weightedSampler) Sample() Path {
	r := s.rnd.Float64() * s.total
	i := sort.SearchFloat64s(s.cumulative, r)
	// SearchFloat64s returns the first index with cumulative >= r; an exact
	// hit on a boundary belongs to the next bucket.
	if i < len(s.cumulative) && s.cumulative[i] == r {
		i++
	}
	if i >= len(s.paths) {
		i = len(s.paths) - 1
	}
	return clonePath(s.paths[i])
}

func clonePath(p Path) Path {
	out := make(Path, len(p))
	copy(out, p)
	return out
}
