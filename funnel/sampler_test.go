package funnel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalPaths_AreValid(t *testing.T) {
	paths := CanonicalPaths()
	require.Len(t, paths, 13)
	seen := map[string]bool{}
	for _, p := range paths {
		require.NoError(t, p.Validate(), p.Key())
		assert.Equal(t, StageSQL, p[0])
		assert.False(t, seen[p.Key()], "duplicate path %s", p.Key())
		seen[p.Key()] = true
	}
}

func TestPathValidate_RejectsMalformed(t *testing.T) {
	cases := []Path{
		{},
		{StageSQL, StageClosedWon, StageAppointmentScheduled},
		{StageSQL, StageQualifiedToBuy},
		{StageAppointmentScheduled},
		{StageSQL, "unknown"},
	}
	for _, p := range cases {
		assert.Error(t, p.Validate(), p.Key())
	}
}

func TestDefaultWeights_SumAtMostOne(t *testing.T) {
	total := 0.0
	for _, w := range DefaultWeights() {
		total += w
	}
	assert.InDelta(t, 0.93, total, 1e-9)
	_, err := NewWeightedSampler(NewRand(1), DefaultWeights())
	require.NoError(t, err)
}

func TestWeightedSampler_MissingPathsNeverPicked(t *testing.T) {
	won := CanonicalPaths()[0]
	lost := CanonicalPaths()[6]
	s, err := NewWeightedSampler(NewRand(7), map[string]float64{
		won.Key():  0.2,
		lost.Key(): 0.1,
	})
	require.NoError(t, err)

	counts := map[string]int{}
	for i := 0; i < 3000; i++ {
		counts[s.Sample().Key()]++
	}
	assert.Len(t, counts, 2)
	assert.Greater(t, counts[won.Key()], counts[lost.Key()])
}

func TestWeightedSampler_BucketBoundaries(t *testing.T) {
	paths := CanonicalPaths()
	weights := map[string]float64{paths[0].Key(): 0.25, paths[7].Key(): 0.25}
	rnd := &scriptedRand{floats: []float64{0.0, 0.49, 0.5, 0.99}}
	s, err := NewWeightedSampler(rnd, weights)
	require.NoError(t, err)

	assert.Equal(t, paths[0].Key(), s.Sample().Key())
	assert.Equal(t, paths[0].Key(), s.Sample().Key())
	assert.Equal(t, paths[7].Key(), s.Sample().Key())
	assert.Equal(t, paths[7].Key(), s.Sample().Key())
}

func TestWeightedSampler_RejectsBadTables(t *testing.T) {
	paths := CanonicalPaths()
	cases := map[string]map[string]float64{
		"over one":   {paths[0].Key(): 0.7, paths[1].Key(): 0.4},
		"negative":   {paths[0].Key(): -0.1, paths[1].Key(): 0.4},
		"all zero":   {paths[0].Key(): 0},
		"empty":      {},
		"not a path": {"sql>closedwon": 0.5},
	}
	for name, weights := range cases {
		_, err := NewWeightedSampler(NewRand(1), weights)
		assert.ErrorIs(t, err, ErrInvalidWeights, name)
	}
}

func TestUniformSampler_CoversAllPathsAndIsSeeded(t *testing.T) {
	a := NewUniformSampler(NewRand(42))
	b := NewUniformSampler(NewRand(42))
	seen := map[string]bool{}
	for i := 0; i < 2000; i++ {
		pa, pb := a.Sample(), b.Sample()
		require.Equal(t, pa.Key(), pb.Key())
		seen[pa.Key()] = true
	}
	assert.Len(t, seen, len(CanonicalPaths()))
}

func TestSample_ReturnsCopy(t *testing.T) {
	s := NewUniformSampler(&scriptedRand{ints: []int{0, 0}})
	p := s.Sample()
	p[0] = StageClosedLost
	assert.Equal(t, StageSQL, s.Sample()[0])
}
