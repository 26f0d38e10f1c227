package funnel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_AllocatesSequentialIDs(t *testing.T) {
	r := NewCompanyRegistry()

	id, isNew := r.Resolve("Acme")
	assert.Equal(t, FirstCompanyID, id)
	assert.True(t, isNew)

	id2, isNew := r.Resolve("Globex")
	assert.Equal(t, FirstCompanyID+1, id2)
	assert.True(t, isNew)

	again, isNew := r.Resolve("Acme")
	assert.Equal(t, id, again)
	assert.False(t, isNew)

	// exact match only
	id3, isNew := r.Resolve("acme")
	assert.Equal(t, FirstCompanyID+2, id3)
	assert.True(t, isNew)

	assert.Equal(t, []string{"Acme", "Globex", "acme"}, names(r.Companies()))
}

func TestClassifyDealType_UsesStateBeforeOutcome(t *testing.T) {
	r := NewCompanyRegistry()
	r.Resolve("Acme")

	first, err := r.ClassifyDealType("Acme")
	require.NoError(t, err)
	assert.Equal(t, DealTypeNewBusiness, first)
	require.NoError(t, r.RecordOutcome("Acme", StageClosedWon))

	second, err := r.ClassifyDealType("Acme")
	require.NoError(t, err)
	assert.Equal(t, DealTypeExistingBusiness, second)
	require.NoError(t, r.RecordOutcome("Acme", StageClosedLost))

	third, err := r.ClassifyDealType("Acme")
	require.NoError(t, err)
	assert.Equal(t, DealTypeExistingBusiness, third)
}

func TestFirstClosedWon_LatchesOnlyOnFirstDeal(t *testing.T) {
	r := NewCompanyRegistry()
	r.Resolve("Initech")

	require.NoError(t, r.RecordOutcome("Initech", StageClosedLost))
	require.NoError(t, r.RecordOutcome("Initech", StageClosedWon))

	c, ok := r.Get("Initech")
	require.True(t, ok)
	assert.Equal(t, 2, c.DealCount)
	assert.False(t, c.FirstClosedWon)

	dt, err := r.ClassifyDealType("Initech")
	require.NoError(t, err)
	assert.Equal(t, DealTypeNewBusiness, dt)
}

func TestFirstClosedWon_NeverReverts(t *testing.T) {
	r := NewCompanyRegistry()
	r.Resolve("Hooli")
	require.NoError(t, r.RecordOutcome("Hooli", StageClosedWon))
	for _, s := range []StageID{StageClosedLost, StageSQL, StageContractSent} {
		require.NoError(t, r.RecordOutcome("Hooli", s))
		c, _ := r.Get("Hooli")
		assert.True(t, c.FirstClosedWon)
	}
	assert.Equal(t,
		[]StageID{StageClosedWon, StageClosedLost, StageSQL, StageContractSent},
		r.FinalStages(FirstCompanyID))
}

func TestUnresolvedCompanyErrors(t *testing.T) {
	r := NewCompanyRegistry()
	_, err := r.ClassifyDealType("Nobody")
	assert.ErrorIs(t, err, ErrUnknownCompany)
	assert.ErrorIs(t, r.RecordOutcome("Nobody", StageClosedWon), ErrUnknownCompany)
}

func TestNearDuplicates_FlagsSimilarNames(t *testing.T) {
	r := NewCompanyRegistry()
	r.Resolve("Apex Analytics")
	r.Resolve("Pioneer Systems")

	assert.Equal(t, []string{"Apex Analytics"}, r.NearDuplicates("apex analytics"))
	assert.Equal(t, []string{"Apex Analytics"}, r.NearDuplicates("Apex Analytics."))
	assert.Empty(t, r.NearDuplicates("Apex Analytics"))
	assert.Empty(t, r.NearDuplicates("Summit Strategies"))
}

func names(cs []CompanyIdentity) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Name
	}
	return out
}
