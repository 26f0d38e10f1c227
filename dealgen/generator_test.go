package dealgen

import (
	"testing"
	"time"

	"github.com/mmdatafocus/hubspot_pipeline/funnel"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedRand struct {
	ints []int
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

func (r *scriptedRand) Float64() float64 { return 0 }

var fixedNow = time.Date(2025, 3, 31, 15, 4, 5, 0, time.UTC)

func TestSalesReps_Roster(t *testing.T) {
	reps := SalesReps()
	require.Len(t, reps, 15)
	assert.Equal(t, funnel.Owner{ID: 1001, Name: "John Peterson"}, reps[0])
	assert.Equal(t, funnel.Owner{ID: 1015, Name: "Tom Berger"}, reps[14])
}

func TestNext_ScriptedDeal(t *testing.T) {
	// company, deal name, amount offset, days ago offset, lead offset, stage
	rnd := &scriptedRand{ints: []int{5, 1, 500, 9, 2, 2}}
	g := NewGenerator(rnd, func() time.Time { return fixedNow })

	d := g.Next()
	assert.Equal(t, "Apex Analytics", d.CompanyName)
	assert.Equal(t, "Service Agreement", d.Name)
	assert.Equal(t, 1000, d.Amount)
	assert.Equal(t, funnel.StagePresentationScheduled, d.Stage)
	assert.Equal(t, 0.40, d.Probability)
	assert.True(t, decimal.NewFromInt(400).Equal(d.Forecast))
	assert.Equal(t, "2025-03-21", d.CloseDate.Format(funnel.DateLayout))
	assert.Equal(t, "2025-03-14", d.CreateDate.Format(funnel.DateLayout))

	props := d.Properties()
	assert.Equal(t, "1000", props["amount"])
	assert.Equal(t, "400", props["probability_amount"])
	assert.Equal(t, "presentationscheduled", props["dealstage"])
	assert.Equal(t, "2025-03-21", props["closedate"])
	assert.Equal(t, "2025-03-14", props["createdate"])
	assert.Equal(t, "Apex Analytics", props["company_name"])
	assert.Equal(t, "default", props["pipeline"])
}

func TestNext_StageRulesHoldPerCompany(t *testing.T) {
	g := NewGenerator(funnel.NewRand(42), func() time.Time { return fixedNow })
	today := truncateDay(fixedNow)

	won := map[string]bool{}
	for i := 0; i < 1000; i++ {
		d := g.Next()
		assert.NotEqual(t, funnel.StageClosedLost, d.Stage)
		assert.NotEqual(t, funnel.StageSQL, d.Stage)
		if won[d.CompanyName] {
			assert.NotEqual(t, funnel.StageClosedWon, d.Stage, "second won deal for %s", d.CompanyName)
		}
		if d.Stage == funnel.StageClosedWon {
			won[d.CompanyName] = true
		}

		assert.GreaterOrEqual(t, d.Amount, minAmount)
		assert.LessOrEqual(t, d.Amount, maxAmount)

		daysAgo := int(today.Sub(d.CloseDate).Hours() / 24)
		assert.GreaterOrEqual(t, daysAgo, minDaysAgo)
		assert.LessOrEqual(t, daysAgo, maxDaysAgo)

		lead := int(d.CloseDate.Sub(d.CreateDate).Hours() / 24)
		assert.GreaterOrEqual(t, lead, minCreateLead)
		assert.LessOrEqual(t, lead, maxCreateLead)
	}
	assert.NotEmpty(t, won)
}

func TestNext_OnlyOpenStagesAfterWin(t *testing.T) {
	// First deal for company 0 lands on closedwon (index 5 of the allowed set).
	rnd := &scriptedRand{ints: []int{0, 0, 0, 0, 0, 5, 0, 0, 0, 0, 0, 9}}
	g := NewGenerator(rnd, func() time.Time { return fixedNow })

	first := g.Next()
	require.Equal(t, funnel.StageClosedWon, first.Stage)

	second := g.Next()
	assert.Equal(t, first.CompanyName, second.CompanyName)
	assert.Equal(t, funnel.StageContractSent, second.Stage)
	assert.Equal(t, []funnel.StageID{funnel.StageClosedWon, funnel.StageContractSent}, g.Stages(first.CompanyName))
}

func TestProfiles_DrawFromFixedLists(t *testing.T) {
	rnd := &scriptedRand{ints: []int{1, 2, 6, 0}}
	cp := NewCompanyProfile(rnd, funnel.CompanyIdentity{ID: 111111, Name: "Apex Analytics"})
	assert.Equal(t, CompanyProfile{
		CompanyID: 111111,
		Name:      "Apex Analytics",
		Industry:  "SaaS",
		Size:      "Enterprise",
		Country:   "Bosnia and Herzegovina",
		ICPTier:   "ICP 1",
	}, cp)

	rnd = &scriptedRand{ints: []int{2, 1, 0}}
	op := NewOwnerProfile(rnd, funnel.Owner{ID: 1002, Name: "Celine Dupont"})
	assert.Equal(t, OwnerProfile{
		OwnerID:    1002,
		Name:       "Celine Dupont",
		Department: "Enterprise Sales",
		Team:       "Team B",
		Region:     "EMEA",
	}, op)
}
