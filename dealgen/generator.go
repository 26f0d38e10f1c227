package dealgen

import (
	"strconv"
	"time"

	"github.com/mmdatafocus/hubspot_pipeline/funnel"
	"github.com/shopspring/decimal"
)

var companyNames = []string{
	"Innovative Solutions Inc.", "GlobalTech Industries", "NextGen Enterprises", "CyberCore Technologies",
	"Vanguard Digital Group", "Apex Analytics", "Fusion Strategies", "Bright Horizons Media",
	"Quantum Innovations Ltd.", "Peak Performance Consulting", "Pioneer Systems", "Elevate Global Ventures",
	"BlueWave Technologies", "SilverPeak Consulting", "CoreVision Solutions", "Starpoint International",
	"GreenTech Innovations", "SmartEdge Software", "Pathfinder Solutions", "DataLink Global",
	"FutureX Industries", "BlueSky Enterprises", "Velocity Ventures", "TechnoBridge Networks",
	"OmniCore Technologies", "TrueNorth Innovations", "NovaFusion Inc.", "Zenith Data Solutions",
	"Summit Strategies", "PrimeTech Solutions",
}

var dealNameVariations = []string{
	"New Business Proposal", "Service Agreement", "Strategic Partnership", "Consulting Opportunity",
	"Technology Integration", "Expansion Contract", "Investment Deal", "Joint Venture",
	"Growth Opportunity", "Acquisition Negotiations", "Renewal Proposal", "Collaborative Partnership",
	"Exclusive Offer", "Exclusive Licensing Deal", "Sales Expansion", "Strategic Alliance",
	"Business Development Proposal", "Long-Term Partnership", "Custom Solution", "New Market Entry",
	"Merger Proposal", "Contract Renewal", "Consulting Engagement", "Market Expansion Proposal",
}

// Generated deals never start in sql; that stage only appears in
// synthesized histories.
var generatorStages = []funnel.StageID{
	funnel.StageAppointmentScheduled,
	funnel.StageQualifiedToBuy,
	funnel.StagePresentationScheduled,
	funnel.StageDecisionMakerBoughtIn,
	funnel.StageContractSent,
	funnel.StageClosedWon,
	funnel.StageClosedLost,
}

const (
	minAmount       = 500
	maxAmount       = 50000
	minDaysAgo      = 1
	maxDaysAgo      = 90
	minCreateLead   = 5
	maxCreateLead   = 20
	hubspotPipeline = "default"
)

type Deal struct {
	Name        string
	CompanyName string
	Amount      int
	Stage       funnel.StageID
	Probability float64
	Forecast    decimal.Decimal
	CloseDate   time.Time
	CreateDate  time.Time
}

// Properties is the HubSpot create payload for the deal.
func (d Deal) Properties() map[string]any {
	return map[string]any{
		"dealname":           d.Name,
		"amount":             strconv.Itoa(d.Amount),
		"probability_amount": d.Forecast.String(),
		"probability":        d.Probability,
		"dealstage":          string(d.Stage),
		"closedate":          d.CloseDate.Format(funnel.DateLayout),
		"createdate":         d.CreateDate.Format(funnel.DateLayout),
		"company_name":       d.CompanyName,
		"pipeline":           hubspotPipeline,
	}
}

// Generator fabricates deals for a fixed pool of fictional companies. It
// remembers the stages already handed to each company so later deals follow
// the stage rules. Not safe for concurrent use.
type Generator struct {
	rnd       funnel.Rand
	now       func() time.Time
	companies map[string][]funnel.StageID
}

func NewGenerator(rnd funnel.Rand, now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{rnd: rnd, now: now, companies: map[string][]funnel.StageID{}}
}

func (g *Generator) intBetween(lo, hi int) int {
	return lo + g.rnd.IntN(hi-lo+1)
}

// Next fabricates one deal.
func (g *Generator) Next() Deal {
	company := pick(g.rnd, companyNames)
	history := g.companies[company]

	name := pick(g.rnd, dealNameVariations)
	amount := g.intBetween(minAmount, maxAmount)
	daysAgo := g.intBetween(minDaysAgo, maxDaysAgo)
	lead := g.intBetween(minCreateLead, maxCreateLead)

	stage := g.pickStage(history)
	def := funnel.MustLookup(stage)

	closeDate := truncateDay(g.now()).AddDate(0, 0, -daysAgo)
	createDate := closeDate.AddDate(0, 0, -lead)

	g.companies[company] = append(history, stage)

	return Deal{
		Name:        name,
		CompanyName: company,
		Amount:      amount,
		Stage:       stage,
		Probability: def.Probability,
		Forecast:    decimal.NewFromInt(int64(amount)).Mul(decimal.NewFromFloat(def.Probability)).Round(2),
		CloseDate:   closeDate,
		CreateDate:  createDate,
	}
}

// pickStage applies the per-company rules: never closedlost, and only open
// stages once the company has a won deal.
func (g *Generator) pickStage(history []funnel.StageID) funnel.StageID {
	won := false
	for _, s := range history {
		if s == funnel.StageClosedWon {
			won = true
			break
		}
	}
	allowed := make([]funnel.StageID, 0, len(generatorStages))
	for _, s := range generatorStages {
		if s == funnel.StageClosedLost || (won && s == funnel.StageClosedWon) {
			continue
		}
		allowed = append(allowed, s)
	}
	return allowed[g.rnd.IntN(len(allowed))]
}

// Stages returns the stages generated so far for a company.
func (g *Generator) Stages(company string) []funnel.StageID {
	return append([]funnel.StageID(nil), g.companies[company]...)
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
