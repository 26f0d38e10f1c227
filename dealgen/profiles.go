package dealgen

import "github.com/mmdatafocus/hubspot_pipeline/funnel"

var (
	industries   = []string{"FMCG", "SaaS", "Healthcare", "Finance", "Retail", "Durable Goods", "Agency", "Mobility & Automotive"}
	companySizes = []string{"Small", "Medium", "Enterprise"}
	icpTiers     = []string{"ICP 1", "ICP 2", "ICP 3"}
	countries    = []string{
		"Albania", "Andorra", "Armenia", "Austria", "Belarus", "Belgium", "Bosnia and Herzegovina", "Bulgaria",
		"Croatia", "Cyprus", "Czech Republic", "Denmark", "Estonia", "Finland", "France", "Georgia", "Germany",
		"Greece", "Hungary", "Iceland", "Ireland", "Italy", "Kosovo", "Latvia", "Lithuania", "Luxembourg",
		"Malta", "Moldova", "Monaco", "Montenegro", "Netherlands", "North Macedonia", "Norway", "Poland",
		"Portugal", "Romania", "Serbia", "Slovakia", "Slovenia", "Spain", "Sweden", "Switzerland", "Turkey",
		"Ukraine", "United Kingdom",
	}

	departments = []string{"Sales", "Account Management", "Enterprise Sales"}
	teams       = []string{"Team A", "Team B", "Team C"}
	regions     = []string{"EMEA", "AMER", "APAC"}
)

// CompanyProfile is the descriptive row of the company tab. Everything but
// the id, name and lifecycle is fabricated.
type CompanyProfile struct {
	CompanyID int
	Name      string
	Industry  string
	Size      string
	Country   string
	ICPTier   string
	Lifecycle funnel.Lifecycle
}

type OwnerProfile struct {
	OwnerID    int
	Name       string
	Department string
	Team       string
	Region     string
}

func pick(rnd funnel.Rand, values []string) string {
	return values[rnd.IntN(len(values))]
}

func NewCompanyProfile(rnd funnel.Rand, c funnel.CompanyIdentity) CompanyProfile {
	return CompanyProfile{
		CompanyID: c.ID,
		Name:      c.Name,
		Industry:  pick(rnd, industries),
		Size:      pick(rnd, companySizes),
		Country:   pick(rnd, countries),
		ICPTier:   pick(rnd, icpTiers),
	}
}

func NewOwnerProfile(rnd funnel.Rand, o funnel.Owner) OwnerProfile {
	return OwnerProfile{
		OwnerID:    o.ID,
		Name:       o.Name,
		Department: pick(rnd, departments),
		Team:       pick(rnd, teams),
		Region:     pick(rnd, regions),
	}
}
