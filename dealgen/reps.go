package dealgen

import "github.com/mmdatafocus/hubspot_pipeline/funnel"

const FirstSalesRepID = 1001

var salesRepNames = []string{
	"John Peterson", "Celine Dupont", "Margaret Wilson", "Charlotte Becker", "David Klein",
	"Andre Moreau", "Philip Schneider", "Emily Carter", "Lucas Hoffmann", "Anna Fischer",
	"Noah Müller", "Isabelle Lang", "Leon Weber", "Nina Schröder", "Tom Berger",
}

// SalesReps returns the fixed roster of fictional sales reps with ids
// assigned from 1001 in roster order.
func SalesReps() []funnel.Owner {
	out := make([]funnel.Owner, len(salesRepNames))
	for i, name := range salesRepNames {
		out[i] = funnel.Owner{ID: FirstSalesRepID + i, Name: name}
	}
	return out
}
