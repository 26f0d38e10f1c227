package funnel

type Lifecycle string

const (
	LifecycleMQL          Lifecycle = "MQL"
	LifecycleSQL          Lifecycle = "SQL"
	LifecycleOpportunity  Lifecycle = "Opportunity"
	LifecycleCustomer     Lifecycle = "Customer"
	LifecycleDisqualified Lifecycle = "Disqualified"
)

var lifecycleByStage = map[StageID]Lifecycle{
	StageSQL:                   LifecycleSQL,
	StageAppointmentScheduled:  LifecycleSQL,
	StageQualifiedToBuy:        LifecycleOpportunity,
	StagePresentationScheduled: LifecycleOpportunity,
	StageDecisionMakerBoughtIn: LifecycleOpportunity,
	StageContractSent:          LifecycleOpportunity,
	StageClosedWon:             LifecycleCustomer,
	StageClosedLost:            LifecycleDisqualified,
}

// ClassifyLifecycle labels a company from its deals' final stages, oldest
// first. The most recent deal with a mapped stage decides; MQL otherwise.
func ClassifyLifecycle(finalStages []StageID) Lifecycle {
	for i := len(finalStages) - 1; i >= 0; i-- {
		if l, ok := lifecycleByStage[finalStages[i]]; ok {
			return l
		}
	}
	return LifecycleMQL
}
