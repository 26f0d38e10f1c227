package funnel

import (
	"errors"
	"fmt"
	"strings"
)

type StageID string

const (
	StageSQL                   StageID = "sql"
	StageAppointmentScheduled  StageID = "appointmentscheduled"
	StageQualifiedToBuy        StageID = "qualifiedtobuy"
	StagePresentationScheduled StageID = "presentationscheduled"
	StageDecisionMakerBoughtIn StageID = "decisionmakerboughtin"
	StageContractSent          StageID = "contractsent"
	StageClosedWon             StageID = "closedwon"
	StageClosedLost            StageID = "closedlost"
)

type Category string

const (
	CategoryOpen       Category = "open"
	CategoryClosedWon  Category = "closed-won"
	CategoryClosedLost Category = "closed-lost"
)

// IsClosed reports whether the category terminates a funnel path.
func (c Category) IsClosed() bool {
	return c == CategoryClosedWon || c == CategoryClosedLost
}

type StageDefinition struct {
	ID          StageID
	Probability float64
	Category    Category
}

var ErrUnknownStage = errors.New("unknown deal stage")

// catalog is listed in canonical funnel order.
var catalog = []StageDefinition{
	{ID: StageSQL, Probability: 0.05, Category: CategoryOpen},
	{ID: StageAppointmentScheduled, Probability: 0.10, Category: CategoryOpen},
	{ID: StageQualifiedToBuy, Probability: 0.25, Category: CategoryOpen},
	{ID: StagePresentationScheduled, Probability: 0.40, Category: CategoryOpen},
	{ID: StageDecisionMakerBoughtIn, Probability: 0.60, Category: CategoryOpen},
	{ID: StageContractSent, Probability: 0.80, Category: CategoryOpen},
	{ID: StageClosedWon, Probability: 1.00, Category: CategoryClosedWon},
	{ID: StageClosedLost, Probability: 0.00, Category: CategoryClosedLost},
}

var catalogIndex = func() map[StageID]int {
	m := make(map[StageID]int, len(catalog))
	for i, def := range catalog {
		m[def.ID] = i
	}
	return m
}()

// Stages returns a copy of the catalog in canonical order.
func Stages() []StageDefinition {
	out := make([]StageDefinition, len(catalog))
	copy(out, catalog)
	return out
}

// OpenStages returns the open stage ids in funnel order.
func OpenStages() []StageID {
	var ids []StageID
	for _, def := range catalog {
		if def.Category == CategoryOpen {
			ids = append(ids, def.ID)
		}
	}
	return ids
}

func Lookup(id StageID) (StageDefinition, error) {
	i, ok := catalogIndex[id]
	if !ok {
		return StageDefinition{}, fmt.Errorf("%w: %q", ErrUnknownStage, string(id))
	}
	return catalog[i], nil
}

// MustLookup panics on an id outside the catalog. Only used for ids that
// come from this package's own tables.
func MustLookup(id StageID) StageDefinition {
	def, err := Lookup(id)
	if err != nil {
		panic(err)
	}
	return def
}

// ParseStage validates a user supplied stage id. Matching is case-insensitive
// and ignores surrounding whitespace.
func ParseStage(raw string) (StageID, error) {
	id := StageID(strings.ToLower(strings.TrimSpace(raw)))
	if _, err := Lookup(id); err != nil {
		return "", err
	}
	return id, nil
}

func (id StageID) String() string { return string(id) }
