package funnel

import (
	"errors"
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
)

var ErrUnknownCompany = errors.New("company not resolved")

// nearDuplicateDistance is the largest case-folded edit distance at which two
// distinct company names get flagged.
const nearDuplicateDistance = 2

type CompanyIdentity struct {
	ID             int
	Name           string
	FirstClosedWon bool
	DealCount      int
}

// CompanyRegistry maps raw company names to stable ids and tracks the deal
// history needed for deal-type and lifecycle derivation. Names are matched
// exactly; no normalization is applied.
type CompanyRegistry struct {
	nextID      int
	byName      map[string]*CompanyIdentity
	order       []*CompanyIdentity
	finalStages map[int][]StageID
}

func NewCompanyRegistry() *CompanyRegistry {
	return NewCompanyRegistryFrom(FirstCompanyID)
}

func NewCompanyRegistryFrom(firstID int) *CompanyRegistry {
	return &CompanyRegistry{
		nextID:      firstID,
		byName:      map[string]*CompanyIdentity{},
		finalStages: map[int][]StageID{},
	}
}

// Resolve returns the id for name, allocating the next id on first sight.
func (r *CompanyRegistry) Resolve(name string) (int, bool) {
	if c, ok := r.byName[name]; ok {
		return c.ID, false
	}
	c := &CompanyIdentity{ID: r.nextID, Name: name}
	r.nextID++
	r.byName[name] = c
	r.order = append(r.order, c)
	return c.ID, true
}

// ClassifyDealType must be called before RecordOutcome for the same deal: it
// reads the pre-increment deal count.
func (r *CompanyRegistry) ClassifyDealType(name string) (DealType, error) {
	c, ok := r.byName[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCompany, name)
	}
	if c.DealCount == 0 {
		return DealTypeNewBusiness, nil
	}
	if c.FirstClosedWon {
		return DealTypeExistingBusiness, nil
	}
	return DealTypeNewBusiness, nil
}

// RecordOutcome counts a finished deal. FirstClosedWon latches only when the
// company's first deal ends won and is never cleared.
func (r *CompanyRegistry) RecordOutcome(name string, final StageID) error {
	c, ok := r.byName[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCompany, name)
	}
	c.DealCount++
	if c.DealCount == 1 && final == StageClosedWon {
		c.FirstClosedWon = true
	}
	r.finalStages[c.ID] = append(r.finalStages[c.ID], final)
	return nil
}

func (r *CompanyRegistry) Get(name string) (CompanyIdentity, bool) {
	c, ok := r.byName[name]
	if !ok {
		return CompanyIdentity{}, false
	}
	return *c, true
}

// FinalStages returns the final stage of every recorded deal, oldest first.
func (r *CompanyRegistry) FinalStages(companyID int) []StageID {
	stages := r.finalStages[companyID]
	out := make([]StageID, len(stages))
	copy(out, stages)
	return out
}

// Companies returns snapshots in first-seen order.
func (r *CompanyRegistry) Companies() []CompanyIdentity {
	out := make([]CompanyIdentity, len(r.order))
	for i, c := range r.order {
		out[i] = *c
	}
	return out
}

func (r *CompanyRegistry) Len() int { return len(r.order) }

// NearDuplicates lists already registered names that differ from name only
// by a small edit distance after case folding. Used for warnings only.
func (r *CompanyRegistry) NearDuplicates(name string) []string {
	folded := strings.ToLower(strings.TrimSpace(name))
	var out []string
	for _, c := range r.order {
		if c.Name == name {
			continue
		}
		other := strings.ToLower(strings.TrimSpace(c.Name))
		if levenshtein.ComputeDistance(folded, other) <= nearDuplicateDistance {
			out = append(out, c.Name)
		}
	}
	return out
}
