package funnel

import (
	"errors"
	"fmt"
)

type ProcessorConfig struct {
	Sampler Sampler
	Builder *Builder
	// Reps is the roster deal owners are drawn from.
	Reps        []Owner
	Rand        Rand
	FirstDealID int
}

// Processor turns raw deals into stage histories while maintaining the
// company and owner registries. Not safe for concurrent use.
type Processor struct {
	Companies *CompanyRegistry
	Owners    *OwnerRegistry

	sampler    Sampler
	builder    *Builder
	reps       []Owner
	rnd        Rand
	nextDealID int
}

type DealOutcome struct {
	DealID     int
	CompanyID  int
	NewCompany bool
	DealType   DealType
	Owner      Owner
	Path       Path
	Rows       []StageRow
}

func NewProcessor(cfg ProcessorConfig) (*Processor, error) {
	if cfg.Sampler == nil || cfg.Builder == nil || cfg.Rand == nil {
		return nil, errors.New("processor requires sampler, builder and rand")
	}
	if len(cfg.Reps) == 0 {
		return nil, errors.New("processor requires at least one sales rep")
	}
	first := cfg.FirstDealID
	if first == 0 {
		first = FirstDealID
	}
	return &Processor{
		Companies:  NewCompanyRegistry(),
		Owners:     NewOwnerRegistry(),
		sampler:    cfg.Sampler,
		builder:    cfg.Builder,
		reps:       cfg.Reps,
		rnd:        cfg.Rand,
		nextDealID: first,
	}, nil
}

// ProcessDeal resolves the company, classifies the deal type from the
// company's history so far, builds the stage history and records the outcome.
//
// A deal with an unparseable create date still registers its company but
// produces no rows, consumes no deal id and returns ErrInvalidCreateDate.
func (p *Processor) ProcessDeal(raw RawDeal) (DealOutcome, error) {
	companyID, isNew := p.Companies.Resolve(raw.CompanyName)
	out := DealOutcome{CompanyID: companyID, NewCompany: isNew}

	dealType, err := p.Companies.ClassifyDealType(raw.CompanyName)
	if err != nil {
		return out, err
	}
	out.DealType = dealType

	if _, err := ParseCreateDate(raw.CreatedAt); err != nil {
		return out, fmt.Errorf("deal %q: %w", raw.Name, err)
	}

	path := p.sampler.Sample()
	owner := p.reps[p.rnd.IntN(len(p.reps))]
	p.Owners.Record(owner)

	rows, err := p.builder.Build(path, raw.CreatedAt, raw.Amount)
	if err != nil {
		return out, fmt.Errorf("deal %q: %w", raw.Name, err)
	}
	if len(rows) == 0 {
		return out, fmt.Errorf("deal %q: empty stage path", raw.Name)
	}

	dealID := p.nextDealID
	for i := range rows {
		rows[i].DealID = dealID
		rows[i].CompanyID = companyID
		rows[i].OwnerID = owner.ID
		rows[i].DealName = raw.Name
		rows[i].DealType = dealType
		rows[i].SourceDealType = raw.SourceDealType
	}
	if err := p.Companies.RecordOutcome(raw.CompanyName, path.Final()); err != nil {
		return out, err
	}
	p.nextDealID++

	out.DealID = dealID
	out.Owner = owner
	out.Path = path
	out.Rows = rows
	return out, nil
}

// Lifecycles labels every registered company, keyed by company id.
func (p *Processor) Lifecycles() map[int]Lifecycle {
	out := make(map[int]Lifecycle, p.Companies.Len())
	for _, c := range p.Companies.Companies() {
		out[c.ID] = ClassifyLifecycle(p.Companies.FinalStages(c.ID))
	}
	return out
}
