package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mmdatafocus/hubspot_pipeline/appctx"
	"github.com/mmdatafocus/hubspot_pipeline/config"
	"github.com/mmdatafocus/hubspot_pipeline/dealgen"
	"github.com/mmdatafocus/hubspot_pipeline/funnel"
	"github.com/mmdatafocus/hubspot_pipeline/hubspot"
	"github.com/mmdatafocus/hubspot_pipeline/sheetexport"
	"github.com/sirupsen/logrus"
)

type Tabs struct {
	Deal    string
	Company string
	Owner   string
}

// Exporter runs one stage-history export: fetch, process every deal, label
// companies, sequence deals, then write the three tabs.
type Exporter struct {
	Source    DealSource
	Writer    sheetexport.Writer
	Processor *funnel.Processor
	Sequencer funnel.Sequencer
	// ProfileRand draws the fabricated company and owner attributes.
	ProfileRand        funnel.Rand
	Tabs               Tabs
	WarnNearDuplicates bool
}

type Summary struct {
	RunID          string    `json:"run_id"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at"`
	DealsFetched   int       `json:"deals_fetched"`
	DealsProcessed int       `json:"deals_processed"`
	DealsSkipped   int       `json:"deals_skipped"`
	StageRows      int       `json:"stage_rows"`
	Companies      int       `json:"companies"`
	Owners         int       `json:"owners"`
	Unnumbered     int       `json:"unnumbered_deals"`
	StrictAnchor   bool      `json:"strict_anchor"`
	Snapshot       string    `json:"snapshot,omitempty"`
}

// EnsureRunID returns ctx carrying a run id, generating one if needed.
func EnsureRunID(ctx context.Context) (context.Context, string) {
	if id, ok := appctx.GetRunId(ctx); ok && id != "" {
		return ctx, id
	}
	id := uuid.NewString()
	return appctx.SetRunId(ctx, id), id
}

func (e *Exporter) Run(ctx context.Context) (Summary, error) {
	if e.Source == nil || e.Writer == nil || e.Processor == nil || e.ProfileRand == nil {
		return Summary{}, errors.New("exporter is missing a collaborator")
	}
	ctx, runID := EnsureRunID(ctx)
	log := config.WithContext(ctx)
	sum := Summary{RunID: runID, StartedAt: time.Now(), StrictAnchor: e.Sequencer.StrictAnchor}

	var rows []funnel.StageRow
	q := hubspot.DealQuery{Properties: hubspot.PipelineDealProperties, Associations: []string{"companies"}}
	err := e.Source.EachDeal(ctx, q, func(d hubspot.Deal) error {
		sum.DealsFetched++
		raw, err := ToRawDeal(ctx, e.Source, d)
		if err != nil {
			return err
		}
		if e.WarnNearDuplicates {
			if _, known := e.Processor.Companies.Get(raw.CompanyName); !known {
				if similar := e.Processor.Companies.NearDuplicates(raw.CompanyName); len(similar) > 0 {
					log.WithFields(logrus.Fields{"company": raw.CompanyName, "similar": similar}).Warn("company name close to an existing one; kept separate")
				}
			}
		}

		out, err := e.Processor.ProcessDeal(raw)
		if errors.Is(err, funnel.ErrInvalidCreateDate) {
			sum.DealsSkipped++
			log.WithFields(logrus.Fields{"deal_id": d.ID, "deal": raw.Name, "createdate": raw.CreatedAt}).Warn("skipping deal without a valid create date")
			return nil
		}
		if err != nil {
			return err
		}
		sum.DealsProcessed++
		rows = append(rows, out.Rows...)
		return nil
	})
	if err != nil {
		config.LogError(config.GetLogger(), "pipeline", "Run", "fetch deals", logrus.Fields{"run_id": runID, "fetched": sum.DealsFetched}, err)
		return sum, fmt.Errorf("fetch deals: %w", err)
	}

	sequenced, report := e.Sequencer.AssignOrdinals(rows)
	sum.StageRows = len(sequenced)
	sum.Unnumbered = len(report.Unnumbered)
	if sum.Unnumbered > 0 {
		log.WithFields(logrus.Fields{"deal_ids": report.Unnumbered, "anchor": e.Sequencer.AnchorStage}).Warn("deals without an anchor stage row left unnumbered")
	}

	companies := e.CompanyProfiles()
	owners := e.OwnerProfiles()
	sum.Companies = len(companies)
	sum.Owners = len(owners)

	writes := []struct {
		tab   string
		table sheetexport.Table
	}{
		{e.Tabs.Deal, DealTable(sequenced)},
		{e.Tabs.Company, CompanyTable(companies)},
		{e.Tabs.Owner, OwnerTable(owners)},
	}
	for _, w := range writes {
		if err := e.Writer.WriteTable(ctx, w.tab, w.table, sheetexport.Replace); err != nil {
			config.LogError(config.GetLogger(), "pipeline", "Run", "write tab", logrus.Fields{"run_id": runID, "tab": w.tab}, err)
			return sum, fmt.Errorf("write %s: %w", w.tab, err)
		}
		log.WithFields(logrus.Fields{"tab": w.tab, "rows": len(w.table.Rows)}).Info("tab written")
	}

	sum.FinishedAt = time.Now()
	log.WithFields(logrus.Fields{
		"deals":     sum.DealsProcessed,
		"skipped":   sum.DealsSkipped,
		"rows":      sum.StageRows,
		"companies": sum.Companies,
		"owners":    sum.Owners,
	}).Info("pipeline export finished")
	return sum, nil
}

// CompanyProfiles fabricates a profile per registered company, in first-seen
// order, labelled with its lifecycle stage.
func (e *Exporter) CompanyProfiles() []dealgen.CompanyProfile {
	lifecycles := e.Processor.Lifecycles()
	companies := e.Processor.Companies.Companies()
	out := make([]dealgen.CompanyProfile, 0, len(companies))
	for _, c := range companies {
		p := dealgen.NewCompanyProfile(e.ProfileRand, c)
		p.Lifecycle = lifecycles[c.ID]
		out = append(out, p)
	}
	return out
}

// OwnerProfiles fabricates a profile per referenced owner.
func (e *Exporter) OwnerProfiles() []dealgen.OwnerProfile {
	owners := e.Processor.Owners.Owners()
	out := make([]dealgen.OwnerProfile, 0, len(owners))
	for _, o := range owners {
		out = append(out, dealgen.NewOwnerProfile(e.ProfileRand, o))
	}
	return out
}
