package funnel

import (
	"sort"
	"time"
)

// Sequencer numbers each company's deals 1, 2, 3, ... in creation order.
//
// In strict mode only deals that have a row for AnchorStage are ordered (by
// that row's entered date) and numbered; rows of other deals keep Ordinal 0.
// The default mode orders every deal by its earliest entered date.
type Sequencer struct {
	AnchorStage  StageID
	StrictAnchor bool
}

type SequenceReport struct {
	Deals      int
	Numbered   int
	Unnumbered []int
}

func NewSequencer(strict bool) Sequencer {
	return Sequencer{AnchorStage: DefaultAnchor, StrictAnchor: strict}
}

type dealKey struct {
	start time.Time
	seen  int
}

// AssignOrdinals returns a copy of rows, in input order, with Ordinal set.
func (s Sequencer) AssignOrdinals(rows []StageRow) ([]StageRow, SequenceReport) {
	anchor := s.AnchorStage
	if anchor == "" {
		anchor = DefaultAnchor
	}

	var (
		companies []int
		byCompany = map[int][]int{}
		keys      = map[int]*dealKey{}
		dealOrder []int
	)
	for _, row := range rows {
		k, ok := keys[row.DealID]
		if !ok {
			k = &dealKey{seen: len(dealOrder)}
			keys[row.DealID] = k
			dealOrder = append(dealOrder, row.DealID)
			if _, seen := byCompany[row.CompanyID]; !seen {
				companies = append(companies, row.CompanyID)
			}
			byCompany[row.CompanyID] = append(byCompany[row.CompanyID], row.DealID)
		}
		if s.StrictAnchor && row.Stage != anchor {
			continue
		}
		if k.start.IsZero() || row.EnteredDate.Before(k.start) {
			k.start = row.EnteredDate
		}
	}

	ordinals := make(map[int]int, len(keys))
	for _, companyID := range companies {
		var deals []int
		for _, dealID := range byCompany[companyID] {
			if !keys[dealID].start.IsZero() {
				deals = append(deals, dealID)
			}
		}
		sort.SliceStable(deals, func(i, j int) bool {
			a, b := keys[deals[i]], keys[deals[j]]
			if !a.start.Equal(b.start) {
				return a.start.Before(b.start)
			}
			return a.seen < b.seen
		})
		for i, dealID := range deals {
			ordinals[dealID] = i + 1
		}
	}

	report := SequenceReport{Deals: len(dealOrder), Numbered: len(ordinals)}
	for _, dealID := range dealOrder {
		if _, ok := ordinals[dealID]; !ok {
			report.Unnumbered = append(report.Unnumbered, dealID)
		}
	}

	out := make([]StageRow, len(rows))
	for i, row := range rows {
		row.Ordinal = ordinals[row.DealID]
		out[i] = row
	}
	return out, report
}
