package pipeline

import (
	"github.com/mmdatafocus/hubspot_pipeline/dealgen"
	"github.com/mmdatafocus/hubspot_pipeline/funnel"
	"github.com/mmdatafocus/hubspot_pipeline/hubspot"
	"github.com/mmdatafocus/hubspot_pipeline/sheetexport"
	"github.com/mmdatafocus/hubspot_pipeline/utils"
)

var (
	DealHeader = []string{
		"Deal ID", "Company ID", "Sales Rep ID", "Deal Name", "Amount", "Forecast Amount", "Probability",
		"Deal Stage", "Deal Type", "Close Date", "Create Date", "Entered Stage Date", "Days in Stage",
		"Pipeline", "Deal Number", "Source Deal Type",
	}
	CompanyHeader = []string{"Company ID", "Company Name", "Industry", "Company Size", "Country", "ICP Tier", "Lifecycle Stage"}
	OwnerHeader   = []string{"Sales Rep ID", "Sales Rep", "Department", "Team", "Region"}
	RawHeader     = []string{"Deal Name", "Amount", "Deal Stage", "Close Date"}
)

// DealTable renders stage rows in the given order. Unnumbered deals get an
// empty Deal Number.
func DealTable(rows []funnel.StageRow) sheetexport.Table {
	t := sheetexport.Table{Header: DealHeader, Rows: make([][]any, 0, len(rows))}
	for _, r := range rows {
		var ordinal any
		if r.Ordinal > 0 {
			ordinal = r.Ordinal
		}
		t.Rows = append(t.Rows, []any{
			r.DealID,
			r.CompanyID,
			r.OwnerID,
			r.DealName,
			r.Amount,
			r.Forecast,
			r.Probability,
			string(r.Stage),
			string(r.DealType),
			utils.FormatDate(r.ClosedDate),
			utils.FormatDate(r.CreateDate),
			r.EnteredDate.Format(funnel.DateLayout),
			r.DaysInStage,
			r.Pipeline,
			ordinal,
			r.SourceDealType,
		})
	}
	return t
}

func CompanyTable(profiles []dealgen.CompanyProfile) sheetexport.Table {
	t := sheetexport.Table{Header: CompanyHeader, Rows: make([][]any, 0, len(profiles))}
	for _, p := range profiles {
		t.Rows = append(t.Rows, []any{p.CompanyID, p.Name, p.Industry, p.Size, p.Country, p.ICPTier, string(p.Lifecycle)})
	}
	return t
}

func OwnerTable(profiles []dealgen.OwnerProfile) sheetexport.Table {
	t := sheetexport.Table{Header: OwnerHeader, Rows: make([][]any, 0, len(profiles))}
	for _, p := range profiles {
		t.Rows = append(t.Rows, []any{p.OwnerID, p.Name, p.Department, p.Team, p.Region})
	}
	return t
}

func rawRow(d hubspot.Deal) []any {
	return []any{d.Prop("dealname"), d.Prop("amount"), d.Prop("dealstage"), d.Prop("closedate")}
}
