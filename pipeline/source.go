package pipeline

import (
	"context"
	"strings"

	"github.com/mmdatafocus/hubspot_pipeline/funnel"
	"github.com/mmdatafocus/hubspot_pipeline/hubspot"
)

// DealSource is the CRM read side. *hubspot.Client implements it.
type DealSource interface {
	EachDeal(ctx context.Context, q hubspot.DealQuery, fn func(hubspot.Deal) error) error
	CompanyName(ctx context.Context, companyID string) (string, error)
}

// DealCreator is the CRM write side. *hubspot.Client implements it.
type DealCreator interface {
	CreateDeal(ctx context.Context, properties map[string]any) (hubspot.WriteResult, error)
}

// ToRawDeal maps a CRM deal to the generator input. The first associated
// company wins over the free-text company_name property.
func ToRawDeal(ctx context.Context, src DealSource, d hubspot.Deal) (funnel.RawDeal, error) {
	company := strings.TrimSpace(d.Prop("company_name"))
	if len(d.CompanyIDs) > 0 {
		name, err := src.CompanyName(ctx, d.CompanyIDs[0])
		if err != nil {
			return funnel.RawDeal{}, err
		}
		company = strings.TrimSpace(name)
	}
	return funnel.RawDeal{
		ExternalID:     d.ID,
		Name:           d.Prop("dealname"),
		Amount:         d.Prop("amount"),
		CreatedAt:      d.Prop("createdate"),
		CompanyName:    company,
		SourceDealType: d.Prop("deal_type"),
		SourceStage:    d.Prop("dealstage"),
	}, nil
}
