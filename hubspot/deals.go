package hubspot

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const dealsPath = "/crm/v3/objects/deals"

var (
	// PipelineDealProperties are read by the stage-history export.
	PipelineDealProperties = []string{
		"company_name", "dealname", "amount", "probability", "deal_type",
		"dealstage", "closedate", "createdate", "hubspot_owner_id",
	}
	// RawDealProperties are read by the raw export.
	RawDealProperties = []string{"dealname", "amount", "dealstage", "closedate"}
)

type DealQuery struct {
	Properties   []string
	Associations []string
	After        string
}

type Deal struct {
	ID         string
	Properties map[string]string
	// CompanyIDs lists associated company ids in response order.
	CompanyIDs []string
}

// Prop returns the property value, empty when absent or null.
func (d Deal) Prop(name string) string {
	return d.Properties[name]
}

type DealPage struct {
	Deals []Deal
	// NextAfter is the cursor for the next page, empty on the last page.
	NextAfter string
}

type dealListResponse struct {
	Results []struct {
		ID           string             `json:"id"`
		Properties   map[string]*string `json:"properties"`
		Associations map[string]struct {
			Results []struct {
				ID   string `json:"id"`
				Type string `json:"type"`
			} `json:"results"`
		} `json:"associations"`
	} `json:"results"`
	Paging *struct {
		Next *struct {
			After string `json:"after"`
		} `json:"next"`
	} `json:"paging"`
}

// ListDeals fetches one page of deals.
func (c *Client) ListDeals(ctx context.Context, q DealQuery) (DealPage, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(c.pageSize))
	if len(q.Properties) > 0 {
		params.Set("properties", strings.Join(q.Properties, ","))
	}
	if len(q.Associations) > 0 {
		params.Set("associations", strings.Join(q.Associations, ","))
	}
	if q.After != "" {
		params.Set("after", q.After)
	}

	resp, err := c.do(ctx, http.MethodGet, dealsPath, params, nil)
	if err != nil {
		return DealPage{}, fmt.Errorf("list deals: %w", err)
	}
	if !resp.ok() {
		return DealPage{}, fmt.Errorf("list deals: %w", resp.err())
	}

	var parsed dealListResponse
	if err := json.Unmarshal(resp.Body, &parsed); err != nil {
		return DealPage{}, fmt.Errorf("list deals: decode: %w", err)
	}

	page := DealPage{Deals: make([]Deal, 0, len(parsed.Results))}
	for _, r := range parsed.Results {
		d := Deal{ID: r.ID, Properties: make(map[string]string, len(r.Properties))}
		for k, v := range r.Properties {
			if v != nil {
				d.Properties[k] = *v
			}
		}
		if assoc, ok := r.Associations["companies"]; ok {
			for _, a := range assoc.Results {
				d.CompanyIDs = append(d.CompanyIDs, a.ID)
			}
		}
		page.Deals = append(page.Deals, d)
	}
	if parsed.Paging != nil && parsed.Paging.Next != nil {
		page.NextAfter = strings.TrimSpace(parsed.Paging.Next.After)
	}
	return page, nil
}

// EachDeal walks every page and calls fn per deal in response order. It
// stops at the first page without a next cursor, or when fn returns an error.
func (c *Client) EachDeal(ctx context.Context, q DealQuery, fn func(Deal) error) error {
	for {
		page, err := c.ListDeals(ctx, q)
		if err != nil {
			return err
		}
		for _, d := range page.Deals {
			if err := fn(d); err != nil {
				return err
			}
		}
		if page.NextAfter == "" {
			return nil
		}
		q.After = page.NextAfter
	}
}

// WriteResult is the raw outcome of a create call.
type WriteResult struct {
	StatusCode int
	Body       string
	ID         string
}

func (r WriteResult) Created() bool {
	return r.StatusCode == http.StatusCreated
}

// CreateDeal posts one deal. A non-201 status is reported through the result,
// not as an error; only transport failures return an error.
func (c *Client) CreateDeal(ctx context.Context, properties map[string]any) (WriteResult, error) {
	resp, err := c.do(ctx, http.MethodPost, dealsPath, nil, map[string]any{"properties": properties})
	if err != nil {
		return WriteResult{}, fmt.Errorf("create deal: %w", err)
	}
	res := WriteResult{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(resp.Body))}
	if res.Created() {
		var created struct {
			ID string `json:"id"`
		}
		if json.Unmarshal(resp.Body, &created) == nil {
			res.ID = created.ID
		}
	}
	return res, nil
}
