package hubspot

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/mmdatafocus/hubspot_pipeline/config"
	"github.com/sirupsen/logrus"
)

const UnknownCompany = "Unknown Company"

const companiesPath = "/crm/v3/objects/companies/"

func companyCacheKey(id string) string {
	return "hubspot:company:" + id + ":name"
}

// CompanyName resolves an associated company id to its name. Missing names
// and unknown ids resolve to UnknownCompany. Names are cached in Redis when
// it is connected.
func (c *Client) CompanyName(ctx context.Context, companyID string) (string, error) {
	companyID = strings.TrimSpace(companyID)
	if companyID == "" {
		return UnknownCompany, nil
	}

	key := companyCacheKey(companyID)
	if name, ok, err := config.GetRedisValue(ctx, key); err != nil {
		config.GetLogger().WithFields(logrus.Fields{"company_id": companyID}).WithError(err).Warn("company cache read failed")
	} else if ok {
		return name, nil
	}

	params := url.Values{}
	params.Set("properties", "name")
	resp, err := c.do(ctx, http.MethodGet, companiesPath+url.PathEscape(companyID), params, nil)
	if err != nil {
		return "", fmt.Errorf("get company %s: %w", companyID, err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return UnknownCompany, nil
	}
	if !resp.ok() {
		return "", fmt.Errorf("get company %s: %w", companyID, resp.err())
	}

	var parsed struct {
		Properties map[string]*string `json:"properties"`
	}
	if err := json.Unmarshal(resp.Body, &parsed); err != nil {
		return "", fmt.Errorf("get company %s: decode: %w", companyID, err)
	}
	name := UnknownCompany
	if v := parsed.Properties["name"]; v != nil {
		name = strings.TrimSpace(*v)
	}

	if err := config.SetRedisValue(ctx, key, name, c.companyCacheTTL); err != nil {
		config.GetLogger().WithFields(logrus.Fields{"company_id": companyID}).WithError(err).Warn("company cache write failed")
	}
	return name, nil
}
