package hubspot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmdatafocus/hubspot_pipeline/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultBaseURL  = "https://api.hubapi.com"
	DefaultPageSize = 100
)

var ErrMissingToken = errors.New("hubspot api key is empty")

var tracer = otel.Tracer("hubspot-pipeline/hubspot")

type Options struct {
	BaseURL         string
	Token           string
	RateLimitPerSec int
	PageSize        int
	Timeout         time.Duration
	CompanyCacheTTL time.Duration
	// HTTPClient overrides the default client; Timeout is ignored when set.
	HTTPClient *http.Client
}

// Client talks to the HubSpot CRM v3 objects API with a private-app token.
// Calls are synchronous and never retried.
type Client struct {
	baseURL         string
	token           string
	http            *http.Client
	limiter         <-chan time.Time
	pageSize        int
	companyCacheTTL time.Duration
}

func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.Token) == "" {
		return nil, ErrMissingToken
	}
	baseURL := strings.TrimSpace(opts.BaseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	pageSize := opts.PageSize
	if pageSize <= 0 || pageSize > DefaultPageSize {
		pageSize = DefaultPageSize
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	c := &Client{
		baseURL:         strings.TrimRight(baseURL, "/"),
		token:           opts.Token,
		http:            httpClient,
		pageSize:        pageSize,
		companyCacheTTL: opts.CompanyCacheTTL,
	}
	if opts.RateLimitPerSec > 0 {
		c.limiter = time.Tick(time.Second / time.Duration(opts.RateLimitPerSec))
	}
	return c, nil
}

func NewClientFromSettings(s config.HubSpotSettings) (*Client, error) {
	return NewClient(Options{
		BaseURL:         s.BaseURL,
		Token:           s.APIKey,
		RateLimitPerSec: s.RateLimitPerSec,
		PageSize:        s.PageSize,
		Timeout:         s.Timeout,
		CompanyCacheTTL: s.CompanyCacheTTL,
	})
}

type response struct {
	StatusCode int
	Body       []byte
}

func (r response) ok() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

func (r response) err() error {
	return fmt.Errorf("hubspot api error %d: %s", r.StatusCode, strings.TrimSpace(string(r.Body)))
}

// do performs one request. Only transport failures are returned as errors;
// status handling is left to the caller.
func (c *Client) do(ctx context.Context, method, path string, params url.Values, payload any) (response, error) {
	ctx, span := tracer.Start(ctx, "hubspot "+method+" "+path, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	if c.limiter != nil {
		select {
		case <-ctx.Done():
			return response{}, ctx.Err()
		case <-c.limiter:
		}
	}

	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint = endpoint + "?" + params.Encode()
	}

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return response{}, err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return response{}, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return response{}, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return response{}, err
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode >= 400 {
		span.SetStatus(codes.Error, http.StatusText(resp.StatusCode))
	}
	return response{StatusCode: resp.StatusCode, Body: respBody}, nil
}
