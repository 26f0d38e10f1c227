package pipeline

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/mmdatafocus/hubspot_pipeline/appctx"
	"github.com/mmdatafocus/hubspot_pipeline/dealgen"
	"github.com/mmdatafocus/hubspot_pipeline/funnel"
	"github.com/mmdatafocus/hubspot_pipeline/hubspot"
	"github.com/mmdatafocus/hubspot_pipeline/sheetexport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	deals     []hubspot.Deal
	companies map[string]string
	lookups   []string
	queries   []hubspot.DealQuery
	failAfter int
}

func (f *fakeSource) EachDeal(_ context.Context, q hubspot.DealQuery, fn func(hubspot.Deal) error) error {
	f.queries = append(f.queries, q)
	for i, d := range f.deals {
		if f.failAfter > 0 && i == f.failAfter {
			return errors.New("hubspot api error 502: bad gateway")
		}
		if err := fn(d); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeSource) CompanyName(_ context.Context, id string) (string, error) {
	f.lookups = append(f.lookups, id)
	if name, ok := f.companies[id]; ok {
		return name, nil
	}
	return hubspot.UnknownCompany, nil
}

type writeCall struct {
	tab   string
	table sheetexport.Table
	mode  sheetexport.Mode
}

type recordingWriter struct {
	calls []writeCall
	err   error
}

func (w *recordingWriter) WriteTable(_ context.Context, tab string, t sheetexport.Table, mode sheetexport.Mode) error {
	if w.err != nil {
		return w.err
	}
	w.calls = append(w.calls, writeCall{tab: tab, table: t, mode: mode})
	return nil
}

func deal(id, name, amount, created, company string, assoc ...string) hubspot.Deal {
	return hubspot.Deal{
		ID: id,
		Properties: map[string]string{
			"dealname":     name,
			"amount":       amount,
			"createdate":   created,
			"company_name": company,
			"deal_type":    "newbusiness",
		},
		CompanyIDs: assoc,
	}
}

func newExporter(t *testing.T, src DealSource, w sheetexport.Writer, strict bool) *Exporter {
	t.Helper()
	rnd := funnel.NewRand(7)
	builder, err := funnel.NewBuilder(rnd, funnel.DefaultMinOffset, funnel.DefaultMaxOffset)
	require.NoError(t, err)
	proc, err := funnel.NewProcessor(funnel.ProcessorConfig{
		Sampler: funnel.NewUniformSampler(rnd),
		Builder: builder,
		Reps:    dealgen.SalesReps(),
		Rand:    rnd,
	})
	require.NoError(t, err)
	return &Exporter{
		Source:             src,
		Writer:             w,
		Processor:          proc,
		Sequencer:          funnel.NewSequencer(strict),
		ProfileRand:        funnel.NewRand(8),
		Tabs:               Tabs{Deal: "HubSpot - Deal", Company: "HubSpot - Company", Owner: "HubSpot - Sales Reps"},
		WarnNearDuplicates: true,
	}
}

func sampleDeals() []hubspot.Deal {
	return []hubspot.Deal{
		deal("1", "Service Agreement", "1000", "2024-01-01T10:00:00.000Z", "ignored", "77"),
		deal("2", "Joint Venture", "2500", "2024-02-01", " Apex Analytics "),
		deal("3", "Renewal Proposal", "300", "not-a-date", "Zenith Data Solutions"),
		deal("4", "Custom Solution", "", "2024-03-01", "Apex Analytic"),
	}
}

func TestExporterRun_WritesThreeTabs(t *testing.T) {
	src := &fakeSource{deals: sampleDeals(), companies: map[string]string{"77": "Apex Analytics"}}
	w := &recordingWriter{}
	e := newExporter(t, src, w, false)

	sum, err := e.Run(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, sum.RunID)
	assert.Equal(t, 4, sum.DealsFetched)
	assert.Equal(t, 3, sum.DealsProcessed)
	assert.Equal(t, 1, sum.DealsSkipped)
	assert.Equal(t, 3, sum.Companies)
	assert.Equal(t, 0, sum.Unnumbered)
	assert.Equal(t, []string{"77"}, src.lookups)
	require.Len(t, src.queries, 1)
	assert.Equal(t, []string{"companies"}, src.queries[0].Associations)

	require.Len(t, w.calls, 3)
	for _, c := range w.calls {
		assert.Equal(t, sheetexport.Replace, c.mode)
	}
	deals, companies, owners := w.calls[0], w.calls[1], w.calls[2]
	assert.Equal(t, "HubSpot - Deal", deals.tab)
	assert.Equal(t, DealHeader, deals.table.Header)
	assert.Equal(t, sum.StageRows, len(deals.table.Rows))

	// Deal id -> deal number; every deal is numbered per company.
	numbers := map[int]any{}
	for _, row := range deals.table.Rows {
		numbers[row[0].(int)] = row[14]
	}
	assert.Equal(t, map[int]any{1001: 1, 1002: 2, 1003: 1}, numbers)

	assert.Equal(t, "HubSpot - Company", companies.tab)
	require.Len(t, companies.table.Rows, 3)
	assert.Equal(t, []any{111111, "Apex Analytics"}, companies.table.Rows[0][:2])
	assert.Equal(t, []any{111112, "Zenith Data Solutions"}, companies.table.Rows[1][:2])
	assert.Equal(t, string(funnel.LifecycleMQL), companies.table.Rows[1][6])
	assert.Equal(t, []any{111113, "Apex Analytic"}, companies.table.Rows[2][:2])

	assert.Equal(t, "HubSpot - Sales Reps", owners.tab)
	assert.Equal(t, sum.Owners, len(owners.table.Rows))
	assert.NotZero(t, sum.Owners)
}

func TestExporterRun_StrictAnchorReportsUnnumbered(t *testing.T) {
	src := &fakeSource{deals: sampleDeals(), companies: map[string]string{"77": "Apex Analytics"}}
	e := newExporter(t, src, &recordingWriter{}, true)

	sum, err := e.Run(context.Background())
	require.NoError(t, err)
	// Every canonical path starts at sql, so nothing is left unnumbered.
	assert.True(t, sum.StrictAnchor)
	assert.Equal(t, 0, sum.Unnumbered)
}

func TestExporterRun_ReadFaultAborts(t *testing.T) {
	src := &fakeSource{deals: sampleDeals(), failAfter: 2}
	w := &recordingWriter{}
	e := newExporter(t, src, w, false)

	sum, err := e.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, 2, sum.DealsFetched)
	assert.Empty(t, w.calls)
}

func TestExporterRun_WriteFaultIsReturned(t *testing.T) {
	src := &fakeSource{deals: sampleDeals()}
	e := newExporter(t, src, &recordingWriter{err: errors.New("quota exceeded")}, false)
	_, err := e.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HubSpot - Deal")
}

func TestExporterRun_KeepsGivenRunID(t *testing.T) {
	ctx := appctx.SetRunId(context.Background(), "run-1")
	e := newExporter(t, &fakeSource{}, &recordingWriter{}, false)
	sum, err := e.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, "run-1", sum.RunID)
}

func TestToRawDeal_PrefersAssociatedCompany(t *testing.T) {
	src := &fakeSource{companies: map[string]string{"9": " Summit Strategies "}}
	raw, err := ToRawDeal(context.Background(), src, deal("5", "Merger Proposal", "10", "2024-01-01", "Free Text Co", "9", "10"))
	require.NoError(t, err)
	assert.Equal(t, "Summit Strategies", raw.CompanyName)
	assert.Equal(t, "5", raw.ExternalID)
	assert.Equal(t, "newbusiness", raw.SourceDealType)

	raw, err = ToRawDeal(context.Background(), src, deal("6", "Merger Proposal", "10", "2024-01-01", " Free Text Co "))
	require.NoError(t, err)
	assert.Equal(t, "Free Text Co", raw.CompanyName)
}

func TestExportRaw(t *testing.T) {
	src := &fakeSource{deals: []hubspot.Deal{
		{ID: "1", Properties: map[string]string{"dealname": "Joint Venture", "amount": "1200", "dealstage": "closedwon", "closedate": "2024-03-01T00:00:00Z"}},
		{ID: "2", Properties: map[string]string{"dealname": "Exclusive Offer"}},
	}}
	w := &recordingWriter{}

	n, err := ExportRaw(context.Background(), src, w, "HubSpot Raw Data")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, hubspot.RawDealProperties, src.queries[0].Properties)
	require.Len(t, w.calls, 1)
	assert.Equal(t, RawHeader, w.calls[0].table.Header)
	assert.Equal(t, [][]any{
		{"Joint Venture", "1200", "closedwon", "2024-03-01T00:00:00Z"},
		{"Exclusive Offer", "", "", ""},
	}, w.calls[0].table.Rows)
}

type scriptedCreator struct {
	results []hubspot.WriteResult
	errs    []error
	calls   int
}

func (c *scriptedCreator) CreateDeal(_ context.Context, _ map[string]any) (hubspot.WriteResult, error) {
	i := c.calls
	c.calls++
	return c.results[i], c.errs[i]
}

func TestGenerateDeals_ContinuesPastFailures(t *testing.T) {
	creator := &scriptedCreator{
		results: []hubspot.WriteResult{
			{StatusCode: http.StatusCreated},
			{StatusCode: http.StatusBadRequest, Body: `{"message":"invalid"}`},
			{},
		},
		errs: []error{nil, nil, errors.New("connection reset")},
	}
	gen := dealgen.NewGenerator(funnel.NewRand(3), func() time.Time { return time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC) })
	var out bytes.Buffer

	res, err := GenerateDeals(context.Background(), creator, gen, 3, &out)
	require.NoError(t, err)
	assert.Equal(t, GenerateResult{Created: 1, Failed: 2}, res)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "✅ Deal 1 created: "))
	assert.Equal(t, `❌ Error with Deal 2: 400 - {"message":"invalid"}`, lines[1])
	assert.Equal(t, "❌ Error with Deal 3: connection reset", lines[2])
}

func TestGenerateDeals_DryRunPrintsPayloads(t *testing.T) {
	gen := dealgen.NewGenerator(funnel.NewRand(3), nil)
	var out bytes.Buffer
	res, err := GenerateDeals(context.Background(), nil, gen, 2, &out)
	require.NoError(t, err)
	assert.Equal(t, GenerateResult{}, res)
	assert.Equal(t, 2, strings.Count(out.String(), `"pipeline":"default"`))
}

func TestGenerateDeals_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := GenerateDeals(ctx, nil, dealgen.NewGenerator(funnel.NewRand(1), nil), 5, &bytes.Buffer{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestObtainRunLock_NoRedisIsNoop(t *testing.T) {
	release, err := ObtainRunLock(context.Background(), "sheet", time.Minute)
	require.NoError(t, err)
	release()
	assert.Equal(t, "hubspot-pipeline:export-lock:sheet", RunLockKey("sheet"))
}
