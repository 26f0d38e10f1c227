package sheetexport

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mmdatafocus/hubspot_pipeline/config"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

var tracer = otel.Tracer("hubspot-pipeline/sheetexport")

var ErrSpreadsheetNotFound = errors.New("spreadsheet not found")

// GoogleSheets writes tabs of one spreadsheet through the Sheets v4 API.
type GoogleSheets struct {
	svc           *sheets.Service
	spreadsheetID string
}

// NewGoogleSheets authenticates with a service-account file. When
// spreadsheetID is empty the spreadsheet is looked up by name through Drive.
func NewGoogleSheets(ctx context.Context, credentialsFile, spreadsheetID, spreadsheetName string) (*GoogleSheets, error) {
	opts := []option.ClientOption{
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope, drive.DriveScope),
	}
	return NewGoogleSheetsWithOptions(ctx, spreadsheetID, spreadsheetName, opts...)
}

func NewGoogleSheetsWithOptions(ctx context.Context, spreadsheetID, spreadsheetName string, opts ...option.ClientOption) (*GoogleSheets, error) {
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	if spreadsheetID == "" {
		spreadsheetID, err = findSpreadsheet(ctx, spreadsheetName, opts...)
		if err != nil {
			return nil, err
		}
	}
	config.GetLogger().WithFields(logrus.Fields{"spreadsheet_id": spreadsheetID}).Debug("google sheets ready")
	return &GoogleSheets{svc: svc, spreadsheetID: spreadsheetID}, nil
}

func findSpreadsheet(ctx context.Context, name string, opts ...option.ClientOption) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("%w: no spreadsheet id or name", ErrSpreadsheetNotFound)
	}
	dsvc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return "", fmt.Errorf("drive service: %w", err)
	}
	q := fmt.Sprintf("name = '%s' and mimeType = 'application/vnd.google-apps.spreadsheet' and trashed = false",
		strings.ReplaceAll(name, "'", `\'`))
	res, err := dsvc.Files.List().Q(q).Fields("files(id, name)").PageSize(1).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("drive lookup %q: %w", name, err)
	}
	if len(res.Files) == 0 {
		return "", fmt.Errorf("%w: %q", ErrSpreadsheetNotFound, name)
	}
	return res.Files[0].Id, nil
}

func (g *GoogleSheets) SpreadsheetID() string { return g.spreadsheetID }

func (g *GoogleSheets) WriteTable(ctx context.Context, tab string, t Table, mode Mode) error {
	if tab == "" {
		return ErrEmptyTab
	}
	ctx, span := tracer.Start(ctx, "sheets write "+tab)
	defer span.End()
	span.SetAttributes(attribute.String("mode", mode.String()), attribute.Int("rows", len(t.Rows)))

	if err := g.ensureTab(ctx, tab); err != nil {
		return err
	}

	rng := a1Range(tab)
	values := &sheets.ValueRange{Values: rowsFor(t, mode)}

	if mode == Replace {
		if _, err := g.svc.Spreadsheets.Values.Clear(g.spreadsheetID, rng, &sheets.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
			return fmt.Errorf("clear %s: %w", tab, err)
		}
		if len(values.Values) == 0 {
			return nil
		}
		if _, err := g.svc.Spreadsheets.Values.Update(g.spreadsheetID, rng, values).ValueInputOption("RAW").Context(ctx).Do(); err != nil {
			return fmt.Errorf("write %s: %w", tab, err)
		}
		return nil
	}

	if len(values.Values) == 0 {
		return nil
	}
	if _, err := g.svc.Spreadsheets.Values.Append(g.spreadsheetID, rng, values).
		ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do(); err != nil {
		return fmt.Errorf("append %s: %w", tab, err)
	}
	return nil
}

// ensureTab adds the tab when the spreadsheet does not have it yet.
func (g *GoogleSheets) ensureTab(ctx context.Context, tab string) error {
	ss, err := g.svc.Spreadsheets.Get(g.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read spreadsheet %s: %w", g.spreadsheetID, err)
	}
	for _, s := range ss.Sheets {
		if s.Properties != nil && s.Properties.Title == tab {
			return nil
		}
	}
	req := &sheets.BatchUpdateSpreadsheetRequest{Requests: []*sheets.Request{{
		AddSheet: &sheets.AddSheetRequest{Properties: &sheets.SheetProperties{Title: tab}},
	}}}
	if _, err := g.svc.Spreadsheets.BatchUpdate(g.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("add tab %s: %w", tab, err)
	}
	config.GetLogger().WithFields(logrus.Fields{"tab": tab}).Info("added missing sheet tab")
	return nil
}

// a1Range addresses a whole tab starting at A1.
func a1Range(tab string) string {
	return "'" + strings.ReplaceAll(tab, "'", "''") + "'!A1"
}
