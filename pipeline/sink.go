package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/mmdatafocus/hubspot_pipeline/config"
	"github.com/mmdatafocus/hubspot_pipeline/sheetexport"
	"github.com/sirupsen/logrus"
)

// Sink is the configured spreadsheet backend for one run.
type Sink struct {
	Writer sheetexport.Writer

	kind     string
	target   string
	excel    *sheetexport.Excel
	settings config.SheetSettings
}

// OpenSink builds the writer selected by settings. The sheet settings must
// already be validated.
func OpenSink(ctx context.Context, s config.SheetSettings) (*Sink, error) {
	switch s.Sink {
	case config.SinkExcel:
		x, err := sheetexport.NewExcel(s.XLSXPath)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", s.XLSXPath, err)
		}
		return &Sink{Writer: x, kind: s.Sink, target: s.XLSXPath, excel: x, settings: s}, nil
	case config.SinkGoogleSheets:
		g, err := sheetexport.NewGoogleSheets(ctx, s.CredentialsFile, s.SpreadsheetID, s.SpreadsheetName)
		if err != nil {
			return nil, err
		}
		return &Sink{Writer: g, kind: s.Sink, target: g.SpreadsheetID(), settings: s}, nil
	default:
		return nil, fmt.Errorf("%w: unknown sink %q", config.ErrInvalidSettings, s.Sink)
	}
}

func (k *Sink) Kind() string { return k.kind }

// Target identifies the destination: spreadsheet id or workbook path.
func (k *Sink) Target() string { return k.target }

// Finish saves a local workbook and, when a bucket is configured, uploads a
// snapshot of it. It returns the snapshot URI, if any.
func (k *Sink) Finish(ctx context.Context, runID string) (string, error) {
	if k.excel == nil {
		return "", nil
	}
	defer k.excel.Close()
	if err := k.excel.Save(); err != nil {
		return "", fmt.Errorf("save %s: %w", k.excel.Path(), err)
	}
	if k.settings.GCSBucket == "" {
		return "", nil
	}
	data, err := k.excel.Bytes()
	if err != nil {
		return "", err
	}
	object := sheetexport.SnapshotObjectName(k.settings.GCSPrefix, runID, time.Now())
	uri, err := sheetexport.UploadSnapshot(ctx, k.settings.GCSBucket, object, k.settings.GCSCredentials, data)
	if err != nil {
		return "", err
	}
	config.WithContext(ctx).WithFields(logrus.Fields{"uri": uri}).Info("workbook snapshot uploaded")
	return uri, nil
}
