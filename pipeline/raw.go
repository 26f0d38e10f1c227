package pipeline

import (
	"context"
	"fmt"

	"github.com/mmdatafocus/hubspot_pipeline/config"
	"github.com/mmdatafocus/hubspot_pipeline/hubspot"
	"github.com/mmdatafocus/hubspot_pipeline/sheetexport"
	"github.com/sirupsen/logrus"
)

// ExportRaw copies every deal's name, amount, stage and close date to tab,
// replacing its content. It returns the number of deals written.
func ExportRaw(ctx context.Context, src DealSource, w sheetexport.Writer, tab string) (int, error) {
	t := sheetexport.Table{Header: RawHeader}
	err := src.EachDeal(ctx, hubspot.DealQuery{Properties: hubspot.RawDealProperties}, func(d hubspot.Deal) error {
		t.Rows = append(t.Rows, rawRow(d))
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("fetch deals: %w", err)
	}
	if err := w.WriteTable(ctx, tab, t, sheetexport.Replace); err != nil {
		return 0, fmt.Errorf("write %s: %w", tab, err)
	}
	config.WithContext(ctx).WithFields(logrus.Fields{"tab": tab, "deals": len(t.Rows)}).Info("raw export finished")
	return len(t.Rows), nil
}
