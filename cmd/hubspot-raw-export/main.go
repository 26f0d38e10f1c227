package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mmdatafocus/hubspot_pipeline/appctx"
	"github.com/mmdatafocus/hubspot_pipeline/config"
	"github.com/mmdatafocus/hubspot_pipeline/hubspot"
	"github.com/mmdatafocus/hubspot_pipeline/pipeline"
)

func main() {
	tab := flag.String("tab", "", "Destination tab (default SHEET_RAW_TAB)")
	sinkKind := flag.String("sink", "", "Spreadsheet backend: gsheet or xlsx (default EXPORT_SINK)")
	flag.Parse()

	settings, err := config.LoadSettings()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *sinkKind != "" {
		settings.Sheets.Sink = *sinkKind
	}
	if *tab != "" {
		settings.Sheets.RawTab = *tab
	}
	if err := settings.RequireSheets(); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	client, err := hubspot.NewClientFromSettings(settings.HubSpot)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hubspot client: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, runID := pipeline.EnsureRunID(appctx.SetTool(ctx, "hubspot-raw-export"))

	sink, err := pipeline.OpenSink(ctx, settings.Sheets)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open sink: %v\n", err)
		os.Exit(1)
	}

	n, err := pipeline.ExportRaw(ctx, client, sink.Writer, settings.Sheets.RawTab)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Export failed: %v\n", err)
		os.Exit(1)
	}
	if _, err := sink.Finish(ctx, runID); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Export failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✅ Export complete. %d deals written to %q.\n", n, settings.Sheets.RawTab)
}
