package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mmdatafocus/hubspot_pipeline/appctx"
	"github.com/mmdatafocus/hubspot_pipeline/config"
	"github.com/mmdatafocus/hubspot_pipeline/dealgen"
	"github.com/mmdatafocus/hubspot_pipeline/funnel"
	"github.com/mmdatafocus/hubspot_pipeline/hubspot"
	"github.com/mmdatafocus/hubspot_pipeline/pipeline"
	"github.com/sirupsen/logrus"
)

const tool = "hubspot-pipeline-export"

func main() {
	seed := flag.Uint64("seed", 0, "Random seed; 0 falls back to PIPELINE_SEED, then the clock")
	weighted := flag.Bool("weighted", config.WeightedPaths(), "Sample stage paths from the weighted table")
	minOffset := flag.Int("min-offset", 0, "Minimum days between stages (default STAGE_OFFSET_MIN_DAYS)")
	maxOffset := flag.Int("max-offset", 0, "Maximum days between stages (default STAGE_OFFSET_MAX_DAYS)")
	strict := flag.Bool("strict-anchor", config.StrictSequenceAnchor(), "Number only deals that passed through sql")
	sinkKind := flag.String("sink", "", "Spreadsheet backend: gsheet or xlsx (default EXPORT_SINK)")
	noLock := flag.Bool("no-lock", false, "Skip the Redis run lock")
	flag.Parse()

	settings, err := config.LoadSettings()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *sinkKind != "" {
		settings.Sheets.Sink = *sinkKind
	}
	if *minOffset > 0 {
		settings.Generator.MinOffsetDays = *minOffset
	}
	if *maxOffset > 0 {
		settings.Generator.MaxOffsetDays = *maxOffset
	}
	if err := settings.RequireSheets(); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, runID := pipeline.EnsureRunID(appctx.SetTool(ctx, tool))
	log := config.WithContext(ctx)

	s := pipeline.ResolveSeed(*seed, settings.Generator.Seed)
	rnd := funnel.NewRand(s)
	builder, err := funnel.NewBuilder(rnd, settings.Generator.MinOffsetDays, settings.Generator.MaxOffsetDays)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	sampler := funnel.NewUniformSampler(rnd)
	if *weighted {
		sampler, err = funnel.NewWeightedSampler(rnd, funnel.DefaultWeights())
		if err != nil {
			fmt.Fprintf(os.Stderr, "config: %v\n", err)
			os.Exit(1)
		}
	}
	proc, err := funnel.NewProcessor(funnel.ProcessorConfig{
		Sampler: sampler,
		Builder: builder,
		Reps:    dealgen.SalesReps(),
		Rand:    rnd,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	client, err := hubspot.NewClientFromSettings(settings.HubSpot)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hubspot client: %v\n", err)
		os.Exit(1)
	}

	if err := config.ConnectRedis(ctx, settings.Redis.Address, settings.Redis.Password); err != nil {
		log.WithError(err).Warn("redis unavailable; running without company cache or run lock")
	}
	defer config.CloseRedis()
	defer config.ClosePubSub()

	sink, err := pipeline.OpenSink(ctx, settings.Sheets)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open sink: %v\n", err)
		os.Exit(1)
	}

	release := func() {}
	if !*noLock {
		release, err = pipeline.ObtainRunLock(ctx, sink.Target(), settings.Redis.LockTTL)
		if errors.Is(err, pipeline.ErrExportRunning) {
			fmt.Fprintf(os.Stderr, "❌ %v (%s)\n", err, sink.Target())
			os.Exit(1)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "run lock: %v\n", err)
			os.Exit(1)
		}
	}

	log.WithFields(logrus.Fields{
		"seed":          s,
		"weighted":      *weighted,
		"strict_anchor": *strict,
		"min_offset":    settings.Generator.MinOffsetDays,
		"max_offset":    settings.Generator.MaxOffsetDays,
		"sink":          sink.Kind(),
	}).Info("starting pipeline export")

	exporter := &pipeline.Exporter{
		Source:      client,
		Writer:      sink.Writer,
		Processor:   proc,
		Sequencer:   funnel.NewSequencer(*strict),
		ProfileRand: rnd,
		Tabs: pipeline.Tabs{
			Deal:    settings.Sheets.DealTab,
			Company: settings.Sheets.CompanyTab,
			Owner:   settings.Sheets.OwnerTab,
		},
		WarnNearDuplicates: config.WarnNearDuplicateCompanies(),
	}
	sum, err := exporter.Run(ctx)
	if err == nil {
		sum.Snapshot, err = sink.Finish(ctx, runID)
	}
	release()
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Export failed: %v\n", err)
		os.Exit(1)
	}

	if err := pipeline.PublishSummary(ctx, settings, pipeline.SummaryEvent{Tool: tool, Sink: sink.Kind(), Summary: sum}); err != nil {
		log.WithError(err).Warn("publish export summary")
	}

	fmt.Printf("✅ All three tabs written: %d deals (%d skipped), %d stage rows, %d companies, %d sales reps.\n",
		sum.DealsProcessed, sum.DealsSkipped, sum.StageRows, sum.Companies, sum.Owners)
}
