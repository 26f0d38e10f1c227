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
	"github.com/mmdatafocus/hubspot_pipeline/dealgen"
	"github.com/mmdatafocus/hubspot_pipeline/funnel"
	"github.com/mmdatafocus/hubspot_pipeline/hubspot"
	"github.com/mmdatafocus/hubspot_pipeline/pipeline"
	"github.com/sirupsen/logrus"
)

func main() {
	count := flag.Int("count", 0, "Number of deals to create (default GENERATOR_DEAL_COUNT)")
	seed := flag.Uint64("seed", 0, "Random seed; 0 falls back to PIPELINE_SEED, then the clock")
	dryRun := flag.Bool("dry-run", false, "Print the deal payloads instead of creating them in HubSpot")
	flag.Parse()

	settings, err := config.LoadSettings()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	n := settings.Generator.DealCount
	if *count > 0 {
		n = *count
	}

	var creator pipeline.DealCreator
	if !*dryRun {
		client, err := hubspot.NewClientFromSettings(settings.HubSpot)
		if err != nil {
			fmt.Fprintf(os.Stderr, "hubspot client: %v\n", err)
			os.Exit(1)
		}
		creator = client
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, runID := pipeline.EnsureRunID(appctx.SetTool(ctx, "hubspot-deals-generator"))

	s := pipeline.ResolveSeed(*seed, settings.Generator.Seed)
	config.WithContext(ctx).WithFields(logrus.Fields{"seed": s, "count": n, "dry_run": *dryRun}).Info("generating deals")

	gen := dealgen.NewGenerator(funnel.NewRand(s), nil)
	res, err := pipeline.GenerateDeals(ctx, creator, gen, n, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "run %s stopped: %v\n", runID, err)
		os.Exit(1)
	}
	if !*dryRun {
		fmt.Printf("Done: %d created, %d failed\n", res.Created, res.Failed)
	}
}
