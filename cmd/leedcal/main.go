// Command leedcal estimates the calibration constant r' of a LEED instrument
// from a directory of diffraction images and their beam-voltage table.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/surfacelab/leedcal/internal/config"
	"github.com/surfacelab/leedcal/internal/detect"
	"github.com/surfacelab/leedcal/internal/leed"
	"github.com/surfacelab/leedcal/internal/leedplot"
	"github.com/surfacelab/leedcal/internal/report"
	"github.com/surfacelab/leedcal/internal/version"
	"github.com/surfacelab/leedcal/internal/voltages"
)

var (
	imagesDir    = flag.String("images-dir", "", "Directory of LEED screen images (required)")
	voltagesPath = flag.String("voltages", "", "CSV of image filename, beam voltage pairs (required)")
	kind         = flag.String("kind", "", "Base material: Au, Ag or Cu (required)")
	surface      = flag.String("surface", "", "Base surface: 110 or 111 (required)")
	configPath   = flag.String("config", "", "Optional JSON tuning config")
	plotPath     = flag.String("plot-output", "", "Write a scatter plot of the fit to this path (.png or .svg)")
	reportPath   = flag.String("report-output", "", "Write an interactive HTML report to this path")
	manualR      = flag.Float64("manual-r", 0, "Hand-computed r for comparison in the plot legend")
	showVersion  = flag.Bool("version", false, "Print version information and exit")
)

func main() {
	flag.Parse()
	if *showVersion {
		fmt.Printf("leedcal %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return
	}
	if err := run(); err != nil {
		log.Fatalf("leedcal: %v", err)
	}
}

func run() error {
	if *imagesDir == "" || *voltagesPath == "" || *kind == "" || *surface == "" {
		flag.Usage()
		os.Exit(2)
	}

	base := leed.BaseType{Kind: leed.Kind(*kind), Surface: leed.Surface(*surface)}
	if err := base.Validate(); err != nil {
		return err
	}

	cfg := config.EmptyTuningConfig()
	if *configPath != "" {
		loaded, err := config.LoadTuningConfig(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	images, err := voltages.Load(*imagesDir, *voltagesPath)
	if err != nil {
		return err
	}

	run, err := leed.NewRun(base,
		leed.WithClusterParams(cfg.ClusterParams()),
		leed.WithFitParams(cfg.FitParams()),
		leed.WithReferenceScope(cfg.GetReferenceScope()),
	)
	if err != nil {
		return err
	}

	detector := detect.New(cfg.DetectParams())
	result, err := run.Calibrate(images, detector)
	if err != nil {
		return err
	}

	fmt.Printf("r: %v\n", result.RPrime)

	if *plotPath != "" {
		if err := leedplot.SaveScatter(run.Samples, result, base, *manualR, *plotPath); err != nil {
			return err
		}
		log.Printf("saved plot to %s", *plotPath)
	}
	if *reportPath != "" {
		if err := report.WriteHTML(run.Samples, result, base, *reportPath); err != nil {
			return err
		}
		log.Printf("saved report to %s", *reportPath)
	}
	return nil
}
