package main

import (
	"time"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/nvr-ai/go-yolo/benchmark"
	"github.com/nvr-ai/go-yolo/detector"
	"github.com/nvr-ai/go-yolo/inference"
	"github.com/nvr-ai/go-yolo/profiler"
	"github.com/nvr-ai/go-yolo/util"
)

const (
	flagIterations = "iterations"
	flagWarmup     = "warmup"
	flagAllModels  = "all-models"
)

func benchCommand(logger func() *zap.Logger) *cli.Command {
	return &cli.Command{
		Name:      "bench",
		Usage:     "measure detection throughput on sample frames",
		ArgsUsage: "<path>...",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  flagIterations,
				Value: 100,
				Usage: "timed runs per scenario",
			},
			&cli.IntFlag{
				Name:  flagWarmup,
				Value: 10,
				Usage: "untimed runs per scenario",
			},
			&cli.BoolFlag{
				Name:  flagAllModels,
				Usage: "benchmark every registered model at 1280x720",
			},
			&cli.StringFlag{
				Name:    flagOutput,
				Aliases: []string{"o"},
				Value:   "bench",
				Usage:   "directory results are written to",
			},
		},
		Action: func(c *cli.Context) error {
			return runBench(c, logger())
		},
	}
}

// runBench runs a resolution sweep for the configured model, or a model sweep, over the given
// frames and writes JSON and CSV results.
func runBench(c *cli.Context, logger *zap.Logger) error {
	if c.NArg() == 0 {
		return errors.New("at least one sample image or directory is required")
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	files, err := util.ResolveInputs(c.Args().Slice())
	if err != nil {
		return err
	}

	factory := inference.ORTFactory(inference.ORTArgs{LibraryDir: cfg.LibraryDir, Logger: logger})
	suite := benchmark.NewSuite(benchmark.NewSuiteArgs{
		Thresholds: cfg.Thresholds,
		Logger:     logger,
		Detector: func(timings *profiler.Timings) *detector.Detector {
			opts := append(cfg.DetectorOptions(),
				detector.WithLogger(logger),
				detector.WithTimings(timings),
				detector.WithEngineFactory(factory))
			return detector.New(opts...)
		},
	})

	for _, file := range files {
		img, err := imaging.Open(file.Path, imaging.AutoOrientation(true))
		if err != nil {
			logger.Warn("skipping unreadable image", zap.String("path", file.Path), zap.Error(err))
			continue
		}
		suite.AddFrames(img)
	}

	iterations, warmups := c.Int(flagIterations), c.Int(flagWarmup)
	var scenarios []benchmark.Scenario
	if c.Bool(flagAllModels) {
		scenarios = benchmark.ModelSweep(benchmark.NewResolution(1280, 720), iterations, warmups)
	} else {
		scenarios = benchmark.ResolutionSweep(cfg.Model, benchmark.CommonResolutions, iterations, warmups)
	}
	for i := range scenarios {
		scenarios[i].UseGPU = cfg.UseGPU
	}
	suite.AddScenario(scenarios...)

	ctx, cancel := signalContext(c.Context)
	defer cancel()

	if _, err := suite.RunAllScenarios(ctx); err != nil {
		return err
	}

	jsonPath, csvPath, err := suite.SaveResults(c.String(flagOutput), time.Now())
	if err != nil {
		return err
	}
	logger.Info("benchmark results saved", zap.String("results", jsonPath), zap.String("summary", csvPath))
	return nil
}
