// Package main is the yolo command line tool: object detection on image files and live cameras.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/nvr-ai/go-yolo/config"
	"github.com/nvr-ai/go-yolo/detector"
	"github.com/nvr-ai/go-yolo/inference"
	"github.com/nvr-ai/go-yolo/models"
	"github.com/nvr-ai/go-yolo/models/model"
	"github.com/nvr-ai/go-yolo/profiler"
)

const (
	// Flags.
	flagConfig     = "config"
	flagDebug      = "debug"
	flagModel      = "model"
	flagModelDir   = "model-dir"
	flagLibraryDir = "library-dir"
	flagGPU        = "gpu"
	flagConfidence = "confidence"
	flagIoU        = "iou"
	flagAgnostic   = "agnostic"
	flagFPS        = "fps"
	flagOutput     = "output"
	flagDevice     = "device"
	flagWindow     = "window"
	flagReport     = "report-every"
)

func main() {
	var logger *zap.Logger

	app := &cli.App{
		Name:  "yolo",
		Usage: "detect objects with YOLO models",
		Flags: globalFlags(),
		Before: func(c *cli.Context) error {
			var err error
			if c.Bool(flagDebug) {
				logger, err = zap.NewDevelopment()
			} else {
				logger, err = zap.NewProduction()
			}
			return err
		},
		After: func(c *cli.Context) error {
			if logger != nil {
				_ = logger.Sync()
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "image",
				Usage:     "annotate image files or directories of frames",
				ArgsUsage: "<path>...",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    flagOutput,
						Aliases: []string{"o"},
						Value:   "out",
						Usage:   "directory annotated images are written to",
					},
				},
				Action: func(c *cli.Context) error {
					return runImages(c, logger)
				},
			},
			{
				Name:  "webcam",
				Usage: "run live detection on a capture device",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  flagDevice,
						Usage: "capture device id",
					},
					&cli.StringFlag{
						Name:  flagWindow,
						Value: "yolo",
						Usage: "display window title",
					},
					&cli.IntFlag{
						Name:  flagReport,
						Value: 300,
						Usage: "log stage timings every `N` frames, 0 disables",
					},
				},
				Action: func(c *cli.Context) error {
					return runWebcam(c, logger)
				},
			},
			benchCommand(func() *zap.Logger { return logger }),
			{
				Name:  "models",
				Usage: "list the registered model variants",
				Action: func(c *cli.Context) error {
					for id, v := range models.Variants() {
						fmt.Fprintf(c.App.Writer, "%d\t%s\t%s\t%d\n", id, v.Name, v.Format, v.TargetSize)
					}
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "yolo: %v\n", err)
		os.Exit(1)
	}
}

// globalFlags are shared by every command.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    flagConfig,
			Aliases: []string{"c"},
			Usage:   "load configuration from `FILE`",
		},
		&cli.BoolFlag{
			Name:  flagDebug,
			Usage: "enable debug logging",
		},
		&cli.StringFlag{
			Name:    flagModel,
			Aliases: []string{"m"},
			Usage:   "model variant, one of yolov13n, yolov13s, yolov5n",
		},
		&cli.StringFlag{
			Name:  flagModelDir,
			Usage: "directory holding the model files",
		},
		&cli.StringFlag{
			Name:    flagLibraryDir,
			Usage:   "directory holding the ONNX Runtime shared library",
			EnvVars: []string{"ONNXRUNTIME_LIBRARY_DIR"},
		},
		&cli.BoolFlag{
			Name:  flagGPU,
			Usage: "run inference on the GPU",
		},
		&cli.Float64Flag{
			Name:  flagConfidence,
			Usage: "minimum detection score",
		},
		&cli.Float64Flag{
			Name:  flagIoU,
			Usage: "NMS overlap threshold",
		},
		&cli.BoolFlag{
			Name:  flagAgnostic,
			Usage: "suppress overlapping boxes across classes",
		},
		&cli.BoolFlag{
			Name:  flagFPS,
			Usage: "draw the frame rate",
		},
	}
}

// loadConfig reads the configuration file, when given, and applies flag overrides.
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Default()
	if path := c.String(flagConfig); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	if c.IsSet(flagModel) {
		cfg.Model = model.Name(c.String(flagModel))
		cfg.CustomModel = nil
	}
	if c.IsSet(flagModelDir) {
		cfg.ModelDir = c.String(flagModelDir)
	}
	if c.IsSet(flagLibraryDir) {
		cfg.LibraryDir = c.String(flagLibraryDir)
	}
	if c.IsSet(flagGPU) {
		cfg.UseGPU = c.Bool(flagGPU)
	}
	if c.IsSet(flagConfidence) {
		cfg.Thresholds.Confidence = float32(c.Float64(flagConfidence))
	}
	if c.IsSet(flagIoU) {
		cfg.Thresholds.IoU = float32(c.Float64(flagIoU))
	}
	if c.IsSet(flagAgnostic) {
		cfg.AgnosticNMS = c.Bool(flagAgnostic)
	}
	if c.IsSet(flagFPS) {
		cfg.FPSOverlay = c.Bool(flagFPS)
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// newDetector builds and loads a detector. A missing GPU is not fatal: the detector stays
// unloaded and renders the unsupported banner.
func newDetector(ctx context.Context, cfg config.Config, timings *profiler.Timings, logger *zap.Logger) (*detector.Detector, error) {
	opts := append(cfg.DetectorOptions(),
		detector.WithLogger(logger),
		detector.WithTimings(timings),
		detector.WithEngineFactory(inference.ORTFactory(inference.ORTArgs{
			LibraryDir: cfg.LibraryDir,
			Logger:     logger,
		})),
	)
	det := detector.New(opts...)

	if err := det.Load(ctx, cfg.LoadArgs()); err != nil {
		if errors.Is(err, detector.ErrAcceleratorUnavailable) {
			return det, nil
		}
		_ = det.Close()
		return nil, err
	}
	return det, nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
