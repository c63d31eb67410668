package main

import (
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/nvr-ai/go-yolo/annotate/raster"
	"github.com/nvr-ai/go-yolo/profiler"
	"github.com/nvr-ai/go-yolo/util"
)

// runImages detects objects in every input image and writes the annotated copies to the output
// directory under their original file names.
func runImages(c *cli.Context, logger *zap.Logger) error {
	if c.NArg() == 0 {
		return errors.New("at least one image or directory is required")
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	files, err := util.ResolveInputs(c.Args().Slice())
	if err != nil {
		return err
	}

	outDir := c.String(flagOutput)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return errors.Wrapf(err, "creating output directory %s", outDir)
	}

	ctx, cancel := signalContext(c.Context)
	defer cancel()

	timings := profiler.NewTimings(profiler.DefaultMaxSamples)
	det, err := newDetector(ctx, cfg, timings, logger)
	if err != nil {
		return err
	}
	defer det.Close()

	classes := cfg.ClassSet()
	for _, file := range files {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		img, err := imaging.Open(file.Path, imaging.AutoOrientation(true))
		if err != nil {
			logger.Warn("skipping unreadable image", zap.String("path", file.Path), zap.Error(err))
			continue
		}

		canvas, frame := raster.FromImage(img)
		dets, err := det.Render(ctx, canvas, frame, cfg.Thresholds)
		if err != nil {
			return errors.Wrapf(err, "detecting %s", file.Path)
		}

		for _, d := range dets {
			logger.Debug("detection",
				zap.String("path", file.Path),
				zap.String("class", classes.Name(d.Label)),
				zap.Float32("prob", d.Prob),
				zap.Float32("x", d.Box.X),
				zap.Float32("y", d.Box.Y),
				zap.Float32("width", d.Box.Width),
				zap.Float32("height", d.Box.Height))
		}

		out := filepath.Join(outDir, filepath.Base(file.Path))
		if err := imaging.Save(frame, out); err != nil {
			return errors.Wrapf(err, "saving %s", out)
		}
		logger.Info("annotated image",
			zap.String("path", file.Path),
			zap.String("output", out),
			zap.Int("detections", len(dets)))
	}

	timings.Report(logger)
	return nil
}
