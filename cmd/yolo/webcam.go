package main

import (
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-yolo/annotate/cv"
	"github.com/nvr-ai/go-yolo/profiler"
)

const keyEscape = 27

// runWebcam reads frames from a capture device, draws detections and the frame rate onto them and
// shows them in a window until Esc or q is pressed or the process is interrupted.
func runWebcam(c *cli.Context, logger *zap.Logger) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if !c.IsSet(flagFPS) && c.String(flagConfig) == "" {
		cfg.FPSOverlay = true
	}

	ctx, cancel := signalContext(c.Context)
	defer cancel()

	timings := profiler.NewTimings(profiler.DefaultMaxSamples)
	det, err := newDetector(ctx, cfg, timings, logger)
	if err != nil {
		return err
	}
	defer det.Close()

	deviceID := c.Int(flagDevice)
	webcam, err := gocv.OpenVideoCapture(deviceID)
	if err != nil {
		return errors.Wrapf(err, "opening capture device %d", deviceID)
	}
	defer webcam.Close()

	window := gocv.NewWindow(c.String(flagWindow))
	defer window.Close()

	img := gocv.NewMat()
	defer img.Close()

	reportEvery := c.Int(flagReport)
	logger.Info("reading camera", zap.Int("device", deviceID), zap.String("model", string(cfg.Model)))

	for frames := 1; ctx.Err() == nil; frames++ {
		if ok := webcam.Read(&img); !ok {
			return errors.Errorf("cannot read device %d", deviceID)
		}
		if img.Empty() {
			continue
		}

		frame, err := img.ToImage()
		if err != nil {
			return errors.Wrap(err, "converting frame")
		}

		canvas := cv.New(&img)
		dets, err := det.Render(ctx, canvas, frame, cfg.Thresholds)
		if err != nil {
			logger.Warn("detection failed", zap.Error(err))
		} else {
			logger.Debug("frame", zap.Int("frame", frames), zap.Int("detections", len(dets)))
		}

		if reportEvery > 0 && frames%reportEvery == 0 {
			timings.Report(logger)
		}

		window.IMShow(img)
		if key := window.WaitKey(1); key == keyEscape || key == 'q' {
			break
		}
	}

	timings.Report(logger)
	return nil
}
