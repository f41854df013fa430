// Package capture takes scrolling screenshots of a page and stitches them
// into one tall image for the model.
package capture

import (
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"
)

// Scroller is the part of a browser driver needed for scrolling captures.
type Scroller interface {
	Screenshot() ([]byte, error)
	ScrollByViewport() error
	ScrollOffset() (float64, error)
}

type Capturer struct {
	log    *zap.Logger
	settle time.Duration
	sleep  func(time.Duration)
}

func New(log *zap.Logger, settle time.Duration) *Capturer {
	return &Capturer{
		log:    log.Named("capture"),
		settle: settle,
		sleep:  time.Sleep,
	}
}

// Scroll saves one screenshot per viewport until the page stops scrolling.
// Files are named "<prefix>_<n>.png"; at least one is always written.
func (c *Capturer) Scroll(s Scroller, prefix string) ([]string, error) {
	if dir := filepath.Dir(prefix); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create screenshot dir: %w", err)
		}
	}

	var paths []string
	var last float64

	for {
		name := fmt.Sprintf("%s_%d.png", prefix, len(paths))
		buf, err := s.Screenshot()
		if err != nil {
			return paths, err
		}
		if err := os.WriteFile(name, buf, 0o644); err != nil {
			return paths, fmt.Errorf("write screenshot: %w", err)
		}
		paths = append(paths, name)
		c.log.Info("Screenshot saved", zap.String("file", name))

		if err := s.ScrollByViewport(); err != nil {
			return paths, fmt.Errorf("scroll failed: %w", err)
		}
		c.sleep(c.settle)

		offset, err := s.ScrollOffset()
		if err != nil {
			return paths, err
		}
		if offset == last {
			break
		}
		last = offset
	}

	return paths, nil
}

// Stitch stacks the images top to bottom on a black canvas as wide as the widest one.
func (c *Capturer) Stitch(paths []string, out string) error {
	if len(paths) == 0 {
		return errors.New("no images to stitch")
	}

	imgs := make([]image.Image, 0, len(paths))
	width, height := 0, 0
	for _, p := range paths {
		img, err := imaging.Open(p)
		if err != nil {
			return fmt.Errorf("open %s: %w", p, err)
		}
		b := img.Bounds()
		if b.Dx() > width {
			width = b.Dx()
		}
		height += b.Dy()
		imgs = append(imgs, img)
	}

	canvas := imaging.New(width, height, color.Black)
	y := 0
	for _, img := range imgs {
		canvas = imaging.Paste(canvas, img, image.Pt(0, y))
		y += img.Bounds().Dy()
	}

	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return fmt.Errorf("create stitched dir: %w", err)
	}
	if err := imaging.Save(canvas, out); err != nil {
		return fmt.Errorf("save stitched image: %w", err)
	}

	c.log.Info("Stitched image saved", zap.String("file", out), zap.Int("parts", len(paths)))
	return nil
}

func EncodeFile(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

func DataURL(mime, b64 string) string {
	return "data:" + mime + ";base64," + b64
}
