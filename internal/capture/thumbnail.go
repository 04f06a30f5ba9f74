package capture

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"time"

	"golang.org/x/image/draw"
)

const (
	ThumbnailWidth   = 320
	ThumbnailQuality = 85
	thumbnailMaxSeek = time.Second
)

// FrameSource decodes frames out of an encoded clip on disk.
type FrameSource interface {
	Duration(ctx context.Context, path string) (time.Duration, error)
	FrameAt(ctx context.Context, path string, at time.Duration) (image.Image, error)
}

type Thumbnailer struct {
	frames  FrameSource
	width   int
	quality int
}

func NewThumbnailer(frames FrameSource) *Thumbnailer {
	return &Thumbnailer{frames: frames, width: ThumbnailWidth, quality: ThumbnailQuality}
}

// SeekOffset is min(1s, 30% of the clip).
func SeekOffset(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	if p := d * 3 / 10; p < thumbnailMaxSeek {
		return p
	}
	return thumbnailMaxSeek
}

// Extract renders the representative frame of the clip at path as JPEG.
func (t *Thumbnailer) Extract(ctx context.Context, path string) ([]byte, error) {
	if t == nil || t.frames == nil {
		return nil, fmt.Errorf("no frame source configured")
	}

	d, err := t.frames.Duration(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("probe duration: %w", err)
	}

	frame, err := t.frames.FrameAt(ctx, path, SeekOffset(d))
	if err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}

	scaled, err := Scale(frame, t.width)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, scaled, &jpeg.Options{Quality: t.quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// Scale resizes img to width pixels wide, keeping its aspect ratio.
func Scale(img image.Image, width int) (*image.RGBA, error) {
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("empty frame")
	}

	height := (b.Dy()*width + b.Dx()/2) / b.Dx()
	if height < 1 {
		height = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst, nil
}
