package capture

import (
	"context"
	"errors"
	"image"
	"image/color"
	"sync"
	"time"
)

type fakeTrack struct {
	kind string
	mu   sync.Mutex
	stop int
}

func (t *fakeTrack) Kind() string { return t.kind }

func (t *fakeTrack) Stop() {
	t.mu.Lock()
	t.stop++
	t.mu.Unlock()
}

func (t *fakeTrack) State() TrackState {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stop > 0 {
		return TrackEnded
	}
	return TrackLive
}

type fakeStream struct {
	tracks    []Track
	recordErr error
}

func (s *fakeStream) Tracks() []Track { return s.tracks }

// Record emits one chunk immediately and a trailing chunk once stop closes.
func (s *fakeStream) Record(mimeType string, stop <-chan struct{}) (<-chan []byte, error) {
	if s.recordErr != nil {
		return nil, s.recordErr
	}
	out := make(chan []byte, 2)
	out <- []byte("chunk-1|")
	go func() {
		<-stop
		out <- []byte("chunk-2")
		close(out)
	}()
	return out, nil
}

type fakeDevice struct {
	openErr   error
	recordErr error
	supported map[string]bool

	mu      sync.Mutex
	streams []*fakeStream
}

func (d *fakeDevice) Open(ctx context.Context, c Constraints) (Stream, error) {
	if d.openErr != nil {
		return nil, d.openErr
	}
	s := &fakeStream{
		tracks:    []Track{&fakeTrack{kind: "video"}, &fakeTrack{kind: "audio"}},
		recordErr: d.recordErr,
	}
	d.mu.Lock()
	d.streams = append(d.streams, s)
	d.mu.Unlock()
	return s, nil
}

func (d *fakeDevice) Supports(mime string) bool { return d.supported[mime] }

func (d *fakeDevice) lastStream() *fakeStream {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.streams) == 0 {
		return nil
	}
	return d.streams[len(d.streams)-1]
}

type fakeFrames struct {
	duration time.Duration
	err      error
	seekedAt time.Duration
	w, h     int
}

func (f *fakeFrames) Duration(ctx context.Context, path string) (time.Duration, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.duration, nil
}

func (f *fakeFrames) FrameAt(ctx context.Context, path string, at time.Duration) (image.Image, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.seekedAt = at
	img := image.NewRGBA(image.Rect(0, 0, f.w, f.h))
	for x := 0; x < f.w; x++ {
		for y := 0; y < f.h; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 40, B: 40, A: 255})
		}
	}
	return img, nil
}

var errFrames = errors.New("decoder unavailable")
