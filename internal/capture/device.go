// Package capture records the short video pitch attached to an application
// and derives a still thumbnail from it.
package capture

import (
	"context"
	"errors"
	"strings"
	"sync"
)

var (
	ErrPermissionDenied = errors.New("camera or microphone permission denied")
	ErrNoDevice         = errors.New("capture device not found")
)

type TrackState string

const (
	TrackLive  TrackState = "live"
	TrackEnded TrackState = "ended"
)

// Constraints describes the media a Device is asked for.
type Constraints struct {
	Width      int
	Height     int
	FacingMode string
	Audio      bool
}

func DefaultConstraints() Constraints {
	return Constraints{Width: 1280, Height: 720, FacingMode: "user", Audio: true}
}

type Track interface {
	Kind() string
	Stop()
	State() TrackState
}

// Stream is an acquired camera/microphone handle.
type Stream interface {
	Tracks() []Track
	// Record encodes into mimeType until stop is closed. The returned channel
	// yields encoded chunks and is closed once the encoder has flushed.
	Record(mimeType string, stop <-chan struct{}) (<-chan []byte, error)
}

type Device interface {
	Open(ctx context.Context, c Constraints) (Stream, error)
	Supports(mimeType string) bool
}

// PreferredMimeTypes is probed in order; FallbackMimeType is used when none match.
var PreferredMimeTypes = []string{
	"video/mp4;codecs=h264",
	"video/webm;codecs=vp9",
}

const FallbackMimeType = "video/webm"

func NegotiateMimeType(d Device) string {
	for _, mime := range PreferredMimeTypes {
		if d.Supports(mime) {
			return mime
		}
	}
	return FallbackMimeType
}

// ExtensionFor picks the object extension for an encoded clip.
func ExtensionFor(mimeType string) string {
	if strings.Contains(mimeType, "mp4") {
		return "mp4"
	}
	return "webm"
}

// releaser stops every track of a stream at most once.
type releaser struct {
	once   sync.Once
	stream Stream
}

func (r *releaser) release() {
	if r == nil {
		return
	}
	r.once.Do(func() {
		if r.stream == nil {
			return
		}
		for _, t := range r.stream.Tracks() {
			t.Stop()
		}
	})
}
