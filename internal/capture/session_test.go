package capture

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"
)

func newTestSession(t *testing.T, d Device, opts ...Option) *Session {
	t.Helper()
	opts = append([]Option{WithTempDir(t.TempDir())}, opts...)
	s := NewSession(d, opts...)
	t.Cleanup(s.Close)
	return s
}

func allEnded(t *testing.T, s *fakeStream) {
	t.Helper()
	for _, tr := range s.tracks {
		if tr.State() != TrackEnded {
			t.Errorf("%s track still live", tr.Kind())
		}
	}
}

func TestStartPermissionDeniedStaysIdle(t *testing.T) {
	d := &fakeDevice{openErr: ErrPermissionDenied}
	s := newTestSession(t, d)

	err := s.Start(context.Background())
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("Start() error = %v, want ErrPermissionDenied", err)
	}
	if s.State() != StateIdle {
		t.Errorf("state = %s, want idle", s.State())
	}
}

func TestStartRecorderFailureReleasesStream(t *testing.T) {
	d := &fakeDevice{recordErr: errors.New("encoder crashed")}
	s := newTestSession(t, d)

	if err := s.Start(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	allEnded(t, d.lastStream())
	if s.State() != StateIdle {
		t.Errorf("state = %s, want idle", s.State())
	}
}

func TestStartTwiceIsBusy(t *testing.T) {
	d := &fakeDevice{}
	s := newTestSession(t, d, WithTick(time.Hour))

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := s.Start(context.Background()); !errors.Is(err, ErrBusy) {
		t.Errorf("second Start() error = %v, want ErrBusy", err)
	}
}

func TestAutoStopAtZero(t *testing.T) {
	d := &fakeDevice{}
	s := newTestSession(t, d, WithTick(time.Millisecond))

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	clip, err := s.Wait(ctx)
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}

	if clip.TimeLeft != 0 {
		t.Errorf("TimeLeft = %d, want 0", clip.TimeLeft)
	}
	if clip.Duration() != MaxDuration {
		t.Errorf("Duration() = %d, want %d", clip.Duration(), MaxDuration)
	}
	if string(clip.Data) != "chunk-1|chunk-2" {
		t.Errorf("Data = %q", clip.Data)
	}
	if s.State() != StateReady {
		t.Errorf("state = %s, want ready", s.State())
	}
	allEnded(t, d.lastStream())
}

func TestManualStopKeepsRemainingTime(t *testing.T) {
	d := &fakeDevice{supported: map[string]bool{"video/mp4;codecs=h264": true}}
	s := newTestSession(t, d, WithTick(time.Hour))

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	clip, err := s.Stop(context.Background())
	if err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	if clip.Duration() != 0 {
		t.Errorf("Duration() = %d, want 0", clip.Duration())
	}
	if clip.MimeType != "video/mp4;codecs=h264" || clip.Extension() != "mp4" {
		t.Errorf("mime = %s ext = %s", clip.MimeType, clip.Extension())
	}
	if clip.PreviewPath == "" {
		t.Fatal("expected preview file")
	}
	if _, err := os.Stat(clip.PreviewPath); err != nil {
		t.Errorf("preview missing: %v", err)
	}
}

func TestStopWithoutRecording(t *testing.T) {
	s := newTestSession(t, &fakeDevice{})
	if _, err := s.Stop(context.Background()); !errors.Is(err, ErrNotRecording) {
		t.Errorf("Stop() error = %v, want ErrNotRecording", err)
	}
}

func TestRetakeReleasesAndRemovesPreview(t *testing.T) {
	d := &fakeDevice{}
	s := newTestSession(t, d, WithTick(time.Hour))

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	clip, err := s.Stop(context.Background())
	if err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	preview := clip.PreviewPath

	s.Retake()

	if s.State() != StateIdle {
		t.Errorf("state = %s, want idle", s.State())
	}
	if s.TimeLeft() != MaxDuration {
		t.Errorf("TimeLeft() = %d, want %d", s.TimeLeft(), MaxDuration)
	}
	if _, err := os.Stat(preview); !os.IsNotExist(err) {
		t.Errorf("preview still present: %v", err)
	}
	allEnded(t, d.lastStream())

	if err := s.Start(context.Background()); err != nil {
		t.Errorf("Start() after Retake error = %v", err)
	}
}

func TestCloseWhileRecordingEndsTracks(t *testing.T) {
	d := &fakeDevice{}
	s := NewSession(d, WithTempDir(t.TempDir()), WithTick(time.Hour))

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	s.Close()
	s.Close()

	allEnded(t, d.lastStream())
	if err := s.Start(context.Background()); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("Start() after Close error = %v, want ErrSessionClosed", err)
	}
}

func TestThumbnailFailureIsSwallowed(t *testing.T) {
	d := &fakeDevice{}
	frames := &fakeFrames{err: errFrames}
	s := newTestSession(t, d, WithTick(time.Hour), WithThumbnailer(NewThumbnailer(frames)))

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	clip, err := s.Stop(context.Background())
	if err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if clip.Thumbnail != nil {
		t.Error("expected no thumbnail")
	}
	if s.State() != StateReady {
		t.Errorf("state = %s, want ready", s.State())
	}
}

func TestThumbnailAttachedWhenAvailable(t *testing.T) {
	d := &fakeDevice{}
	frames := &fakeFrames{duration: 8 * time.Second, w: 1280, h: 720}
	s := newTestSession(t, d, WithTick(time.Hour), WithThumbnailer(NewThumbnailer(frames)))

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	clip, err := s.Stop(context.Background())
	if err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if len(clip.Thumbnail) == 0 {
		t.Error("expected thumbnail bytes")
	}
}

func TestDurationFromTimeLeft(t *testing.T) {
	tests := []struct {
		timeLeft int
		want     int
	}{
		{10, 0},
		{7, 3},
		{0, 10},
		{-3, 10},
		{15, 0},
	}
	for _, tt := range tests {
		if got := DurationFromTimeLeft(tt.timeLeft); got != tt.want {
			t.Errorf("DurationFromTimeLeft(%d) = %d, want %d", tt.timeLeft, got, tt.want)
		}
	}
}
