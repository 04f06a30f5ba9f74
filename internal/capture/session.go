package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"
)

// MaxDuration is the hard cap on a recording, in seconds.
const MaxDuration = 10

type State string

const (
	StateIdle      State = "idle"
	StateRecording State = "recording"
	StateStopped   State = "stopped" // encoded, thumbnail pending
	StateReady     State = "ready"
)

var (
	ErrBusy          = errors.New("capture session is not idle")
	ErrNotRecording  = errors.New("capture session has nothing recorded")
	ErrSessionClosed = errors.New("capture session closed")
)

// Clip is a finished recording.
type Clip struct {
	Data        []byte
	MimeType    string
	TimeLeft    int
	PreviewPath string
	Thumbnail   []byte
}

// Duration is the recorded length in whole seconds, clamped to [0, MaxDuration].
func (c *Clip) Duration() int {
	return DurationFromTimeLeft(c.TimeLeft)
}

func (c *Clip) Extension() string {
	return ExtensionFor(c.MimeType)
}

func DurationFromTimeLeft(timeLeft int) int {
	d := MaxDuration - timeLeft
	if d < 0 {
		return 0
	}
	if d > MaxDuration {
		return MaxDuration
	}
	return d
}

type Option func(*Session)

// WithTick overrides the countdown interval (one second by default).
func WithTick(d time.Duration) Option {
	return func(s *Session) { s.tick = d }
}

func WithThumbnailer(t *Thumbnailer) Option {
	return func(s *Session) { s.thumbs = t }
}

// WithTempDir sets where preview files are written.
func WithTempDir(dir string) Option {
	return func(s *Session) { s.tempDir = dir }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.log = l }
}

// Session walks Idle -> Recording -> Stopped -> Ready for one clip at a time.
type Session struct {
	device  Device
	thumbs  *Thumbnailer
	tick    time.Duration
	tempDir string
	log     *slog.Logger

	mu       sync.Mutex
	state    State
	closed   bool
	timeLeft int
	stopped  bool
	stopCh   chan struct{}
	stopOnce *sync.Once
	done     chan struct{}
	rel      *releaser
	clip     *Clip
}

func NewSession(device Device, opts ...Option) *Session {
	s := &Session{
		device:   device,
		tick:     time.Second,
		log:      slog.Default(),
		state:    StateIdle,
		timeLeft: MaxDuration,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) TimeLeft() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timeLeft
}

// Start acquires the device and begins recording. A denied permission
// leaves the session Idle so the caller can retry or continue without video.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}
	if s.state != StateIdle {
		return ErrBusy
	}

	stream, err := s.device.Open(ctx, DefaultConstraints())
	if err != nil {
		if errors.Is(err, ErrPermissionDenied) {
			return err
		}
		return fmt.Errorf("open capture device: %w", err)
	}
	rel := &releaser{stream: stream}

	mime := NegotiateMimeType(s.device)
	stopCh := make(chan struct{})
	chunks, err := stream.Record(mime, stopCh)
	if err != nil {
		rel.release()
		return fmt.Errorf("start recorder: %w", err)
	}

	s.state = StateRecording
	s.timeLeft = MaxDuration
	s.stopped = false
	s.stopCh = stopCh
	s.stopOnce = &sync.Once{}
	s.done = make(chan struct{})
	s.rel = rel
	s.clip = nil

	go s.countdown(stopCh, s.done)
	go s.collect(chunks, mime, rel, s.done)

	s.log.Debug("recording started", "mime_type", mime)
	return nil
}

func (s *Session) countdown(stop <-chan struct{}, done <-chan struct{}) {
	t := time.NewTicker(s.tick)
	defer t.Stop()

	for {
		select {
		case <-stop:
			return
		case <-done:
			return
		case <-t.C:
			s.mu.Lock()
			if s.stopped {
				s.mu.Unlock()
				return
			}
			s.timeLeft--
			expired := s.timeLeft <= 0
			if expired {
				s.timeLeft = 0
				s.triggerStopLocked()
			}
			s.mu.Unlock()
			if expired {
				return
			}
		}
	}
}

// triggerStopLocked freezes the countdown and signals the recorder. Callers hold s.mu.
func (s *Session) triggerStopLocked() {
	if s.stopped || s.stopOnce == nil {
		return
	}
	s.stopped = true
	s.stopOnce.Do(func() { close(s.stopCh) })
}

func (s *Session) collect(chunks <-chan []byte, mime string, rel *releaser, done chan struct{}) {
	defer close(done)

	var buf bytes.Buffer
	for chunk := range chunks {
		buf.Write(chunk)
	}
	rel.release()

	s.mu.Lock()
	clip := &Clip{Data: buf.Bytes(), MimeType: mime, TimeLeft: s.timeLeft}
	s.state = StateStopped
	s.clip = clip
	s.mu.Unlock()

	if path, err := s.writePreview(clip); err != nil {
		s.log.Warn("preview unavailable", "error", err)
	} else {
		clip.PreviewPath = path
	}

	if clip.PreviewPath != "" && s.thumbs != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		thumb, err := s.thumbs.Extract(ctx, clip.PreviewPath)
		cancel()
		if err != nil {
			s.log.Warn("thumbnail extraction failed, continuing without", "error", err)
		} else {
			clip.Thumbnail = thumb
		}
	}

	s.mu.Lock()
	s.state = StateReady
	s.mu.Unlock()
}

func (s *Session) writePreview(clip *Clip) (string, error) {
	if len(clip.Data) == 0 {
		return "", fmt.Errorf("empty recording")
	}
	f, err := os.CreateTemp(s.tempDir, "pitch-*."+clip.Extension())
	if err != nil {
		return "", err
	}
	if _, err := f.Write(clip.Data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

// Stop ends the recording early (or collects an auto-stopped one) and
// returns the finished clip once its thumbnail attempt has settled.
func (s *Session) Stop(ctx context.Context) (*Clip, error) {
	s.mu.Lock()
	if s.state == StateIdle || s.done == nil {
		s.mu.Unlock()
		return nil, ErrNotRecording
	}
	s.triggerStopLocked()
	s.mu.Unlock()

	return s.Wait(ctx)
}

// Wait blocks until the current recording is Ready.
func (s *Session) Wait(ctx context.Context) (*Clip, error) {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done == nil {
		return nil, ErrNotRecording
	}

	select {
	case <-done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clip == nil {
		return nil, ErrNotRecording
	}
	return s.clip, nil
}

// Retake discards the clip and its preview and returns to Idle.
func (s *Session) Retake() {
	s.discard()
}

// Close tears the session down from any state. It is safe to call repeatedly.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.discard()
}

func (s *Session) discard() {
	s.mu.Lock()
	s.triggerStopLocked()
	done := s.done
	rel := s.rel
	s.mu.Unlock()

	if done != nil {
		<-done
	}
	rel.release()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clip != nil && s.clip.PreviewPath != "" {
		if err := os.Remove(s.clip.PreviewPath); err != nil && !os.IsNotExist(err) {
			s.log.Warn("failed to remove preview", "path", s.clip.PreviewPath, "error", err)
		}
	}
	s.clip = nil
	s.done = nil
	s.rel = nil
	s.stopOnce = nil
	s.stopped = false
	s.timeLeft = MaxDuration
	s.state = StateIdle
}
