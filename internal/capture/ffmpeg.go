package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"
)

// FFmpegDevice captures from a V4L2 camera and an ALSA microphone through ffmpeg.
type FFmpegDevice struct {
	Binary      string
	VideoDevice string
	AudioDevice string

	probeOnce sync.Once
	encoders  string
}

func NewFFmpegDevice(videoDevice string) *FFmpegDevice {
	return &FFmpegDevice{Binary: "ffmpeg", VideoDevice: videoDevice, AudioDevice: "default"}
}

// CheckDependencies reports whether the ffmpeg toolchain is on PATH.
func CheckDependencies() error {
	for _, bin := range []string{"ffmpeg", "ffprobe"} {
		if _, err := exec.LookPath(bin); err != nil {
			return fmt.Errorf("missing dependency: %s is not installed or not on PATH", bin)
		}
	}
	return nil
}

func (d *FFmpegDevice) Open(ctx context.Context, c Constraints) (Stream, error) {
	if _, err := exec.LookPath(d.Binary); err != nil {
		return nil, fmt.Errorf("missing dependency %s: %w", d.Binary, err)
	}

	f, err := os.OpenFile(d.VideoDevice, os.O_RDONLY, 0)
	if err != nil {
		switch {
		case errors.Is(err, os.ErrPermission):
			return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, d.VideoDevice)
		case errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("%w: %s", ErrNoDevice, d.VideoDevice)
		default:
			return nil, fmt.Errorf("open %s: %w", d.VideoDevice, err)
		}
	}
	f.Close()

	return &ffmpegStream{device: d, constraints: c}, nil
}

func (d *FFmpegDevice) Supports(mimeType string) bool {
	d.probeOnce.Do(func() {
		out, err := exec.Command(d.Binary, "-hide_banner", "-encoders").Output()
		if err == nil {
			d.encoders = string(out)
		}
	})
	enc, ok := encoderFor(mimeType)
	if !ok {
		return false
	}
	return strings.Contains(d.encoders, enc.video)
}

type encoderSet struct {
	video  string
	audio  string
	format string
	extra  []string
}

func encoderFor(mimeType string) (encoderSet, bool) {
	switch mimeType {
	case "video/mp4;codecs=h264":
		return encoderSet{video: "libx264", audio: "aac", format: "mp4",
			extra: []string{"-preset", "veryfast", "-movflags", "frag_keyframe+empty_moov"}}, true
	case "video/webm;codecs=vp9":
		return encoderSet{video: "libvpx-vp9", audio: "libopus", format: "webm",
			extra: []string{"-deadline", "realtime"}}, true
	case "video/webm":
		return encoderSet{video: "libvpx", audio: "libvorbis", format: "webm",
			extra: []string{"-deadline", "realtime"}}, true
	}
	return encoderSet{}, false
}

// recordArgs builds the ffmpeg command line writing an encoded stream to stdout.
func recordArgs(mimeType string, c Constraints, videoDevice, audioDevice string) ([]string, error) {
	enc, ok := encoderFor(mimeType)
	if !ok {
		return nil, fmt.Errorf("unsupported mime type %q", mimeType)
	}

	args := []string{"-hide_banner", "-loglevel", "error",
		"-f", "v4l2", "-framerate", "30",
		"-video_size", fmt.Sprintf("%dx%d", c.Width, c.Height),
		"-i", videoDevice,
	}
	if c.Audio && audioDevice != "" {
		args = append(args, "-f", "alsa", "-i", audioDevice, "-c:a", enc.audio)
	} else {
		args = append(args, "-an")
	}
	args = append(args, "-c:v", enc.video)
	args = append(args, enc.extra...)
	args = append(args, "-t", strconv.Itoa(MaxDuration), "-f", enc.format, "pipe:1")
	return args, nil
}

type ffmpegStream struct {
	device      *FFmpegDevice
	constraints Constraints

	mu     sync.Mutex
	cmd    *exec.Cmd
	tracks []Track
}

func (s *ffmpegStream) Tracks() []Track {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tracks == nil {
		shared := &processTrack{stream: s}
		s.tracks = []Track{&kindTrack{kind: "video", processTrack: shared}}
		if s.constraints.Audio {
			s.tracks = append(s.tracks, &kindTrack{kind: "audio", processTrack: shared})
		}
	}
	return s.tracks
}

func (s *ffmpegStream) Record(mimeType string, stop <-chan struct{}) (<-chan []byte, error) {
	args, err := recordArgs(mimeType, s.constraints, s.device.VideoDevice, s.device.AudioDevice)
	if err != nil {
		return nil, err
	}

	cmd := exec.Command(s.device.Binary, args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start ffmpeg: %w", err)
	}

	s.mu.Lock()
	s.cmd = cmd
	s.mu.Unlock()

	out := make(chan []byte, 16)
	exited := make(chan struct{})

	go func() {
		select {
		case <-stop:
			// "q" asks ffmpeg to finalize the container and exit.
			_, _ = io.WriteString(stdin, "q")
			_ = stdin.Close()
		case <-exited:
		}
	}()

	go func() {
		defer close(out)
		defer close(exited)
		buf := make([]byte, 32*1024)
		for {
			n, err := stdout.Read(buf)
			if n > 0 {
				chunk := make([]byte, n)
				copy(chunk, buf[:n])
				out <- chunk
			}
			if err != nil {
				break
			}
		}
		_ = cmd.Wait()
	}()

	return out, nil
}

func (s *ffmpegStream) kill() {
	s.mu.Lock()
	cmd := s.cmd
	s.mu.Unlock()
	if cmd != nil && cmd.Process != nil && cmd.ProcessState == nil {
		_ = cmd.Process.Kill()
	}
}

type processTrack struct {
	stream *ffmpegStream
	once   sync.Once
	mu     sync.Mutex
	ended  bool
}

func (t *processTrack) Stop() {
	t.once.Do(func() {
		t.stream.kill()
		t.mu.Lock()
		t.ended = true
		t.mu.Unlock()
	})
}

func (t *processTrack) State() TrackState {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.ended {
		return TrackEnded
	}
	return TrackLive
}

type kindTrack struct {
	kind string
	*processTrack
}

func (t *kindTrack) Kind() string { return t.kind }

// FFmpegFrames implements FrameSource with ffprobe/ffmpeg.
type FFmpegFrames struct {
	FFmpeg  string
	FFprobe string
}

func NewFFmpegFrames() *FFmpegFrames {
	return &FFmpegFrames{FFmpeg: "ffmpeg", FFprobe: "ffprobe"}
}

func (f *FFmpegFrames) Duration(ctx context.Context, path string) (time.Duration, error) {
	out, err := exec.CommandContext(ctx, f.FFprobe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	).Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	return parseProbeDuration(string(out))
}

func parseProbeDuration(raw string) (time.Duration, error) {
	v := strings.TrimSpace(raw)
	if v == "" || v == "N/A" {
		return 0, fmt.Errorf("duration unavailable")
	}
	secs, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", v, err)
	}
	return time.Duration(secs * float64(time.Second)), nil
}

func (f *FFmpegFrames) FrameAt(ctx context.Context, path string, at time.Duration) (image.Image, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, f.FFmpeg,
		"-hide_banner", "-loglevel", "error",
		"-ss", strconv.FormatFloat(at.Seconds(), 'f', 3, 64),
		"-i", path,
		"-frames:v", "1",
		"-f", "image2pipe", "-vcodec", "png", "pipe:1",
	)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg frame extract: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	img, err := png.Decode(&stdout)
	if err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}
	return img, nil
}
