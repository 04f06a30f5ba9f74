package capture

import (
	"slices"
	"strings"
	"testing"
	"time"
)

func TestNegotiateMimeType(t *testing.T) {
	tests := []struct {
		name      string
		supported map[string]bool
		want      string
	}{
		{"mp4 preferred", map[string]bool{"video/mp4;codecs=h264": true, "video/webm;codecs=vp9": true}, "video/mp4;codecs=h264"},
		{"vp9 only", map[string]bool{"video/webm;codecs=vp9": true}, "video/webm;codecs=vp9"},
		{"nothing", nil, FallbackMimeType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NegotiateMimeType(&fakeDevice{supported: tt.supported}); got != tt.want {
				t.Errorf("NegotiateMimeType() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestExtensionFor(t *testing.T) {
	if ExtensionFor("video/mp4;codecs=h264") != "mp4" {
		t.Error("mp4 mime should map to mp4")
	}
	if ExtensionFor("video/webm;codecs=vp9") != "webm" || ExtensionFor("") != "webm" {
		t.Error("everything else should map to webm")
	}
}

func TestRecordArgs(t *testing.T) {
	args, err := recordArgs("video/webm;codecs=vp9", DefaultConstraints(), "/dev/video0", "default")
	if err != nil {
		t.Fatalf("recordArgs() error = %v", err)
	}
	joined := strings.Join(args, " ")
	for _, want := range []string{"-video_size 1280x720", "-i /dev/video0", "-c:v libvpx-vp9", "-c:a libopus", "-t 10", "-f webm pipe:1"} {
		if !strings.Contains(joined, want) {
			t.Errorf("args missing %q: %s", want, joined)
		}
	}

	noAudio := DefaultConstraints()
	noAudio.Audio = false
	args, _ = recordArgs("video/mp4;codecs=h264", noAudio, "/dev/video0", "default")
	if !slices.Contains(args, "-an") || slices.Contains(args, "alsa") {
		t.Errorf("expected video-only args: %v", args)
	}

	if _, err := recordArgs("video/ogg", DefaultConstraints(), "/dev/video0", ""); err == nil {
		t.Error("expected error for unsupported mime")
	}
}

func TestParseProbeDuration(t *testing.T) {
	d, err := parseProbeDuration("3.500000\n")
	if err != nil || d != 3500*time.Millisecond {
		t.Errorf("parseProbeDuration() = %v, %v", d, err)
	}
	for _, bad := range []string{"", "N/A", "abc"} {
		if _, err := parseProbeDuration(bad); err == nil {
			t.Errorf("parseProbeDuration(%q) expected error", bad)
		}
	}
}
