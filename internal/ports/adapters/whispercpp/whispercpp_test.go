package whispercpp

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestArgs(t *testing.T) {
	a := New("whisper-cli", "/models/base.bin", "")
	got := strings.Join(a.args("/tmp/a.wav", "/tmp/run/whisper"), " ")
	want := "-m /models/base.bin -f /tmp/a.wav -l auto -oj -of /tmp/run/whisper -ml 1 -sow"
	if got != want {
		t.Fatalf("args = %q, want %q", got, want)
	}
}

func TestAvailable(t *testing.T) {
	if New("", "", "en").Available() {
		t.Fatalf("empty paths must not be available")
	}
	if New("definitely-not-a-whisper-binary", "/nope", "en").Available() {
		t.Fatalf("missing binary must not be available")
	}
}

func TestTranscribe_ReadsOutputJSON(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script fake")
	}
	dir := t.TempDir()
	fake := filepath.Join(dir, "whisper")
	script := "#!/bin/sh\n" +
		"while [ $# -gt 0 ]; do if [ \"$1\" = \"-of\" ]; then out=\"$2\"; fi; shift; done\n" +
		"printf '{\"transcription\":[]}' > \"$out.json\"\n"
	if err := os.WriteFile(fake, []byte(script), 0o755); err != nil {
		t.Fatalf("write fake: %v", err)
	}

	b, err := New(fake, "model.bin", "en").Transcribe(context.Background(), "in.wav", dir)
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if string(b) != `{"transcription":[]}` {
		t.Fatalf("unexpected output %q", b)
	}
}

func TestTranscribe_Failure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script fake")
	}
	dir := t.TempDir()
	fake := filepath.Join(dir, "whisper")
	if err := os.WriteFile(fake, []byte("#!/bin/sh\necho boom >&2\nexit 3\n"), 0o755); err != nil {
		t.Fatalf("write fake: %v", err)
	}
	_, err := New(fake, "model.bin", "en").Transcribe(context.Background(), "in.wav", dir)
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected failure with output, got %v", err)
	}
}
