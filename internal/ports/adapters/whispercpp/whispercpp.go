package whispercpp

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

type Adapter struct {
	bin      string
	model    string
	language string
}

func New(binPath, modelPath, language string) *Adapter {
	if language == "" {
		language = "auto"
	}
	return &Adapter{bin: binPath, model: modelPath, language: language}
}

// Available reports whether both the binary and the model can be found.
func (a *Adapter) Available() bool {
	if a.bin == "" || a.model == "" {
		return false
	}
	if _, err := exec.LookPath(a.bin); err != nil {
		return false
	}
	_, err := os.Stat(a.model)
	return err == nil
}

// Transcribe runs whisper.cpp with one word per output entry and returns the
// JSON document it writes.
func (a *Adapter) Transcribe(ctx context.Context, wavPath, cacheDir string) ([]byte, error) {
	outPrefix := filepath.Join(cacheDir, "whisper")
	cmd := exec.CommandContext(ctx, a.bin, a.args(wavPath, outPrefix)...)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("whisper.cpp failed: %w\n%s", err, string(b))
	}

	jb, err := os.ReadFile(outPrefix + ".json")
	if err != nil {
		return nil, fmt.Errorf("read whisper.cpp output: %w", err)
	}
	return jb, nil
}

func (a *Adapter) args(wavPath, outPrefix string) []string {
	return []string{
		"-m", a.model,
		"-f", wavPath,
		"-l", a.language,
		"-oj",
		"-of", outPrefix,
		"-ml", "1",
		"-sow",
	}
}
