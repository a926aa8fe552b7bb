package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/forPelevin/subcue/internal/usecase"
)

const lockRetryDelay = 50 * time.Millisecond

// writeOutputs writes every document as <dir>/<base>.<ext>. Runs sharing a
// base name in the same directory are serialized by an advisory lock on
// <dir>/.<base>.lock. Every document is staged in a temp file first, and
// targets are only replaced once all of them are staged.
func writeOutputs(ctx context.Context, dir, base string, outputs []usecase.Output) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	lock := flock.New(filepath.Join(dir, "."+base+".lock"))
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("lock outputs for %s: %w", base, err)
	}
	if !locked {
		return nil, fmt.Errorf("lock outputs for %s: held by another run", base)
	}
	defer func() { _ = lock.Unlock() }()

	paths := make([]string, len(outputs))
	temps := make([]string, 0, len(outputs))
	defer func() {
		// Renamed temps are already gone.
		for _, tmp := range temps {
			_ = os.Remove(tmp)
		}
	}()
	for i, out := range outputs {
		paths[i] = filepath.Join(dir, base+"."+out.Extension)
		tmp, err := stage(paths[i], out.Data)
		if err != nil {
			return nil, err
		}
		temps = append(temps, tmp)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for i, tmp := range temps {
		if err := os.Rename(tmp, paths[i]); err != nil {
			return nil, fmt.Errorf("write %s: %w", paths[i], err)
		}
	}
	return paths, nil
}

// stage writes data to a temp file next to path and returns its name.
func stage(path string, data []byte) (string, error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	name := tmp.Name()
	_, err = tmp.Write(data)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Chmod(name, 0o644)
	}
	if err != nil {
		_ = os.Remove(name)
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return name, nil
}
