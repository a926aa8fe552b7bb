//go:build integration

package itest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"
)

const cliTimeout = 60 * time.Second

type cliRunResult struct {
	exitCode int
	output   string
}

func findRepoRoot() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for i := 0; i < 10; i++ {
		if _, err := os.Stat(filepath.Join(wd, "go.mod")); err == nil {
			return wd, nil
		}
		parent := filepath.Dir(wd)
		if parent == wd {
			break
		}
		wd = parent
	}
	return "", errors.New("could not locate go.mod")
}

func mustRepoRoot(t *testing.T) string {
	t.Helper()
	repoRoot, err := findRepoRoot()
	if err != nil {
		t.Fatalf("repo root: %v", err)
	}
	return repoRoot
}

func testdataPath(repoRoot string, name ...string) string {
	return filepath.Join(append([]string{repoRoot, "internal", "itest", "testdata"}, name...)...)
}

// runCLI runs the subcue binary from source with an isolated config and no
// task history unless the caller overrides SUBCUE_CONFIG.
func runCLI(t *testing.T, repoRoot string, args []string, env map[string]string) cliRunResult {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), cliTimeout)
	defer cancel()

	cmdArgs := append([]string{"run", "./cmd/subcue"}, args...)
	cmd := exec.CommandContext(ctx, "go", cmdArgs...)
	cmd.Dir = repoRoot
	cmd.Env = mergeEnv(
		os.Environ(),
		map[string]string{
			"NO_COLOR":            "1",
			"TERM":                "dumb",
			"SUBCUE_CONFIG":       filepath.Join(t.TempDir(), "none.toml"),
			"OPENROUTER_API_KEY":  "",
			"OPENROUTER_BASE_URL": "",
		},
		env,
	)

	out, err := cmd.CombinedOutput()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		t.Fatalf("command timed out after %s: go %s", cliTimeout, strings.Join(cmdArgs, " "))
	}

	res := cliRunResult{output: string(out)}
	if err == nil {
		return res
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.exitCode = exitErr.ExitCode()
		return res
	}
	t.Fatalf("run command: %v\noutput:\n%s", err, string(out))
	return cliRunResult{}
}

func mergeEnv(base []string, overrides ...map[string]string) []string {
	env := make(map[string]string, len(base))
	for _, kv := range base {
		i := strings.IndexByte(kv, '=')
		if i <= 0 {
			continue
		}
		env[kv[:i]] = kv[i+1:]
	}
	for _, set := range overrides {
		for k, v := range set {
			env[k] = v
		}
	}
	out := make([]string, 0, len(env))
	for k, v := range env {
		out = append(out, fmt.Sprintf("%s=%s", k, v))
	}
	sort.Strings(out)
	return out
}
