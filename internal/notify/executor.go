package notify

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"
	"time"
)

// Default and max timeout for notification commands.
const (
	DefaultTimeout = 30 * time.Second
	MaxTimeout     = 300 * time.Second
)

// Result holds the output of running a single command.
type Result struct {
	Output string
	Err    error
}

// clampTimeout applies the default and max bounds.
func clampTimeout(timeout time.Duration) time.Duration {
	if timeout <= 0 {
		return DefaultTimeout
	}
	if timeout > MaxTimeout {
		return MaxTimeout
	}
	return timeout
}

// Execute runs a shell command with the given timeout and environment.
// The command is executed via "sh -c".
func Execute(ctx context.Context, command string, timeout time.Duration, env map[string]string) Result {
	cmdCtx, cancel := context.WithTimeout(ctx, clampTimeout(timeout))
	defer cancel()

	cmd := exec.CommandContext(cmdCtx, "sh", "-c", command) //nolint:gosec // command comes from operator config
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// Background children can hold the pipes open after sh is killed.
	cmd.WaitDelay = time.Second

	// Inherit process environment and overlay notification vars.
	cmd.Env = os.Environ()
	for k, v := range env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	err := cmd.Run()
	output := strings.TrimSpace(stdout.String())
	if output == "" {
		output = strings.TrimSpace(stderr.String())
	}

	return Result{Output: output, Err: err}
}
