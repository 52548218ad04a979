package sync

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// GitDestination commits the transition export to a file in a local clone
// and pushes it. Each commit message records the span of the journal.
type GitDestination struct {
	repo   string // path to the local clone
	file   string // export path within the repo
	branch string
}

// NewGitDestination creates a git destination for an existing clone.
func NewGitDestination(repo, file, branch string) *GitDestination {
	return &GitDestination{repo: repo, file: file, branch: branch}
}

// Write updates the export file and pushes a commit when it changed.
func (d *GitDestination) Write(ctx context.Context, data []byte, sum Summary) error {
	if err := d.git(ctx, "checkout", d.branch); err != nil {
		return err
	}
	// The remote branch may not exist yet.
	_ = d.git(ctx, "pull", "--ff-only", "origin", d.branch)

	path := filepath.Join(d.repo, d.file)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	if err := d.git(ctx, "add", d.file); err != nil {
		return err
	}
	if d.git(ctx, "diff", "--cached", "--quiet") == nil {
		return nil
	}
	if err := d.git(ctx, "commit", "-m", commitMessage(sum)); err != nil {
		return err
	}
	return d.git(ctx, "push", "origin", d.branch)
}

// commitMessage summarizes an export in one line.
func commitMessage(sum Summary) string {
	switch sum.Transitions {
	case 0:
		return "gatewatch: export empty transition journal"
	case 1:
		return fmt.Sprintf("gatewatch: export 1 gate transition (%s)",
			sum.First.UTC().Format(time.RFC3339))
	}
	return fmt.Sprintf("gatewatch: export %d gate transitions (%s to %s)",
		sum.Transitions,
		sum.First.UTC().Format(time.RFC3339),
		sum.Last.UTC().Format(time.RFC3339))
}

func (d *GitDestination) git(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = d.repo
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("git %s: %w: %s", args[0], err, bytes.TrimSpace(out))
	}
	return nil
}
