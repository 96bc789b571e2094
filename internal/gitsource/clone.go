// Package gitsource fetches a documentation repository into a local
// workspace so a build can run against a remote source tree.
package gitsource

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"git.home.luguber.info/inful/sitepipe/internal/retry"
)

// Clone performs a shallow single-branch clone of url into dir and returns
// the working tree path. An empty branch clones the remote default.
// Transient network failures are retried per the default backoff policy.
func Clone(ctx context.Context, url, branch, dir string) (string, error) {
	opts := &git.CloneOptions{
		URL:          url,
		Depth:        1,
		SingleBranch: true,
	}
	if branch != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(branch)
	}

	policy := retry.DefaultPolicy()
	var lastErr error
	for attempt := 0; attempt <= policy.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := policy.Delay(attempt)
			slog.Warn("Retrying clone", "url", url, "attempt", attempt, "delay", delay)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
			}
			// A failed clone can leave a partial tree behind.
			_ = os.RemoveAll(dir)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return "", err
			}
		}

		slog.Info("Cloning documentation source", "url", url, "branch", branch, "dir", dir)
		_, lastErr = git.PlainCloneContext(ctx, dir, false, opts)
		if lastErr == nil {
			return dir, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
	}
	return "", fmt.Errorf("clone %s: %w", url, lastErr)
}
