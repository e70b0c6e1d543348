// Package gitcli implements the repository capability using the git CLI.
package gitcli

import (
	"context"
	"os/exec"
	"strings"

	"go.trai.ch/sema/internal/core/domain"
	"go.trai.ch/zerr"
)

// Client implements ports.Git by shelling out to the git binary.
type Client struct{}

// NewClient creates a git CLI client.
func NewClient() *Client {
	return &Client{}
}

// Clone creates a checkout of source at path.
func (c *Client) Clone(ctx context.Context, source, path string) error {
	_, err := c.run(ctx, "", "clone", "--", source, path)
	if err != nil {
		cloneErr := zerr.Wrap(err, domain.ErrFetchFailed.Error())
		return zerr.With(cloneErr, "source", source)
	}
	return nil
}

// Fetch updates the checkout at path from origin and resolves reference to a
// commit hash. It first tries a targeted fetch of the reference; references
// that origin does not advertise (abbreviated commit hashes, mostly) fall
// back to a full fetch plus a local resolve.
func (c *Client) Fetch(ctx context.Context, path, reference string) (string, error) {
	if _, err := c.run(ctx, path, "fetch", "--tags", "origin", reference); err == nil {
		commit, err := c.run(ctx, path, "rev-parse", "FETCH_HEAD")
		if err != nil {
			return "", zerr.With(zerr.Wrap(err, domain.ErrFetchFailed.Error()), "reference", reference)
		}
		return commit, nil
	}

	if _, err := c.run(ctx, path, "fetch", "--tags", "origin"); err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrFetchFailed.Error()), "reference", reference)
	}
	commit, err := c.ResolveRef(ctx, path, reference)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrFetchFailed.Error()), "reference", reference)
	}
	return commit, nil
}

// ResolveRef resolves reference to a commit hash using local state only.
func (c *Client) ResolveRef(ctx context.Context, path, reference string) (string, error) {
	commit, err := c.run(ctx, path, "rev-parse", "--verify", reference+"^{commit}")
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to resolve reference"), "reference", reference)
	}
	return commit, nil
}

// Checkout moves the checkout at path to the given commit.
func (c *Client) Checkout(ctx context.Context, path, commit string) error {
	if _, err := c.run(ctx, path, "checkout", "--detach", commit); err != nil {
		return zerr.With(zerr.Wrap(err, "checkout failed"), "commit", commit)
	}
	return nil
}

// HeadCommit returns the commit hash the checkout at path is currently at.
func (c *Client) HeadCommit(ctx context.Context, path string) (string, error) {
	commit, err := c.run(ctx, path, "rev-parse", "HEAD")
	if err != nil {
		return "", zerr.Wrap(err, "failed to read HEAD")
	}
	return commit, nil
}

// Commit stages all changes at path and records a commit.
func (c *Client) Commit(ctx context.Context, path, message string) error {
	if _, err := c.run(ctx, path, "add", "--all"); err != nil {
		return zerr.Wrap(err, "failed to stage changes")
	}
	if _, err := c.run(ctx, path, "commit", "--message", message); err != nil {
		return zerr.Wrap(err, "commit failed")
	}
	return nil
}

// run executes one git subcommand and returns its trimmed stdout. Stderr of
// a failing invocation is attached to the error as metadata.
func (c *Client) run(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...) //nolint:gosec // args are built from validated inputs
	cmd.Dir = dir

	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			stderr := strings.TrimSpace(string(exitErr.Stderr))

			gitErr := zerr.Wrap(exitErr, "git "+args[0]+" failed")
			gitErr = zerr.With(gitErr, "dir", dir)
			return "", zerr.With(gitErr, "stderr", stderr)
		}
		return "", zerr.With(zerr.Wrap(err, "failed to invoke git"), "dir", dir)
	}
	return strings.TrimSpace(string(output)), nil
}
