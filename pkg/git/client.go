package git

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// Client wraps git command execution with a global file-based lock for process safety.
type Client struct {
	WorkDir  string
	Logger   *slog.Logger
	lockPath string
}

// NewClient creates a new git client for the given working directory.
func NewClient(workDir, lockName string, logger *slog.Logger) *Client {
	if lockName == "" {
		lockName = ".envisage.lock"
	}
	return &Client{
		WorkDir:  workDir,
		Logger:   logger,
		lockPath: lockName,
	}
}

// IsInstalled checks if git is available on the execution search path.
func IsInstalled() bool {
	_, err := exec.LookPath("git")
	return err == nil
}

// Lock acquires a file-based lock. It blocks until the lock is acquired.
func (c *Client) Lock() (func(), error) {
	fullLockPath := filepath.Join(c.WorkDir, c.lockPath)

	for {
		// Try to create lock file atomically
		f, err := os.OpenFile(fullLockPath, os.O_CREATE|os.O_EXCL, 0666)
		if err == nil {
			f.Close()
			return func() {
				os.Remove(fullLockPath)
			}, nil
		}

		if os.IsExist(err) {
			// Lock exists, wait and retry.
			time.Sleep(10 * time.Millisecond)
			continue
		}

		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}
}

// Run executes a raw git command in the working directory.
// NOTE: It does NOT acquire the lock automatically. The caller must manage safety via Client.Lock().
func (c *Client) Run(args ...string) (string, error) {
	if c.Logger != nil {
		c.Logger.Debug("executing git", "args", args, "dir", c.WorkDir)
	}

	cmd := exec.Command("git", args...)
	cmd.Dir = c.WorkDir

	out, err := cmd.CombinedOutput()
	output := string(out)

	if err != nil {
		return output, fmt.Errorf("git %s failed: %w\nOutput: %s", args[0], err, output)
	}

	return strings.TrimSpace(output), nil
}

// IsRepo reports whether the working directory is inside a git repository.
func (c *Client) IsRepo() bool {
	_, err := c.Run("rev-parse", "--git-dir")
	return err == nil
}

// Init initializes a new git repository. git init is safe to re-run.
func (c *Client) Init() error {
	_, err := c.Run("init")
	return err
}

// Add adds files to the stage.
func (c *Client) Add(files ...string) error {
	if len(files) == 0 {
		return nil
	}
	args := append([]string{"add"}, files...)
	_, err := c.Run(args...)
	return err
}

// AddAll stages every change in the working tree, including untracked files.
func (c *Client) AddAll() error {
	_, err := c.Run("add", "--all")
	return err
}

// Rm removes files from the working tree and from the index.
func (c *Client) Rm(files ...string) error {
	if len(files) == 0 {
		return nil
	}
	args := append([]string{"rm", "-f"}, files...)
	_, err := c.Run(args...)
	return err
}

// Commit records changes to the repository.
func (c *Client) Commit(msg string) error {
	_, err := c.Run("commit", "-m", msg)
	return err
}

// Status returns the porcelain status of the repo.
func (c *Client) Status() (string, error) {
	return c.Run("status", "--porcelain")
}

// HasChanges reports whether the working tree is dirty (staged, unstaged or untracked).
func (c *Client) HasChanges() (bool, error) {
	out, err := c.Status()
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) != "", nil
}

// HasRemote reports whether the named remote is configured.
func (c *Client) HasRemote(name string) bool {
	out, err := c.Run("remote")
	if err != nil {
		return false
	}
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) == name {
			return true
		}
	}
	return false
}

// Push pushes the branch to the remote.
func (c *Client) Push(remote, branch string) error {
	_, err := c.Run("push", remote, fmt.Sprintf("%s:%s", branch, branch))
	return err
}

// Sync pushes the branch, and on a rejected push it fetches, rebases onto
// the remote branch (falling back to a plain pull) and pushes again.
func (c *Client) Sync(remote, branch string) error {
	if !c.HasRemote(remote) {
		return fmt.Errorf("no remote %q configured; cannot push", remote)
	}

	if err := c.Push(remote, branch); err == nil {
		return nil
	} else if c.Logger != nil {
		c.Logger.Warn("push rejected, attempting pull --rebase", "remote", remote, "branch", branch, "error", err)
	}

	if _, err := c.Run("fetch", remote); err != nil {
		return fmt.Errorf("fetch failed: %w", err)
	}

	if _, err := c.Run("pull", remote, branch, "--rebase"); err != nil {
		// Rebase can fail on conflicts; a merge pull may still succeed.
		if _, err := c.Run("pull", remote, branch); err != nil {
			return fmt.Errorf("pull failed after rejected push: %w", err)
		}
	}

	if err := c.Push(remote, branch); err != nil {
		return fmt.Errorf("push failed after pull: %w", err)
	}
	return nil
}
