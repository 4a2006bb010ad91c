// Package git locates the repository a command runs in.
package git

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/go-git/go-git/v5"
)

// ErrNotRepository is returned when no repository encloses the directory.
var ErrNotRepository = errors.New("not a git repository")

// Root returns the worktree root of the repository enclosing workDir.
func Root(workDir string) (string, error) {
	abs, err := filepath.Abs(workDir)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", workDir, err)
	}

	r, err := git.PlainOpenWithOptions(abs, &git.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if errors.Is(err, git.ErrRepositoryNotExists) {
		return "", ErrNotRepository
	}
	if err != nil {
		return "", fmt.Errorf("open git repo at %s: %w", abs, err)
	}

	wt, err := r.Worktree()
	if err != nil {
		return "", fmt.Errorf("worktree at %s: %w", abs, err)
	}
	return wt.Filesystem.Root(), nil
}

// RootOr returns the worktree root of workDir, or workDir itself when it is
// not inside a repository.
func RootOr(workDir string) string {
	root, err := Root(workDir)
	if err != nil {
		return workDir
	}
	return root
}
