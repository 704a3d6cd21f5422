package gitctx

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

var (
	// ErrNotRepository is returned when path is not inside a git worktree.
	ErrNotRepository = errors.New("not a git repository")
	// ErrDirty is returned by Clean when the worktree has uncommitted changes.
	ErrDirty = errors.New("worktree has uncommitted changes")
)

// RepoMeta contains git repository metadata.
type RepoMeta struct {
	Root   string
	Head   string
	Branch string
}

func open(path string) (*git.Repository, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("%w: %s", ErrNotRepository, path)
		}
		return nil, fmt.Errorf("opening git repo at %s: %w", path, err)
	}
	return repo, nil
}

// Meta collects metadata for the repository containing path. Head and
// Branch are empty in a repository with no commits.
func Meta(path string) (RepoMeta, error) {
	repo, err := open(path)
	if err != nil {
		return RepoMeta{}, err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return RepoMeta{}, fmt.Errorf("%w: %v", ErrNotRepository, err)
	}

	meta := RepoMeta{Root: filepath.Clean(wt.Filesystem.Root())}
	head, err := repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return meta, nil
		}
		return meta, fmt.Errorf("getting HEAD: %w", err)
	}
	meta.Head = head.Hash().String()
	if head.Name().IsBranch() {
		meta.Branch = head.Name().Short()
	}
	return meta, nil
}

// DirtyFiles returns the worktree-relative paths with staged, unstaged or
// untracked changes, sorted. Ignored files are not reported.
func DirtyFiles(path string) ([]string, error) {
	repo, err := open(path)
	if err != nil {
		return nil, err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotRepository, err)
	}
	status, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("reading worktree status: %w", err)
	}

	var files []string
	for name, s := range status {
		if s.Staging == git.Unmodified && s.Worktree == git.Unmodified {
			continue
		}
		files = append(files, name)
	}
	sort.Strings(files)
	return files, nil
}

// Clean returns nil when path is inside a git worktree with nothing to
// commit. Otherwise it returns ErrNotRepository or an ErrDirty naming the
// first few changed files.
func Clean(path string) error {
	files, err := DirtyFiles(path)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return nil
	}
	shown := files
	if len(shown) > 3 {
		shown = shown[:3]
	}
	more := ""
	if n := len(files) - len(shown); n > 0 {
		more = fmt.Sprintf(" and %d more", n)
	}
	return fmt.Errorf("%w: %v%s", ErrDirty, shown, more)
}
