package gitrepo

import (
	"fmt"
	"io"
	"os"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

// Commit is a flattened view of a single commit used by the history
// metrics.
type Commit struct {
	// Author is the commit author's email, or name when the email is
	// empty.
	Author string

	// Message is the commit message.
	Message string

	// Files holds per-file added line counts.
	Files []FileChange
}

// FileChange records the lines added to one file by a commit.
type FileChange struct {
	Path  string
	Added int
}

// NewRepository wraps an already-open go-git repository. Used by callers
// that construct repositories directly, such as tests.
func NewRepository(repo *git.Repository) *Repository {
	return &Repository{Repository: repo}
}

// CommitAuthors returns the author identity of up to max recent commits,
// preferring the author email over the name.
func (r *Repository) CommitAuthors(max int) ([]string, error) {
	if r == nil || r.Repository == nil {
		return nil, fmt.Errorf("repository is nil")
	}

	iter, err := r.Repository.Log(&git.LogOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to read commit log: %w", err)
	}
	defer iter.Close()

	var authors []string
	err = iter.ForEach(func(c *object.Commit) error {
		if max > 0 && len(authors) >= max {
			return storer.ErrStop
		}
		if c.Author.Email != "" {
			authors = append(authors, c.Author.Email)
		} else if c.Author.Name != "" {
			authors = append(authors, c.Author.Name)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate commits: %w", err)
	}
	return authors, nil
}

// Commits returns up to max recent commits with their messages and
// per-file added line counts.
func (r *Repository) Commits(max int) ([]Commit, error) {
	if r == nil || r.Repository == nil {
		return nil, fmt.Errorf("repository is nil")
	}

	iter, err := r.Repository.Log(&git.LogOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to read commit log: %w", err)
	}
	defer iter.Close()

	var commits []Commit
	err = iter.ForEach(func(c *object.Commit) error {
		if max > 0 && len(commits) >= max {
			return storer.ErrStop
		}

		commit := Commit{
			Author:  c.Author.Email,
			Message: c.Message,
		}
		if commit.Author == "" {
			commit.Author = c.Author.Name
		}

		// Stats fail on the root commit of some repositories; treat that
		// commit as contributing no line counts rather than aborting.
		if stats, statErr := c.Stats(); statErr == nil {
			for _, fs := range stats {
				commit.Files = append(commit.Files, FileChange{
					Path:  fs.Name,
					Added: fs.Addition,
				})
			}
		}

		commits = append(commits, commit)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate commits: %w", err)
	}
	return commits, nil
}

// HasFile reports whether a regular file exists at path in the checkout.
func (r *Repository) HasFile(path string) bool {
	info, err := r.stat(path)
	return err == nil && !info.IsDir()
}

// HasDir reports whether a directory exists at path in the checkout.
func (r *Repository) HasDir(path string) bool {
	info, err := r.stat(path)
	return err == nil && info.IsDir()
}

// ReadFirst returns the contents of the first of the named files that
// exists in the checkout.
func (r *Repository) ReadFirst(names ...string) (string, bool) {
	if r == nil || r.Repository == nil {
		return "", false
	}
	worktree, err := r.Repository.Worktree()
	if err != nil {
		return "", false
	}

	for _, name := range names {
		f, err := worktree.Filesystem.Open(name)
		if err != nil {
			continue
		}
		content, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			continue
		}
		return string(content), true
	}
	return "", false
}

// Readme returns the repository README using the common filename
// candidates.
func (r *Repository) Readme() (string, bool) {
	return r.ReadFirst("README.md", "README.rst", "README.txt", "README")
}

func (r *Repository) stat(path string) (os.FileInfo, error) {
	if r == nil || r.Repository == nil {
		return nil, fmt.Errorf("repository is nil")
	}
	worktree, err := r.Repository.Worktree()
	if err != nil {
		return nil, err
	}
	return worktree.Filesystem.Stat(path)
}
