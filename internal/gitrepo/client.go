// Package gitrepo clones model and code repositories into memory and
// exposes the history and worktree queries the scoring metrics need.
package gitrepo

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/cache"
	"github.com/go-git/go-git/v5/storage/filesystem"
)

const (
	maxCloneFiles = 10 * 1000
	maxCloneBytes = 100 * 1024 * 1024
)

// Client defines the interface for Git operations.
type Client interface {
	// Clone clones a repository into memory.
	Clone(ctx context.Context, url string, opts CloneOptions) (*Repository, error)

	// Cleanup releases the in-memory state held by a cloned repository.
	Cleanup(ctx context.Context, repo *Repository) error
}

// defaultClient implements Client using go-git.
type defaultClient struct{}

// NewDefaultClient creates a go-git backed client.
func NewDefaultClient() Client {
	return &defaultClient{}
}

// Clone clones a repository into in-memory filesystems with hard caps on
// file count and total size.
func (*defaultClient) Clone(ctx context.Context, url string, opts CloneOptions) (*Repository, error) {
	cloneOptions := &git.CloneOptions{
		URL:   url,
		Depth: opts.Depth,
	}
	if opts.Branch != "" {
		cloneOptions.ReferenceName = plumbing.NewBranchReferenceName(opts.Branch)
		cloneOptions.SingleBranch = true
	}

	// go-git wants separate filesystems for the storer and the checkout.
	worktreeFs := &LimitedFs{
		Fs:            memfs.New(),
		MaxFiles:      maxCloneFiles,
		TotalFileSize: maxCloneBytes,
	}
	storerFs := &LimitedFs{
		Fs:            memfs.New(),
		MaxFiles:      maxCloneFiles,
		TotalFileSize: maxCloneBytes,
	}
	storerCache := cache.NewObjectLRUDefault()
	storer := filesystem.NewStorage(storerFs, storerCache)

	repo, err := git.CloneContext(ctx, storer, worktreeFs, cloneOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to clone repository %s: %w", url, err)
	}

	return &Repository{
		Repository:         repo,
		RemoteURL:          url,
		worktreeFilesystem: worktreeFs,
		storerFilesystem:   storerFs,
		objectCache:        storerCache,
	}, nil
}

// Cleanup clears the object cache and both in-memory filesystems so the
// memory can be reclaimed between scoring runs.
func (*defaultClient) Cleanup(_ context.Context, repo *Repository) error {
	if repo == nil || repo.Repository == nil {
		return fmt.Errorf("repository is nil")
	}

	if repo.objectCache != nil {
		repo.objectCache.Clear()
	}

	worktree, err := repo.Repository.Worktree()
	if err == nil && worktree.Filesystem != nil {
		slog.Debug("Clearing worktree filesystem", "url", repo.RemoteURL)
		_ = util.RemoveAll(worktree.Filesystem, "/")
	}

	if repo.storerFilesystem != nil {
		_ = util.RemoveAll(repo.storerFilesystem, "/")
	}

	repo.objectCache = nil
	repo.storerFilesystem = nil
	repo.worktreeFilesystem = nil
	repo.Repository = nil

	runtime.GC()
	return nil
}
