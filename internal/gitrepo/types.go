package gitrepo

import (
	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/cache"
)

// CloneOptions contains configuration for cloning a repository.
type CloneOptions struct {
	// Depth limits the commit history fetched. Zero fetches the full
	// history, which the commit-based metrics need.
	Depth int

	// Branch is the specific branch to clone (optional).
	Branch string
}

// Repository wraps a cloned go-git repository together with the in-memory
// filesystems backing it, so that Cleanup can release them explicitly.
type Repository struct {
	// Repository is the go-git repository instance.
	Repository *git.Repository

	// RemoteURL is the remote repository URL.
	RemoteURL string

	// worktreeFilesystem holds the checked-out files.
	worktreeFilesystem billy.Filesystem

	// storerFilesystem holds the in-memory Git object database. It is
	// stored during Clone and must be cleared in Cleanup, as go-git does
	// not release its internal storage on its own.
	storerFilesystem billy.Filesystem

	// objectCache holds the LRU cache for decompressed Git objects. The
	// garbage collector cannot reclaim cached objects while this
	// reference exists, so Cleanup clears it explicitly.
	objectCache cache.Object
}
