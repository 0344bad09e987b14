package gitrepo

import (
	"fmt"
	"os"

	billy "github.com/go-git/go-billy/v5"
)

var (
	// ErrTooManyFiles is returned when a clone would exceed the file-count cap.
	ErrTooManyFiles = fmt.Errorf("too many files in repository")

	// ErrRepositoryTooLarge is returned when a clone would exceed the size cap.
	ErrRepositoryTooLarge = fmt.Errorf("repository exceeds size limit")
)

// LimitedFs wraps a billy.Filesystem and enforces caps on the number of
// files created and the total bytes written through it. Cloning untrusted
// repositories into memory needs a hard ceiling.
type LimitedFs struct {
	Fs billy.Filesystem

	MaxFiles      int64
	TotalFileSize int64

	fileCount int64
	totalSize int64
}

var _ billy.Filesystem = (*LimitedFs)(nil)

// limitedFile wraps a billy.File and accounts written bytes against the
// owning filesystem's size budget.
type limitedFile struct {
	billy.File
	fs *LimitedFs
}

func (f *limitedFile) Write(p []byte) (int, error) {
	f.fs.totalSize += int64(len(p))
	if f.fs.totalSize > f.fs.TotalFileSize {
		return 0, ErrRepositoryTooLarge
	}
	return f.File.Write(p)
}

// Create creates a new file, counting it against the file budget.
func (fs *LimitedFs) Create(filename string) (billy.File, error) {
	fs.fileCount++
	if fs.fileCount > fs.MaxFiles {
		return nil, ErrTooManyFiles
	}
	f, err := fs.Fs.Create(filename)
	if err != nil {
		return nil, err
	}
	return &limitedFile{File: f, fs: fs}, nil
}

// Open opens a file in read-only mode.
func (fs *LimitedFs) Open(filename string) (billy.File, error) {
	return fs.Fs.Open(filename)
}

// OpenFile opens a file with the given flags, counting newly created
// files against the file budget.
func (fs *LimitedFs) OpenFile(filename string, flag int, perm os.FileMode) (billy.File, error) {
	if flag&os.O_CREATE != 0 {
		fs.fileCount++
		if fs.fileCount > fs.MaxFiles {
			return nil, ErrTooManyFiles
		}
	}
	f, err := fs.Fs.OpenFile(filename, flag, perm)
	if err != nil {
		return nil, err
	}
	return &limitedFile{File: f, fs: fs}, nil
}

// Stat returns file info.
func (fs *LimitedFs) Stat(filename string) (os.FileInfo, error) {
	return fs.Fs.Stat(filename)
}

// Rename renames a file.
func (fs *LimitedFs) Rename(oldpath, newpath string) error {
	return fs.Fs.Rename(oldpath, newpath)
}

// Remove removes a file.
func (fs *LimitedFs) Remove(filename string) error {
	return fs.Fs.Remove(filename)
}

// Join joins path elements.
func (fs *LimitedFs) Join(elem ...string) string {
	return fs.Fs.Join(elem...)
}

// TempFile creates a temporary file, counted against the file budget.
func (fs *LimitedFs) TempFile(dir, prefix string) (billy.File, error) {
	fs.fileCount++
	if fs.fileCount > fs.MaxFiles {
		return nil, ErrTooManyFiles
	}
	f, err := fs.Fs.TempFile(dir, prefix)
	if err != nil {
		return nil, err
	}
	return &limitedFile{File: f, fs: fs}, nil
}

// ReadDir lists a directory.
func (fs *LimitedFs) ReadDir(path string) ([]os.FileInfo, error) {
	return fs.Fs.ReadDir(path)
}

// MkdirAll creates a directory tree; directories count as files for the
// purpose of the budget.
func (fs *LimitedFs) MkdirAll(filename string, perm os.FileMode) error {
	fs.fileCount++
	if fs.fileCount > fs.MaxFiles {
		return ErrTooManyFiles
	}
	return fs.Fs.MkdirAll(filename, perm)
}

// Lstat returns file info without following symlinks.
func (fs *LimitedFs) Lstat(filename string) (os.FileInfo, error) {
	return fs.Fs.Lstat(filename)
}

// Symlink creates a symbolic link, counted against the file budget.
func (fs *LimitedFs) Symlink(target, link string) error {
	fs.fileCount++
	if fs.fileCount > fs.MaxFiles {
		return ErrTooManyFiles
	}
	return fs.Fs.Symlink(target, link)
}

// Readlink resolves a symbolic link.
func (fs *LimitedFs) Readlink(link string) (string, error) {
	return fs.Fs.Readlink(link)
}

// Chroot returns a filesystem rooted at path, sharing this filesystem's
// budgets.
func (fs *LimitedFs) Chroot(path string) (billy.Filesystem, error) {
	chrooted, err := fs.Fs.Chroot(path)
	if err != nil {
		return nil, err
	}
	return &LimitedFs{
		Fs:            chrooted,
		MaxFiles:      fs.MaxFiles - fs.fileCount,
		TotalFileSize: fs.TotalFileSize - fs.totalSize,
	}, nil
}

// Root returns the root path of the filesystem.
func (fs *LimitedFs) Root() string {
	return fs.Fs.Root()
}
