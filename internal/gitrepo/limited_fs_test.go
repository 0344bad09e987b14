package gitrepo

import (
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimitedFsFileCount(t *testing.T) {
	t.Parallel()

	fs := &LimitedFs{
		Fs:            memfs.New(),
		MaxFiles:      2,
		TotalFileSize: 1 << 20,
	}

	f1, err := fs.Create("one.txt")
	require.NoError(t, err)
	require.NoError(t, f1.Close())

	f2, err := fs.Create("two.txt")
	require.NoError(t, err)
	require.NoError(t, f2.Close())

	_, err = fs.Create("three.txt")
	assert.ErrorIs(t, err, ErrTooManyFiles)
}

func TestLimitedFsTotalSize(t *testing.T) {
	t.Parallel()

	fs := &LimitedFs{
		Fs:            memfs.New(),
		MaxFiles:      100,
		TotalFileSize: 10,
	}

	f, err := fs.Create("data.bin")
	require.NoError(t, err)

	_, err = f.Write([]byte("0123456789"))
	require.NoError(t, err)

	_, err = f.Write([]byte("x"))
	assert.ErrorIs(t, err, ErrRepositoryTooLarge)
	require.NoError(t, f.Close())
}

func TestLimitedFsChrootInheritsRemainingBudget(t *testing.T) {
	t.Parallel()

	fs := &LimitedFs{
		Fs:            memfs.New(),
		MaxFiles:      1,
		TotalFileSize: 1 << 20,
	}

	f, err := fs.Create("a.txt")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	sub, err := fs.Chroot("nested")
	require.NoError(t, err)

	_, err = sub.Create("b.txt")
	assert.ErrorIs(t, err, ErrTooManyFiles)
}
