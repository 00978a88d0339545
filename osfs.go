package cryptobox

import (
	"os"
	"path/filepath"
	"time"

	"github.com/absfs/absfs"
)

// DirFS is an absfs.FileSystem backed by a directory on the host
// filesystem, rooted at Root. It is the production adapter callers
// pass to this package's functions, which all take an explicit
// absfs.FileSystem; tests substitute github.com/absfs/memfs instead,
// the same way the teacher's test suite does.
type DirFS struct {
	Root string
}

// NewDirFS roots a DirFS at dir. dir must already exist.
func NewDirFS(dir string) *DirFS {
	return &DirFS{Root: dir}
}

func (fs *DirFS) join(name string) string {
	return filepath.Join(fs.Root, name)
}

func (fs *DirFS) OpenFile(name string, flag int, perm os.FileMode) (absfs.File, error) {
	path := fs.join(name)
	if flag&os.O_CREATE != 0 {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}
	return os.OpenFile(path, flag, perm)
}

func (fs *DirFS) Open(name string) (absfs.File, error) {
	return fs.OpenFile(name, os.O_RDONLY, 0)
}

func (fs *DirFS) Create(name string) (absfs.File, error) {
	return fs.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o666)
}

func (fs *DirFS) Mkdir(name string, perm os.FileMode) error {
	return os.Mkdir(fs.join(name), perm)
}

func (fs *DirFS) MkdirAll(name string, perm os.FileMode) error {
	return os.MkdirAll(fs.join(name), perm)
}

func (fs *DirFS) Remove(name string) error {
	return os.Remove(fs.join(name))
}

func (fs *DirFS) RemoveAll(path string) error {
	return os.RemoveAll(fs.join(path))
}

func (fs *DirFS) Rename(oldpath, newpath string) error {
	return os.Rename(fs.join(oldpath), fs.join(newpath))
}

func (fs *DirFS) Stat(name string) (os.FileInfo, error) {
	return os.Stat(fs.join(name))
}

func (fs *DirFS) Chmod(name string, mode os.FileMode) error {
	return os.Chmod(fs.join(name), mode)
}

func (fs *DirFS) Chtimes(name string, atime, mtime time.Time) error {
	return os.Chtimes(fs.join(name), atime, mtime)
}

func (fs *DirFS) Chown(name string, uid, gid int) error {
	return os.Chown(fs.join(name), uid, gid)
}

func (fs *DirFS) Truncate(name string, size int64) error {
	return os.Truncate(fs.join(name), size)
}

func (fs *DirFS) Separator() uint8 {
	return os.PathSeparator
}

func (fs *DirFS) ListSeparator() uint8 {
	return os.PathListSeparator
}

func (fs *DirFS) Chdir(dir string) error {
	return nil
}

func (fs *DirFS) Getwd() (string, error) {
	return "/", nil
}

func (fs *DirFS) TempDir() string {
	return os.TempDir()
}

// exists reports whether name can be stat'ed under fs. Any stat
// error, not only not-exist, makes it report false.
func exists(fs absfs.FileSystem, name string) bool {
	_, err := fs.Stat(name)
	return err == nil
}
