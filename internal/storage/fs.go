package storage

import (
	"fmt"
	"io"
	"os"

	"github.com/absfs/absfs"

	kerrors "github.com/PolarWolf314/ordo/internal/errors"
)

// FS stores files on any absfs filesystem, such as an in-memory memfs.
type FS struct {
	fs absfs.FileSystem
}

// NewFS wraps fs.
func NewFS(fs absfs.FileSystem) *FS {
	return &FS{fs: fs}
}

func (s *FS) ReadFile(name string) ([]byte, error) {
	f, err := s.fs.Open(name)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %w", kerrors.ErrFileNotFound, err)
		}
		return nil, err
	}
	defer f.Close()

	return io.ReadAll(f)
}

// WriteFile writes through a temporary name and renames it over name. A
// failed write leaves the previous content in place.
func (s *FS) WriteFile(name string, data []byte) error {
	perm := os.FileMode(0600)
	if fi, err := s.fs.Stat(name); err == nil {
		if fi.IsDir() {
			return fmt.Errorf("cannot write %s: is a directory", name)
		}
		perm = fi.Mode().Perm()
	}

	tmpName := name + ".ordo-tmp"
	f, err := s.fs.OpenFile(tmpName, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", tmpName, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", tmpName, err)
	}
	if err := f.Close(); err != nil {
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("failed to close %s: %w", tmpName, err)
	}
	if err := s.fs.Rename(tmpName, name); err != nil {
		// Some in-memory filesystems refuse to rename over an existing file.
		if rmErr := s.fs.Remove(name); rmErr != nil || s.fs.Rename(tmpName, name) != nil {
			_ = s.fs.Remove(tmpName)
			return fmt.Errorf("failed to move %s into place: %w", name, err)
		}
	}

	return nil
}

func (s *FS) Stat(name string) (Info, error) {
	fi, err := s.fs.Stat(name)
	if err != nil {
		if os.IsNotExist(err) {
			return Info{}, fmt.Errorf("%w: %w", kerrors.ErrFileNotFound, err)
		}
		return Info{}, err
	}
	return infoFrom(fi), nil
}

func (s *FS) Exists(name string) bool {
	_, err := s.fs.Stat(name)
	return err == nil
}

func (s *FS) Remove(name string) error {
	if !s.Exists(name) {
		return nil
	}
	return s.fs.Remove(name)
}
