package storage

import (
	"fmt"
	"os"
	"path/filepath"

	kerrors "github.com/PolarWolf314/ordo/internal/errors"
)

// OS stores files on the local filesystem.
type OS struct{}

// ReadFile reads the whole file at name.
func (OS) ReadFile(name string) ([]byte, error) {
	data, err := os.ReadFile(name)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %w", kerrors.ErrFileNotFound, err)
	}
	return data, err
}

// WriteFile writes data to a temporary file next to name and renames it into
// place, so a crash leaves either the old or the new content. The mode of an
// existing file is kept; new files are created 0600. A symlink is followed
// so the link itself stays in place.
func (OS) WriteFile(name string, data []byte) error {
	name = followSymlink(name)
	perm := os.FileMode(0600)
	if fi, err := os.Stat(name); err == nil {
		if fi.IsDir() {
			return fmt.Errorf("cannot write %s: is a directory", name)
		}
		perm = fi.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(name), "."+filepath.Base(name)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file for %s: %w", name, err)
	}
	tmpName := tmp.Name()
	renamed := false
	defer func() {
		if !renamed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return fmt.Errorf("failed to set permissions on %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, name); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", name, err)
	}
	renamed = true

	return nil
}

// followSymlink returns the file name points to, or name itself when it is
// not a symlink. A dangling link resolves to its target so writing creates it.
func followSymlink(name string) string {
	if resolved, err := filepath.EvalSymlinks(name); err == nil {
		return resolved
	}
	fi, err := os.Lstat(name)
	if err != nil || fi.Mode()&os.ModeSymlink == 0 {
		return name
	}
	link, err := os.Readlink(name)
	if err != nil {
		return name
	}
	if !filepath.IsAbs(link) {
		link = filepath.Join(filepath.Dir(name), link)
	}
	return link
}

// Stat returns information about name.
func (OS) Stat(name string) (Info, error) {
	fi, err := os.Stat(name)
	if os.IsNotExist(err) {
		return Info{}, fmt.Errorf("%w: %w", kerrors.ErrFileNotFound, err)
	}
	if err != nil {
		return Info{}, err
	}
	return infoFrom(fi), nil
}

// Exists reports whether name exists.
func (OS) Exists(name string) bool {
	_, err := os.Stat(name)
	return err == nil
}

// Remove deletes name. A missing file is not an error.
func (OS) Remove(name string) error {
	if err := os.Remove(name); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
