// Package storage is the persistence layer a buffer reads from and writes
// ciphertext or plaintext to.
package storage

import (
	"os"
	"time"
)

// Info describes a stored file.
type Info struct {
	ModTime time.Time
	Mode    os.FileMode
	Size    int64
	IsDir   bool
}

// Writable reports whether the owner may write the file.
func (i Info) Writable() bool {
	return i.Mode.Perm()&0200 != 0
}

// Storage reads and writes whole files.
//
// WriteFile must leave either the previous content or the new content at
// name, never a mix of the two.
type Storage interface {
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte) error
	Stat(name string) (Info, error)
	Exists(name string) bool
	// Remove deletes name. A missing file is not an error.
	Remove(name string) error
}

func infoFrom(fi os.FileInfo) Info {
	return Info{
		ModTime: fi.ModTime(),
		Mode:    fi.Mode(),
		Size:    fi.Size(),
		IsDir:   fi.IsDir(),
	}
}
