package output

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrIO is the sentinel wrapped by every IOError.
var ErrIO = errors.New("i/o failed")

// IOError reports a destination that cannot be removed or written.
type IOError struct {
	Path string
	Op   string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap exposes both ErrIO and the underlying cause.
func (e *IOError) Unwrap() []error {
	return []error{ErrIO, e.Err}
}

// WriteMode selects how the destination file is replaced.
type WriteMode string

const (
	// WriteAtomic writes to a temp file next to the destination and renames
	// it into place. Readers see either the old or the new file.
	WriteAtomic WriteMode = "atomic"
	// WriteReplace deletes the destination and then writes it. A failure in
	// between leaves no file at all.
	WriteReplace WriteMode = "replace"
)

// IsValid checks if the write mode is known.
func (m WriteMode) IsValid() bool {
	return m == WriteAtomic || m == WriteReplace
}

// Write replaces the file at path with data using the given mode.
func Write(path string, data []byte, mode WriteMode) error {
	if mode == WriteReplace {
		return ReplaceFile(path, data)
	}
	return WriteFile(path, data)
}

// WriteFile atomically replaces the file at path with data.
// The parent directory must exist.
func WriteFile(path string, data []byte) (err error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	tmp, err := os.CreateTemp(dir, "."+base+".*.tmp")
	if err != nil {
		return &IOError{Path: path, Op: "create", Err: err}
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return &IOError{Path: path, Op: "write", Err: err}
	}
	if err = tmp.Sync(); err != nil {
		return &IOError{Path: path, Op: "sync", Err: err}
	}
	if err = tmp.Chmod(0644); err != nil {
		return &IOError{Path: path, Op: "chmod", Err: err}
	}
	if err = tmp.Close(); err != nil {
		return &IOError{Path: path, Op: "close", Err: err}
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return &IOError{Path: path, Op: "replace", Err: err}
	}
	return nil
}

// ReplaceFile deletes any existing file at path and writes data in its place.
func ReplaceFile(path string, data []byte) error {
	if _, err := os.Stat(path); err == nil {
		if err := os.Remove(path); err != nil {
			return &IOError{Path: path, Op: "delete", Err: err}
		}
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return &IOError{Path: path, Op: "create", Err: err}
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return &IOError{Path: path, Op: "write", Err: err}
	}
	if err := f.Close(); err != nil {
		return &IOError{Path: path, Op: "close", Err: err}
	}
	return nil
}
