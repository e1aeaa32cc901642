// Package srcfile reads SCL source files.
package srcfile

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"unicode/utf8"
)

// Error kinds, matched with errors.Is.
var (
	ErrNotFound   = errors.New("file not found")
	ErrPermission = errors.New("permission denied")
	ErrDecode     = errors.New("invalid UTF-8")
	ErrRead       = errors.New("read failed")
)

// Error describes a failed source file operation.
type Error struct {
	Op   string
	Path string
	Kind error // one of the Err* kinds
	Err  error // underlying cause, may be nil
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Kind)
}

// Is reports whether target is the error kind.
func (e *Error) Is(target error) bool { return target == e.Kind }

func (e *Error) Unwrap() error { return e.Err }

// MaxSize is the largest source file Read accepts.
const MaxSize = 16 << 20

// Read returns the contents of the file at path as a string.
// The contents must be valid UTF-8.
func Read(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", &Error{Op: "open", Path: path, Kind: classify(err), Err: err}
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxSize+1))
	if err != nil {
		return "", &Error{Op: "read", Path: path, Kind: classify(err), Err: err}
	}
	if len(data) > MaxSize {
		return "", &Error{Op: "read", Path: path, Kind: ErrRead, Err: fmt.Errorf("file exceeds %d bytes", MaxSize)}
	}
	if !utf8.Valid(data) {
		return "", &Error{Op: "decode", Path: path, Kind: ErrDecode}
	}
	return string(data), nil
}

// Write stores data at path, creating or truncating the file.
func Write(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0644); err != nil {
		return &Error{Op: "write", Path: path, Kind: classify(err), Err: err}
	}
	return nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return ErrNotFound
	case errors.Is(err, fs.ErrPermission):
		return ErrPermission
	default:
		return ErrRead
	}
}
