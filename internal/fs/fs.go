package fs

import (
	"os"
	"path/filepath"
	"strings"
)

// A thin wrapper around the host filesystem. All I/O is blocking and
// synchronous; each read or write acquires and releases its handle within
// the call. The interface exists so the pipeline can be tested against an
// in-memory filesystem.

type FS interface {
	ReadFile(path string) (string, error)
	WriteFile(path string, contents string) error
	MkdirAll(path string) error
	FileSize(path string) (int64, error)
	Exists(path string) bool
}

type realFS struct{}

func RealFS() FS {
	return realFS{}
}

func (realFS) ReadFile(path string) (string, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(contents), nil
}

func (realFS) WriteFile(path string, contents string) error {
	return os.WriteFile(path, []byte(contents), 0644)
}

func (realFS) MkdirAll(path string) error {
	return os.MkdirAll(path, 0755)
}

func (realFS) FileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

func (realFS) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Lexically removes "." and ".." elements
func CleanPath(path string) string {
	return filepath.Clean(path)
}

func ParentPath(path string) string {
	return filepath.Dir(path)
}

func BaseName(path string) string {
	return filepath.Base(path)
}

func JoinPath(elements ...string) string {
	return filepath.Join(elements...)
}

func IsAbs(path string) bool {
	return filepath.IsAbs(path)
}

// Reports whether "path" stays inside "root" after cleaning. Used to refuse
// writing import targets outside the output directory.
func ContainsPath(root string, path string) bool {
	root = CleanPath(root)
	path = CleanPath(path)
	if root == path {
		return true
	}
	return strings.HasPrefix(path, root+string(filepath.Separator))
}

// The path of "path" relative to "base" (starting with ".." elements when it
// lies outside it), or the input unchanged if no relative path can be formed
func RelativePath(base string, path string) string {
	if rel, err := filepath.Rel(base, path); err == nil {
		return rel
	}
	return path
}

const UTF8BOM = "\xef\xbb\xbf"

func StripBOM(contents string) (string, bool) {
	if strings.HasPrefix(contents, UTF8BOM) {
		return contents[len(UTF8BOM):], true
	}
	return contents, false
}
