// Package filex contains filesystem helpers used by the credential store:
// scaffold root discovery, directory creation and atomic file replacement.
package filex

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/trustkeeper/internal/common"
)

// FindAncestor walks upward from start (inclusive) and returns the first
// directory whose base name equals name. It fails with
// common.ErrScaffoldNotFound once the filesystem root is reached.
func FindAncestor(start, name string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("abs %s: %w", start, err)
	}

	for {
		if filepath.Base(dir) == name {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%w: ensure the directory %q exists above %s", common.ErrScaffoldNotFound, name, start)
		}
		dir = parent
	}
}

// EnsureDirs creates every directory in dirs (and missing parents) with
// owner-only permissions.
func EnsureDirs(dirs ...string) error {
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	return nil
}

// Exists reports whether path exists. Stat errors other than "not exist"
// count as existing so callers never overwrite something they cannot see.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || !os.IsNotExist(err)
}

// AtomicWriteFile writes data to a temp file in the target directory, sets
// perm, syncs and renames it over path. Replacing a read-only file works as
// long as the directory is writable.
func AtomicWriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	fail := func(err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}

	if _, err := tmp.Write(data); err != nil {
		return fail(err)
	}
	if err := tmp.Chmod(perm); err != nil {
		return fail(err)
	}
	if err := tmp.Sync(); err != nil {
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
