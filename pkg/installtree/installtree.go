// Package installtree reconciles extracted release content into the
// persistent install location.
package installtree

import (
	"io/fs"
	"path/filepath"

	"github.com/duperknight/ashell-install/pkg/errors"
	"github.com/duperknight/ashell-install/pkg/logging"
	"github.com/duperknight/ashell-install/pkg/types"
)

// Wipe removes any prior install tree and recreates an empty root. The
// configuration home and launcher live outside the install root and are
// not touched.
func Wipe(fsys types.FS, root string) error {
	if err := fsys.RemoveAll(root); err != nil {
		return errors.Wrap(err, errors.ErrFileAccess, "failed to remove prior install tree")
	}
	if err := fsys.MkdirAll(root, 0755); err != nil {
		return errors.Wrap(err, errors.ErrDirCreate, "failed to create install root")
	}
	return nil
}

// Merge copies every root-level entry of sourceRoot into targetRoot.
// Directories are merged: existing files are overwritten, new files added.
// A file shadowed by a directory (or the reverse) replaces it. After the
// call the target mirrors the source content.
func Merge(fsys types.FS, sourceRoot, targetRoot string) error {
	logger := logging.GetLogger("installtree")

	if err := fsys.MkdirAll(targetRoot, 0755); err != nil {
		return errors.Wrap(err, errors.ErrDirCreate, "failed to create install root")
	}

	entries, err := fsys.ReadDir(sourceRoot)
	if err != nil {
		return errors.Wrap(err, errors.ErrFileAccess, "failed to read extracted content")
	}

	for _, entry := range entries {
		src := filepath.Join(sourceRoot, entry.Name())
		dst := filepath.Join(targetRoot, entry.Name())
		if err := copyEntry(fsys, src, dst, entry); err != nil {
			return err
		}
	}

	logger.Debug().Str("source", sourceRoot).Str("target", targetRoot).
		Int("entries", len(entries)).Msg("Merged release content into install tree")
	return nil
}

func copyEntry(fsys types.FS, src, dst string, entry fs.DirEntry) error {
	if entry.IsDir() {
		return copyDir(fsys, src, dst)
	}
	return copyFile(fsys, src, dst, entry)
}

func copyDir(fsys types.FS, src, dst string) error {
	// A plain file in the way of a directory is replaced
	if info, err := fsys.Stat(dst); err == nil && !info.IsDir() {
		if err := fsys.Remove(dst); err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "failed to replace file with directory at %s", dst)
		}
	}
	if err := fsys.MkdirAll(dst, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create directory %s", dst)
	}

	entries, err := fsys.ReadDir(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to read directory %s", src)
	}
	for _, entry := range entries {
		if err := copyEntry(fsys, filepath.Join(src, entry.Name()), filepath.Join(dst, entry.Name()), entry); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(fsys types.FS, src, dst string, entry fs.DirEntry) error {
	// A directory in the way of a file is replaced
	if info, err := fsys.Stat(dst); err == nil && info.IsDir() {
		if err := fsys.RemoveAll(dst); err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "failed to replace directory with file at %s", dst)
		}
	}

	data, err := fsys.ReadFile(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to read %s", src)
	}

	perm := fs.FileMode(0644)
	if info, err := entry.Info(); err == nil && info.Mode().Perm() != 0 {
		perm = info.Mode().Perm()
	}

	if err := fsys.WriteFile(dst, data, perm); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to write %s", dst)
	}
	return nil
}
