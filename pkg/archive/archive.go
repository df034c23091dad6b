// Package archive unpacks downloaded release archives and locates the
// top-level content directory inside them.
package archive

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/duperknight/ashell-install/pkg/errors"
	"github.com/duperknight/ashell-install/pkg/logging"
)

// metadataPrefix is prepended by some archivers for extended attribute
// sidecar entries; such entries never hold real content.
const metadataPrefix = "__MACOSX"

// Extract unpacks the zip archive at archivePath into destDir and returns
// the path of the top-level content directory: the first entry whose first
// path segment is non-empty and not a platform metadata artifact.
func Extract(archivePath, destDir string) (string, error) {
	logger := logging.GetLogger("archive")

	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrTransferExtract, "failed to open archive")
	}
	defer func() { _ = reader.Close() }()

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", errors.Wrap(err, errors.ErrDirCreate, "failed to create extraction directory")
	}

	topLevel := ""
	for _, file := range reader.File {
		if err := extractEntry(file, destDir); err != nil {
			return "", err
		}
		if topLevel == "" {
			segment := firstSegment(file.Name)
			if segment != "" && !strings.HasPrefix(segment, metadataPrefix) {
				topLevel = segment
			}
		}
	}

	if topLevel == "" {
		return "", errors.New(errors.ErrTransferNoRoot, "failed to locate extracted source directory")
	}

	root := filepath.Join(destDir, topLevel)
	if _, err := os.Stat(root); err != nil {
		return "", errors.New(errors.ErrTransferNoRoot, "failed to locate extracted source directory")
	}

	logger.Debug().Str("root", root).Int("entries", len(reader.File)).Msg("Extracted archive")
	return root, nil
}

// extractEntry writes one archive entry under destDir, refusing paths that
// would escape it.
func extractEntry(file *zip.File, destDir string) error {
	cleaned := filepath.Clean(file.Name)
	if cleaned == "." || strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return errors.Newf(errors.ErrTransferExtract, "archive entry escapes extraction directory: %s", file.Name)
	}
	target := filepath.Join(destDir, cleaned)

	if file.FileInfo().IsDir() {
		if err := os.MkdirAll(target, 0755); err != nil {
			return errors.Wrap(err, errors.ErrDirCreate, "failed to create directory from archive")
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return errors.Wrap(err, errors.ErrDirCreate, "failed to create parent directory from archive")
	}

	in, err := file.Open()
	if err != nil {
		return errors.Wrapf(err, errors.ErrTransferExtract, "failed to read archive entry %s", file.Name)
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, file.Mode().Perm()|0200)
	if err != nil {
		return errors.Wrap(err, errors.ErrFileCreate, "failed to create file from archive")
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, in); err != nil {
		return errors.Wrapf(err, errors.ErrTransferExtract, "failed to write archive entry %s", file.Name)
	}
	return nil
}

// firstSegment returns the first path segment of an archive entry name.
// Archive entries always use forward slashes.
func firstSegment(name string) string {
	name = strings.TrimLeft(name, "/")
	if idx := strings.IndexByte(name, '/'); idx >= 0 {
		return name[:idx]
	}
	return name
}
