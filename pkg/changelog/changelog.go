// Package changelog fetches, caches, and renders release notes. Notes are
// best-effort throughout: a registry without notes for a version degrades to
// the repository changelog, then to a placeholder, never to a failed install.
package changelog

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/rs/zerolog"

	"github.com/duperknight/ashell-install/pkg/errors"
	"github.com/duperknight/ashell-install/pkg/logging"
	"github.com/duperknight/ashell-install/pkg/paths"
	"github.com/duperknight/ashell-install/pkg/release"
	"github.com/duperknight/ashell-install/pkg/types"
)

const placeholder = "_No release notes were published for this version._"

// Source provides release notes for a tag. The registry client satisfies it.
type Source interface {
	ReleaseNotes(ctx context.Context, tag string) (string, error)
}

// documentSource is the optional fallback a Source may offer: the full
// repository changelog, from which the version's section is extracted.
type documentSource interface {
	ChangelogDocument(ctx context.Context) (string, error)
}

// Store caches release notes per version under the config home
type Store struct {
	fs     types.FS
	paths  paths.Paths
	logger zerolog.Logger
}

func NewStore(fsys types.FS, p paths.Paths) *Store {
	return &Store{
		fs:     fsys,
		paths:  p,
		logger: logging.GetLogger("changelog"),
	}
}

func (s *Store) cachePath(version string) string {
	return filepath.Join(s.paths.ChangelogDir(), version+".md")
}

// Fetch returns the notes for version, consulting the cache first. Fetched
// notes are cached; cache write failures are logged and ignored.
func (s *Store) Fetch(ctx context.Context, src Source, version string) string {
	if cached, err := s.fs.ReadFile(s.cachePath(version)); err == nil {
		s.logger.Debug().Str("version", version).Msg("using cached release notes")
		return string(cached)
	}

	notes, err := src.ReleaseNotes(ctx, release.Display(version))
	if err != nil {
		s.logger.Debug().Str("version", version).Err(err).Msg("release notes fetch failed")
	}

	if notes == "" {
		if docs, ok := src.(documentSource); ok {
			doc, err := docs.ChangelogDocument(ctx)
			if err != nil {
				s.logger.Debug().Err(err).Msg("changelog document fetch failed")
			}
			notes = ExtractSection(doc, version)
		}
	}
	if notes == "" {
		notes = placeholder
	}

	if err := s.fs.MkdirAll(s.paths.ChangelogDir(), 0755); err == nil {
		if err := s.fs.WriteFile(s.cachePath(version), []byte(notes), 0644); err != nil {
			s.logger.Warn().Str("version", version).Err(err).Msg("could not cache release notes")
		}
	}

	return notes
}

// MarkPending records that the notes for version should be shown on the
// shell's next start.
func (s *Store) MarkPending(version string) error {
	markerPath := s.paths.PendingChangelogPath()
	if err := s.fs.MkdirAll(filepath.Dir(markerPath), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create directory for %s", markerPath)
	}
	if err := s.fs.WriteFile(markerPath, []byte(version+"\n"), 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to write pending changelog marker")
	}
	s.logger.Debug().Str("version", version).Msg("marked changelog as pending")
	return nil
}

// TakePending consumes the pending marker, returning the recorded version.
func (s *Store) TakePending() (string, bool) {
	markerPath := s.paths.PendingChangelogPath()
	data, err := s.fs.ReadFile(markerPath)
	if err != nil {
		return "", false
	}
	if err := s.fs.Remove(markerPath); err != nil {
		s.logger.Warn().Str("path", markerPath).Err(err).Msg("could not remove pending changelog marker")
	}
	version := strings.TrimSpace(string(data))
	return version, version != ""
}

// ExtractSection pulls the section for version out of a full changelog
// document. A section starts at a heading mentioning the version and runs
// until the next heading of the same or higher level.
func ExtractSection(doc, version string) string {
	lines := strings.Split(doc, "\n")

	start, level := -1, 0
	for i, line := range lines {
		l := headingLevel(line)
		if l == 0 {
			continue
		}
		if start == -1 {
			if strings.Contains(line, version) {
				start, level = i, l
			}
			continue
		}
		if l <= level {
			return strings.TrimSpace(strings.Join(lines[start:i], "\n"))
		}
	}
	if start == -1 {
		return ""
	}
	return strings.TrimSpace(strings.Join(lines[start:], "\n"))
}

func headingLevel(line string) int {
	trimmed := strings.TrimLeft(line, "#")
	n := len(line) - len(trimmed)
	if n == 0 || !strings.HasPrefix(trimmed, " ") {
		return 0
	}
	return n
}

// Render turns markdown notes into terminal output. With color disabled the
// notty style is used. Rendering failures fall back to the raw markdown.
func Render(notes string, useColor bool) string {
	style := glamour.WithStandardStyle("notty")
	if useColor {
		style = glamour.WithAutoStyle()
	}

	renderer, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(100))
	if err != nil {
		return notes
	}
	out, err := renderer.Render(notes)
	if err != nil {
		return notes
	}
	return out
}

// Banner formats the one-line upgrade notice shown after an install.
func Banner(version string) string {
	return fmt.Sprintf("AShell %s installed. Run `ashell` to start; release notes will be shown on first launch.", release.Display(version))
}
