package release

import (
	"context"

	"github.com/duperknight/ashell-install/pkg/errors"
	"github.com/duperknight/ashell-install/pkg/logging"
)

// TagEntry is one published tag as reported by the registry
type TagEntry struct {
	Name       string
	ZipballURL string
}

// TagLister is the one registry operation resolution needs
type TagLister interface {
	ListTags(ctx context.Context) ([]TagEntry, error)
}

// Candidate pairs a parsed version tag with its archive reference.
// It is constructed during resolution and discarded after selection.
type Candidate struct {
	Tag        Tag
	Label      string
	ZipballURL string
}

// Resolve selects the candidate with the maximum version tag among the
// registry's published tags. Entries whose label does not parse to a strict
// three-component version, or which lack an archive reference, are excluded.
// An empty candidate set is a fatal resolution error.
func Resolve(ctx context.Context, lister TagLister) (Candidate, error) {
	logger := logging.GetLogger("release")

	entries, err := lister.ListTags(ctx)
	if err != nil {
		return Candidate{}, err
	}

	var best Candidate
	found := false
	for _, entry := range entries {
		if entry.ZipballURL == "" {
			logger.Debug().Str("tag", entry.Name).Msg("Skipping tag without archive reference")
			continue
		}
		tag, ok := ParseTag(entry.Name)
		if !ok {
			logger.Debug().Str("tag", entry.Name).Msg("Skipping tag with non-version label")
			continue
		}
		if !found || Compare(tag, best.Tag) > 0 {
			best = Candidate{Tag: tag, Label: entry.Name, ZipballURL: entry.ZipballURL}
			found = true
		}
	}

	if !found {
		return Candidate{}, errors.New(errors.ErrResolveNoVersion, "no eligible version found")
	}

	logger.Info().Str("version", best.Tag.String()).Msg("Resolved latest release")
	return best, nil
}
