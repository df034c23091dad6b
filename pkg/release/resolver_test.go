package release

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duperknight/ashell-install/pkg/errors"
)

type stubLister struct {
	entries []TagEntry
	err     error
	calls   int
}

func (s *stubLister) ListTags(ctx context.Context) ([]TagEntry, error) {
	s.calls++
	return s.entries, s.err
}

func TestResolveSelectsNumericMaximum(t *testing.T) {
	lister := &stubLister{entries: []TagEntry{
		{Name: "1.2.0", ZipballURL: "https://registry/zip/1.2.0"},
		{Name: "1.10.0", ZipballURL: "https://registry/zip/1.10.0"},
		{Name: "1.9.9", ZipballURL: "https://registry/zip/1.9.9"},
		{Name: "notaversion", ZipballURL: "https://registry/zip/notaversion"},
	}}

	got, err := Resolve(context.Background(), lister)
	require.NoError(t, err)

	// Numeric triple comparison, not lexicographic: 1.10.0 > 1.9.9
	assert.Equal(t, Tag{1, 10, 0}, got.Tag)
	assert.Equal(t, "https://registry/zip/1.10.0", got.ZipballURL)
}

func TestResolveSkipsEntriesWithoutArchive(t *testing.T) {
	lister := &stubLister{entries: []TagEntry{
		{Name: "9.9.9", ZipballURL: ""},
		{Name: "1.0.0", ZipballURL: "https://registry/zip/1.0.0"},
	}}

	got, err := Resolve(context.Background(), lister)
	require.NoError(t, err)
	assert.Equal(t, Tag{1, 0, 0}, got.Tag)
}

func TestResolveEmptySet(t *testing.T) {
	tests := []struct {
		name    string
		entries []TagEntry
	}{
		{"no tags at all", nil},
		{"all invalid labels", []TagEntry{
			{Name: "latest", ZipballURL: "https://registry/zip/latest"},
			{Name: "1.2", ZipballURL: "https://registry/zip/1.2"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(context.Background(), &stubLister{entries: tt.entries})
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, errors.ErrResolveNoVersion))
			assert.Contains(t, err.Error(), "no eligible version found")
		})
	}
}

func TestResolvePropagatesListerError(t *testing.T) {
	wantErr := errors.New(errors.ErrResolveRegistry, "registry unreachable")
	_, err := Resolve(context.Background(), &stubLister{err: wantErr})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrResolveRegistry))
}
