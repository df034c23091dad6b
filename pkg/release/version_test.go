package release

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTag(t *testing.T) {
	tests := []struct {
		name  string
		label string
		want  Tag
		ok    bool
	}{
		{"plain triple", "1.2.3", Tag{1, 2, 3}, true},
		{"leading v", "v0.1.2", Tag{0, 1, 2}, true},
		{"leading V", "V2.0.0", Tag{2, 0, 0}, true},
		{"surrounding space", " 1.0.0 ", Tag{1, 0, 0}, true},
		{"two components", "1.2", Tag{}, false},
		{"four components", "1.2.3.4", Tag{}, false},
		{"pre-release suffix", "1.2.3-rc1", Tag{}, false},
		{"not a version", "notaversion", Tag{}, false},
		{"empty component", "1..3", Tag{}, false},
		{"negative component", "1.-2.3", Tag{}, false},
		{"leading plus", "+1.2.3", Tag{}, false},
		{"signed middle component", "1.+2.3", Tag{}, false},
		{"whitespace inside component", "1. 2.3", Tag{}, false},
		{"empty", "", Tag{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseTag(tt.label)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name string
		a, b Tag
		want int
	}{
		{"equal", Tag{1, 2, 3}, Tag{1, 2, 3}, 0},
		{"major wins", Tag{2, 0, 0}, Tag{1, 9, 9}, 1},
		{"minor numeric not string", Tag{1, 10, 0}, Tag{1, 9, 9}, 1},
		{"patch decides", Tag{1, 2, 3}, Tag{1, 2, 4}, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Compare(tt.a, tt.b))
			assert.Equal(t, -tt.want, Compare(tt.b, tt.a))
		})
	}
}

func TestDisplay(t *testing.T) {
	assert.Equal(t, "v1.2.3", Display("1.2.3"))
	assert.Equal(t, "v1.2.3", Display("v1.2.3"))
	assert.Equal(t, "V1.2.3", Display("V1.2.3"))
	assert.Equal(t, "", Display("  "))
}
