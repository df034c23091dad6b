// Package release implements version tag parsing, ordering, and resolution
// of the newest published release.
package release

import (
	"fmt"
	"strconv"
	"strings"
)

// Tag is an ordered (major, minor, patch) triple parsed from a registry
// supplied label.
type Tag struct {
	Major int
	Minor int
	Patch int
}

// String returns the canonical dotted form without a leading v
func (t Tag) String() string {
	return fmt.Sprintf("%d.%d.%d", t.Major, t.Minor, t.Patch)
}

// ParseTag parses a version label into a Tag. A single leading "v" or "V" is
// stripped; after that the label must be exactly three dot-separated
// non-negative integers. Anything else is rejected, never coerced, which
// deliberately excludes pre-release and suffixed tags.
func ParseTag(label string) (Tag, bool) {
	cleaned := strings.TrimSpace(label)
	if strings.HasPrefix(cleaned, "v") || strings.HasPrefix(cleaned, "V") {
		cleaned = cleaned[1:]
	}

	parts := strings.Split(cleaned, ".")
	if len(parts) != 3 {
		return Tag{}, false
	}

	nums := make([]int, 3)
	for i, part := range parts {
		if !allDigits(part) {
			return Tag{}, false
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return Tag{}, false
		}
		nums[i] = n
	}

	return Tag{Major: nums[0], Minor: nums[1], Patch: nums[2]}, true
}

// allDigits rejects the sign prefixes strconv.Atoi would accept
func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// Compare orders two tags lexicographically over (major, minor, patch).
// It returns -1, 0, or 1.
func Compare(a, b Tag) int {
	pairs := [3][2]int{
		{a.Major, b.Major},
		{a.Minor, b.Minor},
		{a.Patch, b.Patch},
	}
	for _, p := range pairs {
		if p[0] < p[1] {
			return -1
		}
		if p[0] > p[1] {
			return 1
		}
	}
	return 0
}

// Display formats a version string for human output with a leading v
func Display(version string) string {
	stripped := strings.TrimSpace(version)
	if stripped == "" {
		return stripped
	}
	if strings.HasPrefix(strings.ToLower(stripped), "v") {
		return stripped
	}
	return "v" + stripped
}
