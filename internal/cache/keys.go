package cache

import (
	"fmt"
	"sort"
	"strings"
)

// KeySeparator delimits cache key segments.
const KeySeparator = "::"

// Key joins segments into a stable cache key. Empty segments collapse to "-"
// so that optional filters always occupy the same position.
func Key(segments ...string) string {
	parts := make([]string, len(segments))
	for i, segment := range segments {
		if segment == "" {
			parts[i] = "-"
			continue
		}
		parts[i] = segment
	}
	return strings.Join(parts, KeySeparator)
}

// FilterSegment renders a filter map deterministically, sorting by field name.
func FilterSegment(fields map[string]any) string {
	if len(fields) == 0 {
		return "-"
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make([]string, len(names))
	for i, name := range names {
		pairs[i] = fmt.Sprintf("%s=%v", name, fields[name])
	}
	return strings.Join(pairs, ",")
}
