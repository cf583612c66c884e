package tags

import "strings"

// RemovalPrefix marks an op that removes a tag instead of adding it.
const RemovalPrefix = "-"

// Normalize turns raw stub text into a tag value. Leading removal sentinels
// and surrounding whitespace are stripped; an empty result means "no tag".
func Normalize(value string) string {
	v := strings.TrimSpace(value)
	for strings.HasPrefix(v, RemovalPrefix) {
		v = strings.TrimSpace(strings.TrimPrefix(v, RemovalPrefix))
	}
	return v
}

// Removal returns the op that removes tag.
func Removal(tag string) string {
	return RemovalPrefix + tag
}

// IsRemoval reports whether op removes a tag.
func IsRemoval(op string) bool {
	return strings.HasPrefix(op, RemovalPrefix)
}

// Negate maps "x" to "-x" and "-x" to "x".
func Negate(op string) string {
	if IsRemoval(op) {
		return strings.TrimPrefix(op, RemovalPrefix)
	}
	return Removal(op)
}

// JoinSpec serializes ops the way the server expects them.
func JoinSpec(ops []string) string {
	return strings.Join(ops, ",")
}

// SplitSpec parses a serialized spec back into ops, dropping blanks.
func SplitSpec(spec string) []string {
	parts := strings.Split(spec, ",")
	ops := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" || p == RemovalPrefix {
			continue
		}
		ops = append(ops, p)
	}
	return ops
}
