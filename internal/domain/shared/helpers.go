package shared

import (
	"strings"
)

func IsUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "23505") ||
		strings.Contains(errStr, "duplicate key") ||
		strings.Contains(errStr, "unique constraint")
}

// NormalizeName trims and collapses inner whitespace; names compare case-insensitively.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

func NormalizeColor(color string) string {
	color = strings.TrimSpace(color)
	if color == "" {
		return "#000000"
	}
	return color
}
