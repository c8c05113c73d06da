package pkg

import "strings"

// Contains check source have target
func Contains(slice []string, val string) bool {
	for _, v := range slice {
		if v == val {
			return true
		}
	}
	return false
}

// IsBlank check string is empty or whitespace only
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Remove delete target from source, keep order
func Remove(slice []string, val string) []string {
	out := make([]string, 0, len(slice))
	for _, v := range slice {
		if v != val {
			out = append(out, v)
		}
	}
	return out
}
