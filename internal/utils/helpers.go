package utils

import (
	"strconv"
	"strings"
)

// FormatInt64 converts an int64 to its decimal string representation.
func FormatInt64(i int64) string {
	return strconv.FormatInt(i, 10)
}

// MaskEmail obscures the local part of an email address for logging.
// "johndoe@example.com" becomes "j*****e@example.com".
func MaskEmail(email string) string {
	at := strings.Index(email, "@")
	if at <= 0 {
		return email
	}

	local := email[:at]
	domain := email[at:]

	if len(local) <= 2 {
		return strings.Repeat("*", len(local)) + domain
	}

	return local[:1] + strings.Repeat("*", len(local)-2) + local[len(local)-1:] + domain
}

// ContainsString checks if a string slice contains a specific string.
func ContainsString(slice []string, str string) bool {
	for _, s := range slice {
		if s == str {
			return true
		}
	}
	return false
}

// TruncateString truncates a string to maxLen runes, appending "..." when
// anything was cut off.
func TruncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
