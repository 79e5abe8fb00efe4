// Package utils provides utility functions and helpers for common operations
// used throughout the application. It includes string manipulation, error checking,
// and display formatting that simplify repeated tasks.
//
// This package follows Go's idioms for error handling and uses Go's standard
// library patterns where appropriate. Functions in this package are designed
// to be simple, self-contained, and have minimal side effects.
package utils

import (
	"strings"

	"github.com/go-sql-driver/mysql"
)

// IsDuplicateKeyError checks if an error is a MySQL duplicate key error.
// This is useful for handling unique constraint violations.
//
// Parameters:
//   - err: the error to check
//
// Returns:
//   - true if the error is a MySQL duplicate key error (code 1062), false otherwise
func IsDuplicateKeyError(err error) bool {
	if mysqlErr, ok := err.(*mysql.MySQLError); ok {
		// MySQL error number 1062 is "Duplicate entry"
		return mysqlErr.Number == 1062
	}
	return false
}

// TruncateString truncates a string to the given maximum length and adds ellipsis if necessary.
// This is useful for display or logging purposes where long strings need to be shortened.
// Length is counted in runes so multi-byte text is never cut mid-character.
//
// Parameters:
//   - s: the string to truncate
//   - maxLen: the maximum rune length of the resulting string (including ellipsis if added)
//
// Returns:
//   - the truncated string, with ellipsis appended if truncation occurred
func TruncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}

// MaskEmail masks the user part of an email address, showing only the first and last character.
// This is useful for privacy when displaying or logging email addresses.
//
// For example: "user@example.com" becomes "u***r@example.com"
//
// Parameters:
//   - email: the email address to mask
//
// Returns:
//   - the masked email address, or the original string if it's not a valid email format
func MaskEmail(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return email
	}

	user := parts[0]
	domain := parts[1]

	if len(user) <= 2 {
		return email
	}

	masked := string(user[0]) + strings.Repeat("*", len(user)-2) + string(user[len(user)-1]) + "@" + domain
	return masked
}

// ContainsString checks if a slice of strings contains a specific string.
//
// Parameters:
//   - slice: the slice of strings to search
//   - str: the string to look for
//
// Returns:
//   - true if the string is found in the slice, false otherwise
func ContainsString(slice []string, str string) bool {
	for _, item := range slice {
		if item == str {
			return true
		}
	}
	return false
}

