// Package redact implements the masking rules applied to sensitive
// configuration values before they leave the service.
//
// A masked value is recognized by exact equality with the standard
// placeholder or by the "***" server-redaction prefix. This is a heuristic
// contract shared with clients, not a cryptographic guarantee: a legitimate
// plaintext value that happens to start with "***" would be treated as
// masked. The rules here are intentionally conservative; when in doubt a
// value is treated as masked and left untouched.
package redact

import (
	"fmt"

	"github.com/dotmac-platform/settings-service/internal/constants"
)

// IsMasked reports whether the value is a placeholder rather than plaintext.
// Masked values must never be written back to the store or copied anywhere
// as if they were real secrets.
func IsMasked(value string) bool {
	if value == constants.MaskedValuePlaceholder {
		return true
	}
	return hasServerMaskPrefix(value)
}

// RevealAllowed reports whether a client holding this value could legitimately
// reveal it. Server-redacted values (the "***" prefix) were never sent in
// plaintext, so revealing them is impossible and the control stays disabled.
func RevealAllowed(value string) bool {
	return value != "" && !hasServerMaskPrefix(value)
}

// Mask produces the server-redacted form of a sensitive string value.
// The last four characters are preserved for recognizability when the value
// is long enough; short values collapse to the bare prefix so nothing useful
// leaks.
func Mask(value string) string {
	if value == "" {
		return ""
	}
	if len(value) > 8 {
		return constants.ServerMaskPrefix + value[len(value)-4:]
	}
	return constants.ServerMaskPrefix
}

// MaskAny redacts an arbitrary setting value. Non-string sensitive values
// (unusual, but the schema permits objects) are replaced wholesale with the
// bare prefix since partial preservation makes no sense for them.
func MaskAny(value any) any {
	switch v := value.(type) {
	case string:
		return Mask(v)
	case nil:
		return nil
	default:
		return constants.ServerMaskPrefix
	}
}

// IsMaskedValue reports whether an arbitrary decoded value is masked.
// Only strings can carry mask markers; any other type is real data.
func IsMaskedValue(value any) bool {
	s, ok := value.(string)
	return ok && IsMasked(s)
}

func hasServerMaskPrefix(value string) bool {
	prefix := constants.ServerMaskPrefix
	return len(value) >= len(prefix) && value[:len(prefix)] == prefix
}

// String implements a redacted fmt.Stringer wrapper for log fields that
// must never print plaintext secrets.
type String string

// String returns the redacted representation regardless of content.
func (s String) String() string {
	return fmt.Sprintf("%s(len=%d)", constants.ServerMaskPrefix, len(s))
}
