package httpmw

import (
	"net/http"
	"strings"
)

// maxUserIDLen caps the derived advisory user id.
const maxUserIDLen = 40

// UserIDFromHeaders derives the advisory user id from the authorization
// header. The header is used as a telemetry label only, never as an
// authenticated identity: a scheme prefix ("Bearer ", "Token ", ...) is
// stripped, the remainder is slugified, and the result capped at 40
// characters. No header means no user id.
func UserIDFromHeaders(h http.Header) string {
	raw := h.Get("Authorization")
	if raw == "" {
		return ""
	}
	if i := strings.IndexByte(raw, ' '); i >= 0 {
		raw = raw[i+1:]
	}
	id := Slugify(raw)
	if len(id) > maxUserIDLen {
		id = id[:maxUserIDLen]
	}
	return id
}

// Slugify lowercases s and collapses every run of non-alphanumeric ASCII
// into a single "-", trimming separators at both ends. Non-ASCII runes
// are treated as separators.
func Slugify(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pendingSep := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingSep && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingSep = false
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			if pendingSep && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingSep = false
			b.WriteRune(r + ('a' - 'A'))
		default:
			pendingSep = true
		}
	}
	return b.String()
}
