package registry

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Generated room ids look like "usa-vs-brazil-3f9a01bc": a slug of the
// display name plus the first uuid block as a collision suffix.
var roomSuffixPattern = regexp.MustCompile(`-[0-9a-f]{8}$`)

func slugify(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

func newRoomID(name string) string {
	suffix := uuid.New().String()[:8]
	slug := slugify(name)
	if slug == "" {
		return suffix
	}
	return slug + "-" + suffix
}

// baseName recovers a display name from a caller-supplied room id by
// stripping the trailing random-suffix pattern, if any.
func baseName(roomID string) string {
	stripped := roomSuffixPattern.ReplaceAllString(roomID, "")
	if stripped == "" {
		return roomID
	}
	return stripped
}
