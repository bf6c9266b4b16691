package kennel

import (
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
)

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9.-]`)

// SanitizeFilename replaces every character outside [A-Za-z0-9.-] with an
// underscore. A name with nothing left after sanitizing becomes "file".
func SanitizeFilename(name string) string {
	safe := unsafeFilenameChars.ReplaceAllString(name, "_")
	if safe == "" {
		return "file"
	}
	return safe
}

// StorageName builds the on-disk name for an upload. The millisecond
// timestamp prefix keeps same-named uploads from colliding.
func StorageName(now time.Time, original string) string {
	return fmt.Sprintf("%d-%s", now.UnixMilli(), SanitizeFilename(original))
}

// ParseImageID parses an opaque image id from its string form.
func ParseImageID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("parse image id: %w", err)
	}
	return id, nil
}
