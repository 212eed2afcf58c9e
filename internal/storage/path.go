package storage

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ObjectPath builds a collision-resistant storage path for an upload:
// <user_id>/<yyyy/mm/dd>/<uuid><ext>. The original file extension is
// preserved, defaulting to .mp3 when the filename has none.
func ObjectPath(userID uuid.UUID, filename string, now time.Time) string {
	ext := filepath.Ext(filename)
	if ext == "" {
		ext = ".mp3"
	}
	return fmt.Sprintf("%s/%s/%s%s", userID, now.UTC().Format("2006/01/02"), uuid.New(), ext)
}

// PathFromPublicURL resolves the storage path of an object from its
// public URL by stripping everything up to and including the bucket
// segment. Returns an empty string when the URL does not reference the
// bucket.
func PathFromPublicURL(publicURL, bucket string) string {
	marker := "/" + bucket + "/"
	idx := strings.Index(publicURL, marker)
	if idx < 0 {
		return ""
	}
	return publicURL[idx+len(marker):]
}
