// Package fileid derives stable post IDs from file paths for imported posts.
package fileid

import (
	"path/filepath"

	"github.com/google/uuid"
)

// namespace scopes file-derived IDs so they never collide with random post IDs.
var namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("scribe:file"))

// PostID returns a stable post ID for the given absolute path.
// Same path always yields the same ID, so re-importing a file updates the same post.
func PostID(absolutePath string) string {
	normalized := filepath.Clean(absolutePath)
	return uuid.NewSHA1(namespace, []byte(normalized)).String()
}
