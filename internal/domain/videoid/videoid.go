package videoid

import (
	"fmt"
	"regexp"
	"strings"

	yt "github.com/kkdai/youtube/v2"
)

var reID = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// Valid reports whether id is a well-formed YouTube video id: exactly 11
// characters from [A-Za-z0-9_-].
func Valid(id string) bool {
	return reID.MatchString(id)
}

// Extract accepts a bare id or any watch/short/embed URL and returns the id.
func Extract(s string) (string, error) {
	s = strings.TrimSpace(s)
	if Valid(s) {
		return s, nil
	}
	id, err := yt.ExtractVideoID(s)
	if err != nil {
		return "", fmt.Errorf("extract video id from %q: %w", s, err)
	}
	if !Valid(id) {
		return "", fmt.Errorf("extract video id from %q: malformed id %q", s, id)
	}
	return id, nil
}
