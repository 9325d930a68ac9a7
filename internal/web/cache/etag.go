package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
)

// ETag returns a strong entity tag for an encoded document
func ETag(body []byte) string {
	hash := sha256.Sum256(body)
	return `"` + hex.EncodeToString(hash[:16]) + `"`
}

// ParseIfNoneMatch splits an If-None-Match header into its entity tags
func ParseIfNoneMatch(header string) []string {
	header = strings.TrimSpace(header)
	if header == "" {
		return nil
	}
	if header == "*" {
		return []string{"*"}
	}

	var tags []string
	for _, part := range strings.Split(header, ",") {
		part = strings.TrimSpace(part)
		if len(part) < 2 || part[len(part)-1] != '"' {
			continue
		}
		tags = append(tags, part)
	}
	return tags
}

// MatchesETag uses the weak comparison of RFC 9110, as If-None-Match requires
func MatchesETag(etag string, tags []string) bool {
	if len(tags) == 1 && tags[0] == "*" {
		return true
	}
	want := strings.TrimPrefix(etag, "W/")
	for _, t := range tags {
		if strings.TrimPrefix(t, "W/") == want {
			return true
		}
	}
	return false
}

// NotModified reports whether r already holds the representation tagged etag
func NotModified(r *http.Request, etag string) bool {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		return false
	}
	return MatchesETag(etag, ParseIfNoneMatch(r.Header.Get("If-None-Match")))
}
