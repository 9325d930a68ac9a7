package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/dosanma1/forge-sub000/pkg/jsonapi"
)

// collectionID stands in for the id of a collection entry
const collectionID = "*"

// refsSuffix marks the index of documents embedding a resource
const refsSuffix = "refs"

// DocumentKey returns the cache key of a single-resource document
func DocumentKey(typ, id string, mode jsonapi.Mode) string {
	return strings.Join([]string{typ, escapeKeyPart(id), mode.String()}, ":")
}

// CollectionKey returns the cache key of a collection document.
// The last part digests the ordered member identifiers, so two different
// item lists of one type never share an entry.
func CollectionKey(typ string, mode jsonapi.Mode, members []jsonapi.ResourceIdentifier) string {
	h := sha256.New()
	for _, m := range members {
		h.Write([]byte(escapeKeyPart(m.Type) + ":" + escapeKeyPart(m.ID) + "\n"))
	}
	return strings.Join([]string{typ, collectionID, mode.String(), hex.EncodeToString(h.Sum(nil)[:16])}, ":")
}

// refsKey returns the key listing the documents that embed typ/id
func refsKey(typ, id string) string {
	return strings.Join([]string{typ, escapeKeyPart(id), refsSuffix}, ":")
}

// collectionRefsKey returns the key listing every stored collection of typ
func collectionRefsKey(typ string) string {
	return strings.Join([]string{typ, collectionID, refsSuffix}, ":")
}

var keyEscaper = strings.NewReplacer(`\`, `\\`, ":", `\:`, "*", `\*`)

// escapeKeyPart keeps ids containing ':' or '*' from colliding with other keys
func escapeKeyPart(s string) string {
	return keyEscaper.Replace(s)
}
