package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

// SegmentID derives the stable content fingerprint for a chunk of text at the
// given position within its document. Identical content at the same position
// always produces the same id, which makes re-ingestion idempotent.
func SegmentID(text string, position int) string {
	h := sha256.Sum256([]byte(text + strconv.Itoa(position)))
	return hex.EncodeToString(h[:])
}
