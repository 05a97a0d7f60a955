package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

// identityHashLength is the truncated hex length of the identity hash.
const identityHashLength = 32

// ComputeIdentity derives the stable identity used to decide "already
// transferred" from pre-transfer attributes. Path and size are enough to
// re-derive the same identity from a fresh listing after a restart;
// modification time is deliberately excluded because alist may regenerate it
// when a storage is refreshed.
func ComputeIdentity(path string, size int64) string {
	hasher := sha256.New()
	hasher.Write([]byte(path))
	hasher.Write([]byte("|"))
	hasher.Write([]byte(strconv.FormatInt(size, 10)))
	return hex.EncodeToString(hasher.Sum(nil))[:identityHashLength]
}
