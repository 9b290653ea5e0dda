package intake

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// keyPrefix namespaces all replay objects in the bucket.
const keyPrefix = "replays"

// Fingerprint returns the hex sha256 of the file bytes. Byte-identical
// submissions always produce the same fingerprint, whatever filename the
// client attached.
func Fingerprint(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// DeriveKey maps a submission to its object-store key. The key depends
// only on the channel, the actor, and the content fingerprint, so the same
// logical submission always lands on the same object.
func DeriveKey(channelID, actorID, fingerprint string) string {
	return fmt.Sprintf("%s/%s/%s/%s", keyPrefix, channelID, actorID, fingerprint)
}
