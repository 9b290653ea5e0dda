package intake

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// ErrReplayTooLarge indicates the payload exceeds the configured max size.
var ErrReplayTooLarge = errors.New("replay too large")

// replayExtensions are the recognized AoE2 recorded-game file suffixes.
var replayExtensions = map[string]bool{
	".aoe2record": true,
	".mgz":        true,
	".mgx":        true,
	".mgx2":       true,
}

// minReplaySize is the smallest byte count that can hold the header-length
// word plus any header at all.
const minReplaySize = 8

// readAllWithLimit reads from r and rejects payloads larger than maxBytes.
func readAllWithLimit(r io.Reader, maxBytes int64) ([]byte, error) {
	if r == nil {
		return nil, fmt.Errorf("reader is required")
	}
	if maxBytes <= 0 {
		return nil, fmt.Errorf("max bytes must be greater than 0")
	}
	limited := &io.LimitedReader{R: r, N: maxBytes + 1}
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%w: max %d bytes", ErrReplayTooLarge, maxBytes)
	}
	return data, nil
}

// hasReplayExtension reports whether the filename carries a recognized
// recorded-game suffix.
func hasReplayExtension(filename string) bool {
	return replayExtensions[strings.ToLower(filepath.Ext(filename))]
}

// hasReplayHeader checks the file's leading header-length word. Both the
// DE .aoe2record container and the older mgx family begin with a 4-byte
// little-endian length of the compressed header, which must cover at least
// the word itself and cannot exceed the file size.
func hasReplayHeader(data []byte) bool {
	if len(data) < minReplaySize {
		return false
	}
	headerLen := binary.LittleEndian.Uint32(data[:4])
	return headerLen >= 8 && uint64(headerLen) <= uint64(len(data))
}

// validate applies the full submission rule set and returns a reason code
// on the first failure.
func validate(filename string, data []byte) (reason string, ok bool) {
	if len(data) == 0 {
		return ReasonEmpty, false
	}
	if !hasReplayExtension(filename) {
		return ReasonBadExtension, false
	}
	if !hasReplayHeader(data) {
		return ReasonBadHeader, false
	}
	return "", true
}
