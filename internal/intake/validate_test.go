package intake

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

// validReplay builds a payload whose leading header-length word satisfies
// the replay signature check.
func validReplay(size int) []byte {
	if size < minReplaySize {
		size = minReplaySize
	}
	data := make([]byte, size)
	binary.LittleEndian.PutUint32(data[:4], uint32(size/2+8))
	for i := 4; i < size; i++ {
		data[i] = byte(i % 251)
	}
	return data
}

func TestReadAllWithLimit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		payload   []byte
		maxBytes  int64
		wantErr   bool
		errTooBig bool
	}{
		{
			name:     "within limit",
			payload:  []byte("hello"),
			maxBytes: 8,
		},
		{
			name:      "over limit",
			payload:   []byte("0123456789"),
			maxBytes:  5,
			wantErr:   true,
			errTooBig: true,
		},
		{
			name:     "exact limit",
			payload:  []byte("12345"),
			maxBytes: 5,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := readAllWithLimit(bytes.NewReader(tt.payload), tt.maxBytes)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				if tt.errTooBig && !errors.Is(err, ErrReplayTooLarge) {
					t.Fatalf("expected ErrReplayTooLarge, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(got) != string(tt.payload) {
				t.Fatalf("unexpected payload: %q", string(got))
			}
		})
	}
}

func TestHasReplayExtension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		filename string
		want     bool
	}{
		{"game.aoe2record", true},
		{"GAME.AoE2Record", true},
		{"old.mgz", true},
		{"older.mgx", true},
		{"hd.mgx2", true},
		{"notes.txt", false},
		{"replay.zip", false},
		{"aoe2record", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := hasReplayExtension(tt.filename); got != tt.want {
			t.Errorf("hasReplayExtension(%q) = %v, want %v", tt.filename, got, tt.want)
		}
	}
}

func TestHasReplayHeader(t *testing.T) {
	t.Parallel()

	if hasReplayHeader(nil) {
		t.Fatalf("nil payload must not pass the header check")
	}
	if hasReplayHeader([]byte{1, 2, 3}) {
		t.Fatalf("payload shorter than the header word must not pass")
	}
	if !hasReplayHeader(validReplay(64)) {
		t.Fatalf("well-formed payload must pass the header check")
	}

	// Header length claiming more bytes than the file holds.
	data := validReplay(64)
	binary.LittleEndian.PutUint32(data[:4], 1<<20)
	if hasReplayHeader(data) {
		t.Fatalf("oversized header length must not pass")
	}

	// Header length below the minimum.
	binary.LittleEndian.PutUint32(data[:4], 4)
	if hasReplayHeader(data) {
		t.Fatalf("undersized header length must not pass")
	}
}

func TestValidateReasons(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		filename string
		data     []byte
		reason   string
		ok       bool
	}{
		{"empty file", "game.aoe2record", nil, ReasonEmpty, false},
		{"wrong extension", "game.txt", validReplay(64), ReasonBadExtension, false},
		{"bad header", "game.aoe2record", []byte{0, 0, 0, 0, 1, 2, 3, 4}, ReasonBadHeader, false},
		{"valid", "game.aoe2record", validReplay(64), "", true},
	}
	for _, tt := range tests {
		reason, ok := validate(tt.filename, tt.data)
		if ok != tt.ok || reason != tt.reason {
			t.Errorf("%s: validate() = (%q, %v), want (%q, %v)", tt.name, reason, ok, tt.reason, tt.ok)
		}
	}
}
