package discord

import (
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/aoe2league/recbot/internal/channel"
)

func TestCollectAttachments(t *testing.T) {
	t.Parallel()

	msg := &discordgo.Message{
		Attachments: []*discordgo.MessageAttachment{
			{
				ID:          "111",
				URL:         "https://cdn.example.com/rec.aoe2record",
				Filename:    "rec.aoe2record",
				Size:        2048,
				ContentType: "application/octet-stream",
			},
			{
				ID:       "222",
				URL:      "https://cdn.example.com/shot.png",
				Filename: "shot.png",
				Size:     10,
			},
		},
	}

	got := collectAttachments(msg)
	if len(got) != 2 {
		t.Fatalf("collectAttachments returned %d attachments, want 2", len(got))
	}
	if got[0].ID != "111" || got[0].Name != "rec.aoe2record" || got[0].Size != 2048 {
		t.Fatalf("unexpected first attachment: %+v", got[0])
	}
	if !got[0].HasReference() {
		t.Fatalf("expected first attachment to carry a reference")
	}
	if collectAttachments(nil) != nil {
		t.Fatalf("nil message should yield nil attachments")
	}
}

func TestTruncateText(t *testing.T) {
	t.Parallel()

	short := "stored"
	if truncateText(short) != short {
		t.Fatalf("short text must pass through unchanged")
	}

	long := strings.Repeat("x", discordMaxLength+50)
	got := truncateText(long)
	if len(got) != discordMaxLength {
		t.Fatalf("truncated length = %d, want %d", len(got), discordMaxLength)
	}
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("truncated text must end with ellipsis")
	}
}

func TestIsDuplicateInbound(t *testing.T) {
	t.Parallel()

	a := NewAdapter("token", nil)
	if a.isDuplicateInbound("m1") {
		t.Fatalf("first delivery must not be a duplicate")
	}
	if !a.isDuplicateInbound("m1") {
		t.Fatalf("second delivery must be a duplicate")
	}
	if a.isDuplicateInbound("") {
		t.Fatalf("empty message id is never deduped")
	}

	// Expired entries are forgotten.
	a.mu.Lock()
	a.seenMessages["m1"] = time.Now().UTC().Add(-2 * inboundDedupTTL)
	a.mu.Unlock()
	if a.isDuplicateInbound("m1") {
		t.Fatalf("expired entry must not count as duplicate")
	}
}

func TestAdapterType(t *testing.T) {
	t.Parallel()
	if Type != channel.ChannelType("discord") {
		t.Fatalf("unexpected channel type: %s", Type)
	}
}
