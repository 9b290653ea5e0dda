// Package channel provides the abstraction between the bot's pipeline and
// the chat platform. It defines the inbound/outbound message types, the
// adapter interfaces, and the single-consumer inbound queue.
package channel

import (
	"strings"
	"time"
)

// ChannelType identifies a messaging platform (e.g., "discord").
type ChannelType string

// String returns the channel type as a plain string.
func (c ChannelType) String() string {
	return string(c)
}

// Identity represents a sender's identity on a channel.
type Identity struct {
	SubjectID   string
	DisplayName string
}

// Conversation holds metadata about the chat context a message arrived in.
type Conversation struct {
	ID       string
	Name     string
	Category string
	GuildID  string
}

// Attachment represents a binary file attached to a message. The bytes are
// not carried inline; Open on the adapter resolves the URL to a reader.
type Attachment struct {
	ID   string
	URL  string
	Name string
	Size int64
	Mime string
}

// HasReference reports whether the attachment can be fetched.
func (a Attachment) HasReference() bool {
	return strings.TrimSpace(a.URL) != ""
}

// InboundMessage is a message received from the chat platform.
type InboundMessage struct {
	Channel      ChannelType
	ID           string
	Text         string
	Attachments  []Attachment
	Sender       Identity
	Conversation Conversation
	ReplyTarget  string
	Edited       bool
	ReceivedAt   time.Time
}

// OutboundMessage pairs a delivery target with reply text.
type OutboundMessage struct {
	Target  string
	Text    string
	ReplyTo string
}
