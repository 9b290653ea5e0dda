package channel

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
)

// ErrStopNotSupported is returned when a connection does not support graceful shutdown.
var ErrStopNotSupported = errors.New("channel connection stop not supported")

// InboundHandler is a callback invoked when a message arrives from a channel.
type InboundHandler func(ctx context.Context, msg InboundMessage) error

// Sender delivers outbound text to the platform.
type Sender interface {
	Send(ctx context.Context, msg OutboundMessage) error
	// SendDirect delivers text to a user's direct-message channel.
	SendDirect(ctx context.Context, userID, text string) error
}

// AttachmentOpener resolves an attachment reference into readable bytes.
// Caller must close the reader.
type AttachmentOpener interface {
	OpenAttachment(ctx context.Context, att Attachment) (io.ReadCloser, error)
}

// Receiver establishes a long-lived connection to receive messages.
type Receiver interface {
	Connect(ctx context.Context, handler InboundHandler) (Connection, error)
}

// Connection represents an active, long-lived link to a channel platform.
type Connection interface {
	ChannelType() ChannelType
	Stop(ctx context.Context) error
	Running() bool
}

// BaseConnection is a default Connection implementation backed by a stop function.
type BaseConnection struct {
	channelType ChannelType
	stop        func(ctx context.Context) error
	running     atomic.Bool
}

// NewConnection creates a BaseConnection for the given channel type and stop function.
func NewConnection(channelType ChannelType, stop func(ctx context.Context) error) *BaseConnection {
	conn := &BaseConnection{
		channelType: channelType,
		stop:        stop,
	}
	conn.running.Store(true)
	return conn
}

// ChannelType returns the type of channel this connection serves.
func (c *BaseConnection) ChannelType() ChannelType {
	return c.channelType
}

// Stop gracefully shuts down the connection.
func (c *BaseConnection) Stop(ctx context.Context) error {
	if c.stop == nil {
		return ErrStopNotSupported
	}
	c.running.Store(false)
	return c.stop(ctx)
}

// Running reports whether the connection is still active.
func (c *BaseConnection) Running() bool {
	return c.running.Load()
}
