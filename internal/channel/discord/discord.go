// Package discord implements the channel adapter for Discord on top of
// bwmarrin/discordgo.
package discord

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/aoe2league/recbot/internal/channel"
)

// Type identifies this adapter.
const Type = channel.ChannelType("discord")

const (
	inboundDedupTTL   = time.Minute
	attachmentTimeout = 30 * time.Second
	discordMaxLength  = 2000
)

// Adapter owns one Discord session and translates gateway events into
// channel.InboundMessage values.
type Adapter struct {
	logger       *slog.Logger
	token        string
	mu           sync.Mutex
	session      *discordgo.Session
	seenMessages map[string]time.Time // keyed by messageID, create events only
	httpClient   *http.Client
}

// NewAdapter creates a Discord adapter for the given bot token.
func NewAdapter(token string, log *slog.Logger) *Adapter {
	if log == nil {
		log = slog.Default()
	}
	return &Adapter{
		logger:       log.With(slog.String("adapter", "discord")),
		token:        token,
		seenMessages: make(map[string]time.Time),
		httpClient:   &http.Client{Timeout: attachmentTimeout},
	}
}

func (a *Adapter) getOrCreateSession() (*discordgo.Session, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session != nil {
		return a.session, nil
	}
	session, err := discordgo.New("Bot " + a.token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentMessageContent
	a.session = session
	return session, nil
}

// Connect opens the gateway connection and forwards message create and
// edit events to handler. Edits are re-dispatched with Edited set so the
// pipeline can re-process corrected results posts; idempotent storage keys
// make repeated attachment uploads harmless.
func (a *Adapter) Connect(ctx context.Context, handler channel.InboundHandler) (channel.Connection, error) {
	session, err := a.getOrCreateSession()
	if err != nil {
		return nil, err
	}

	removeCreate := session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		if ctx.Err() != nil {
			return
		}
		if a.isDuplicateInbound(m.ID) {
			return
		}
		a.dispatch(ctx, s, m.Message, false, handler)
	})

	removeEdit := session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageUpdate) {
		if ctx.Err() != nil || m.Message == nil {
			return
		}
		a.dispatch(ctx, s, m.Message, true, handler)
	})

	if err := session.Open(); err != nil {
		removeCreate()
		removeEdit()
		return nil, fmt.Errorf("discord open connection: %w", err)
	}

	a.logger.Info("connected", slog.String("user", session.State.User.Username))

	stop := func(stopCtx context.Context) error {
		a.logger.Info("stop")
		removeCreate()
		removeEdit()
		return session.Close()
	}
	return channel.NewConnection(Type, stop), nil
}

func (a *Adapter) dispatch(ctx context.Context, s *discordgo.Session, m *discordgo.Message, edited bool, handler channel.InboundHandler) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	text := strings.TrimSpace(m.Content)
	if text == "" && len(m.Attachments) == 0 {
		return
	}

	msg := channel.InboundMessage{
		Channel:     Type,
		ID:          m.ID,
		Text:        text,
		Attachments: collectAttachments(m),
		Sender: channel.Identity{
			SubjectID:   m.Author.ID,
			DisplayName: m.Author.Username,
		},
		Conversation: a.describeConversation(s, m),
		ReplyTarget:  m.ChannelID,
		Edited:       edited,
		ReceivedAt:   time.Now().UTC(),
	}

	a.logger.Info("inbound received",
		slog.String("message_id", m.ID),
		slog.String("user_id", m.Author.ID),
		slog.Int("attachments", len(msg.Attachments)),
		slog.Bool("edited", edited),
	)

	if err := handler(ctx, msg); err != nil {
		a.logger.Error("handle inbound failed", slog.String("message_id", m.ID), slog.Any("error", err))
	}
}

// describeConversation resolves channel name and category from session state,
// falling back to the REST API on a cold cache.
func (a *Adapter) describeConversation(s *discordgo.Session, m *discordgo.Message) channel.Conversation {
	conv := channel.Conversation{
		ID:      m.ChannelID,
		GuildID: m.GuildID,
	}
	ch, err := s.State.Channel(m.ChannelID)
	if err != nil {
		if ch, err = s.Channel(m.ChannelID); err != nil {
			return conv
		}
	}
	conv.Name = ch.Name
	if ch.ParentID != "" {
		if parent, err := s.State.Channel(ch.ParentID); err == nil {
			conv.Category = parent.Name
		}
	}
	return conv
}

// Send delivers a reply, truncated to Discord's message length limit.
func (a *Adapter) Send(ctx context.Context, msg channel.OutboundMessage) error {
	session, err := a.getOrCreateSession()
	if err != nil {
		return err
	}
	target := strings.TrimSpace(msg.Target)
	if target == "" {
		return fmt.Errorf("discord target is required")
	}
	text := truncateText(msg.Text)
	if msg.ReplyTo != "" {
		_, err = session.ChannelMessageSendReply(target, text, &discordgo.MessageReference{
			ChannelID: target,
			MessageID: msg.ReplyTo,
		})
		return err
	}
	_, err = session.ChannelMessageSend(target, text)
	return err
}

// SendDirect delivers text to the user's DM channel.
func (a *Adapter) SendDirect(ctx context.Context, userID, text string) error {
	session, err := a.getOrCreateSession()
	if err != nil {
		return err
	}
	dm, err := session.UserChannelCreate(userID)
	if err != nil {
		return fmt.Errorf("open dm channel: %w", err)
	}
	_, err = session.ChannelMessageSend(dm.ID, truncateText(text))
	return err
}

// ResolveDisplayName looks up the user's global or account name. Best
// effort; the state cache is consulted before the REST API.
func (a *Adapter) ResolveDisplayName(ctx context.Context, userID string) (string, error) {
	session, err := a.getOrCreateSession()
	if err != nil {
		return "", err
	}
	user, err := session.User(userID, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("resolve user %s: %w", userID, err)
	}
	if user.GlobalName != "" {
		return user.GlobalName, nil
	}
	return user.Username, nil
}

// OpenAttachment downloads the attachment bytes from the CDN URL.
func (a *Adapter) OpenAttachment(ctx context.Context, att channel.Attachment) (io.ReadCloser, error) {
	if !att.HasReference() {
		return nil, fmt.Errorf("attachment has no downloadable reference")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, att.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download attachment: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("download attachment status: %d", resp.StatusCode)
	}
	return resp.Body, nil
}

func collectAttachments(msg *discordgo.Message) []channel.Attachment {
	if msg == nil || len(msg.Attachments) == 0 {
		return nil
	}
	attachments := make([]channel.Attachment, 0, len(msg.Attachments))
	for _, att := range msg.Attachments {
		attachments = append(attachments, channel.Attachment{
			ID:   att.ID,
			URL:  att.URL,
			Name: att.Filename,
			Size: int64(att.Size),
			Mime: att.ContentType,
		})
	}
	return attachments
}

func truncateText(text string) string {
	if len(text) > discordMaxLength {
		text = text[:discordMaxLength-3] + "..."
	}
	return text
}

// isDuplicateInbound tracks recently seen message IDs. The gateway may
// redeliver create events after a reconnect.
func (a *Adapter) isDuplicateInbound(messageID string) bool {
	if strings.TrimSpace(messageID) == "" {
		return false
	}
	now := time.Now().UTC()
	expireBefore := now.Add(-inboundDedupTTL)

	a.mu.Lock()
	defer a.mu.Unlock()
	for key, seenAt := range a.seenMessages {
		if seenAt.Before(expireBefore) {
			delete(a.seenMessages, key)
		}
	}
	if _, ok := a.seenMessages[messageID]; ok {
		return true
	}
	a.seenMessages[messageID] = now
	return false
}
