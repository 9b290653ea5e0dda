package command

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aoe2league/recbot/internal/channel"
	"github.com/aoe2league/recbot/internal/config"
	"github.com/aoe2league/recbot/internal/intake"
	"github.com/aoe2league/recbot/internal/notify"
	"github.com/aoe2league/recbot/internal/results"
	"github.com/aoe2league/recbot/internal/storage"
)

// Prefix marks a text message as a command.
const Prefix = "!"

// Recognized commands.
const (
	CmdPing    = "ping"
	CmdStatus  = "status"
	CmdDelete  = "delete"
	CmdReindex = "reindex"
)

// replayKeyPrefix is the bucket namespace reconciled by reindex.
const replayKeyPrefix = "replays/"

// ledgerStore is the slice of the results ledger the router needs.
type ledgerStore interface {
	Append(ctx context.Context, entry results.Entry) error
	RecordReplay(ctx context.Context, storageKey string) (bool, error)
	ForgetReplay(ctx context.Context, storageKey string) error
	CountEntries(ctx context.Context) (int, error)
	CountReplays(ctx context.Context) (int, error)
}

// userResolver resolves a platform user ID to a display name. Best effort;
// failures leave the name empty.
type userResolver interface {
	ResolveDisplayName(ctx context.Context, userID string) (string, error)
}

// Router dispatches one inbound message to the correct handler based on
// message shape and actor identity. It runs on the single dispatch loop,
// so handlers never execute concurrently.
type Router struct {
	cfg      config.DiscordConfig
	pipeline *intake.Pipeline
	opener   channel.AttachmentOpener
	notifier *notify.Notifier
	gateway  storage.Gateway
	ledger   ledgerStore
	guard    *Guard
	users    userResolver
	logger   *slog.Logger
}

// NewRouter wires the router with its collaborators. users may be nil.
func NewRouter(
	cfg config.DiscordConfig,
	pipeline *intake.Pipeline,
	opener channel.AttachmentOpener,
	notifier *notify.Notifier,
	gateway storage.Gateway,
	ledger ledgerStore,
	guard *Guard,
	users userResolver,
	log *slog.Logger,
) *Router {
	if log == nil {
		log = slog.Default()
	}
	return &Router{
		cfg:      cfg,
		pipeline: pipeline,
		opener:   opener,
		notifier: notifier,
		gateway:  gateway,
		ledger:   ledger,
		guard:    guard,
		users:    users,
		logger:   log.With(slog.String("component", "router")),
	}
}

// Route classifies and handles one inbound message. Every recognized event
// produces exactly one reply; everything else is silently ignored.
func (r *Router) Route(ctx context.Context, msg channel.InboundMessage) error {
	if r.cfg.IsIgnoredUser(msg.Sender.SubjectID) {
		return nil
	}

	if strings.HasPrefix(msg.Text, Prefix) {
		return r.handleCommand(ctx, msg)
	}

	if !results.IsResultsChannel(msg.Conversation.Name, r.cfg.ResultsChannels) {
		return nil
	}

	if len(msg.Attachments) == 1 {
		return r.handleSubmission(ctx, msg)
	}
	if len(msg.Attachments) > 1 {
		r.logger.Info("ignoring message with multiple attachments",
			slog.String("message_id", msg.ID),
			slog.Int("attachments", len(msg.Attachments)),
		)
		return nil
	}

	return r.handleResultsText(ctx, msg)
}

func (r *Router) handleSubmission(ctx context.Context, msg channel.InboundMessage) error {
	att := msg.Attachments[0]
	r.logger.Info("replay submission",
		slog.String("message_id", msg.ID),
		slog.String("actor_id", msg.Sender.SubjectID),
		slog.String("filename", att.Name),
		slog.String("mime", att.Mime),
		slog.Int64("size", att.Size),
	)
	body, err := r.opener.OpenAttachment(ctx, att)
	if err != nil {
		r.logger.Error("attachment download failed",
			slog.String("message_id", msg.ID),
			slog.Any("error", err),
		)
		res := intake.Result{Outcome: intake.OutcomeFailed, Reason: intake.ReasonReadError}
		r.notifier.SubmissionResult(ctx, msg, att.Name, res)
		return nil
	}
	defer body.Close()

	sub := intake.Submission{
		ActorID:    msg.Sender.SubjectID,
		ActorName:  msg.Sender.DisplayName,
		ChannelID:  msg.Conversation.ID,
		Filename:   att.Name,
		Content:    body,
		ReceivedAt: msg.ReceivedAt,
	}
	res := r.pipeline.Handle(ctx, sub)
	r.notifier.SubmissionResult(ctx, msg, att.Name, res)

	if res.Stored() {
		if _, err := r.ledger.RecordReplay(ctx, res.Key); err != nil {
			r.logger.Error("ledger replay record failed", slog.String("key", res.Key), slog.Any("error", err))
		}
		// A results post can carry the replay and the score in one
		// message; record the entry with its replay link attached.
		if parsed := results.ParseContent(msg.Text); parsed.LooksLikeResult() {
			if err := r.recordEntry(ctx, msg, parsed, res.Key); err != nil {
				r.notifier.Escalate(ctx, resultsFailureText(msg))
			}
		}
	}
	return nil
}

func (r *Router) handleResultsText(ctx context.Context, msg channel.InboundMessage) error {
	parsed := results.ParseContent(msg.Text)
	if !parsed.LooksLikeResult() {
		return nil
	}
	if err := r.recordEntry(ctx, msg, parsed, ""); err != nil {
		r.notifier.Reply(ctx, msg, "Could not record results. Please try again later.")
		r.notifier.Escalate(ctx, resultsFailureText(msg))
		return nil
	}
	r.notifier.Reply(ctx, msg, "Results recorded.")
	return nil
}

func resultsFailureText(msg channel.InboundMessage) string {
	return fmt.Sprintf("Results recording failure: poster %s, message %s.",
		msg.Sender.SubjectID, messageLink(msg))
}

func (r *Router) recordEntry(ctx context.Context, msg channel.InboundMessage, parsed results.Parsed, storageKey string) error {
	entry := results.Entry{
		RecordedAt:      msg.ReceivedAt,
		MessageLink:     messageLink(msg),
		Poster:          msg.Sender.DisplayName,
		Bracket:         msg.Conversation.Category,
		Player1ID:       parsed.Player1ID,
		Player1Name:     r.displayName(ctx, parsed.Player1ID),
		Player1Score:    parsed.Player1Score,
		Player2ID:       parsed.Player2ID,
		Player2Name:     r.displayName(ctx, parsed.Player2ID),
		Player2Score:    parsed.Player2Score,
		MapDraft:        parsed.MapDraft,
		CivDraft:        parsed.CivDraft,
		ReplaysLink:     storageKey,
		MessageContents: msg.Text,
	}
	if err := r.ledger.Append(ctx, entry); err != nil {
		r.logger.Error("ledger append failed", slog.String("message_id", msg.ID), slog.Any("error", err))
		return err
	}
	return nil
}

func (r *Router) displayName(ctx context.Context, userID string) string {
	if r.users == nil || userID == "" {
		return ""
	}
	name, err := r.users.ResolveDisplayName(ctx, userID)
	if err != nil {
		r.logger.Warn("display name lookup failed", slog.String("user_id", userID), slog.Any("error", err))
		return ""
	}
	return name
}

func (r *Router) handleCommand(ctx context.Context, msg channel.InboundMessage) error {
	fields := strings.Fields(strings.TrimPrefix(msg.Text, Prefix))
	if len(fields) == 0 {
		return nil
	}
	name := strings.ToLower(fields[0])
	args := fields[1:]

	switch name {
	case CmdPing:
		r.notifier.Reply(ctx, msg, "pong")
	case CmdStatus:
		r.replyStatus(ctx, msg)
	case CmdDelete:
		if !r.authorize(ctx, msg, name) {
			return nil
		}
		r.handleDelete(ctx, msg, args)
	case CmdReindex:
		if !r.authorize(ctx, msg, name) {
			return nil
		}
		r.handleReindex(ctx, msg)
	default:
		r.notifier.Reply(ctx, msg, fmt.Sprintf("Unknown command %q.", Prefix+name))
	}
	return nil
}

// authorize checks the admin guard and replies with a permission denial
// when the actor is not the admin. The privileged action never runs on
// denial.
func (r *Router) authorize(ctx context.Context, msg channel.InboundMessage, command string) bool {
	if r.guard.Authorize(msg.Sender.SubjectID, command) {
		return true
	}
	r.logger.Info("privileged command denied",
		slog.String("command", command),
		slog.String("user_id", msg.Sender.SubjectID),
	)
	r.notifier.Reply(ctx, msg, fmt.Sprintf("Permission denied: %s%s is admin-only.", Prefix, command))
	return false
}

func (r *Router) replyStatus(ctx context.Context, msg channel.InboundMessage) {
	replayCount, err := r.ledger.CountReplays(ctx)
	if err != nil {
		r.logger.Error("status replay count failed", slog.Any("error", err))
		r.notifier.Reply(ctx, msg, "Status unavailable.")
		return
	}
	entryCount, err := r.ledger.CountEntries(ctx)
	if err != nil {
		r.logger.Error("status entry count failed", slog.Any("error", err))
		r.notifier.Reply(ctx, msg, "Status unavailable.")
		return
	}
	r.notifier.Reply(ctx, msg, fmt.Sprintf("%d replays stored, %d results recorded.", replayCount, entryCount))
}

func (r *Router) handleDelete(ctx context.Context, msg channel.InboundMessage, args []string) {
	if len(args) != 1 {
		r.notifier.Reply(ctx, msg, fmt.Sprintf("Usage: %s%s <storage-key>", Prefix, CmdDelete))
		return
	}
	key := args[0]
	if err := r.gateway.Delete(ctx, key); err != nil {
		r.logger.Error("delete failed", slog.String("key", key), slog.Any("error", err))
		r.notifier.Reply(ctx, msg, fmt.Sprintf("Delete failed (%s).", intake.ReasonStorageError))
		return
	}
	if err := r.ledger.ForgetReplay(ctx, key); err != nil {
		r.logger.Error("ledger forget failed", slog.String("key", key), slog.Any("error", err))
	}
	r.notifier.Reply(ctx, msg, fmt.Sprintf("Deleted %s.", key))
}

func (r *Router) handleReindex(ctx context.Context, msg channel.InboundMessage) {
	total, added, err := r.Reindex(ctx)
	if err != nil {
		r.notifier.Reply(ctx, msg, fmt.Sprintf("Reindex failed (%s).", intake.ReasonStorageError))
		return
	}
	r.notifier.Reply(ctx, msg, fmt.Sprintf("Reindexed %d objects, %d new.", total, added))
}

// Reindex reconciles the ledger's known-replay set against the bucket
// listing. It is invoked by the admin command and by the nightly schedule.
func (r *Router) Reindex(ctx context.Context) (total, added int, err error) {
	keys, err := r.gateway.List(ctx, replayKeyPrefix)
	if err != nil {
		r.logger.Error("reindex list failed", slog.Any("error", err))
		return 0, 0, err
	}
	for _, key := range keys {
		inserted, err := r.ledger.RecordReplay(ctx, key)
		if err != nil {
			r.logger.Error("reindex record failed", slog.String("key", key), slog.Any("error", err))
			continue
		}
		if inserted {
			added++
		}
	}
	r.logger.Info("reindex complete", slog.Int("objects", len(keys)), slog.Int("new", added))
	return len(keys), added, nil
}

func messageLink(msg channel.InboundMessage) string {
	guild := msg.Conversation.GuildID
	if guild == "" {
		guild = "@me"
	}
	return fmt.Sprintf("https://discord.com/channels/%s/%s/%s", guild, msg.Conversation.ID, msg.ID)
}
