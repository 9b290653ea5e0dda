// Package notify turns pipeline results into chat replies.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aoe2league/recbot/internal/channel"
	"github.com/aoe2league/recbot/internal/intake"
)

// Notifier sends one fixed confirmation message per terminal Result.
// Failure messages carry the reason code, never a raw error trace.
type Notifier struct {
	sender      channel.Sender
	adminUserID string
	logger      *slog.Logger
}

// NewNotifier creates a Notifier that replies through sender and escalates
// failures to the configured admin user.
func NewNotifier(sender channel.Sender, adminUserID string, log *slog.Logger) *Notifier {
	if log == nil {
		log = slog.Default()
	}
	return &Notifier{
		sender:      sender,
		adminUserID: adminUserID,
		logger:      log.With(slog.String("component", "notify")),
	}
}

// Message renders the fixed template for a result.
func Message(filename string, res intake.Result) string {
	switch res.Outcome {
	case intake.OutcomeStored:
		return fmt.Sprintf("Replay %q stored. Thanks!", filename)
	case intake.OutcomeDuplicate:
		return fmt.Sprintf("Replay %q was already submitted, nothing to do.", filename)
	case intake.OutcomeRejected:
		return fmt.Sprintf("Replay %q rejected (%s).", filename, res.Reason)
	case intake.OutcomeFailed:
		return fmt.Sprintf("Could not store replay %q (%s). Please try again later.", filename, res.Reason)
	default:
		return fmt.Sprintf("Replay %q: unknown outcome.", filename)
	}
}

// SubmissionResult relays the result to the originating channel. Failed
// outcomes are additionally reported to the admin by direct message, in
// case the actor's retry will not help.
func (n *Notifier) SubmissionResult(ctx context.Context, origin channel.InboundMessage, filename string, res intake.Result) {
	n.Reply(ctx, origin, Message(filename, res))

	if res.Outcome == intake.OutcomeFailed {
		n.Escalate(ctx, fmt.Sprintf("Replay intake failure: actor %s, file %q, reason %s.",
			origin.Sender.SubjectID, filename, res.Reason))
	}
}

// Escalate reports an operational failure to the admin by direct message.
func (n *Notifier) Escalate(ctx context.Context, text string) {
	if n.adminUserID == "" {
		return
	}
	if err := n.sender.SendDirect(ctx, n.adminUserID, text); err != nil {
		n.logger.Error("admin notification failed", slog.Any("error", err))
	}
}

// Reply sends plain text back to the message's channel.
func (n *Notifier) Reply(ctx context.Context, origin channel.InboundMessage, text string) {
	msg := channel.OutboundMessage{
		Target:  origin.ReplyTarget,
		Text:    text,
		ReplyTo: origin.ID,
	}
	if err := n.sender.Send(ctx, msg); err != nil {
		n.logger.Error("reply failed",
			slog.String("target", origin.ReplyTarget),
			slog.Any("error", err),
		)
	}
}
