package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aoe2league/recbot/internal/channel"
	"github.com/aoe2league/recbot/internal/intake"
)

type recordingSender struct {
	sent    []channel.OutboundMessage
	direct  map[string][]string
	sendErr error
}

func newRecordingSender() *recordingSender {
	return &recordingSender{direct: map[string][]string{}}
}

func (s *recordingSender) Send(ctx context.Context, msg channel.OutboundMessage) error {
	if s.sendErr != nil {
		return s.sendErr
	}
	s.sent = append(s.sent, msg)
	return nil
}

func (s *recordingSender) SendDirect(ctx context.Context, userID, text string) error {
	s.direct[userID] = append(s.direct[userID], text)
	return nil
}

func origin() channel.InboundMessage {
	return channel.InboundMessage{
		ID:          "msg-1",
		ReplyTarget: "chan-1",
		Sender:      channel.Identity{SubjectID: "P1"},
	}
}

func TestMessageTemplates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		res  intake.Result
		want string
	}{
		{intake.Result{Outcome: intake.OutcomeStored}, `Replay "g.aoe2record" stored. Thanks!`},
		{intake.Result{Outcome: intake.OutcomeDuplicate}, `Replay "g.aoe2record" was already submitted, nothing to do.`},
		{intake.Result{Outcome: intake.OutcomeRejected, Reason: intake.ReasonEmpty}, `Replay "g.aoe2record" rejected (empty).`},
		{intake.Result{Outcome: intake.OutcomeFailed, Reason: intake.ReasonStorageError}, `Could not store replay "g.aoe2record" (storage_error). Please try again later.`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Message("g.aoe2record", tt.res))
	}
}

func TestSubmissionResultReplies(t *testing.T) {
	t.Parallel()

	sender := newRecordingSender()
	n := NewNotifier(sender, "admin-1", nil)

	n.SubmissionResult(context.Background(), origin(), "g.aoe2record", intake.Result{Outcome: intake.OutcomeStored})

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "chan-1", sender.sent[0].Target)
	assert.Equal(t, "msg-1", sender.sent[0].ReplyTo)
	assert.Empty(t, sender.direct, "stored outcome must not page the admin")
}

func TestSubmissionResultEscalatesFailures(t *testing.T) {
	t.Parallel()

	sender := newRecordingSender()
	n := NewNotifier(sender, "admin-1", nil)

	res := intake.Result{Outcome: intake.OutcomeFailed, Reason: intake.ReasonStorageError}
	n.SubmissionResult(context.Background(), origin(), "g.aoe2record", res)

	require.Len(t, sender.sent, 1)
	require.Len(t, sender.direct["admin-1"], 1)
	assert.Contains(t, sender.direct["admin-1"][0], "storage_error")
	assert.Contains(t, sender.direct["admin-1"][0], "P1")
}

func TestReplySendFailureIsSwallowed(t *testing.T) {
	t.Parallel()

	sender := newRecordingSender()
	sender.sendErr = errors.New("gateway down")
	n := NewNotifier(sender, "", nil)

	// Must not panic or propagate.
	n.Reply(context.Background(), origin(), "hello")
	assert.Empty(t, sender.sent)
}
