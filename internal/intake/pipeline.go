package intake

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/aoe2league/recbot/internal/storage"
)

// Submission is one inbound replay upload. It is created on receipt of a
// message attachment and discarded after the pipeline reaches a terminal
// state; durability lives entirely in the object the pipeline writes.
type Submission struct {
	ActorID    string
	ActorName  string
	ChannelID  string
	Filename   string
	Content    io.Reader
	ReceivedAt time.Time
}

// Pipeline validates a submission, derives its storage key, checks for
// duplicates, and persists the replay exactly once per (actor, content).
type Pipeline struct {
	gateway  storage.Gateway
	maxBytes int64
	logger   *slog.Logger
}

// NewPipeline creates the intake pipeline with the given gateway and size limit.
func NewPipeline(gateway storage.Gateway, maxBytes int64, log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{
		gateway:  gateway,
		maxBytes: maxBytes,
		logger:   log.With(slog.String("component", "intake")),
	}
}

// Handle runs one submission to a terminal Result. It never returns an
// error: every failure mode maps to a Result the notifier can relay, so
// the actor is never left without a response. Storage failures are not
// retried here; a visible failure beats a retry racing a concurrent
// identical submission.
func (p *Pipeline) Handle(ctx context.Context, sub Submission) Result {
	data, err := readAllWithLimit(sub.Content, p.maxBytes)
	if err != nil {
		if errors.Is(err, ErrReplayTooLarge) {
			p.logger.Info("submission rejected",
				slog.String("actor", sub.ActorID),
				slog.String("filename", sub.Filename),
				slog.String("reason", ReasonTooLarge),
			)
			return rejected(ReasonTooLarge)
		}
		p.logger.Error("submission read failed",
			slog.String("actor", sub.ActorID),
			slog.Any("error", err),
		)
		return failed(ReasonReadError)
	}

	if reason, ok := validate(sub.Filename, data); !ok {
		p.logger.Info("submission rejected",
			slog.String("actor", sub.ActorID),
			slog.String("filename", sub.Filename),
			slog.String("reason", reason),
		)
		return rejected(reason)
	}

	key := DeriveKey(sub.ChannelID, sub.ActorID, Fingerprint(data))

	exists, err := p.gateway.Exists(ctx, key)
	if err != nil {
		p.logger.Error("duplicate check failed", slog.String("key", key), slog.Any("error", err))
		return failed(ReasonStorageError)
	}
	if exists {
		p.logger.Info("duplicate submission skipped",
			slog.String("actor", sub.ActorID),
			slog.String("key", key),
		)
		return Result{Outcome: OutcomeDuplicate, Key: key}
	}

	if err := p.gateway.Put(ctx, key, bytes.NewReader(data)); err != nil {
		p.logger.Error("store failed", slog.String("key", key), slog.Any("error", err))
		return failed(ReasonStorageError)
	}

	p.logger.Info("replay stored",
		slog.String("actor", sub.ActorID),
		slog.String("filename", sub.Filename),
		slog.String("key", key),
		slog.Int("bytes", len(data)),
	)
	return Result{Outcome: OutcomeStored, Key: key}
}
