package results

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestLedger(t *testing.T) *Ledger {
	t.Helper()
	ledger, err := OpenLedger(filepath.Join(t.TempDir(), "results.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = ledger.Close() })
	return ledger
}

func TestOpenLedgerMigratesOnce(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "results.db")
	first, err := OpenLedger(path)
	require.NoError(t, err)
	_, err = first.RecordReplay(context.Background(), "replays/c/a/fp")
	require.NoError(t, err)
	require.NoError(t, first.Close())

	// Reopening an already-migrated database applies nothing and keeps
	// the data.
	second, err := OpenLedger(path)
	require.NoError(t, err)
	defer second.Close()

	count, err := second.CountReplays(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestAppendAndCountEntries(t *testing.T) {
	t.Parallel()

	ledger := openTestLedger(t)
	ctx := context.Background()

	count, err := ledger.CountEntries(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	score1, score2 := 3, 0
	entry := Entry{
		MessageLink:     "https://discord.com/channels/1/2/3",
		Poster:          "P1",
		Bracket:         "Group A",
		Player1ID:       "100",
		Player1Name:     "P1",
		Player1Score:    &score1,
		Player2ID:       "200",
		Player2Name:     "P2",
		Player2Score:    &score2,
		MapDraft:        "https://aoe2cm.net/draft/zQKpk",
		CivDraft:        "https://aoe2cm.net/draft/SfNXP",
		ReplaysLink:     "s3://replays/replays/2/100/abc",
		MessageContents: "<@100> 3-0 <@200>",
	}
	require.NoError(t, ledger.Append(ctx, entry))
	require.NoError(t, ledger.Append(ctx, Entry{MessageLink: "x", Poster: "P2"}))

	count, err = ledger.CountEntries(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestRecordReplayIdempotent(t *testing.T) {
	t.Parallel()

	ledger := openTestLedger(t)
	ctx := context.Background()

	inserted, err := ledger.RecordReplay(ctx, "replays/c/a/fp")
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = ledger.RecordReplay(ctx, "replays/c/a/fp")
	require.NoError(t, err)
	assert.False(t, inserted)

	count, err := ledger.CountReplays(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestForgetReplay(t *testing.T) {
	t.Parallel()

	ledger := openTestLedger(t)
	ctx := context.Background()

	_, err := ledger.RecordReplay(ctx, "replays/c/a/fp")
	require.NoError(t, err)
	require.NoError(t, ledger.ForgetReplay(ctx, "replays/c/a/fp"))

	count, err := ledger.CountReplays(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	// Forgetting a missing key is not an error.
	assert.NoError(t, ledger.ForgetReplay(ctx, "replays/none"))
}
