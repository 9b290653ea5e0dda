package results

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const messageWithDrafts = `
<@698259349415657522> vs. <@810249574173245501>  Recruit SF
Civs: https://aoe2cm.net/draft/SfNXP
Map: https://aoe2cm.net/draft/zQKpk
`

func TestParseContentDrafts(t *testing.T) {
	t.Parallel()

	parsed := ParseContent(messageWithDrafts)
	assert.Equal(t, "698259349415657522", parsed.Player1ID)
	assert.Equal(t, "810249574173245501", parsed.Player2ID)
	assert.Equal(t, "https://aoe2cm.net/draft/SfNXP", parsed.CivDraft)
	assert.Equal(t, "https://aoe2cm.net/draft/zQKpk", parsed.MapDraft)
	assert.Nil(t, parsed.Player1Score)
	assert.Nil(t, parsed.Player2Score)
	assert.True(t, parsed.LooksLikeResult())
}

const messageWithScore = `
<@698259349415657522> 3-0 <@810249574173245501>  Recruit SF
Civs: https://aoe2cm.net/draft/SfNXP
Map: https://aoe2cm.net/draft/zQKpk
`

func TestParseContentScore(t *testing.T) {
	t.Parallel()

	parsed := ParseContent(messageWithScore)
	assert.Equal(t, "698259349415657522", parsed.Player1ID)
	assert.Equal(t, "810249574173245501", parsed.Player2ID)
	assert.Equal(t, "https://aoe2cm.net/draft/SfNXP", parsed.CivDraft)
	assert.Equal(t, "https://aoe2cm.net/draft/zQKpk", parsed.MapDraft)
	require.NotNil(t, parsed.Player1Score)
	require.NotNil(t, parsed.Player2Score)
	assert.Equal(t, 3, *parsed.Player1Score)
	assert.Equal(t, 0, *parsed.Player2Score)
}

const messageWithSpoileredScore = `
<@359062701831618560> ||0:3|| <@271375929702350849>
General SF
Map draft: https://aoe2cm.net/draft/TlCgx
Civ draft: https://aoe2cm.net/draft/vlrcX
`

func TestParseContentSpoileredScore(t *testing.T) {
	t.Parallel()

	parsed := ParseContent(messageWithSpoileredScore)
	assert.Equal(t, "359062701831618560", parsed.Player1ID)
	assert.Equal(t, "271375929702350849", parsed.Player2ID)
	assert.Equal(t, "https://aoe2cm.net/draft/vlrcX", parsed.CivDraft)
	assert.Equal(t, "https://aoe2cm.net/draft/TlCgx", parsed.MapDraft)
	require.NotNil(t, parsed.Player1Score)
	require.NotNil(t, parsed.Player2Score)
	assert.Equal(t, 0, *parsed.Player1Score)
	assert.Equal(t, 3, *parsed.Player2Score)
}

func TestParseContentRequiresExactlyTwoMentions(t *testing.T) {
	t.Parallel()

	parsed := ParseContent("<@1> beat <@2> and <@3>")
	assert.Empty(t, parsed.Player1ID)
	assert.Empty(t, parsed.Player2ID)
	assert.False(t, parsed.LooksLikeResult())

	parsed = ParseContent("gg wp, no mentions here")
	assert.False(t, parsed.LooksLikeResult())
}

func TestIsResultsChannel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		extras []string
		want   bool
	}{
		{"results", nil, true},
		{"results-group-a", nil, true},
		{"weekly-results", nil, true},
		{"general", nil, false},
		{"scores", []string{"scores"}, true},
		{"scores", nil, false},
	}
	for _, tt := range tests {
		if got := IsResultsChannel(tt.name, tt.extras); got != tt.want {
			t.Errorf("IsResultsChannel(%q, %v) = %v, want %v", tt.name, tt.extras, got, tt.want)
		}
	}
}
