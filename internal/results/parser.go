// Package results records parsed tournament results posts and the replay
// objects stored for them.
package results

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	mentionPattern = regexp.MustCompile(`<@!?(\d+)>`)
	// "map: <url>", "maps: <url>", "map draft: <url>", case and colon optional.
	mapDraftPattern = regexp.MustCompile(`(?i)maps?(?:\s+draft)?\s*:?\s*(\S+)`)
	// "civ: <url>", "civs: <url>", "civ draft: <url>".
	civDraftPattern = regexp.MustCompile(`(?i)civs?(?:\s+draft)?\s*:?\s*(\S+)`)
	// Two digit groups on one line separated by non-digits, e.g. "3-0" or "||0:3||".
	scorePattern = regexp.MustCompile(`(?m)^[^\d\n]*(\d{1,4})[^\d\n]+(\d{1,4})[^\d\n]*$`)
)

// Parsed holds the fields extracted from a results message. Scores are nil
// when the message carries no score line.
type Parsed struct {
	Player1ID    string
	Player2ID    string
	MapDraft     string
	CivDraft     string
	Player1Score *int
	Player2Score *int
}

// LooksLikeResult reports whether the content carries the minimal shape of
// a results post: two player mentions.
func (p Parsed) LooksLikeResult() bool {
	return p.Player1ID != "" && p.Player2ID != ""
}

// ParseContent extracts players, draft links, and scores from a results
// message. Player mentions must appear exactly twice ("@P1 vs @P2") to be
// trusted; draft links are removed before the score scan so URLs never
// masquerade as scores.
func ParseContent(content string) Parsed {
	var parsed Parsed

	if players := mentionPattern.FindAllStringSubmatch(content, -1); len(players) == 2 {
		parsed.Player1ID = players[0][1]
		parsed.Player2ID = players[1][1]
	}
	content = mentionPattern.ReplaceAllString(content, "")

	if m := mapDraftPattern.FindStringSubmatch(content); m != nil {
		parsed.MapDraft = m[1]
	}
	content = mapDraftPattern.ReplaceAllString(content, "")

	if m := civDraftPattern.FindStringSubmatch(content); m != nil {
		parsed.CivDraft = m[1]
	}
	content = civDraftPattern.ReplaceAllString(content, "")

	if m := scorePattern.FindStringSubmatch(content); m != nil {
		if s1, err := strconv.Atoi(m[1]); err == nil {
			if s2, err := strconv.Atoi(m[2]); err == nil {
				parsed.Player1Score = &s1
				parsed.Player2Score = &s2
			}
		}
	}

	return parsed
}

// IsResultsChannel reports whether the channel name designates a results
// channel: a "results" prefix or suffix, or an explicitly configured extra.
func IsResultsChannel(name string, extras []string) bool {
	name = strings.TrimSpace(name)
	if strings.HasPrefix(name, "results") || strings.HasSuffix(name, "results") {
		return true
	}
	for _, extra := range extras {
		if name == strings.TrimSpace(extra) {
			return true
		}
	}
	return false
}
