// Package creds handles the persisted OAuth token artifact consumed at
// startup. The bot never runs the authorization flow itself; it fails
// fast when the token file is missing or unusable so the operator can
// re-run `recbot token`.
package creds

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"golang.org/x/oauth2"
)

var (
	// ErrTokenMissing indicates the token file does not exist.
	ErrTokenMissing = errors.New("token file missing")
	// ErrTokenUnusable indicates the token is expired with no refresh token.
	ErrTokenUnusable = errors.New("token expired and not refreshable")
)

// Provider hands out the current credential. Refresh is delegated to the
// oauth2 token source; the bot itself never manages expiry.
type Provider struct {
	source oauth2.TokenSource
}

// Load reads and verifies the token file at path. An expired token is
// acceptable only when it carries a refresh token.
func Load(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrTokenMissing, path)
		}
		return nil, fmt.Errorf("read token file: %w", err)
	}
	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("parse token file %s: %w", path, err)
	}
	if !token.Valid() && token.RefreshToken == "" {
		return nil, fmt.Errorf("%w: %s", ErrTokenUnusable, path)
	}
	return &token, nil
}

// NewProvider wraps the token in a self-refreshing source.
func NewProvider(ctx context.Context, cfg *oauth2.Config, token *oauth2.Token) *Provider {
	return &Provider{source: cfg.TokenSource(ctx, token)}
}

// Current returns a live credential, refreshing it when needed.
func (p *Provider) Current() (*oauth2.Token, error) {
	return p.source.Token()
}

// Save writes the token back to path with owner-only permissions.
func Save(path string, token *oauth2.Token) error {
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	return nil
}
