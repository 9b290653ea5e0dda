package creds

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"golang.org/x/oauth2"
)

// clientFile matches the "installed application" credential layout used
// by common OAuth providers.
type clientFile struct {
	Installed struct {
		ClientID     string   `json:"client_id"`
		ClientSecret string   `json:"client_secret"`
		AuthURI      string   `json:"auth_uri"`
		TokenURI     string   `json:"token_uri"`
		RedirectURIs []string `json:"redirect_uris"`
	} `json:"installed"`
}

// LoadClientConfig builds an oauth2 config from a client credentials file.
func LoadClientConfig(path string, scopes []string) (*oauth2.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read client credentials: %w", err)
	}
	var cf clientFile
	if err := json.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("parse client credentials %s: %w", path, err)
	}
	if cf.Installed.ClientID == "" {
		return nil, fmt.Errorf("client credentials %s: missing installed.client_id", path)
	}
	redirect := "urn:ietf:wg:oauth:2.0:oob"
	if len(cf.Installed.RedirectURIs) > 0 {
		redirect = cf.Installed.RedirectURIs[0]
	}
	return &oauth2.Config{
		ClientID:     cf.Installed.ClientID,
		ClientSecret: cf.Installed.ClientSecret,
		Scopes:       scopes,
		RedirectURL:  redirect,
		Endpoint: oauth2.Endpoint{
			AuthURL:  cf.Installed.AuthURI,
			TokenURL: cf.Installed.TokenURI,
		},
	}, nil
}

// Authorize runs the interactive console flow: print the authorization
// URL, read the code from in, and exchange it for a token.
func Authorize(ctx context.Context, cfg *oauth2.Config, in io.Reader, out io.Writer) (*oauth2.Token, error) {
	url := cfg.AuthCodeURL("state", oauth2.AccessTypeOffline)
	fmt.Fprintf(out, "Open the following URL in a browser and paste the code here:\n%s\n> ", url)
	reader := bufio.NewReader(in)
	code, err := reader.ReadString('\n')
	if err != nil && code == "" {
		return nil, fmt.Errorf("read authorization code: %w", err)
	}
	code = trimLine(code)
	if code == "" {
		return nil, fmt.Errorf("empty authorization code")
	}
	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}
	return token, nil
}

func trimLine(s string) string {
	for len(s) > 0 {
		last := s[len(s)-1]
		if last != '\n' && last != '\r' && last != ' ' && last != '\t' {
			break
		}
		s = s[:len(s)-1]
	}
	return s
}
