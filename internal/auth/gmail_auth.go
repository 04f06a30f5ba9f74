package auth

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// ErrTokenMissing means no cached token exists and no prompt was given to
// run the browser consent flow.
var ErrTokenMissing = errors.New("gmail token not found; run with -authorize-gmail first")

// GmailSendScope is all the receipt sender needs.
const GmailSendScope = gmail.GmailSendScope

// GetGmailClient retrieves a token, saves the token, then returns the generated client.
// prompt is read for the authorization code when no cached token exists; a
// nil prompt makes a missing token an error instead.
func GetGmailClient(ctx context.Context, credentialsPath, tokenPath string, prompt io.Reader, out io.Writer) (*http.Client, error) {
	// 1. Read credentials.json (The App's ID)
	b, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read client secret file: %w", err)
	}

	config, err := google.ConfigFromJSON(b, GmailSendScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse client secret file to config: %w", err)
	}

	tok, err := tokenFromFile(tokenPath)
	if err != nil {
		if prompt == nil {
			return nil, ErrTokenMissing
		}
		tok, err = getTokenFromWeb(ctx, config, prompt, out)
		if err != nil {
			return nil, err
		}
		if err := saveToken(tokenPath, tok); err != nil {
			return nil, err
		}
	}
	return config.Client(ctx, tok), nil
}

// NewGmailService upgrades the authenticated HTTP client to a Gmail service.
func NewGmailService(ctx context.Context, credentialsPath, tokenPath string) (*gmail.Service, error) {
	httpClient, err := GetGmailClient(ctx, credentialsPath, tokenPath, nil, nil)
	if err != nil {
		return nil, err
	}
	return gmail.NewService(ctx, option.WithHTTPClient(httpClient))
}

// Request a token from the web, then return the retrieved token.
func getTokenFromWeb(ctx context.Context, config *oauth2.Config, prompt io.Reader, out io.Writer) (*oauth2.Token, error) {
	if out == nil {
		out = io.Discard
	}
	authURL := config.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Fprintf(out, "\n---------------------------------------------------------\n")
	fmt.Fprintf(out, "OPEN THIS LINK TO AUTHORIZE GMAIL ACCESS:\n%v\n", authURL)
	fmt.Fprintf(out, "---------------------------------------------------------\n")
	fmt.Fprintf(out, "Paste the code here: ")

	authCode, err := bufio.NewReader(prompt).ReadString('\n')
	if err != nil && authCode == "" {
		return nil, fmt.Errorf("unable to read authorization code: %w", err)
	}

	tok, err := config.Exchange(ctx, strings.TrimSpace(authCode))
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve token from web: %w", err)
	}
	return tok, nil
}

// Retrieves a token from a local file.
func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(tok)
	return tok, err
}

// Saves a token to a file path.
func saveToken(path string, token *oauth2.Token) error {
	slog.Info("saving gmail token", "path", path)
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("unable to cache oauth token: %w", err)
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(token)
}
