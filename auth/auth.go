// Package auth obtains an authorized HTTP client for the Drive API from an OAuth client
// secrets file and a cached token file.
package auth

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	derrors "github.com/Jumpaku/go-drivecli/errors"
	"github.com/Jumpaku/go-drivecli/logging"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
)

// Prompter shows authURL to the user and returns the authorization code they obtained.
type Prompter func(authURL string) (code string, err error)

// LoadConfig reads an OAuth client secrets file downloaded from the Google API console.
func LoadConfig(secretsPath string, scopes ...string) (*oauth2.Config, error) {
	if len(scopes) == 0 {
		scopes = []string{drive.DriveScope}
	}
	data, err := os.ReadFile(secretsPath)
	if err != nil {
		return nil, derrors.NewIOError(fmt.Sprintf("could not read client secrets file '%s'", secretsPath), err)
	}
	config, err := google.ConfigFromJSON(data, scopes...)
	if err != nil {
		return nil, fmt.Errorf("invalid client secrets file '%s': %w", secretsPath, err)
	}
	return config, nil
}

// LoadToken reads a cached token. A missing file yields (nil, nil).
func LoadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, derrors.NewIOError(fmt.Sprintf("could not read credentials file '%s'", path), err)
	}
	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("invalid credentials file '%s': %w", path, err)
	}
	return &token, nil
}

// SaveToken writes token to path, readable only by the current user.
func SaveToken(path string, token *oauth2.Token) error {
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return derrors.NewIOError("failed to create credentials directory", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return derrors.NewIOError(fmt.Sprintf("failed to save credentials file '%s'", path), err)
	}
	return nil
}

// TokenFromWeb runs the consent flow: the user opens the authorization URL and types
// back the code, which is exchanged for a token.
func TokenFromWeb(ctx context.Context, config *oauth2.Config, prompt Prompter) (*oauth2.Token, error) {
	authURL := config.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	code, err := prompt(authURL)
	if err != nil {
		return nil, fmt.Errorf("unable to read authorization code: %w", err)
	}
	token, err := config.Exchange(ctx, strings.TrimSpace(code))
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve token from web: %w", err)
	}
	return token, nil
}

// StdinPrompter prints the authorization URL to w and reads the code from r.
func StdinPrompter(r io.Reader, w io.Writer) Prompter {
	return func(authURL string) (string, error) {
		fmt.Fprintf(w, `Go to the following link in your browser:
----------------------------------------------------------------------------------------------
%v
----------------------------------------------------------------------------------------------

type the authorization code: `, authURL)
		code, err := bufio.NewReader(r).ReadString('\n')
		if err != nil && code == "" {
			return "", err
		}
		return strings.TrimSpace(code), nil
	}
}

// Options tune NewHTTPClient.
type Options struct {
	// Prompt runs when no cached token exists. Nil disables the consent flow.
	Prompt Prompter
	Logger *logging.Logger
}

// NewHTTPClient returns a client authorized with the token cached at tokenPath.
// Without a cached token the consent flow runs and its token is cached.
// Refreshed tokens are written back to tokenPath.
func NewHTTPClient(ctx context.Context, config *oauth2.Config, tokenPath string, opts Options) (*http.Client, error) {
	log := opts.Logger
	token, err := LoadToken(tokenPath)
	if err != nil {
		return nil, err
	}
	if token == nil {
		if opts.Prompt == nil {
			return nil, fmt.Errorf("no credentials file at '%s': %w", tokenPath, derrors.ErrNotFound)
		}
		log.Infof("Could not find the credentials file. Generating a new one")
		token, err = TokenFromWeb(ctx, config, opts.Prompt)
		if err != nil {
			return nil, err
		}
		if err := SaveToken(tokenPath, token); err != nil {
			return nil, err
		}
		log.Infof("Credentials file have been saved successfully")
	} else if !token.Valid() {
		log.Debugf("The credentials token has expired, it will be refreshed")
	}

	source := &savingTokenSource{
		base: config.TokenSource(ctx, token),
		path: tokenPath,
		last: token.AccessToken,
		log:  log,
	}
	return oauth2.NewClient(ctx, oauth2.ReuseTokenSource(token, source)), nil
}

// savingTokenSource persists every newly issued token.
type savingTokenSource struct {
	mu   sync.Mutex
	base oauth2.TokenSource
	path string
	last string
	log  *logging.Logger
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	token, err := s.base.Token()
	if err != nil {
		return nil, err
	}
	if token.AccessToken != s.last {
		if err := SaveToken(s.path, token); err != nil {
			return nil, err
		}
		s.last = token.AccessToken
		s.log.Debugf("Credentials file have been refreshed")
	}
	return token, nil
}
