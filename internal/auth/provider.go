package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// ErrNoToken means no usable cached token exists and the provider may not
// start an interactive flow.
var ErrNoToken = errors.New("no cached token, run `prepcook auth` first")

// Provider hands out bearer tokens for Google API calls.
type Provider interface {
	TokenSource(ctx context.Context) (oauth2.TokenSource, error)
}

// StaticProvider serves a fixed access token, e.g. one minted by gcloud.
type StaticProvider struct {
	AccessToken string
}

func (p StaticProvider) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	if p.AccessToken == "" {
		return nil, fmt.Errorf("static provider: empty access token")
	}
	return oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: p.AccessToken,
		TokenType:   "Bearer",
	}), nil
}

// FileProvider reads an OAuth client secret from CredentialsFile and keeps
// the user's token in TokenFile. When the cache is empty and Interactive is
// set, it runs Flow to obtain a new token.
type FileProvider struct {
	CredentialsFile string
	TokenFile       string
	Scopes          []string
	Interactive     bool
	Flow            Flow
	Log             *slog.Logger
}

// Config parses the client secret file into an OAuth2 config.
func (p *FileProvider) Config() (*oauth2.Config, error) {
	data, err := os.ReadFile(p.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	conf, err := google.ConfigFromJSON(data, p.Scopes...)
	if err != nil {
		return nil, fmt.Errorf("parse credentials %s: %w", p.CredentialsFile, err)
	}
	return conf, nil
}

func (p *FileProvider) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	log := p.logger()
	conf, err := p.Config()
	if err != nil {
		return nil, err
	}

	tok, err := LoadToken(p.TokenFile)
	switch {
	case err == nil && usable(tok):
		log.Debug("using cached token", "path", p.TokenFile, "expiry", tok.Expiry)
	case err != nil && !errors.Is(err, os.ErrNotExist) && !errors.Is(err, ErrInvalidToken):
		return nil, err
	default:
		if errors.Is(err, ErrInvalidToken) {
			log.Warn("ignoring unreadable token file", "path", p.TokenFile, "error", err)
		}
		if !p.Interactive || p.Flow == nil {
			return nil, ErrNoToken
		}
		log.Info("no usable token, starting authorization flow")
		tok, err = p.Flow.Authorize(ctx, conf)
		if err != nil {
			return nil, fmt.Errorf("authorize: %w", err)
		}
		if err := SaveToken(p.TokenFile, tok); err != nil {
			return nil, err
		}
		log.Info("token saved", "path", p.TokenFile)
	}

	src := &savingTokenSource{
		base: conf.TokenSource(ctx, tok),
		path: p.TokenFile,
		last: tok.AccessToken,
		log:  log,
	}
	return oauth2.ReuseTokenSource(tok, src), nil
}

// Authorize always runs the interactive flow and stores the result.
func (p *FileProvider) Authorize(ctx context.Context) (*oauth2.Token, error) {
	if p.Flow == nil {
		return nil, fmt.Errorf("no authorization flow configured")
	}
	conf, err := p.Config()
	if err != nil {
		return nil, err
	}
	tok, err := p.Flow.Authorize(ctx, conf)
	if err != nil {
		return nil, fmt.Errorf("authorize: %w", err)
	}
	if err := SaveToken(p.TokenFile, tok); err != nil {
		return nil, err
	}
	return tok, nil
}

func (p *FileProvider) logger() *slog.Logger {
	if p.Log != nil {
		return p.Log
	}
	return slog.Default()
}

// usable reports whether tok can produce an access token without user
// interaction.
func usable(tok *oauth2.Token) bool {
	return tok != nil && (tok.Valid() || tok.RefreshToken != "")
}

// savingTokenSource writes refreshed tokens back to the cache file.
type savingTokenSource struct {
	base oauth2.TokenSource
	path string
	log  *slog.Logger

	mu   sync.Mutex
	last string
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if tok.AccessToken != s.last {
		s.last = tok.AccessToken
		if err := SaveToken(s.path, tok); err != nil {
			s.log.Warn("failed to persist refreshed token", "path", s.path, "error", err)
		} else {
			s.log.Debug("refreshed token saved", "path", s.path, "expiry", tok.Expiry)
		}
	}
	return tok, nil
}
