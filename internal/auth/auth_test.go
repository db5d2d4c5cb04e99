package auth

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

// fakeTokenServer answers the OAuth token endpoint for both grant types.
func fakeTokenServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.PostForm.Get("grant_type") {
		case "refresh_token":
			json.NewEncoder(w).Encode(map[string]any{
				"access_token": "refreshed",
				"token_type":   "Bearer",
				"expires_in":   3600,
			})
		case "authorization_code":
			if r.PostForm.Get("code") != "the-code" || r.PostForm.Get("code_verifier") == "" {
				http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
				return
			}
			json.NewEncoder(w).Encode(map[string]any{
				"access_token":  "fresh",
				"refresh_token": "refresh-1",
				"token_type":    "Bearer",
				"expires_in":    3600,
			})
		default:
			http.Error(w, `{"error":"unsupported_grant_type"}`, http.StatusBadRequest)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeCredentials(t *testing.T, dir, tokenURL string) string {
	t.Helper()
	creds := map[string]any{
		"installed": map[string]any{
			"client_id":     "client-id",
			"client_secret": "client-secret",
			"auth_uri":      "https://accounts.example.com/o/oauth2/auth",
			"token_uri":     tokenURL,
			"redirect_uris": []string{"http://localhost"},
		},
	}
	data, err := json.Marshal(creds)
	require.NoError(t, err)
	path := filepath.Join(dir, "credentials.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestStaticProvider(t *testing.T) {
	ts, err := StaticProvider{AccessToken: "abc"}.TokenSource(context.Background())
	require.NoError(t, err)
	tok, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "abc", tok.AccessToken)
	assert.Equal(t, "Bearer", tok.Type())

	_, err = StaticProvider{}.TokenSource(context.Background())
	assert.Error(t, err)
}

func TestSaveToken_OwnerOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token.json")
	require.NoError(t, SaveToken(path, &oauth2.Token{AccessToken: "a", RefreshToken: "r"}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	tok, err := LoadToken(path)
	require.NoError(t, err)
	assert.Equal(t, "r", tok.RefreshToken)
}

func TestLoadToken_Missing(t *testing.T) {
	_, err := LoadToken(filepath.Join(t.TempDir(), "token.json"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestFileProvider_NoTokenNonInteractive(t *testing.T) {
	dir := t.TempDir()
	p := &FileProvider{
		CredentialsFile: writeCredentials(t, dir, "http://127.0.0.1:1/token"),
		TokenFile:       filepath.Join(dir, "token.json"),
	}
	_, err := p.TokenSource(context.Background())
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestFileProvider_MissingCredentials(t *testing.T) {
	p := &FileProvider{CredentialsFile: filepath.Join(t.TempDir(), "nope.json")}
	_, err := p.TokenSource(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read credentials")
}

func TestFileProvider_RefreshesAndSaves(t *testing.T) {
	srv := fakeTokenServer(t)
	dir := t.TempDir()
	tokenFile := filepath.Join(dir, "token.json")
	require.NoError(t, SaveToken(tokenFile, &oauth2.Token{
		AccessToken:  "stale",
		RefreshToken: "refresh-1",
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(-time.Hour),
	}))

	p := &FileProvider{
		CredentialsFile: writeCredentials(t, dir, srv.URL+"/token"),
		TokenFile:       tokenFile,
		Scopes:          []string{"scope"},
	}
	ts, err := p.TokenSource(context.Background())
	require.NoError(t, err)

	tok, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "refreshed", tok.AccessToken)

	saved, err := LoadToken(tokenFile)
	require.NoError(t, err)
	assert.Equal(t, "refreshed", saved.AccessToken)
	assert.Equal(t, "refresh-1", saved.RefreshToken)
}

func TestFileProvider_ValidCachedTokenNeedsNoNetwork(t *testing.T) {
	dir := t.TempDir()
	tokenFile := filepath.Join(dir, "token.json")
	require.NoError(t, SaveToken(tokenFile, &oauth2.Token{
		AccessToken: "cached",
		TokenType:   "Bearer",
		Expiry:      time.Now().Add(time.Hour),
	}))

	p := &FileProvider{
		CredentialsFile: writeCredentials(t, dir, "http://127.0.0.1:1/token"),
		TokenFile:       tokenFile,
	}
	ts, err := p.TokenSource(context.Background())
	require.NoError(t, err)
	tok, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "cached", tok.AccessToken)
}

// browserFunc plays the user: it follows the consent URL straight to the
// loopback redirect with a code.
func browserFunc(t *testing.T, code string, tamperState bool) func(string) error {
	return func(raw string) error {
		u, err := url.Parse(raw)
		if err != nil {
			return err
		}
		q := u.Query()
		assert.Equal(t, "S256", q.Get("code_challenge_method"))
		assert.NotEmpty(t, q.Get("code_challenge"))
		assert.Equal(t, "offline", q.Get("access_type"))

		state := q.Get("state")
		if tamperState {
			state = "forged"
		}
		cb := q.Get("redirect_uri") + "?" + url.Values{"state": {state}, "code": {code}}.Encode()
		resp, err := http.Get(cb)
		if err != nil {
			return err
		}
		io.Copy(io.Discard, resp.Body)
		return resp.Body.Close()
	}
}

func TestLoopbackFlow_ExchangesCode(t *testing.T) {
	srv := fakeTokenServer(t)
	dir := t.TempDir()
	var out strings.Builder
	p := &FileProvider{
		CredentialsFile: writeCredentials(t, dir, srv.URL+"/token"),
		TokenFile:       filepath.Join(dir, "token.json"),
		Scopes:          []string{"scope"},
		Interactive:     true,
		Flow: &LoopbackFlow{
			Out:         &out,
			OpenBrowser: browserFunc(t, "the-code", false),
			Timeout:     5 * time.Second,
		},
	}

	ts, err := p.TokenSource(context.Background())
	require.NoError(t, err)
	tok, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "fresh", tok.AccessToken)
	assert.Contains(t, out.String(), "Open this URL")

	saved, err := LoadToken(p.TokenFile)
	require.NoError(t, err)
	assert.Equal(t, "refresh-1", saved.RefreshToken)
}

func TestLoopbackFlow_RejectsForgedState(t *testing.T) {
	srv := fakeTokenServer(t)
	dir := t.TempDir()
	p := &FileProvider{
		CredentialsFile: writeCredentials(t, dir, srv.URL+"/token"),
		TokenFile:       filepath.Join(dir, "token.json"),
		Flow: &LoopbackFlow{
			OpenBrowser: browserFunc(t, "the-code", true),
			Timeout:     5 * time.Second,
		},
	}
	_, err := p.Authorize(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid state")

	_, statErr := os.Stat(p.TokenFile)
	assert.True(t, os.IsNotExist(statErr))
}

func TestLoopbackFlow_ContextCancelled(t *testing.T) {
	conf := &oauth2.Config{
		ClientID: "client-id",
		Endpoint: oauth2.Endpoint{AuthURL: "https://accounts.example.com/auth", TokenURL: "http://127.0.0.1:1/token"},
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := &LoopbackFlow{Timeout: time.Second}
	_, err := f.Authorize(ctx, conf)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadToken_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := LoadToken(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestFileProvider_CorruptTokenNonInteractive(t *testing.T) {
	dir := t.TempDir()
	tokenFile := filepath.Join(dir, "token.json")
	require.NoError(t, os.WriteFile(tokenFile, []byte("garbage"), 0o600))

	p := &FileProvider{
		CredentialsFile: writeCredentials(t, dir, "http://127.0.0.1:1/token"),
		TokenFile:       tokenFile,
	}
	_, err := p.TokenSource(context.Background())
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestFileProvider_CorruptTokenReauthorizes(t *testing.T) {
	srv := fakeTokenServer(t)
	dir := t.TempDir()
	tokenFile := filepath.Join(dir, "token.json")
	require.NoError(t, os.WriteFile(tokenFile, []byte("garbage"), 0o600))

	p := &FileProvider{
		CredentialsFile: writeCredentials(t, dir, srv.URL+"/token"),
		TokenFile:       tokenFile,
		Interactive:     true,
		Flow: &LoopbackFlow{
			OpenBrowser: browserFunc(t, "the-code", false),
			Timeout:     5 * time.Second,
		},
	}
	ts, err := p.TokenSource(context.Background())
	require.NoError(t, err)
	tok, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "fresh", tok.AccessToken)

	saved, err := LoadToken(tokenFile)
	require.NoError(t, err)
	assert.Equal(t, "refresh-1", saved.RefreshToken)
}

func TestCallbackHandler_IgnoresOtherPaths(t *testing.T) {
	results := make(chan callbackResult, 1)
	h := callbackHandler("state-1", results)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/favicon.ico", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	select {
	case r := <-results:
		t.Fatalf("expected no result for a stray request, got %+v", r)
	default:
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?state=state-1&code=abc", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	r := <-results
	require.NoError(t, r.err)
	assert.Equal(t, "abc", r.code)
}
