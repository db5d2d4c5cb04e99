package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// Flow obtains a fresh token from the user.
type Flow interface {
	Authorize(ctx context.Context, conf *oauth2.Config) (*oauth2.Token, error)
}

// LoopbackFlow runs the installed-app OAuth flow: it listens on a loopback
// port, shows the consent URL, and exchanges the returned code using PKCE.
type LoopbackFlow struct {
	// Addr is the listen address; "127.0.0.1:0" picks a free port.
	Addr string
	// Out receives the consent URL.
	Out io.Writer
	// OpenBrowser, if set, is called with the consent URL. Failures are
	// ignored since the URL is printed too.
	OpenBrowser func(url string) error
	// Timeout bounds the wait for the browser callback.
	Timeout time.Duration
}

type callbackResult struct {
	code string
	err  error
}

func (f *LoopbackFlow) Authorize(ctx context.Context, conf *oauth2.Config) (*oauth2.Token, error) {
	addr := f.Addr
	if addr == "" {
		addr = "127.0.0.1:0"
	}
	timeout := f.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen for callback: %w", err)
	}

	state, err := randomState()
	if err != nil {
		ln.Close()
		return nil, err
	}
	verifier := oauth2.GenerateVerifier()

	c := *conf
	c.RedirectURL = "http://" + ln.Addr().String() + "/"

	results := make(chan callbackResult, 1)
	srv := &http.Server{
		Handler:           callbackHandler(state, results),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			select {
			case results <- callbackResult{err: err}:
			default:
			}
		}
	}()
	defer srv.Close()

	authURL := c.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.S256ChallengeOption(verifier))
	if f.Out != nil {
		fmt.Fprintf(f.Out, "Open this URL in your browser to authorize access:\n\n  %s\n\n", authURL)
	}
	if f.OpenBrowser != nil {
		_ = f.OpenBrowser(authURL)
	}

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var res callbackResult
	select {
	case res = <-results:
	case <-waitCtx.Done():
		return nil, fmt.Errorf("waiting for authorization: %w", waitCtx.Err())
	}
	if res.err != nil {
		return nil, res.err
	}

	tok, err := c.Exchange(ctx, res.code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}
	return tok, nil
}

func callbackHandler(expectedState string, results chan<- callbackResult) http.Handler {
	send := func(r callbackResult) {
		select {
		case results <- r:
		default:
		}
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		q := r.URL.Query()
		if q.Get("state") != expectedState {
			http.Error(w, "Invalid state", http.StatusBadRequest)
			send(callbackResult{err: fmt.Errorf("invalid state received")})
			return
		}
		if e := q.Get("error"); e != "" {
			http.Error(w, "Authorization failed: "+e, http.StatusBadRequest)
			send(callbackResult{err: fmt.Errorf("authorization failed: %s", e)})
			return
		}
		code := q.Get("code")
		if code == "" {
			http.Error(w, "No code received", http.StatusBadRequest)
			send(callbackResult{err: fmt.Errorf("no code received")})
			return
		}
		w.Write([]byte("Authorization complete. You can close this window and return to the terminal."))
		send(callbackResult{code: code})
	})
}

func randomState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
