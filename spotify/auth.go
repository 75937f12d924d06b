package spotify

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"net/url"
	"os/exec"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
)

// authResult contains the outcome of the OAuth redirect.
type authResult struct {
	code string
	err  error
}

// authCallbackHandler answers the OAuth redirect from Spotify. It validates
// the state parameter and delivers the authorization code through its result
// channel exactly once; page refreshes after that are rejected.
type authCallbackHandler struct {
	state       string
	resultChan  chan authResult
	once        sync.Once
	callbackHit bool
	mu          sync.Mutex
}

// newAuthCallbackHandler creates a callback handler expecting the given state
// token.
func newAuthCallbackHandler(state string) *authCallbackHandler {
	return &authCallbackHandler{
		state:      state,
		resultChan: make(chan authResult, 1),
	}
}

// ServeHTTP handles the OAuth callback request: state validation first, then
// provider errors, then the code itself.
func (h *authCallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Only handle the callback once
	h.mu.Lock()
	if h.callbackHit {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.callbackHit = true
	h.mu.Unlock()

	query := r.URL.Query()

	if query.Get("state") != h.state {
		h.send(authResult{err: fmt.Errorf("invalid state parameter")})
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	code := query.Get("code")
	if code == "" {
		errParam := query.Get("error")
		errDesc := query.Get("error_description")
		h.send(authResult{err: fmt.Errorf("authorization failed: %s - %s", errParam, errDesc)})
		http.Error(w, "Authorization failed", http.StatusBadRequest)
		return
	}

	h.send(authResult{code: code})

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, `<!DOCTYPE html>
<html>
<head><title>Authorization Successful</title></head>
<body>
    <h1>Authorization successful</h1>
    <p>You can close this window and return to the terminal.</p>
</body>
</html>
`)
}

// send delivers the result through the channel (only once).
func (h *authCallbackHandler) send(result authResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// result returns the channel carrying the flow's single outcome.
func (h *authCallbackHandler) result() <-chan authResult {
	return h.resultChan
}

// authorize runs the authorization code flow end to end: serve the redirect
// URI on a local listener, send the user to the consent page, wait for
// Spotify to call back, and exchange the returned code for a token.
func authorize(ctx context.Context, auth *spotifyauth.Authenticator, redirectURI string) (*oauth2.Token, error) {
	redirect, err := url.Parse(redirectURI)
	if err != nil {
		return nil, fmt.Errorf("invalid redirect URI %q: %w", redirectURI, err)
	}

	state := uuid.New().String()
	handler := newAuthCallbackHandler(state)

	callbackPath := redirect.Path
	if callbackPath == "" {
		callbackPath = "/"
	}
	mux := http.NewServeMux()
	mux.Handle(callbackPath, handler)

	listener, err := net.Listen("tcp", redirect.Host)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s for the OAuth callback: %w", redirect.Host, err)
	}

	server := &http.Server{Handler: mux}
	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			handler.send(authResult{err: fmt.Errorf("callback server failed: %w", err)})
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	authURL := auth.AuthURL(state)
	fmt.Println("🔐 Authorize this app in your browser:")
	fmt.Println(authURL)
	if err := openBrowser(authURL); err != nil {
		log.Printf("⚠️  Could not open the browser automatically: %v", err)
	}

	select {
	case result := <-handler.result():
		if result.err != nil {
			return nil, result.err
		}
		token, err := auth.Exchange(ctx, result.code)
		if err != nil {
			return nil, fmt.Errorf("token exchange failed: %w", err)
		}
		return token, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("authorization canceled: %w", ctx.Err())
	}
}

// openBrowser opens the default system browser to the authorization URL.
func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}

	return nil
}
