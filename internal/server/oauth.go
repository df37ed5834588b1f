// package server runs the loopback HTTP listener for the OAuth2
// authorization-code flow. The listener serves exactly one callback, exchanges
// the code for a token and shuts down.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"tunesync/internal/shared"
)

// Result contains the outcome of one authorization flow.
type Result struct {
	Token *oauth2.Token
	err   error
}

func (r Result) Error() error {
	return r.err
}

// CallbackServer is a temporary loopback server that waits for the OAuth2
// redirect. It validates the state parameter, exchanges the authorization
// code and delivers the result exactly once.
type CallbackServer struct {
	config *oauth2.Config
	state  string

	results chan Result
	once    sync.Once
	srv     *http.Server
}

// NewCallbackServer creates an unstarted callback server. The state token
// should be random; it is compared against the redirect's state parameter.
func NewCallbackServer(addr string, config *oauth2.Config, state string) *CallbackServer {
	cs := &CallbackServer{
		config:  config,
		state:   state,
		results: make(chan Result, 1),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", cs.handleCallback)
	cs.srv = &http.Server{Addr: addr, Handler: mux}

	return cs
}

// Start begins serving in a background goroutine. Listener errors are
// delivered through the same channel as callback results.
func (cs *CallbackServer) Start() {
	go func() {
		if err := cs.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			cs.send(Result{err: fmt.Errorf("callback server: %w", err)})
		}
	}()
}

// Wait blocks until the callback arrives, the context is cancelled or the
// timeout elapses, then shuts the listener down.
func (cs *CallbackServer) Wait(ctx context.Context, timeout time.Duration) (*oauth2.Token, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	defer cs.shutdown()

	var result Result
	select {
	case result = <-cs.results:
	case <-timer.C:
		return nil, fmt.Errorf("%w: no authorization after %v", shared.ErrTimeout, timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if result.Error() != nil {
		return nil, result.Error()
	}
	if result.Token == nil {
		return nil, fmt.Errorf("%w: no token received", shared.ErrAuthFailed)
	}

	return result.Token, nil
}

func (cs *CallbackServer) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = cs.srv.Shutdown(ctx)
}

func (cs *CallbackServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	if state := r.URL.Query().Get("state"); state != cs.state {
		cs.send(Result{err: fmt.Errorf("%w: state mismatch", shared.ErrAuthFailed)})
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		errParam := r.URL.Query().Get("error")
		errDesc := r.URL.Query().Get("error_description")
		cs.send(Result{err: fmt.Errorf("%w: %s - %s", shared.ErrAuthFailed, errParam, errDesc)})
		http.Error(w, "Authorization failed", http.StatusBadRequest)
		return
	}

	token, err := cs.config.Exchange(r.Context(), code)
	if err != nil {
		cs.send(Result{err: fmt.Errorf("token exchange failed: %w", err)})
		http.Error(w, "Token exchange failed", http.StatusInternalServerError)
		return
	}

	cs.send(Result{Token: token})

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, successPage)
}

// send delivers the result exactly once. Duplicate callbacks are dropped.
func (cs *CallbackServer) send(result Result) {
	cs.once.Do(func() {
		cs.results <- result
		close(cs.results)
	})
}

const successPage = `<!DOCTYPE html>
<html>
<head>
    <title>Authorization Successful</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #1DB954; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>&#10003; Authorization Successful</h1>
        <p>You can close this window and return to the terminal.</p>
    </div>
</body>
</html>
`
