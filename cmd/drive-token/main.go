// Command drive-token runs the one-time OAuth consent flow for the Drive
// folder that stores proof images and prints the refresh token to put in
// GOOGLE_REFRESH_TOKEN.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"time"

	"qarilive-service/internal/repository/drive"

	"github.com/joho/godotenv"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const (
	listenAddr  = "localhost:3000"
	redirectURL = "http://localhost:3000/oauth2callback"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("[DRIVE-TOKEN] No .env file found, relying on system env vars")
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	clientID := os.Getenv("GOOGLE_CLIENT_ID")
	clientSecret := os.Getenv("GOOGLE_CLIENT_SECRET")
	if clientID == "" || clientSecret == "" {
		logger.Fatal("set GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET first")
	}

	oc := drive.OAuthConfig(clientID, clientSecret, redirectURL)
	state := ulid.Make().String()

	token, err := consent(context.Background(), oc, state, logger)
	if err != nil {
		logger.Fatal("token exchange failed", zap.Error(err))
	}
	if token.RefreshToken == "" {
		logger.Fatal("no refresh token returned; revoke the app's access and run again")
	}

	fmt.Printf("\nGOOGLE_REFRESH_TOKEN=%s\n\n", token.RefreshToken)
}

// consent serves the redirect target, prints the consent URL and waits for
// the browser to come back with a code.
func consent(ctx context.Context, oc *oauth2.Config, state string, logger *zap.Logger) (*oauth2.Token, error) {
	type result struct {
		token *oauth2.Token
		err   error
	}
	done := make(chan result, 1)
	finish := func(r result) {
		select {
		case done <- r:
		default:
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth2callback", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			return
		}
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "Missing ?code=...", http.StatusBadRequest)
			return
		}

		tok, err := oc.Exchange(r.Context(), code)
		if err != nil {
			http.Error(w, "Token exchange failed. Check terminal.", http.StatusBadGateway)
			finish(result{err: err})
			return
		}
		fmt.Fprintln(w, "Success! You can close this tab. Check your terminal for the refresh token.")
		finish(result{token: tok})
	})

	ln, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", listenAddr, err)
	}
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("callback server stopped", zap.Error(err))
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	// prompt=consent forces a refresh token even on repeat grants
	url := oc.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
	logger.Info("open this URL in a browser to grant access", zap.String("url", url))

	select {
	case res := <-done:
		return res.token, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
