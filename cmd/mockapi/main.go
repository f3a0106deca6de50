// Command mockapi runs a small stub API for exercising the client locally:
// a sign-in endpoint, the token refresh endpoint, and a bearer-protected
// data endpoint.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type tokenIssuer struct {
	mu     sync.Mutex
	access map[string]bool
}

func (ti *tokenIssuer) issue() string {
	tok := uuid.NewString()
	ti.mu.Lock()
	ti.access[tok] = true
	ti.mu.Unlock()
	return tok
}

func (ti *tokenIssuer) valid(tok string) bool {
	ti.mu.Lock()
	defer ti.mu.Unlock()
	return ti.access[tok]
}

func main() {
	addr := flag.String("addr", ":8190", "listen address")
	flag.Parse()

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	issuer := &tokenIssuer{access: make(map[string]bool)}
	refreshToken := uuid.NewString()

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)

	r.Post("/auth/sign-in", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"access":  issuer.issue(),
			"refresh": refreshToken,
		})
	})

	r.Post("/auth/refresh", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Refresh string `json:"refresh"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil || body.Refresh != refreshToken {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "invalid refresh token"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"access": issuer.issue()})
	})

	r.Get("/v1/items", func(w http.ResponseWriter, req *http.Request) {
		auth := req.Header.Get("Authorization")
		tok := strings.TrimPrefix(auth, "Bearer ")
		if auth == "" || tok == auth || !issuer.valid(tok) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "invalid or missing token"})
			return
		}
		writeJSON(w, http.StatusOK, []map[string]any{
			{"id": 1, "name": "alpha", "updated_at": time.Now().UTC().Format(time.RFC3339)},
			{"id": 2, "name": "beta", "updated_at": time.Now().UTC().Format(time.RFC3339)},
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		fmt.Fprintln(w, "ok")
	})

	logger.Info().Str("addr", *addr).Msg("mockapi listening")
	if err := http.ListenAndServe(*addr, r); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
