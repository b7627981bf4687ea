package status

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/pixil98/go-arena/internal/session"
)

const shutdownTimeout = 5 * time.Second

// Roster reports who is connected.
type Roster interface {
	Roster() []session.PlayerInfo
	Running() bool
}

// Server exposes read-only session state over HTTP.
type Server struct {
	addr   string
	roster Roster
}

func NewServer(addr string, roster Roster) *Server {
	return &Server{
		addr:   addr,
		roster: roster,
	}
}

// Handler returns the routes served by the status server.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.health).Methods(http.MethodGet)
	r.HandleFunc("/players", s.players).Methods(http.MethodGet)
	r.HandleFunc("/players/{name}", s.player).Methods(http.MethodGet)
	return r
}

func (s *Server) Start(ctx context.Context) error {
	svr := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.InfoContext(ctx, "status server listening", "addr", s.addr)
		errCh <- svr.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serving status on %s: %w", s.addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := svr.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("shutting down status server: %w", err)
	}
	return nil
}

type healthResponse struct {
	Status  string `json:"status"`
	Players int    `json:"players"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	if !s.roster.Running() {
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "shutting down"})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Players: len(s.roster.Roster())})
}

func (s *Server) players(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.roster.Roster())
}

func (s *Server) player(w http.ResponseWriter, r *http.Request) {
	name := session.NormalizeName(mux.Vars(r)["name"])
	for _, info := range s.roster.Roster() {
		if info.Name == name {
			writeJSON(w, http.StatusOK, info)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": fmt.Sprintf("player %q not found", name)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("writing status response", "error", err)
	}
}
