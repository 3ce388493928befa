package main

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jeefxM/STB-World/server/auth"
	"github.com/jeefxM/STB-World/shared/eth"
	"github.com/jeefxM/STB-World/shared/protocol"
)

type Server struct {
	store *Store
	auth  *auth.Auth
}

func NewServer(store *Store, a *auth.Auth) *Server {
	return &Server{store: store, auth: a}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Post("/api/auth", s.auth.HandleLogin)
	r.Get("/api/game", s.handleGetGame)

	r.Group(func(r chi.Router) {
		r.Use(s.auth.RequireAuth)
		r.Get("/api/submissions", s.handleListSubmissions)
		r.Post("/api/submissions", s.handleCreateSubmission)
	})
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.URL.Query().Get("gameId"))
	if id == "" {
		http.Error(w, "gameId is required", http.StatusBadRequest)
		return
	}
	g, ok := s.store.Game(id)
	if !ok {
		http.Error(w, "game not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, protocol.GameInfo{
		GameID:           g.GameID,
		ContractAddress:  g.ContractAddress,
		Name:             g.Name,
		Status:           g.Status,
		ImageURL:         g.ImageURL,
		TotalSubmissions: s.store.CountSubmissions(g.GameID),
	})
}

func (s *Server) handleCreateSubmission(w http.ResponseWriter, r *http.Request) {
	var req protocol.CreateSubmissionReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	// The token decides whose history this lands in, not the request body.
	req.PlayerWallet = auth.Wallet(r.Context())

	if strings.TrimSpace(req.GameID) == "" || strings.TrimSpace(req.TxHash) == "" {
		http.Error(w, "gameId and txHash are required", http.StatusBadRequest)
		return
	}
	if _, ok := s.store.Game(req.GameID); !ok {
		http.Error(w, "game not found", http.StatusNotFound)
		return
	}
	if req.XCoordinate < 0 || req.YCoordinate < 0 {
		http.Error(w, "coordinates must be non-negative", http.StatusBadRequest)
		return
	}

	sub, err := s.store.AddSubmission(req)
	if errors.Is(err, ErrDuplicateTx) {
		http.Error(w, "submission already recorded", http.StatusConflict)
		return
	}
	if err != nil {
		log.Printf("submission save: %v", err)
		http.Error(w, "save failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, protocol.CreateSubmissionResp{Success: true, Submission: sub})
}

func (s *Server) handleListSubmissions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	gameID := strings.TrimSpace(q.Get("gameId"))
	wallet := strings.TrimSpace(q.Get("playerWallet"))

	// Callers may only read their own history.
	if wallet == "" {
		wallet = auth.Wallet(r.Context())
	} else if !eth.Equal(wallet, auth.Wallet(r.Context())) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	limit := 50
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 200 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}
	writeJSON(w, http.StatusOK, s.store.Submissions(gameID, wallet, limit))
}
