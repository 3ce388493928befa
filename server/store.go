package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/jeefxM/STB-World/shared/eth"
	"github.com/jeefxM/STB-World/shared/protocol"
)

var ErrDuplicateTx = errors.New("transaction hash already recorded")

// Game is the server-side game record. WinnerWallet and PrizeAmount are
// filled in by an operator after the reveal; until then history rows carry no
// prize.
type Game struct {
	GameID          string `json:"game_id"`
	ContractAddress string `json:"contract_address"`
	Name            string `json:"name"`
	Status          string `json:"status"`
	ImageURL        string `json:"image_url"`
	WinnerWallet    string `json:"winner_wallet,omitempty"`
	PrizeAmount     string `json:"prize_amount,omitempty"`
}

type storeData struct {
	Games       map[string]Game       `json:"games"`
	Submissions []protocol.Submission `json:"submissions"`
}

// Store keeps games and submissions in one JSON file. The chain is the source
// of truth for payments; this is the history index the clients read.
type Store struct {
	mu   sync.RWMutex
	path string
	data storeData
}

func NewStore(path string) (*Store, error) {
	s := &Store{path: path}
	s.data.Games = map[string]Game{}
	_ = os.MkdirAll(filepath.Dir(path), 0o755)
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		s.seed()
		return s, s.save()
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(b, &s.data); err != nil {
		return nil, err
	}
	if s.data.Games == nil {
		s.data.Games = map[string]Game{}
	}
	if len(s.data.Games) == 0 {
		s.seed()
	}
	return s, nil
}

func (s *Store) seed() {
	s.data.Games["demo"] = Game{
		GameID:          "demo",
		ContractAddress: "0x5FbDB2315678afecb367f032d93F642f64180aa3",
		Name:            "Spot the Ball #1",
		Status:          "active",
		ImageURL:        "http://127.0.0.1:8080/static/demo.jpg",
	}
}

// save must be called with at least a read lock held.
func (s *Store) save() error {
	b, err := json.MarshalIndent(&s.data, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

func (s *Store) Game(id string) (Game, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.data.Games[id]
	return g, ok
}

func (s *Store) PutGame(g Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Games[g.GameID] = g
	return s.save()
}

func (s *Store) CountSubmissions(gameID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, sub := range s.data.Submissions {
		if sub.GameID == gameID {
			n++
		}
	}
	return n
}

// AddSubmission records a confirmed guess. The txHash is the dedup key; a
// retried client request after a flaky response must not double-count.
func (s *Store) AddSubmission(req protocol.CreateSubmissionReq) (protocol.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range s.data.Submissions {
		if strings.EqualFold(sub.TxHash, req.TxHash) {
			return protocol.Submission{}, ErrDuplicateTx
		}
	}
	sub := protocol.Submission{
		ID:           fmt.Sprintf("sub_%d", time.Now().UnixNano()),
		GameID:       req.GameID,
		PlayerWallet: req.PlayerWallet,
		XCoordinate:  req.XCoordinate,
		YCoordinate:  req.YCoordinate,
		TxHash:       req.TxHash,
		TokenID:      req.TokenID,
		CreatedAt:    time.Now().UTC(),
	}
	s.data.Submissions = append(s.data.Submissions, sub)
	return sub, s.save()
}

// Submissions lists guesses newest first, joined with their game. Empty
// filter values match everything.
func (s *Store) Submissions(gameID, wallet string, limit int) []protocol.SubmissionView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []protocol.SubmissionView{}
	for i := len(s.data.Submissions) - 1; i >= 0; i-- {
		sub := s.data.Submissions[i]
		if gameID != "" && sub.GameID != gameID {
			continue
		}
		if wallet != "" && !eth.Equal(sub.PlayerWallet, wallet) {
			continue
		}
		v := protocol.SubmissionView{Submission: sub}
		if g, ok := s.data.Games[sub.GameID]; ok {
			v.GameName = g.Name
			v.GameStatus = g.Status
			v.GameImage = g.ImageURL
			if g.WinnerWallet != "" && eth.Equal(g.WinnerWallet, sub.PlayerWallet) {
				prize := g.PrizeAmount
				v.PrizeWon = &prize
			}
		}
		out = append(out, v)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}
