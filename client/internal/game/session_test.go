package game

import (
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/jeefxM/STB-World/shared/protocol"
)

type fakeChain struct {
	mu     sync.Mutex
	reads  int
	price  *big.Int
	status protocol.GameStatus
	pool   *big.Int
	token  string
	err    error
}

func (c *fakeChain) snapshot() (*big.Int, protocol.GameStatus, *big.Int, string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.price, c.status, c.pool, c.token, c.err
}

func (c *fakeChain) MintPrice(string) (*big.Int, error) {
	c.mu.Lock()
	c.reads++
	c.mu.Unlock()
	p, _, _, _, err := c.snapshot()
	return p, err
}

func (c *fakeChain) GameStatus(string) (protocol.GameStatus, error) {
	_, s, _, _, err := c.snapshot()
	return s, err
}

func (c *fakeChain) PrizePool(string) (*big.Int, error) {
	_, _, p, _, err := c.snapshot()
	return p, err
}

func (c *fakeChain) PaymentToken(string) (string, error) {
	_, _, _, tok, err := c.snapshot()
	return tok, err
}

func (c *fakeChain) readCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reads
}

func (c *fakeChain) setErr(err error) {
	c.mu.Lock()
	c.err = err
	c.mu.Unlock()
}

func (c *fakeChain) setPool(p *big.Int) {
	c.mu.Lock()
	c.pool = p
	c.mu.Unlock()
}

func newTestSession(t *testing.T, w *fakeWallet, api *fakeAPI, chain *fakeChain) *Session {
	t.Helper()
	if chain.price == nil {
		chain.price = mintPrice(t)
	}
	if chain.pool == nil {
		chain.pool = big.NewInt(5)
	}
	if chain.token == "" {
		chain.token = "0x0000000000000000000000000000000000000000"
	}
	chain.status = protocol.GameStarted
	info := protocol.GameInfo{
		GameID:          "game-1",
		ContractAddress: testContract,
		Name:            "Spot the Ball #1",
		ImageURL:        "http://example/img.png",
	}
	return NewSession("game-1", info, testWallet, chain, w, api)
}

func loadSession(t *testing.T, s *Session) {
	t.Helper()
	s.LoadContractData()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		s.Poll()
		if _, known := s.Status(); known {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("contract data never loaded")
}

func pollOutcome(t *testing.T, s *Session) txOutcome {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if out := s.Poll(); out != nil {
			return *out
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("transaction never reached a terminal state")
	return txOutcome{}
}

func TestSelectionResetLaw(t *testing.T) {
	w := &fakeWallet{fp: protocol.FinalPayload{Status: "error", ErrorMessage: "nope"}}
	s := newTestSession(t, w, &fakeAPI{}, &fakeChain{})
	loadSession(t, s)

	s.SetCoordinate(Coordinate{10, 20})
	s.Submit()
	pollOutcome(t, s)
	if s.TxState() != TxError {
		t.Fatalf("setup: state=%v", s.TxState())
	}

	// A new guess invalidates the displayed failure.
	s.SetCoordinate(Coordinate{30, 40})
	if s.TxState() != TxIdle || s.TxError() != "" {
		t.Fatalf("new coordinate must reset to idle: state=%v msg=%q", s.TxState(), s.TxError())
	}
	if *s.Coord() != (Coordinate{30, 40}) {
		t.Fatalf("coord = %+v", s.Coord())
	}

	s.Reset()
	if s.Coord() != nil || s.TxState() != TxIdle {
		t.Fatal("explicit reset must clear coordinate and state together")
	}
}

func TestResetBlockedWhilePending(t *testing.T) {
	w := &fakeWallet{gate: make(chan struct{})}
	s := newTestSession(t, w, &fakeAPI{}, &fakeChain{})
	loadSession(t, s)

	s.SetCoordinate(Coordinate{1, 2})
	if !s.Submit() {
		t.Fatal("submit rejected")
	}
	s.Reset()
	if s.Coord() == nil || s.TxState() != TxPending {
		t.Fatal("reset must be inert while a transaction is in flight")
	}
	close(w.gate)
}

func TestSubmitWithoutCoordinateIsNoOp(t *testing.T) {
	w := &fakeWallet{}
	s := newTestSession(t, w, &fakeAPI{}, &fakeChain{})
	loadSession(t, s)
	if s.Submit() {
		t.Fatal("submit with no selection accepted")
	}
	if w.callCount() != 0 || s.TxState() != TxIdle {
		t.Fatal("no-op submit changed state")
	}
}

func TestSubmitBeforeContractLoadIsNoOp(t *testing.T) {
	w := &fakeWallet{}
	s := newTestSession(t, w, &fakeAPI{}, &fakeChain{})
	s.SetCoordinate(Coordinate{1, 2})
	if s.Submit() {
		t.Fatal("submit accepted before mint price/token resolved")
	}
	if w.callCount() != 0 {
		t.Fatal("wallet reached without parameters")
	}
}

func TestRejectedTransactionKeepsCoordinate(t *testing.T) {
	w := &fakeWallet{fp: protocol.FinalPayload{Status: "error", ErrorMessage: "user closed wallet"}}
	s := newTestSession(t, w, &fakeAPI{}, &fakeChain{})
	loadSession(t, s)

	s.SetCoordinate(Coordinate{512, 300})
	s.Submit()
	out := pollOutcome(t, s)

	if out.success {
		t.Fatal("rejection reported success")
	}
	if s.TxState() != TxError || s.TxError() == "" {
		t.Fatalf("state=%v msg=%q", s.TxState(), s.TxError())
	}
	if s.Coord() == nil {
		t.Fatal("coordinate must survive a failed transaction for retry")
	}
	if !s.CanSubmit() {
		t.Fatal("retry must be possible from the error state")
	}
}

func TestSuccessClearsCoordinateDespitePersistFailure(t *testing.T) {
	w := &fakeWallet{fp: protocol.FinalPayload{Status: protocol.TxStatusSuccess, TransactionID: "0x99"}}
	api := &fakeAPI{err: errors.New("409 duplicate")}
	s := newTestSession(t, w, api, &fakeChain{})
	loadSession(t, s)

	s.SetCoordinate(Coordinate{512, 300})
	s.Submit()
	out := pollOutcome(t, s)

	if !out.success || s.TxState() != TxSuccess {
		t.Fatalf("outcome=%+v state=%v", out, s.TxState())
	}
	if s.Coord() != nil {
		t.Fatal("success must clear the selection")
	}
	waitCalls(t, api.callCount, 1)
	if s.TxState() != TxSuccess {
		t.Fatal("persist failure leaked into transaction state")
	}
	if len(s.Recent()) != 1 {
		t.Fatalf("recent submissions = %+v", s.Recent())
	}
}

func TestPrizePoolRefreshAfterSuccess(t *testing.T) {
	w := &fakeWallet{fp: protocol.FinalPayload{Status: protocol.TxStatusSuccess, TransactionID: "0x77"}}
	chain := &fakeChain{}
	s := newTestSession(t, w, &fakeAPI{}, chain)
	loadSession(t, s)
	if s.PrizePool().Cmp(big.NewInt(5)) != 0 {
		t.Fatalf("initial pool = %v", s.PrizePool())
	}

	chain.setPool(big.NewInt(6))
	s.SetCoordinate(Coordinate{1, 1})
	s.Submit()
	pollOutcome(t, s)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		s.Poll()
		if s.PrizePool().Cmp(big.NewInt(6)) == 0 {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("pool never refreshed, still %v", s.PrizePool())
}

func TestContractLoadIsOneShot(t *testing.T) {
	chain := &fakeChain{}
	s := newTestSession(t, &fakeWallet{}, &fakeAPI{}, chain)

	s.LoadContractData()
	s.LoadContractData() // re-render: must not start a second read
	loadSession(t, s)
	s.LoadContractData() // loaded: still a no-op
	time.Sleep(10 * time.Millisecond)
	if got := chain.readCount(); got != 1 {
		t.Fatalf("contract read %d times, want 1", got)
	}
}

func TestContractLoadRetriesAfterFailure(t *testing.T) {
	chain := &fakeChain{}
	s := newTestSession(t, &fakeWallet{}, &fakeAPI{}, chain)
	chain.setErr(errors.New("rpc down"))

	s.LoadContractData()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		s.Poll()
		if !s.contractLoading {
			break
		}
		time.Sleep(time.Millisecond)
	}
	if s.contractLoading {
		t.Fatal("failed load must clear the one-shot flag")
	}
	if _, known := s.Status(); known {
		t.Fatal("status marked known after a failed read")
	}

	chain.setErr(nil)
	loadSession(t, s)
	if s.MintPrice() == nil {
		t.Fatal("retry after failure did not load")
	}
}

func TestCanSubmitGating(t *testing.T) {
	w := &fakeWallet{gate: make(chan struct{})}
	s := newTestSession(t, w, &fakeAPI{}, &fakeChain{})

	if s.CanSubmit() {
		t.Fatal("submittable before anything loaded")
	}
	loadSession(t, s)
	if s.CanSubmit() {
		t.Fatal("submittable without a coordinate")
	}
	s.SetCoordinate(Coordinate{5, 5})
	if !s.CanSubmit() {
		t.Fatal("all preconditions met but gated")
	}
	s.Submit()
	if s.CanSubmit() {
		t.Fatal("submittable while pending")
	}
	close(w.gate)
}
