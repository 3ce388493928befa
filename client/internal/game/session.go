package game

import (
	"log"
	"math/big"

	"github.com/jeefxM/STB-World/shared/protocol"
)

// contractReader is the read boundary of the game contract.
type contractReader interface {
	MintPrice(contract string) (*big.Int, error)
	GameStatus(contract string) (protocol.GameStatus, error)
	PrizePool(contract string) (*big.Int, error)
	PaymentToken(contract string) (string, error)
}

type contractData struct {
	price  *big.Int
	status protocol.GameStatus
	pool   *big.Int
	token  string
	err    error
}

// Session is the game session context: it owns the selected Coordinate and
// the transaction state machine, loads contract parameters exactly once per
// mount, and is the only writer of either piece of state.
type Session struct {
	gameID string
	info   protocol.GameInfo
	player string

	chain contractReader
	flow  *TxFlow

	coord *Coordinate

	mintPrice    *big.Int
	prizePool    *big.Int
	gameStatus   protocol.GameStatus
	statusKnown  bool
	paymentToken string

	// one-shot guard against duplicate concurrent reads; cleared on failure
	// so a later retry can attempt again.
	contractLoading bool
	contractCh      chan contractData
}

func NewSession(gameID string, info protocol.GameInfo, player string, chain contractReader, wallet walletSender, api submissionWriter) *Session {
	return &Session{
		gameID:     gameID,
		info:       info,
		player:     player,
		chain:      chain,
		flow:       newTxFlow(wallet, api, chain),
		contractCh: make(chan contractData, 1),
	}
}

func (s *Session) Info() protocol.GameInfo       { return s.info }
func (s *Session) Coord() *Coordinate            { return s.coord }
func (s *Session) TxState() TxState              { return s.flow.State() }
func (s *Session) TxError() string               { return s.flow.Error() }
func (s *Session) MintPrice() *big.Int           { return s.mintPrice }
func (s *Session) PrizePool() *big.Int           { return s.prizePool }
func (s *Session) Recent() []protocol.Submission { return s.flow.Recent() }

// Status returns the contract's game status and whether it has loaded yet.
func (s *Session) Status() (protocol.GameStatus, bool) {
	return s.gameStatus, s.statusKnown
}

// LoadContractData reads the four contract parameters on a goroutine. A
// second call while one is in flight (or after a successful load) is a no-op.
func (s *Session) LoadContractData() {
	if s.contractLoading || s.info.ContractAddress == "" {
		return
	}
	s.contractLoading = true
	addr := s.info.ContractAddress
	go func() {
		var d contractData
		if d.price, d.err = s.chain.MintPrice(addr); d.err == nil {
			if d.status, d.err = s.chain.GameStatus(addr); d.err == nil {
				if d.pool, d.err = s.chain.PrizePool(addr); d.err == nil {
					d.token, d.err = s.chain.PaymentToken(addr)
				}
			}
		}
		s.contractCh <- d
	}()
}

func (s *Session) applyContract(d contractData) {
	if d.err != nil {
		log.Printf("contract read failed: %v", d.err)
		s.contractLoading = false // allow a remount retry
		return
	}
	s.mintPrice = d.price
	s.gameStatus = d.status
	s.statusKnown = true
	s.prizePool = d.pool
	s.paymentToken = d.token
}

// SetCoordinate replaces the selection wholesale. A new guess always resets
// the transaction state to idle and clears any stale error message.
func (s *Session) SetCoordinate(c Coordinate) {
	s.coord = &c
	s.flow.resetIdle()
}

// Reset clears the selection. Not a valid action while a transaction is in
// flight; the control surface disables it, this is the backstop.
func (s *Session) Reset() {
	if s.flow.State() == TxPending {
		return
	}
	s.coord = nil
	s.flow.resetIdle()
}

// CanSubmit reports whether the submit control should be live.
func (s *Session) CanSubmit() bool {
	st := s.flow.State()
	return s.coord != nil &&
		s.mintPrice != nil &&
		s.paymentToken != "" &&
		s.info.ContractAddress != "" &&
		s.statusKnown && s.gameStatus.Playable() &&
		(st == TxIdle || st == TxError)
}

// Submit snapshots the current selection and parameters into the state
// machine. Missing preconditions abort silently; the caller is expected to
// have disabled the control.
func (s *Session) Submit() bool {
	if s.coord == nil {
		return false
	}
	return s.flow.Submit(SubmitRequest{
		GameID:       s.gameID,
		Contract:     s.info.ContractAddress,
		Coord:        *s.coord,
		MintPrice:    s.mintPrice,
		PaymentToken: s.paymentToken,
		PlayerWallet: s.player,
	})
}

// Poll drains pending async results on the game loop. Returns a non-nil
// outcome when a transaction just reached its terminal state.
func (s *Session) Poll() *txOutcome {
	select {
	case d := <-s.contractCh:
		s.applyContract(d)
	default:
	}

	var out *txOutcome
	select {
	case r := <-s.flow.resCh:
		o := s.flow.apply(r)
		if o.success {
			s.coord = nil
		}
		out = &o
	default:
	}

	select {
	case p := <-s.flow.poolCh:
		s.prizePool = p
	default:
	}
	return out
}
