package game

import (
	"fmt"
	"log"
	"math/big"
	"strconv"
	"time"

	"github.com/jeefxM/STB-World/shared/eth"
	"github.com/jeefxM/STB-World/shared/protocol"
)

// The wallet layer fills the real permit signature in at send time; the
// client only reserves the argument slot.
const permitSignaturePlaceholder = "PERMIT2_SIGNATURE_PLACEHOLDER_0"

const permitValidity = 30 * time.Minute

// TxState is the submission lifecycle: idle -> pending -> success|error.
// error may re-enter pending on a user retry; success is terminal for the
// submitted coordinate.
type TxState int

const (
	TxIdle TxState = iota
	TxPending
	TxSuccess
	TxError
)

// walletSender ships a transaction command to the host wallet and blocks
// until the terminal payload. Approval latency is unbounded; the wallet layer
// owns timeout semantics, so no deadline is imposed here.
type walletSender interface {
	SendTransaction(p protocol.TxPayload) (protocol.FinalPayload, error)
}

// submissionWriter persists a successful guess for fast history reads.
type submissionWriter interface {
	CreateSubmission(req protocol.CreateSubmissionReq) (protocol.Submission, error)
}

// prizePoolReader re-reads the pool after a successful play.
type prizePoolReader interface {
	PrizePool(contract string) (*big.Int, error)
}

// SubmitRequest carries everything Submit needs, snapshotted at call time.
type SubmitRequest struct {
	GameID       string
	Contract     string
	Coord        Coordinate
	MintPrice    *big.Int
	PaymentToken string
	PlayerWallet string
}

// buildTxPayload assembles the wallet command for one guess. The contract
// takes the coordinate pair y-first; that ordering is fixed on-chain.
func buildTxPayload(req SubmitRequest, now time.Time) protocol.TxPayload {
	if eth.IsZero(req.PaymentToken) {
		return protocol.TxPayload{
			Transaction: []protocol.Call{{
				Address:      req.Contract,
				FunctionName: "play",
				Args:         []any{req.Coord.Y, req.Coord.X},
				Value:        eth.HexWei(req.MintPrice),
			}},
		}
	}

	nonce := strconv.FormatInt(now.UnixMilli(), 10)
	deadline := strconv.FormatInt(now.Add(permitValidity).Unix(), 10)
	return protocol.TxPayload{
		Transaction: []protocol.Call{{
			Address:      req.Contract,
			FunctionName: "playWithPermit",
			Args:         []any{req.Coord.Y, req.Coord.X, nonce, deadline, permitSignaturePlaceholder},
		}},
		Permit2: []protocol.PermitTransfer{{
			Permitted: protocol.TokenPermissions{
				Token:  req.PaymentToken,
				Amount: req.MintPrice.String(),
			},
			Spender:  req.Contract,
			Nonce:    nonce,
			Deadline: deadline,
		}},
	}
}

type txResult struct {
	req SubmitRequest
	fp  protocol.FinalPayload
	err error
}

type txOutcome struct {
	success bool
	txID    string
}

// TxFlow is the transaction submission state machine. Submit launches the
// wallet command on a goroutine; the terminal result is delivered through
// resCh and applied on the game loop via apply(). The post-success
// persistence write and pool re-read are fire-and-forget: their failure can
// never downgrade a state that is already TxSuccess.
type TxFlow struct {
	wallet walletSender
	api    submissionWriter
	chain  prizePoolReader

	state  TxState
	errMsg string

	resCh  chan txResult
	poolCh chan *big.Int

	recent []protocol.Submission // most recent first
}

func newTxFlow(wallet walletSender, api submissionWriter, chain prizePoolReader) *TxFlow {
	return &TxFlow{
		wallet: wallet,
		api:    api,
		chain:  chain,
		resCh:  make(chan txResult, 1),
		poolCh: make(chan *big.Int, 1),
	}
}

func (f *TxFlow) State() TxState                { return f.state }
func (f *TxFlow) Error() string                 { return f.errMsg }
func (f *TxFlow) Recent() []protocol.Submission { return f.recent }

// resetIdle is invoked when a new coordinate is picked or the selection is
// cleared: a fresh guess invalidates any displayed outcome.
func (f *TxFlow) resetIdle() {
	f.state = TxIdle
	f.errMsg = ""
}

// Submit validates preconditions and starts the wallet command. It returns
// false as a silent no-op when a precondition is missing or a submit is
// already in flight (reentrancy guard by state-check: only idle and error
// may enter pending).
func (f *TxFlow) Submit(req SubmitRequest) bool {
	if f.state == TxPending || f.state == TxSuccess {
		return false
	}
	if req.Contract == "" || req.MintPrice == nil || req.PaymentToken == "" {
		return false
	}

	payload := buildTxPayload(req, time.Now())
	f.state = TxPending
	f.errMsg = ""

	go func() {
		fp, err := f.wallet.SendTransaction(payload)
		f.resCh <- txResult{req: req, fp: fp, err: err}
	}()
	return true
}

// apply interprets a terminal wallet result. Runs on the game loop.
func (f *TxFlow) apply(r txResult) txOutcome {
	if r.err != nil {
		f.state = TxError
		f.errMsg = r.err.Error()
		if f.errMsg == "" {
			f.errMsg = "Transaction failed"
		}
		return txOutcome{}
	}
	if r.fp.Status != protocol.TxStatusSuccess {
		f.state = TxError
		f.errMsg = r.fp.ErrorMessage
		if f.errMsg == "" {
			f.errMsg = "Transaction was rejected"
		}
		return txOutcome{}
	}

	sub := protocol.Submission{
		ID:           r.fp.TransactionID,
		GameID:       r.req.GameID,
		PlayerWallet: r.req.PlayerWallet,
		XCoordinate:  r.req.Coord.X,
		YCoordinate:  r.req.Coord.Y,
		TxHash:       r.fp.TransactionID,
		CreatedAt:    time.Now(),
	}
	if sub.ID == "" {
		sub.ID = fmt.Sprintf("sub-%d", time.Now().UnixMilli())
	}
	f.recent = append([]protocol.Submission{sub}, f.recent...)
	f.state = TxSuccess

	go f.persist(r.req, r.fp.TransactionID)
	go f.refreshPool(r.req.Contract)

	return txOutcome{success: true, txID: r.fp.TransactionID}
}

// persist is best-effort: the chain already holds the guess, losing the
// database copy only costs a fast history read and can be reconciled later.
func (f *TxFlow) persist(req SubmitRequest, txID string) {
	if f.api == nil {
		return
	}
	_, err := f.api.CreateSubmission(protocol.CreateSubmissionReq{
		GameID:       req.GameID,
		PlayerWallet: req.PlayerWallet,
		XCoordinate:  req.Coord.X,
		YCoordinate:  req.Coord.Y,
		TxHash:       txID,
	})
	if err != nil {
		log.Printf("submission save failed (tx %s stays confirmed): %v", txID, err)
	}
}

func (f *TxFlow) refreshPool(contract string) {
	if f.chain == nil {
		return
	}
	pool, err := f.chain.PrizePool(contract)
	if err != nil {
		return // silent, the stale value stays up
	}
	select {
	case f.poolCh <- pool:
	default:
	}
}
