package protocol

import "time"

// GameStatus mirrors the game contract's status enum.
type GameStatus int

const (
	GameNotStarted GameStatus = 0
	GameStarted    GameStatus = 1
	GameStopped    GameStatus = 2
	GameClaim      GameStatus = 3
)

func (s GameStatus) Playable() bool { return s == GameStarted }

// GameInfo is the backend's view of one game, served by GET /api/game.
type GameInfo struct {
	GameID           string `json:"game_id"`
	ContractAddress  string `json:"contract_address"`
	Name             string `json:"name"`
	Status           string `json:"status"`
	ImageURL         string `json:"image_url"`
	TotalSubmissions int    `json:"total_submissions"`
}

// Submission is one persisted guess. The chain is authoritative; this record
// exists so history screens don't have to scan the chain.
type Submission struct {
	ID           string    `json:"id"`
	GameID       string    `json:"gameId"`
	PlayerWallet string    `json:"playerWallet"`
	XCoordinate  int       `json:"xCoordinate"`
	YCoordinate  int       `json:"yCoordinate"`
	TxHash       string    `json:"txHash"`
	TokenID      string    `json:"tokenId,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

type CreateSubmissionReq struct {
	GameID       string            `json:"gameId"`
	PlayerWallet string            `json:"playerWallet"`
	XCoordinate  int               `json:"xCoordinate"`
	YCoordinate  int               `json:"yCoordinate"`
	TxHash       string            `json:"txHash"`
	TokenID      string            `json:"tokenId,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

type CreateSubmissionResp struct {
	Success    bool       `json:"success"`
	Submission Submission `json:"submission"`
}

// SubmissionView is a Submission joined with its game for the history list.
// PrizeWon is non-nil only when the game has a recorded winner and the
// submitter's wallet matches it (case-insensitive).
type SubmissionView struct {
	Submission
	GameName   string  `json:"game_name"`
	GameStatus string  `json:"game_status"`
	GameImage  string  `json:"game_image"`
	PrizeWon   *string `json:"prize_won"`
}

type LoginReq struct {
	WalletAddress string `json:"walletAddress"`
}

type LoginResp struct {
	Token         string `json:"token"`
	WalletAddress string `json:"walletAddress"`
}
