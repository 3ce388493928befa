package game

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strings"

	"github.com/jeefxM/STB-World/shared/protocol"
)

// In-memory session token for the current run
var sessionToken string

// Login exchanges the bridge-provided wallet address for a backend session
// token and persists both for the next run.
func Login(walletAddress string) (string, error) {
	req := protocol.LoginReq{WalletAddress: walletAddress}
	b, _ := json.Marshal(&req)
	resp, err := http.Post(getBaseURL()+"/api/auth", "application/json", bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", errors.New("wallet login rejected")
	}
	var out protocol.LoginResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	_ = SaveToken(out.Token)
	_ = SaveWallet(out.WalletAddress)
	return out.Token, nil
}

// HasToken reports whether a non-empty token exists.
func HasToken() bool {
	return strings.TrimSpace(LoadToken()) != ""
}

func tokenPath() string  { return ConfigPath("token.json") }
func walletPath() string { return ConfigPath("wallet.txt") }

func SaveToken(tok string) error {
	sessionToken = strings.TrimSpace(tok)
	return os.WriteFile(tokenPath(), []byte(sessionToken), 0o600)
}

func LoadToken() string {
	if strings.TrimSpace(sessionToken) != "" {
		return strings.TrimSpace(sessionToken)
	}
	b, _ := os.ReadFile(tokenPath())
	return strings.TrimSpace(string(b))
}

func ClearToken() {
	sessionToken = ""
	_ = os.Remove(tokenPath())
}

func SaveWallet(addr string) error {
	return os.WriteFile(walletPath(), []byte(strings.TrimSpace(addr)), 0o600)
}

func LoadWallet() string {
	b, _ := os.ReadFile(walletPath())
	return strings.TrimSpace(string(b))
}

func ClearWallet() {
	_ = os.Remove(walletPath())
}
