package game

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strings"

	"github.com/jeefxM/STB-World/shared/eth"
	"github.com/jeefxM/STB-World/shared/protocol"
)

// ChainClient reads the game contract with plain JSON-RPC eth_call. Writes
// never happen here; they go through the wallet bridge.
type ChainClient struct {
	url string
	hc  *http.Client
}

func NewChainClient(rpcURL string) *ChainClient {
	return &ChainClient{url: rpcURL, hc: http.DefaultClient}
}

// selector is the first four bytes of the Keccak-256 of the signature.
func selector(sig string) string {
	return "0x" + hex.EncodeToString(eth.Keccak256([]byte(sig))[:4])
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result string    `json:"result"`
	Error  *rpcError `json:"error"`
}

// call invokes a no-argument view function and returns the raw return word.
func (c *ChainClient) call(contract, sig string) ([]byte, error) {
	body, _ := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "eth_call",
		Params:  []any{map[string]string{"to": contract, "data": selector(sig)}, "latest"},
	})
	resp, err := c.hc.Post(c.url, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rpc: HTTP %d", resp.StatusCode)
	}
	var out rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if out.Error != nil {
		return nil, fmt.Errorf("eth_call %s: %s", sig, out.Error.Message)
	}
	raw, err := hex.DecodeString(strings.TrimPrefix(out.Result, "0x"))
	if err != nil {
		return nil, fmt.Errorf("eth_call %s: bad result: %w", sig, err)
	}
	if len(raw) < 32 {
		return nil, fmt.Errorf("eth_call %s: short return (%d bytes)", sig, len(raw))
	}
	return raw[:32], nil
}

func (c *ChainClient) MintPrice(contract string) (*big.Int, error) {
	word, err := c.call(contract, "mintPrice()")
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(word), nil
}

func (c *ChainClient) GameStatus(contract string) (protocol.GameStatus, error) {
	word, err := c.call(contract, "gameStatus()")
	if err != nil {
		return 0, err
	}
	return protocol.GameStatus(new(big.Int).SetBytes(word).Int64()), nil
}

func (c *ChainClient) PrizePool(contract string) (*big.Int, error) {
	word, err := c.call(contract, "prizePool()")
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(word), nil
}

// PaymentToken returns the checksummed payment token address; the zero
// address means the game charges the native asset.
func (c *ChainClient) PaymentToken(contract string) (string, error) {
	word, err := c.call(contract, "paymentToken()")
	if err != nil {
		return "", err
	}
	addr := "0x" + hex.EncodeToString(word[12:32])
	return eth.Checksum(addr)
}
