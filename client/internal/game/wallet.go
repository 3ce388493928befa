package game

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/jeefxM/STB-World/shared/eth"
	"github.com/jeefxM/STB-World/shared/protocol"
)

type bridgeMsg struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// WalletBridge is the websocket connection to the host wallet app. The client
// ships JSON command envelopes and waits for the wallet's answer; signing and
// user approval happen entirely on the other side.
type WalletBridge struct {
	mu     sync.Mutex
	conn   *websocket.Conn
	inCh   chan bridgeMsg
	closed bool
}

func DialWallet(wsURL string) (*WalletBridge, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout:  5 * time.Second,
		EnableCompression: true,
	}
	c, resp, err := dialer.Dial(wsURL, http.Header{})
	if err != nil {
		if resp != nil {
			log.Printf("wallet dial failed: %s", resp.Status)
		}
		return nil, err
	}
	b := &WalletBridge{conn: c, inCh: make(chan bridgeMsg, 16)}
	go b.reader()
	return b, nil
}

func (b *WalletBridge) reader() {
	for {
		_, data, err := b.conn.ReadMessage()
		if err != nil {
			b.mu.Lock()
			b.closed = true
			b.conn = nil
			b.mu.Unlock()
			close(b.inCh)
			return
		}
		var m bridgeMsg
		if err := json.Unmarshal(data, &m); err != nil {
			continue
		}
		b.inCh <- m
	}
}

func (b *WalletBridge) send(t string, v any) error {
	b.mu.Lock()
	if b.closed || b.conn == nil {
		b.mu.Unlock()
		return errors.New("wallet: write on closed bridge")
	}
	c := b.conn
	b.mu.Unlock()

	raw, _ := json.Marshal(struct {
		Type string `json:"type"`
		Data any    `json:"data"`
	}{Type: t, Data: v})

	if err := c.WriteMessage(websocket.TextMessage, raw); err != nil {
		log.Println("wallet write:", err)
		b.mu.Lock()
		b.closed = true
		b.conn = nil
		b.mu.Unlock()
		return err
	}
	return nil
}

// await blocks until an envelope of the wanted type arrives. Only one command
// is ever in flight (single-threaded UI), unrelated envelopes are dropped.
func (b *WalletBridge) await(t string) (json.RawMessage, error) {
	for m := range b.inCh {
		if m.Type == t {
			return m.Data, nil
		}
	}
	return nil, errors.New("wallet: bridge closed")
}

// Address runs the wallet handshake and returns the holder's address.
func (b *WalletBridge) Address() (string, error) {
	if err := b.send("walletAuth", struct{}{}); err != nil {
		return "", err
	}
	raw, err := b.await("walletAddress")
	if err != nil {
		return "", err
	}
	var out struct {
		Address string `json:"address"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", err
	}
	if !eth.IsHexAddress(out.Address) {
		return "", errors.New("wallet: malformed address")
	}
	return out.Address, nil
}

// SendTransaction ships the payload and blocks until the terminal payload.
// No client-side deadline: approval latency is the wallet's to bound.
func (b *WalletBridge) SendTransaction(p protocol.TxPayload) (protocol.FinalPayload, error) {
	if err := b.send("sendTransaction", p); err != nil {
		return protocol.FinalPayload{}, err
	}
	raw, err := b.await("transactionResult")
	if err != nil {
		return protocol.FinalPayload{}, err
	}
	var fp protocol.FinalPayload
	if err := json.Unmarshal(raw, &fp); err != nil {
		return protocol.FinalPayload{}, err
	}
	return fp, nil
}

func (b *WalletBridge) IsClosed() bool {
	if b == nil {
		return true
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

func (b *WalletBridge) Close() error {
	if b == nil {
		return nil
	}
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	c := b.conn
	b.conn = nil
	b.mu.Unlock()
	if c != nil {
		return c.Close()
	}
	return nil
}
