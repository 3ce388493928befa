package auth

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jeefxM/STB-World/shared/eth"
	"github.com/jeefxM/STB-World/shared/protocol"
)

type ctxKey int

const walletKey ctxKey = 0

// Wallet returns the authenticated wallet address stored by RequireAuth.
func Wallet(ctx context.Context) string {
	w, _ := ctx.Value(walletKey).(string)
	return w
}

type Auth struct {
	jwtKey []byte
	issuer string
	ttl    time.Duration
}

// NewAuth loads (or creates) the signing key under dataDir.
func NewAuth(dataDir string) (*Auth, error) {
	_ = os.MkdirAll(dataDir, 0o755)
	keyPath := filepath.Join(dataDir, "jwt.key")
	key, err := os.ReadFile(keyPath)
	if err != nil || len(key) < 32 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, err
		}
		if err := os.WriteFile(keyPath, key, 0o600); err != nil {
			return nil, err
		}
	}
	return &Auth{jwtKey: key, issuer: "SpotTheBall", ttl: 24 * time.Hour}, nil
}

// HandleLogin exchanges a wallet address for a session token. There is no
// password; possession of the wallet is proven on-chain, the token only
// scopes history queries to the caller's address.
func (a *Auth) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req protocol.LoginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	addr, err := eth.Checksum(strings.TrimSpace(req.WalletAddress))
	if err != nil {
		http.Error(w, "invalid wallet address", http.StatusBadRequest)
		return
	}

	claims := jwt.MapClaims{
		"sub": addr,
		"iss": a.issuer,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(a.ttl).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(a.jwtKey)
	if err != nil {
		http.Error(w, "token signing failed", http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(protocol.LoginResp{Token: signed, WalletAddress: addr})
}

// ParseToken returns the wallet address a token was issued for.
func (a *Auth) ParseToken(tok string) (string, error) {
	if tok == "" {
		return "", errors.New("missing token")
	}
	t, err := jwt.Parse(tok, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.jwtKey, nil
	})
	if err != nil || !t.Valid {
		return "", errors.New("invalid token")
	}
	if claims, ok := t.Claims.(jwt.MapClaims); ok {
		if sub, ok := claims["sub"].(string); ok && eth.IsHexAddress(sub) {
			return sub, nil
		}
	}
	return "", errors.New("bad claims")
}

// RequireAuth guards REST endpoints and stashes the wallet on the context.
func (a *Auth) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var tok string
		if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
			tok = strings.TrimPrefix(h, "Bearer ")
		} else {
			tok = r.URL.Query().Get("token")
		}
		wallet, err := a.ParseToken(tok)
		if err != nil || wallet == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), walletKey, wallet)))
	})
}
