package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jeefxM/STB-World/shared/protocol"
)

const testWallet = "0x8ba1f109551bd432803012645ac136ddd64dba72"

func newTestAuth(t *testing.T) *Auth {
	t.Helper()
	a, err := NewAuth(t.TempDir())
	if err != nil {
		t.Fatalf("NewAuth: %v", err)
	}
	return a
}

func login(t *testing.T, a *Auth, wallet string) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(protocol.LoginReq{WalletAddress: wallet})
	req := httptest.NewRequest("POST", "/api/auth", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	a.HandleLogin(rr, req)
	return rr
}

func TestLoginIssuesUsableToken(t *testing.T) {
	a := newTestAuth(t)
	rr := login(t, a, testWallet)
	if rr.Code != http.StatusOK {
		t.Fatalf("login: HTTP %d", rr.Code)
	}
	var resp protocol.LoginResp
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	// Address comes back checksummed regardless of input casing.
	if resp.WalletAddress != "0x8ba1f109551bD432803012645Ac136ddd64DBA72" {
		t.Fatalf("wallet not checksummed: %s", resp.WalletAddress)
	}

	wallet, err := a.ParseToken(resp.Token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if wallet != resp.WalletAddress {
		t.Fatalf("token subject = %s, want %s", wallet, resp.WalletAddress)
	}
}

func TestLoginRejectsBadAddress(t *testing.T) {
	a := newTestAuth(t)
	for _, bad := range []string{"", "not-an-address", "0x1234"} {
		if rr := login(t, a, bad); rr.Code != http.StatusBadRequest {
			t.Errorf("login(%q): HTTP %d, want 400", bad, rr.Code)
		}
	}
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	a := newTestAuth(t)
	for _, tok := range []string{"", "garbage", "a.b.c"} {
		if _, err := a.ParseToken(tok); err == nil {
			t.Errorf("ParseToken(%q) accepted", tok)
		}
	}
}

func TestRequireAuthExposesWallet(t *testing.T) {
	a := newTestAuth(t)
	var resp protocol.LoginResp
	_ = json.Unmarshal(login(t, a, testWallet).Body.Bytes(), &resp)

	var got string
	h := a.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = Wallet(r.Context())
	}))

	req := httptest.NewRequest("GET", "/api/submissions", nil)
	req.Header.Set("Authorization", "Bearer "+resp.Token)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("authed request: HTTP %d", rr.Code)
	}
	if got != resp.WalletAddress {
		t.Fatalf("context wallet = %q", got)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/api/submissions", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("bare request: HTTP %d, want 401", rr.Code)
	}
}
