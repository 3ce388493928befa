package netcfg

import "os"

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

var APIBase = getenv("STB_API_BASE", "http://127.0.0.1:8080")            // REST backend
var WalletURL = getenv("STB_WALLET_WS", "ws://127.0.0.1:8789/wallet")    // host wallet bridge
var ChainRPC = getenv("STB_RPC_URL", "https://worldchain-mainnet.g.alchemy.com/v2/demo")
var GameID = getenv("STB_GAME_ID", "demo")
