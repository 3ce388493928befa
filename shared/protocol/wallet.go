package protocol

// Wallet-bridge wire types. The client never signs anything itself: it ships
// call descriptors to the host wallet and waits for a terminal payload.

// Call describes one contract invocation inside a transaction command.
// Value is a hex quantity ("0x...") attached only on native-asset payments.
type Call struct {
	Address      string `json:"address"`
	FunctionName string `json:"functionName"`
	Args         []any  `json:"args"`
	Value        string `json:"value,omitempty"`
}

// TokenPermissions is the permitted token+amount of a permit2 transfer.
// Amount is a decimal string, per the permit2 convention.
type TokenPermissions struct {
	Token  string `json:"token"`
	Amount string `json:"amount"`
}

// PermitTransfer authorizes the spender to pull the permitted amount. The
// wallet signs it out-of-band and splices the signature into the call.
type PermitTransfer struct {
	Permitted TokenPermissions `json:"permitted"`
	Spender   string           `json:"spender"`
	Nonce     string           `json:"nonce"`
	Deadline  string           `json:"deadline"`
}

// TxPayload is the full sendTransaction command body.
type TxPayload struct {
	Transaction []Call           `json:"transaction"`
	Permit2     []PermitTransfer `json:"permit2,omitempty"`
}

// FinalPayload is the terminal status of a sendTransaction command.
type FinalPayload struct {
	Status        string `json:"status"`
	TransactionID string `json:"transaction_id,omitempty"`
	ErrorCode     string `json:"error_code,omitempty"`
	ErrorMessage  string `json:"error_message,omitempty"`
}

const TxStatusSuccess = "success"
