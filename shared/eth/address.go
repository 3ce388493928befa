package eth

import (
	"errors"
	"math/big"
	"strings"

	"golang.org/x/crypto/sha3"
)

// ZeroAddress is the payment-token sentinel for "native asset".
const ZeroAddress = "0x0000000000000000000000000000000000000000"

// Keccak256 hashes data with the legacy (pre-NIST) Keccak used by Ethereum.
func Keccak256(data []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	return h.Sum(nil)
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// IsHexAddress reports whether s looks like a 20-byte 0x-prefixed address.
func IsHexAddress(s string) bool {
	if len(s) != 42 || s[0] != '0' || (s[1] != 'x' && s[1] != 'X') {
		return false
	}
	for i := 2; i < len(s); i++ {
		if !isHexDigit(s[i]) {
			return false
		}
	}
	return true
}

// Checksum returns the EIP-55 mixed-case form of addr.
func Checksum(addr string) (string, error) {
	if !IsHexAddress(addr) {
		return "", errors.New("eth: not a hex address")
	}
	lower := strings.ToLower(addr[2:])
	hash := Keccak256([]byte(lower))
	out := []byte(lower)
	for i, c := range out {
		if c < 'a' || c > 'f' {
			continue
		}
		nibble := hash[i/2]
		if i%2 == 0 {
			nibble >>= 4
		} else {
			nibble &= 0x0f
		}
		if nibble >= 8 {
			out[i] = c - 'a' + 'A'
		}
	}
	return "0x" + string(out), nil
}

// Equal compares two addresses case-insensitively.
func Equal(a, b string) bool {
	return strings.EqualFold(a, b)
}

// IsZero reports whether addr is the native-asset sentinel.
func IsZero(addr string) bool {
	return Equal(addr, ZeroAddress)
}

// HexWei renders a wei amount as a 0x-prefixed hex quantity.
func HexWei(v *big.Int) string {
	return "0x" + v.Text(16)
}
