package identity

import (
	"crypto/sha256"
	"errors"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// ErrInvalidAddress is returned for addresses that do not decode to a
// 32-byte ed25519 point.
var ErrInvalidAddress = errors.New("invalid account address")

// ValidateAddress checks that addr is base58 for a 32-byte ed25519
// curve point, the wire form used for account identities.
func ValidateAddress(addr string) error {
	raw, err := base58.Decode(addr)
	if err != nil {
		return ErrInvalidAddress
	}
	if !isOnCurve(raw) {
		return ErrInvalidAddress
	}
	return nil
}

func isOnCurve(point []byte) bool {
	if len(point) != 32 {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(point)
	return err == nil
}

// DeriveAddress derives a curve-valid address from a seed string, for
// system accounts that have no external keypair (e.g. the factory's
// holding account). Mirrors bump-seed derivation: hash seed with a
// descending bump until the result lands on the curve.
func DeriveAddress(seed string) string {
	for bump := byte(255); bump > 0; bump-- {
		data := append([]byte(seed), bump)
		hash := sha256.Sum256(data)
		if isOnCurve(hash[:]) {
			return base58.Encode(hash[:])
		}
	}
	return ""
}
