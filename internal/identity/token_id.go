// Package identity derives token identities and validates account
// addresses. Token identity is a deterministic SHA256 over the creation
// inputs, base58-encoded.
package identity

import (
	"crypto/sha256"
	"fmt"

	"github.com/mr-tron/base58"
)

// ComputeTokenID computes a deterministic token identity.
// Formula: base58(SHA256(name|symbol|creator|seq|created_at))
func ComputeTokenID(name, symbol, creator string, seq int, createdAt int64) string {
	data := fmt.Sprintf("%s|%s|%s|%d|%d",
		name,
		symbol,
		creator,
		seq,
		createdAt,
	)

	hash := sha256.Sum256([]byte(data))
	return base58.Encode(hash[:])
}
