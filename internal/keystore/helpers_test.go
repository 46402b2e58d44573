package keystore

import (
	"crypto/ed25519"

	"github.com/mr-tron/base58"
)

func solanaBase58(key ed25519.PrivateKey) string {
	return base58.Encode(key)
}
