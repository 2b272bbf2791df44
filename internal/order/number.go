package order

import (
	"crypto/rand"
	"math/big"
)

const (
	numberPrefix   = "ORD"
	numberAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	numberLength   = 8
)

// GenerateOrderNumber returns "ORD" plus 8 random uppercase-alphanumeric
// characters. Uniqueness is enforced by the database constraint; the caller
// retries on collision.
func GenerateOrderNumber() string {
	max := big.NewInt(int64(len(numberAlphabet)))

	buf := make([]byte, numberLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand should not fail; fall back to the first symbol
			// rather than abort order creation.
			buf[i] = numberAlphabet[0]
			continue
		}
		buf[i] = numberAlphabet[n.Int64()]
	}

	return numberPrefix + string(buf)
}
