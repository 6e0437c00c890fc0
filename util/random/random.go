// Package random generates secrets for accounts created from the command line.
package random

import (
	"crypto/rand"
	"math/big"
)

// passwordAlphabet leaves out characters that are easy to misread.
const passwordAlphabet = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// DefaultPasswordLength is used when a caller asks for a non-positive length.
const DefaultPasswordLength = 16

// Password returns n characters drawn uniformly from passwordAlphabet
// using crypto/rand.
func Password(n int) (string, error) {
	if n <= 0 {
		n = DefaultPasswordLength
	}
	max := big.NewInt(int64(len(passwordAlphabet)))
	out := make([]byte, n)
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = passwordAlphabet[idx.Int64()]
	}
	return string(out), nil
}
