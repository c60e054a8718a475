package utils

import (
	"crypto/rand"
	"math/big"
)

const alphaNum = "0123456789abcdefghijklmnopqrstuvwxyz"

// RandomAlphaNumString returns a random string of the given length
// consisting of [0-9a-z]. It returns an empty string for lengths < 1.
func RandomAlphaNumString(length int) (string, error) {
	if length < 1 {
		return "", nil
	}
	max := big.NewInt(int64(len(alphaNum)))
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		result[i] = alphaNum[n.Int64()]
	}
	return string(result), nil
}
