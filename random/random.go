package random

import (
	crand "crypto/rand"
	"math/big"
)

const charset = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// StringSecure returns a random string of the given length drawn from
// uppercase letters and digits.
func StringSecure(length int) (string, error) {
	b := make([]byte, length)
	l := big.NewInt(int64(len(charset)))
	for i := range b {
		num, err := crand.Int(crand.Reader, l)
		if err != nil {
			return "", err
		}
		b[i] = charset[num.Int64()]
	}
	return string(b), nil
}
