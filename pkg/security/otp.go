package security

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// NumericCode returns a uniformly random code of exactly digits digits,
// zero padded.
func NumericCode(digits int) (string, error) {
	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil)

	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%0*d", digits, n), nil
}
