package utils

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"
	"strings"
)

// GenerateCode returns n random bytes as upper-case hex.
func GenerateCode(n int) (string, error) {
	byt := make([]byte, n)
	if _, err := rand.Read(byt); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(byt)), nil
}

// GenerateOTP returns a numeric one-time code of the given length.
func GenerateOTP(length int) (string, error) {
	return GenerateDigits(length)
}

// GenerateDigits returns length uniformly distributed decimal digits.
// Leading zeros are kept.
func GenerateDigits(length int) (string, error) {
	const charset = "0123456789"

	max := big.NewInt(int64(len(charset)))
	var sb strings.Builder
	sb.Grow(length)

	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		sb.WriteByte(charset[n.Int64()])
	}

	return sb.String(), nil
}
