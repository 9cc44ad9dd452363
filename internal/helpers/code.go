package helpers

import (
	"crypto/rand"
	"math/big"

	"github.com/sgazz/SuperMoment/internal/models"
)

const voucherAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateVoucherCode draws random 8-character codes until taken reports one
// as free.
func GenerateVoucherCode(taken func(code string) (bool, error)) (string, error) {
	alphabetLen := big.NewInt(int64(len(voucherAlphabet)))
	buf := make([]byte, models.VoucherCodeLength)
	for {
		for i := range buf {
			n, err := rand.Int(rand.Reader, alphabetLen)
			if err != nil {
				return "", err
			}
			buf[i] = voucherAlphabet[n.Int64()]
		}
		code := string(buf)
		exists, err := taken(code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
}
