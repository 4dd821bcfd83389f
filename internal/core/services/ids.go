package services

import (
	"crypto/rand"
	"math/big"
)

const (
	bookingIDLength   = 9
	bookingIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// NewBookingID returns a 9 character uppercase alphanumeric id drawn from
// crypto/rand.
func NewBookingID() (string, error) {
	alphabetSize := big.NewInt(int64(len(bookingIDAlphabet)))
	buf := make([]byte, bookingIDLength)

	for i := range buf {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", err
		}
		buf[i] = bookingIDAlphabet[n.Int64()]
	}

	return string(buf), nil
}
