package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	digits  = "0123456789"
	letters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	upper   = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789" // no 0/O/1/I, for codes typed by hand
)

func randomFrom(alphabet string, n int) (string, error) {
	out := make([]byte, n)
	max := big.NewInt(int64(len(alphabet)))
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate random index: %w", err)
		}
		out[i] = alphabet[idx.Int64()]
	}
	return string(out), nil
}

// NewBookingID returns a caller-visible booking reference: "EZB" plus seven
// random digits. Uniqueness is enforced by the bookings table, not here.
func NewBookingID() (string, error) {
	suffix, err := randomFrom(digits, 7)
	if err != nil {
		return "", err
	}
	return "EZB" + suffix, nil
}

// NewWalletSettlementRef returns a synthetic order reference for wallet-paid
// bookings, shaped like a gateway transfer id so the order_ref column stays
// uniform: "ewtr_0" plus 28 random letters.
func NewWalletSettlementRef() (string, error) {
	suffix, err := randomFrom(letters, 28)
	if err != nil {
		return "", err
	}
	return "ewtr_0" + suffix, nil
}

// NewGiftCardCode returns a 12-character claim code from an alphabet without
// lookalike characters.
func NewGiftCardCode() (string, error) {
	return randomFrom(upper, 12)
}

// NewGiftCardPIN returns a six-digit PIN. Only the bcrypt hash is stored; the
// clear PIN goes out in the delivery email.
func NewGiftCardPIN() (string, error) {
	return randomFrom(digits, 6)
}
