// Package randompkg provides functionality for generating random applications common items.
package randompkg

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

const alphabet = "abcdefghijklmnopqrstuvwxyz"

// Intn is a shortcut for generating a random integer between 0 and max using crypto/rand.
func Intn(max int64) int64 {
	nBig, err := rand.Int(rand.Reader, big.NewInt(max))
	if err != nil {
		panic(err)
	}

	return nBig.Int64()
}

// IntBetween generates a random integer in [min, max].
func IntBetween(min, max int64) int64 {
	return min + Intn(max-min+1)
}

// String generates a random string of length n.
func String(n int) string {
	var sb strings.Builder

	k := int64(len(alphabet))

	for i := 0; i < n; i++ {
		c := alphabet[Intn(k)]

		_ = sb.WriteByte(c) // The returned err is always nil.
	}

	return sb.String()
}

// Name generates a random user name.
func Name() string {
	return String(6)
}

// AccountNumber generates a random ten digit account number.
func AccountNumber() string {
	return fmt.Sprintf("%d", IntBetween(1_000_000_000, 9_999_999_999))
}

// MoneyAmountBetween generates a random amount in the smallest currency unit.
func MoneyAmountBetween(min, max int64) int64 {
	return IntBetween(min, max)
}
