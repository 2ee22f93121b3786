/*
Package random provides random values for tests.
*/
package random

import (
	"encoding/hex"
	"math/rand"
	"strconv"
)

// Bytes returns a random byte slice of specified length.
func Bytes(n int) []byte {
	b := make([]byte, n)
	Fill(b)
	return b
}

// Fill fills buffer with random bytes.
func Fill(buf []byte) {
	// Rand reader returns no errors
	_, _ = rand.Read(buf)
}

// Int returns a random integer in [minI,maxI).
func Int(minI, maxI int) int {
	return minI + rand.Intn(maxI-minI)
}

// Address returns a random "0x"-prefixed hex address of n bytes.
func Address(n int) string {
	return "0x" + hex.EncodeToString(Bytes(n))
}

// Addresses returns count distinct random addresses of n bytes each.
func Addresses(count, n int) []string {
	var (
		seen = make(map[string]struct{}, count)
		res  = make([]string, 0, count)
	)
	for len(res) < count {
		a := Address(n)
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		res = append(res, a)
	}
	return res
}

// Balance returns a random non-zero decimal balance.
func Balance() string {
	return strconv.FormatUint(uint64(rand.Int63n(1_000_000_000))+1, 10)
}
