/*
Package balance implements parsing and canonical formatting of account
balances. A balance is an unsigned 256-bit integer written in decimal
(hex with "0x" prefix is accepted on input).
*/
package balance

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
)

// MaxDecimalLength is the length of the decimal representation of the
// largest 256-bit unsigned integer.
const MaxDecimalLength = 78

// ErrInvalidBalance is returned for strings that are not valid balances.
var ErrInvalidBalance = errors.New("invalid balance")

// Parse converts s to an unsigned 256-bit integer. Signs, fractions,
// whitespace and values not fitting into 256 bits are rejected.
func Parse(s string) (*uint256.Int, error) {
	var (
		base   = 10
		digits = s
	)
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		base, digits = 16, s[2:]
	}
	if len(digits) == 0 {
		return nil, fmt.Errorf("%w: empty value %q", ErrInvalidBalance, s)
	}
	for i := 0; i < len(digits); i++ {
		if !isDigit(digits[i], base) {
			return nil, fmt.Errorf("%w: unexpected character %q in %q", ErrInvalidBalance, digits[i], s)
		}
	}
	b, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBalance, s)
	}
	v, overflow := uint256.FromBig(b)
	if overflow {
		return nil, fmt.Errorf("%w: %q overflows 256 bits", ErrInvalidBalance, s)
	}
	return v, nil
}

func isDigit(c byte, base int) bool {
	switch {
	case '0' <= c && c <= '9':
		return true
	case base == 16 && 'a' <= c && c <= 'f', base == 16 && 'A' <= c && c <= 'F':
		return true
	}
	return false
}

// Format returns decimal representation of v.
func Format(v *uint256.Int) string {
	return v.ToBig().String()
}

// Canonical returns the canonical decimal form of s, so that equal balances
// are always stored as equal byte strings. An empty string stays empty as
// it means the balance is removed.
func Canonical(s string) (string, error) {
	if s == "" {
		return "", nil
	}
	v, err := Parse(s)
	if err != nil {
		return "", err
	}
	return Format(v), nil
}
