package codegen

import (
	"errors"
	"fmt"
)

const (
	// Alphabet is the 62-symbol digit set, lowest digit first.
	Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	// CodeLength is the fixed width of every generated code.
	CodeLength = 7
	// MaxCodes is 62^7, the number of distinct codes of CodeLength symbols.
	MaxCodes int64 = 3_521_614_606_208

	base = int64(len(Alphabet))
)

var (
	// ErrOutOfRange is returned when a value cannot be encoded in CodeLength
	// symbols without wrapping.
	ErrOutOfRange = errors.New("value outside encodable range")
	// ErrInvalidCode is returned by Decode for malformed input.
	ErrInvalidCode = errors.New("invalid code")
)

// digitValue maps an ASCII byte to its base-62 digit, or -1.
var digitValue = func() [256]int8 {
	var t [256]int8
	for i := range t {
		t[i] = -1
	}
	for i := 0; i < len(Alphabet); i++ {
		t[Alphabet[i]] = int8(i)
	}
	return t
}()

// Encode renders n as a CodeLength-wide base-62 string, most significant
// digit first and left-padded with '0'. Values outside [0, MaxCodes) are
// rejected rather than wrapped.
func Encode(n int64) (string, error) {
	if n < 0 || n >= MaxCodes {
		return "", fmt.Errorf("%w: %d", ErrOutOfRange, n)
	}
	var buf [CodeLength]byte
	for i := CodeLength - 1; i >= 0; i-- {
		buf[i] = Alphabet[n%base]
		n /= base
	}
	return string(buf[:]), nil
}

// MustEncode is Encode for callers that have already validated the range.
func MustEncode(n int64) string {
	s, err := Encode(n)
	if err != nil {
		panic(err)
	}
	return s
}

// Decode is the inverse of Encode.
func Decode(code string) (int64, error) {
	if len(code) != CodeLength {
		return 0, fmt.Errorf("%w: want %d symbols, got %d", ErrInvalidCode, CodeLength, len(code))
	}
	var n int64
	for i := 0; i < len(code); i++ {
		d := digitValue[code[i]]
		if d < 0 {
			return 0, fmt.Errorf("%w: symbol %q at %d", ErrInvalidCode, code[i], i)
		}
		n = n*base + int64(d)
	}
	return n, nil
}
