package common

import (
	"crypto/rand"
	"io"
)

// Alphanumeric is the alphabet used for opaque session tokens.
const Alphanumeric = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// largest multiple of len(Alphanumeric) that fits in a byte; bytes at or above
// it are rejected so that every character is equally likely.
const alnumRejectAbove = 256 - 256%len(Alphanumeric)

// MakeRandAlnumString returns a string of length n drawn uniformly from
// Alphanumeric using crypto/rand.
func MakeRandAlnumString(n int) (string, error) {
	return ReadRandAlnumString(rand.Reader, n)
}

// ReadRandAlnumString is MakeRandAlnumString over an explicit random source.
// It returns an error if the source fails.
func ReadRandAlnumString(r io.Reader, n int) (string, error) {
	if n <= 0 {
		return "", nil
	}

	out := make([]byte, 0, n)
	buf := make([]byte, n+n/4+1)

	for len(out) < n {
		if _, err := io.ReadFull(r, buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if int(b) >= alnumRejectAbove {
				continue
			}
			out = append(out, Alphanumeric[int(b)%len(Alphanumeric)])
			if len(out) == n {
				break
			}
		}
	}

	return string(out), nil
}

// WipeByteArray overwrites the contents of the provided byte slice with zeros.
// Used to drop passwords from memory after use. A nil slice is a no-op.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
