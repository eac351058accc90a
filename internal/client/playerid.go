package client

import (
	"crypto/rand"
	"io"
)

// Crockford's base32, no ambiguous letters
const idAlphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// NewPlayerID returns a random 10 character id for seating a new player
func NewPlayerID() string {
	return newPlayerID(rand.Reader)
}

func newPlayerID(r io.Reader) string {
	var buf [10]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		panic("failed to generate random bytes: " + err.Error())
	}

	id := make([]byte, len(buf))
	for i, b := range buf {
		id[i] = idAlphabet[b&0x1f]
	}
	return string(id)
}
