// Package handid generates hand identifiers: a UUIDv7 written as 26 characters
// of Crockford base32, so ids sort by creation time.
package handid

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Crockford's base32 alphabet, lowercase
const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// Length of an encoded id
const Length = 26

// New returns a fresh id. It panics only if the system random source fails.
func New() string {
	id, err := NewFromReader(rand.Reader)
	if err != nil {
		panic("failed to generate hand id: " + err.Error())
	}
	return id
}

// NewFromReader returns an id whose random bits come from r.
func NewFromReader(r io.Reader) (string, error) {
	u, err := uuid.NewV7FromReader(r)
	if err != nil {
		return "", err
	}
	return Encode(u), nil
}

// Encode writes the 128 bits of u as 26 base32 characters. The encoding is
// read as a 130-bit number whose two leading bits are zero, so the first
// character is always 0-7.
func Encode(u uuid.UUID) string {
	out := make([]byte, Length)
	for i := range out {
		var v byte
		for b := range 5 {
			v = v<<1 | bit(u, i*5-2+b)
		}
		out[i] = alphabet[v]
	}
	return string(out)
}

// Decode parses an encoded id back into its UUID.
func Decode(id string) (uuid.UUID, error) {
	var u uuid.UUID
	if err := Validate(id); err != nil {
		return u, err
	}
	for i := range Length {
		v := byte(strings.IndexByte(alphabet, id[i]))
		for b := range 5 {
			pos := i*5 - 2 + b
			if pos < 0 || (v>>(4-b))&1 == 0 {
				continue
			}
			u[pos/8] |= 1 << (7 - pos%8)
		}
	}
	return u, nil
}

// Validate checks length and alphabet.
func Validate(id string) error {
	if len(id) != Length {
		return fmt.Errorf("hand id must be exactly %d characters, got %d", Length, len(id))
	}
	if id[0] > '7' {
		return fmt.Errorf("hand id first character must be 0-7, got %c", id[0])
	}
	for i := range len(id) {
		if strings.IndexByte(alphabet, id[i]) < 0 {
			return fmt.Errorf("invalid character %q at position %d", id[i], i)
		}
	}
	return nil
}

// Time returns the creation time carried in the id's first 48 bits.
func Time(id string) (time.Time, error) {
	u, err := Decode(id)
	if err != nil {
		return time.Time{}, err
	}
	var ms int64
	for _, b := range u[:6] {
		ms = ms<<8 | int64(b)
	}
	return time.UnixMilli(ms), nil
}

func bit(u uuid.UUID, pos int) byte {
	if pos < 0 {
		return 0
	}
	return (u[pos/8] >> (7 - pos%8)) & 1
}
