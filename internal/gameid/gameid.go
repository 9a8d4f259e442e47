// Package gameid generates sortable game identifiers: a UUIDv7 rendered as
// 26 characters of lowercase Crockford base32, the TypeID suffix format.
package gameid

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
)

// Base32 alphabet used by TypeID (Crockford's base32)
const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// Length is the length of every encoded ID.
const Length = 26

// Generator creates IDs from a source of random bytes.
type Generator struct {
	rand io.Reader
}

// NewGenerator creates a generator. A nil reader uses crypto/rand.
func NewGenerator(r io.Reader) *Generator {
	if r == nil {
		r = rand.Reader
	}
	return &Generator{rand: r}
}

// Generate creates a new game ID.
func Generate() string {
	return NewGenerator(nil).Generate()
}

// Generate creates a new ID. IDs from one process sort by creation time.
func (g *Generator) Generate() string {
	id, err := uuid.NewV7FromReader(g.rand)
	if err != nil {
		panic("failed to generate game id: " + err.Error())
	}
	return Encode(id)
}

// Encode renders a UUID as 26 base32 characters. The 128 bits are padded
// with two leading zero bits, so the first character is always 0-7.
func Encode(id uuid.UUID) string {
	hi := binary.BigEndian.Uint64(id[:8])
	lo := binary.BigEndian.Uint64(id[8:])

	var out [Length]byte
	for i := range Length {
		shift := uint(125 - 5*i)
		out[i] = alphabet[bitsAt(hi, lo, shift)&0x1f]
	}
	return string(out[:])
}

// bitsAt returns the 128-bit value hi:lo shifted right by shift.
func bitsAt(hi, lo uint64, shift uint) uint64 {
	switch {
	case shift >= 64:
		return hi >> (shift - 64)
	case shift == 0:
		return lo
	default:
		return lo>>shift | hi<<(64-shift)
	}
}

// Parse decodes an ID produced by Encode.
func Parse(id string) (uuid.UUID, error) {
	if err := Validate(id); err != nil {
		return uuid.UUID{}, err
	}
	var hi, lo uint64
	for i := range Length {
		v := uint64(strings.IndexByte(alphabet, id[i]))
		// Shift the 128-bit accumulator left by five and add v.
		hi = hi<<5 | lo>>59
		lo = lo<<5 | v
	}
	var out uuid.UUID
	binary.BigEndian.PutUint64(out[:8], hi)
	binary.BigEndian.PutUint64(out[8:], lo)
	return out, nil
}

// Validate checks if a game ID is valid (26 characters, valid base32)
func Validate(id string) error {
	if len(id) != Length {
		return fmt.Errorf("game ID must be exactly %d characters, got %d", Length, len(id))
	}

	// The first character carries only the top three bits.
	if id[0] > '7' {
		return fmt.Errorf("game ID first character must be 0-7, got %c", id[0])
	}

	for i := range len(id) {
		if strings.IndexByte(alphabet, id[i]) < 0 {
			return fmt.Errorf("invalid character %c at position %d", id[i], i)
		}
	}
	return nil
}
