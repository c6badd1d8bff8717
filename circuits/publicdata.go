package circuits

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash/sha2"
	"github.com/consensys/gnark/std/math/uints"
)

// Field is a public-data value tagged with the bit width its wire encoding
// occupies, so PublicDataHasher.Add knows how many bits of the streaming
// buffer each value consumes.
type Field struct {
	Value frontend.Variable
	Bits  int
}

// F tags value with an explicit bit width.
func F(value frontend.Variable, bits int) Field {
	return Field{Value: value, Bits: bits}
}

// PublicDataHasher accumulates the ordered list of public-data fields a
// block circuit exposes (account ids, amounts, wallet ids, ...) into a
// single bit-vector and SHA-256-hashes it, mirroring the original
// PublicDataGadget (MathGadgets.h): each field's bits are appended
// MSB-first within the field, fields concatenate in append order, and the
// resulting buffer is SHA-256-hashed. The declared public input is the low
// 254 bits of the digest, read as a big-endian integer — a 256-bit digest
// cannot be represented exactly as one BN254 scalar, and the two high bits
// are dropped rather than the value reduced mod the field order, so that
// the on-chain verifier only needs to mirror a bit-truncation, not a
// modular reduction.
type PublicDataHasher struct {
	api  frontend.API
	bits []frontend.Variable // MSB-first across the whole stream
}

// NewPublicDataHasher starts an empty accumulator.
func NewPublicDataHasher(api frontend.API) *PublicDataHasher {
	return &PublicDataHasher{api: api}
}

// Add appends fields, in order, to the commitment preimage. Each field's
// bits are taken LSB-first within the field (api.ToBinary's native order)
// and then reversed so the stream carries them most-significant-bit-first,
// matching PublicDataGadget's flattenReverse.
func (h *PublicDataHasher) Add(fields ...Field) {
	for _, f := range fields {
		bits := h.api.ToBinary(f.Value, f.Bits)
		for i := f.Bits - 1; i >= 0; i-- {
			h.bits = append(h.bits, bits[i])
		}
	}
}

// bytes packs the accumulated bit stream into big-endian bytes, zero-padding
// the final byte on the low-order side if the stream isn't a whole number
// of bytes.
func (h *PublicDataHasher) bytes() []uints.U8 {
	zero := frontend.Variable(0)
	n := len(h.bits)
	padded := (n + 7) / 8 * 8
	stream := make([]frontend.Variable, padded)
	copy(stream, h.bits)
	for i := n; i < padded; i++ {
		stream[i] = zero
	}

	out := make([]uints.U8, padded/8)
	for byteIdx := range out {
		var val frontend.Variable = 0
		for bitIdx := 0; bitIdx < 8; bitIdx++ {
			power := 1 << (7 - bitIdx)
			val = h.api.Add(val, h.api.Mul(stream[byteIdx*8+bitIdx], power))
		}
		out[byteIdx] = uints.U8{Val: val}
	}
	return out
}

// Sum SHA-256-hashes the accumulated bit stream and reduces the digest to a
// single field element holding its low 254 bits.
func (h *PublicDataHasher) Sum() (frontend.Variable, error) {
	hasher, err := sha2.New(h.api)
	if err != nil {
		return nil, err
	}
	hasher.Write(h.bytes())
	digest := hasher.Sum() // 32 big-endian uints.U8

	bits := make([]frontend.Variable, 0, 256)
	for _, b := range digest {
		byteBits := h.api.ToBinary(b.Val, 8) // LSB-first within the byte
		for i := 7; i >= 0; i-- {
			bits = append(bits, byteBits[i]) // MSB-first
		}
	}

	low := bits[2:] // drop the two highest-order bits of the 256-bit digest
	lsbFirst := make([]frontend.Variable, len(low))
	for i, b := range low {
		lsbFirst[len(low)-1-i] = b
	}
	return h.api.FromBinary(lsbFirst...), nil
}

// CheckEqual constrains the accumulated digest to equal declaredHash, the
// block's sole field-element public input.
func (h *PublicDataHasher) CheckEqual(declaredHash frontend.Variable) error {
	sum, err := h.Sum()
	if err != nil {
		return err
	}
	h.api.AssertIsEqual(sum, declaredHash)
	return nil
}
