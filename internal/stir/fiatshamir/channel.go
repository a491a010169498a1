// Package fiatshamir implements the non-interactive transcript shared by the
// FRI and STIR provers and verifiers: a deterministic absorb/squeeze sponge
// with proof-of-work grinding and uniform integer sampling.
package fiatshamir

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math/bits"
	"strings"

	"golang.org/x/crypto/sha3"

	"github.com/stirproof/stir/internal/stir/core"
)

// Channel is a Fiat-Shamir transcript built on a SHAKE256 sponge. Squeezing
// never destructively consumes the sponge: each squeeze clones the
// underlying XOF to read output non-destructively, then re-absorbs that
// output into the real state, so absorb and squeeze can be interleaved
// arbitrarily (required by both FRI and STIR's round structure).
type Channel struct {
	xof   sha3.ShakeHash
	trace []string
}

// NewChannel starts a fresh transcript.
func NewChannel() *Channel {
	return &Channel{xof: sha3.NewShake256()}
}

// Clone returns an independent copy of the channel sharing no state with the
// original. The prover's proof-of-work search clones the channel once per
// candidate nonce so failed candidates never perturb the real transcript.
func (c *Channel) Clone() *Channel {
	return &Channel{xof: c.xof.Clone(), trace: append([]string(nil), c.trace...)}
}

// Absorb feeds raw bytes into the transcript.
func (c *Channel) Absorb(data []byte) {
	c.trace = append(c.trace, fmt.Sprintf("absorb:%s", hex.EncodeToString(data)))
	c.xof.Write(data)
}

// AbsorbFieldElement absorbs a field element in its canonical fixed-width
// little-endian form.
func (c *Channel) AbsorbFieldElement(fe *core.FieldElement) {
	c.Absorb(fe.FixedLEBytes())
}

// AbsorbFieldElements absorbs each element in order.
func (c *Channel) AbsorbFieldElements(elements []*core.FieldElement) {
	for _, fe := range elements {
		c.AbsorbFieldElement(fe)
	}
}

// SqueezeBytes draws n pseudorandom bytes, advancing the transcript state.
func (c *Channel) SqueezeBytes(n int) []byte {
	reader := c.xof.Clone()
	out := make([]byte, n)
	reader.Read(out)
	c.xof.Write(out)
	c.trace = append(c.trace, fmt.Sprintf("squeeze:%d", n))
	return out
}

// SqueezeBits draws n pseudorandom bits, MSB-first within each byte.
func (c *Channel) SqueezeBits(n int) []bool {
	numBytes := (n + 7) / 8
	raw := c.SqueezeBytes(numBytes)
	out := make([]bool, 0, n)
	for _, b := range raw {
		for i := 7; i >= 0 && len(out) < n; i-- {
			out = append(out, (b>>uint(i))&1 == 1)
		}
	}
	return out
}

// SqueezeFieldElement draws one field element, reducing enough squeezed
// bytes modulo the field's modulus.
func (c *Channel) SqueezeFieldElement(field *core.Field) *core.FieldElement {
	raw := c.SqueezeBytes(field.ByteLen())
	return field.FieldElementFromLEBytes(raw)
}

// SqueezeFieldElements draws n field elements in order.
func (c *Channel) SqueezeFieldElements(field *core.Field, n int) []*core.FieldElement {
	out := make([]*core.FieldElement, n)
	for i := range out {
		out[i] = c.SqueezeFieldElement(field)
	}
	return out
}

// SqueezeIndex draws a uniform index in [0, rangeSize), which must be a
// power of two so that reduction by masking/mod introduces no bias.
func (c *Channel) SqueezeIndex(rangeSize int) (int, error) {
	if rangeSize <= 0 || rangeSize&(rangeSize-1) != 0 {
		return 0, fmt.Errorf("index range %d must be a power of two", rangeSize)
	}
	raw := c.SqueezeBytes(8)
	val := binary.LittleEndian.Uint64(raw)
	return int(val % uint64(rangeSize)), nil
}

// DedupIndices draws `count` indices in [0, rangeSize), deduplicating and
// sorting the result (the query-phase discipline both FRI and STIR rely on).
func (c *Channel) DedupIndices(count, rangeSize int) ([]int, error) {
	seen := make(map[int]bool, count)
	out := make([]int, 0, count)
	for i := 0; i < count; i++ {
		idx, err := c.SqueezeIndex(rangeSize)
		if err != nil {
			return nil, err
		}
		if !seen[idx] {
			seen[idx] = true
			out = append(out, idx)
		}
	}
	return DedupSortInts(out), nil
}

// DedupSortInts returns the sorted, deduplicated contents of xs.
func DedupSortInts(xs []int) []int {
	return core.DedupSortInts(xs)
}

const maxProofOfWorkBits = 32
const maxProofOfWorkAttempts = 1 << 32

// Grind searches for a nonce whose proof-of-work hash has at least `bits`
// trailing zero bits, without mutating the real transcript until a winner is
// found, then commits that nonce for real (absorb + squeeze) so the
// transcript stays aligned with what the verifier will replay. bits <= 0
// means no grinding is required and no nonce is emitted.
func (c *Channel) Grind(requiredBits int) (*uint64, error) {
	if requiredBits <= 0 {
		return nil, nil
	}
	if requiredBits > maxProofOfWorkBits {
		return nil, fmt.Errorf("proof-of-work bits %d exceeds the maximum of %d", requiredBits, maxProofOfWorkBits)
	}

	for nonce := uint64(0); nonce < maxProofOfWorkAttempts; nonce++ {
		candidate := c.Clone()
		candidate.Absorb(nonceBytes(nonce))
		hash := candidate.SqueezeBytes(4)
		value := binary.LittleEndian.Uint32(hash)
		if bits.TrailingZeros32(value) >= requiredBits {
			c.Absorb(nonceBytes(nonce))
			c.SqueezeBytes(4)
			return &nonce, nil
		}
	}
	return nil, fmt.Errorf("proof-of-work grinding exhausted its search space")
}

// GrindVerify replays the proof-of-work check against the real transcript.
func (c *Channel) GrindVerify(requiredBits int, nonce *uint64) bool {
	if requiredBits <= 0 {
		return true
	}
	if nonce == nil {
		return false
	}
	c.Absorb(nonceBytes(*nonce))
	hash := c.SqueezeBytes(4)
	value := binary.LittleEndian.Uint32(hash)
	return bits.TrailingZeros32(value) >= requiredBits
}

func nonceBytes(nonce uint64) []byte {
	out := make([]byte, 8)
	binary.LittleEndian.PutUint64(out, nonce)
	return out
}

// Trace returns a human-readable log of every absorb/squeeze call, useful
// for debugging proof mismatches; it carries no protocol meaning.
func (c *Channel) Trace() string {
	return strings.Join(c.trace, " ")
}
