package stir

import (
	"fmt"
	"math/big"

	"github.com/stirproof/stir/internal/stir/core"
	"github.com/stirproof/stir/internal/stir/params"
)

// Parameters is the shared configuration both FRI and STIR derive their
// round schedules from: target security level, the degree bounds the test
// operates between, the folding factor, the starting rate, the soundness
// regime, and the Merkle hash choice.
type Parameters = params.Parameters

// SoundnessType selects which conjectured or provable soundness bound the
// repetition and proof-of-work-bit formulas use.
type SoundnessType = params.SoundnessType

const (
	// Conjecture assumes the stronger, unproven list-decoding soundness bound.
	Conjecture = params.Conjecture
	// Provable uses the weaker, proven bound.
	Provable = params.Provable
)

// DefaultParameters returns a representative full-size configuration: 128-bit
// target security (106-bit protocol security), degrees 2^20 down to 2^6,
// folding factor 16, starting rate 1, sha3 Merkle hashing.
func DefaultParameters() *Parameters {
	return params.DefaultParameters()
}

// Field is the prime field FRI/STIR runs over, re-exported so callers never
// need to import internal/stir/core directly just to build a polynomial.
type Field = core.Field

// FieldElement is an element of Field.
type FieldElement = core.FieldElement

// Polynomial is the dense univariate representation proofs carry.
type Polynomial = core.Polynomial

// DefaultField returns the module-wide default prime field (a Proth prime
// of 2-adicity 30), suitable for starting degrees up to 2^29 at rate 1.
func DefaultField() *Field {
	return core.DefaultPrimeField
}

// NewPolynomialFromInt64 builds a polynomial over field from small integer
// coefficients, constant term first. Convenient for tests and examples.
func NewPolynomialFromInt64(field *Field, coeffs []int64) (*Polynomial, error) {
	return core.NewPolynomialFromInt64(field, coeffs)
}

// NewPolynomialFromBigInt builds a polynomial over field from big.Int
// coefficients, constant term first.
func NewPolynomialFromBigInt(field *Field, coeffs []*big.Int) (*Polynomial, error) {
	return core.NewPolynomialFromBigInt(field, coeffs)
}

// HashCounterGet reads the process-wide count of leaf/compression hash
// invocations since the last HashCounterReset, a benchmark-only figure with
// no protocol meaning.
func HashCounterGet() int64 { return core.HashCounterGet() }

// HashCounterReset zeroes the process-wide hash invocation counter.
func HashCounterReset() { core.HashCounterReset() }

// RandomPolynomial draws degree+1 uniformly random coefficients from field,
// the shape of test/benchmark input the round-trip property is stated over.
func RandomPolynomial(field *Field, degree int) (*Polynomial, error) {
	coeffs := make([]*FieldElement, degree+1)
	for i := range coeffs {
		fe, err := field.RandomElement()
		if err != nil {
			return nil, fmt.Errorf("sample coefficient %d: %w", i, err)
		}
		coeffs[i] = fe
	}
	return core.NewPolynomial(coeffs)
}
