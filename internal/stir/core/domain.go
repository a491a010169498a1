package core

import (
	"fmt"
	"math/big"
)

func bigInt(n int) *big.Int {
	return big.NewInt(int64(n))
}

func isPowerOfTwo(n int) bool {
	return n > 0 && (n&(n-1)) == 0
}

// Domain represents a coset of a smooth multiplicative subgroup:
// { offset * generator^i : i = 0..size-1 }, with size a power of two.
//
// The backing fields (size, generator, generatorInv, offset, offsetInv,
// sizeInv, offsetPowSize) are cached because every round of FRI/STIR folding
// recomputes them and they feed directly into the batch-inverted coset-FFT
// interpolation.
type Domain struct {
	field *Field

	Size          int
	Generator     *FieldElement
	GeneratorInv  *FieldElement
	Offset        *FieldElement
	OffsetInv     *FieldElement
	SizeInv       *FieldElement
	OffsetPowSize *FieldElement

	// RootOfUnity and RootOfUnityInv are fixed at construction of the very
	// first domain in a scale/scale_offset chain and carried unchanged
	// through every Scale/ScaleOffset call, even though Generator itself
	// changes each call. ScaleOffset's disjointness guarantee depends on
	// shifting by this fixed root, not by the current (shrinking-order)
	// Generator.
	RootOfUnity    *FieldElement
	RootOfUnityInv *FieldElement
}

// NewDomain builds the coset of the given size and offset, using a generator
// of exact order `size` derived from the field's configured primitive root.
func NewDomain(field *Field, size int, offset *FieldElement) (*Domain, error) {
	if !isPowerOfTwo(size) {
		return nil, fmt.Errorf("domain size must be a power of two, got %d", size)
	}
	generator, err := field.RootOfUnityOfOrder(uint64(size))
	if err != nil {
		return nil, fmt.Errorf("failed to derive domain generator: %w", err)
	}
	generatorInv, err := generator.Inv()
	if err != nil {
		return nil, fmt.Errorf("generator has no inverse: %w", err)
	}
	return newDomainFromGenerator(field, size, generator, offset, generator, generatorInv)
}

func newDomainFromGenerator(field *Field, size int, generator, offset, rootOfUnity, rootOfUnityInv *FieldElement) (*Domain, error) {
	generatorInv, err := generator.Inv()
	if err != nil {
		return nil, fmt.Errorf("generator has no inverse: %w", err)
	}
	offsetInv, err := offset.Inv()
	if err != nil {
		return nil, fmt.Errorf("offset has no inverse: %w", err)
	}
	sizeInv, err := field.NewElementFromInt64(int64(size)).Inv()
	if err != nil {
		return nil, fmt.Errorf("domain size has no inverse in field: %w", err)
	}
	return &Domain{
		field:          field,
		Size:           size,
		Generator:      generator,
		GeneratorInv:   generatorInv,
		Offset:         offset,
		OffsetInv:      offsetInv,
		SizeInv:        sizeInv,
		OffsetPowSize:  offset.Exp(bigInt(size)),
		RootOfUnity:    rootOfUnity,
		RootOfUnityInv: rootOfUnityInv,
	}, nil
}

// NewStartingDomain builds L_0 of size degree*2^logInvRate, offset by the
// field's generator so that L_0 is disjoint from the backing subgroup.
func NewStartingDomain(field *Field, degree int, logInvRate int) (*Domain, error) {
	if field.generator == nil {
		return nil, fmt.Errorf("field has no configured generator")
	}
	size := degree << uint(logInvRate)
	return NewDomain(field, size, field.NewElement(field.generator))
}

// Field returns the field this domain is defined over.
func (d *Domain) Field() *Field { return d.field }

// Element returns offset * generator^i.
func (d *Domain) Element(i int) *FieldElement {
	return d.Offset.Mul(d.Generator.Exp(bigInt(i)))
}

// Elements returns every element of the coset, in generator order.
func (d *Domain) Elements() []*FieldElement {
	elements := make([]*FieldElement, d.Size)
	current := d.Offset
	for i := 0; i < d.Size; i++ {
		elements[i] = current
		current = current.Mul(d.Generator)
	}
	return elements
}

// Evaluate evaluates a polynomial over the whole domain by direct Horner
// evaluation at each point (the naive counterpart to the coset-FFT path).
func (d *Domain) Evaluate(poly *Polynomial) []*FieldElement {
	elements := d.Elements()
	values := make([]*FieldElement, len(elements))
	for i, x := range elements {
		values[i] = poly.Eval(x)
	}
	return values
}

// Scale returns the domain o^p * <w^p> of size Size/p: a coefficient-wise
// power of the generator, offset, and their inverses. p must be a power of
// two dividing Size.
func (d *Domain) Scale(p int) (*Domain, error) {
	if !isPowerOfTwo(p) || d.Size%p != 0 {
		return nil, fmt.Errorf("scale power %d must be a power of two dividing domain size %d", p, d.Size)
	}
	newSize := d.Size / p
	newGenerator := d.Generator.Exp(bigInt(p))
	newOffset := d.Offset.Exp(bigInt(p))
	return newDomainFromGenerator(d.field, newSize, newGenerator, newOffset, d.RootOfUnity, d.RootOfUnityInv)
}

// ScaleOffset returns w_0 * o^p * <w^p>: identical to Scale(p) except the new
// offset is additionally shifted by w_0, the generator of the very first
// domain in this scale/scale_offset chain (not the current domain's own
// generator, which already shrinks in order every call). This shift is what
// guarantees (L_0)^k is disjoint from L_1 across STIR's rounds.
func (d *Domain) ScaleOffset(p int) (*Domain, error) {
	scaled, err := d.Scale(p)
	if err != nil {
		return nil, err
	}
	shiftedOffset := scaled.Offset.Mul(d.RootOfUnity)
	return newDomainFromGenerator(d.field, scaled.Size, scaled.Generator, shiftedOffset, d.RootOfUnity, d.RootOfUnityInv)
}

// StackEvaluations regroups domain evaluations for folding: given evals with
// evals[i] = f(w^i) over a size-n domain, it returns n/foldingFactor rows
// where row i holds [f(w^(i + j*(n/foldingFactor))) for j in 0..foldingFactor]
// — exactly the coset each folded-domain point's preimage maps to, and the
// leaf grouping the Merkle oracle commits to each round.
func StackEvaluations(evals []*FieldElement, foldingFactor int) ([][]*FieldElement, error) {
	if len(evals)%foldingFactor != 0 {
		return nil, fmt.Errorf("evaluation count %d not divisible by folding factor %d", len(evals), foldingFactor)
	}
	newSize := len(evals) / foldingFactor
	stacked := make([][]*FieldElement, newSize)
	for i := 0; i < newSize; i++ {
		row := make([]*FieldElement, foldingFactor)
		for j := 0; j < foldingFactor; j++ {
			row[j] = evals[i+j*newSize]
		}
		stacked[i] = row
	}
	return stacked, nil
}

// String returns a human-readable representation, handy in error messages.
func (d *Domain) String() string {
	return fmt.Sprintf("Domain{size: %d, offset: %s, generator: %s}", d.Size, d.Offset, d.Generator)
}
