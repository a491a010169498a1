package core

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Field represents a finite field with modular arithmetic operations
type Field struct {
	modulus   *big.Int
	generator *big.Int // primitive root of the multiplicative group, used to derive roots of unity
}

// FieldElement represents an element in the finite field
type FieldElement struct {
	field *Field
	value *big.Int
}

// NewField creates a new finite field with the given modulus
func NewField(modulus *big.Int) (*Field, error) {
	if modulus.Cmp(big.NewInt(2)) <= 0 {
		return nil, fmt.Errorf("modulus must be greater than 2")
	}
	return &Field{modulus: new(big.Int).Set(modulus)}, nil
}

// NewFieldWithGenerator creates a field and records a primitive root of its
// multiplicative group, needed to derive roots of unity of a given order.
func NewFieldWithGenerator(modulus *big.Int, generator *big.Int) (*Field, error) {
	f, err := NewField(modulus)
	if err != nil {
		return nil, err
	}
	f.generator = new(big.Int).Mod(generator, f.modulus)
	return f, nil
}

// Modulus returns the field modulus
func (f *Field) Modulus() *big.Int {
	return new(big.Int).Set(f.modulus)
}

// RootOfUnityOfOrder returns a field element of exact multiplicative order
// `order`, which must be a power of two dividing p-1. Requires the field to
// have been constructed with NewFieldWithGenerator.
func (f *Field) RootOfUnityOfOrder(order uint64) (*FieldElement, error) {
	if f.generator == nil {
		return nil, fmt.Errorf("field has no configured generator")
	}
	if order == 0 || order&(order-1) != 0 {
		return nil, fmt.Errorf("order %d is not a power of two", order)
	}
	pMinusOne := new(big.Int).Sub(f.modulus, big.NewInt(1))
	orderBig := new(big.Int).SetUint64(order)
	quotient, rem := new(big.Int).QuoRem(pMinusOne, orderBig, new(big.Int))
	if rem.Sign() != 0 {
		return nil, fmt.Errorf("order %d does not divide p-1", order)
	}
	rootVal := new(big.Int).Exp(f.generator, quotient, f.modulus)
	root := f.NewElement(rootVal)
	if root.IsOne() && order != 1 {
		return nil, fmt.Errorf("order %d exceeds the field's two-adicity", order)
	}
	return root, nil
}

// NewElement creates a new field element from a big.Int
func (f *Field) NewElement(value *big.Int) *FieldElement {
	normalized := new(big.Int).Mod(value, f.modulus)
	return &FieldElement{
		field: f,
		value: normalized,
	}
}

// NewElementFromInt64 creates a new field element from an int64
func (f *Field) NewElementFromInt64(value int64) *FieldElement {
	return f.NewElement(big.NewInt(value))
}

// NewElementFromUint64 creates a new field element from a uint64
func (f *Field) NewElementFromUint64(value uint64) *FieldElement {
	return f.NewElement(new(big.Int).SetUint64(value))
}

// RandomElement generates a random field element
func (f *Field) RandomElement() (*FieldElement, error) {
	value, err := rand.Int(rand.Reader, f.modulus)
	if err != nil {
		return nil, fmt.Errorf("failed to generate random element: %w", err)
	}
	return f.NewElement(value), nil
}

// Zero returns the additive identity
func (f *Field) Zero() *FieldElement {
	return f.NewElement(big.NewInt(0))
}

// One returns the multiplicative identity
func (f *Field) One() *FieldElement {
	return f.NewElement(big.NewInt(1))
}

// Big returns the value as a big.Int
func (fe *FieldElement) Big() *big.Int {
	return new(big.Int).Set(fe.value)
}

// Field returns the field this element belongs to
func (fe *FieldElement) Field() *Field {
	return fe.field
}

// Add performs field addition
func (fe *FieldElement) Add(other *FieldElement) *FieldElement {
	if !fe.field.Equals(other.field) {
		panic("cannot add elements from different fields")
	}
	result := new(big.Int).Add(fe.value, other.value)
	return fe.field.NewElement(result)
}

// Sub performs field subtraction
func (fe *FieldElement) Sub(other *FieldElement) *FieldElement {
	if !fe.field.Equals(other.field) {
		panic("cannot subtract elements from different fields")
	}
	result := new(big.Int).Sub(fe.value, other.value)
	return fe.field.NewElement(result)
}

// Neg returns the additive inverse (negation) of the field element
func (fe *FieldElement) Neg() *FieldElement {
	result := new(big.Int).Neg(fe.value)
	return fe.field.NewElement(result)
}

// Mul performs field multiplication
func (fe *FieldElement) Mul(other *FieldElement) *FieldElement {
	if !fe.field.Equals(other.field) {
		panic("cannot multiply elements from different fields")
	}
	result := new(big.Int).Mul(fe.value, other.value)
	return fe.field.NewElement(result)
}

// Div performs field division (multiplication by inverse)
func (fe *FieldElement) Div(other *FieldElement) (*FieldElement, error) {
	if !fe.field.Equals(other.field) {
		return nil, fmt.Errorf("cannot divide elements from different fields")
	}
	inv, err := other.Inv()
	if err != nil {
		return nil, fmt.Errorf("division failed: %w", err)
	}
	return fe.Mul(inv), nil
}

// Inv computes the multiplicative inverse
func (fe *FieldElement) Inv() (*FieldElement, error) {
	if fe.value.Cmp(big.NewInt(0)) == 0 {
		return nil, fmt.Errorf("cannot compute inverse of zero")
	}

	// Use extended Euclidean algorithm
	gcd := new(big.Int)
	x := new(big.Int)
	y := new(big.Int)
	gcd.GCD(x, y, fe.value, fe.field.modulus)

	if gcd.Cmp(big.NewInt(1)) != 0 {
		return nil, fmt.Errorf("inverse does not exist")
	}

	// Ensure positive result
	if x.Sign() < 0 {
		x.Add(x, fe.field.modulus)
	}

	return fe.field.NewElement(x), nil
}

// Exp performs field exponentiation
func (fe *FieldElement) Exp(exponent *big.Int) *FieldElement {
	result := new(big.Int).Exp(fe.value, exponent, fe.field.modulus)
	return fe.field.NewElement(result)
}

// Square computes the square of the field element
func (fe *FieldElement) Square() *FieldElement {
	return fe.Mul(fe)
}

// Equal checks if two field elements are equal
func (fe *FieldElement) Equal(other *FieldElement) bool {
	if !fe.field.Equals(other.field) {
		return false
	}
	return fe.value.Cmp(other.value) == 0
}

// IsZero checks if the element is zero
func (fe *FieldElement) IsZero() bool {
	return fe.value.Cmp(big.NewInt(0)) == 0
}

// IsOne checks if the element is one
func (fe *FieldElement) IsOne() bool {
	return fe.value.Cmp(big.NewInt(1)) == 0
}

// String returns a string representation of the field element
func (fe *FieldElement) String() string {
	return fe.value.String()
}

// ByteLen returns the number of bytes needed to hold any element of the field.
func (f *Field) ByteLen() int {
	return (f.modulus.BitLen() + 7) / 8
}

// FixedLEBytes returns the element serialized as fixed-width little-endian
// bytes, zero-padded to the field's byte length. This is the canonical form
// absorbed into a Fiat-Shamir transcript and written into proofs.
func (fe *FieldElement) FixedLEBytes() []byte {
	width := fe.field.ByteLen()
	be := fe.value.FillBytes(make([]byte, width))
	out := make([]byte, width)
	for i, b := range be {
		out[width-1-i] = b
	}
	return out
}

// FieldElementFromLEBytes reconstructs a field element from fixed-width
// little-endian bytes, reducing modulo the field's modulus.
func (f *Field) FieldElementFromLEBytes(data []byte) *FieldElement {
	be := make([]byte, len(data))
	for i, b := range data {
		be[len(data)-1-i] = b
	}
	return f.NewElement(new(big.Int).SetBytes(be))
}

// helper method to check if two fields are equal
func (f *Field) Equals(other *Field) bool {
	return f.modulus.Cmp(other.modulus) == 0
}

// Default field used when the caller does not supply one explicitly.
// Modulus is 3*2^30+1, a Proth prime with 2-adicity 30, which supports
// evaluation domains up to 2^30 elements.
var (
	DefaultPrimeField, _ = NewFieldWithGenerator(big.NewInt(3221225473), big.NewInt(5))
	// DefaultGenerator is a generator of the full multiplicative group.
	DefaultGenerator = DefaultPrimeField.NewElementFromInt64(5)
)
