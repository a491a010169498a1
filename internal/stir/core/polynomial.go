package core

import (
	"fmt"
	"math/big"
	"strings"
)

// Polynomial is a dense univariate polynomial over a prime field, stored as
// its coefficient vector with the constant term first. The vector is kept
// trimmed: the leading coefficient is nonzero unless the polynomial is zero.
type Polynomial struct {
	coefficients []*FieldElement
	field        *Field
}

// NewPolynomial builds a polynomial from coefficients, constant term first,
// trimming leading zeros. All coefficients must come from the same field.
func NewPolynomial(coefficients []*FieldElement) (*Polynomial, error) {
	if len(coefficients) == 0 {
		return nil, fmt.Errorf("polynomial must have at least one coefficient")
	}
	field := coefficients[0].Field()
	for i, coeff := range coefficients {
		if !coeff.Field().Equals(field) {
			return nil, fmt.Errorf("coefficient %d is from a different field", i)
		}
	}

	last := len(coefficients) - 1
	for last > 0 && coefficients[last].IsZero() {
		last--
	}
	trimmed := coefficients[:last+1]
	if len(trimmed) == 1 && trimmed[0].IsZero() {
		trimmed = []*FieldElement{field.Zero()}
	}

	return &Polynomial{coefficients: trimmed, field: field}, nil
}

// NewPolynomialFromInt64 builds a polynomial from small integer coefficients.
func NewPolynomialFromInt64(field *Field, coefficients []int64) (*Polynomial, error) {
	fieldCoeffs := make([]*FieldElement, len(coefficients))
	for i, coeff := range coefficients {
		fieldCoeffs[i] = field.NewElementFromInt64(coeff)
	}
	return NewPolynomial(fieldCoeffs)
}

// NewPolynomialFromBigInt builds a polynomial from big.Int coefficients,
// reduced into the field.
func NewPolynomialFromBigInt(field *Field, coefficients []*big.Int) (*Polynomial, error) {
	fieldCoeffs := make([]*FieldElement, len(coefficients))
	for i, coeff := range coefficients {
		fieldCoeffs[i] = field.NewElement(coeff)
	}
	return NewPolynomial(fieldCoeffs)
}

// Degree returns the polynomial's degree. The zero polynomial reports 0.
func (p *Polynomial) Degree() int {
	return len(p.coefficients) - 1
}

// Field returns the field the polynomial is defined over.
func (p *Polynomial) Field() *Field {
	return p.field
}

// Coefficient returns the coefficient of X^degree, zero beyond the stored
// length.
func (p *Polynomial) Coefficient(degree int) *FieldElement {
	if degree < 0 || degree >= len(p.coefficients) {
		return p.field.Zero()
	}
	return p.coefficients[degree]
}

// LeadingCoefficient returns the highest-degree coefficient.
func (p *Polynomial) LeadingCoefficient() *FieldElement {
	return p.coefficients[len(p.coefficients)-1]
}

// Coefficients returns a copy of the coefficient vector, constant term first.
func (p *Polynomial) Coefficients() []*FieldElement {
	coeffs := make([]*FieldElement, len(p.coefficients))
	copy(coeffs, p.coefficients)
	return coeffs
}

// Point is an (x, y) interpolation pair.
type Point struct {
	X *FieldElement
	Y *FieldElement
}

// Eval evaluates the polynomial at point by Horner's rule.
func (p *Polynomial) Eval(point *FieldElement) *FieldElement {
	if !point.Field().Equals(p.field) {
		panic("cannot evaluate polynomial at point from different field")
	}
	result := p.field.Zero()
	for i := len(p.coefficients) - 1; i >= 0; i-- {
		result = result.Mul(point).Add(p.coefficients[i])
	}
	return result
}

// Add returns p + other.
func (p *Polynomial) Add(other *Polynomial) (*Polynomial, error) {
	if !p.field.Equals(other.field) {
		return nil, fmt.Errorf("cannot add polynomials from different fields")
	}
	maxDegree := p.Degree()
	if other.Degree() > maxDegree {
		maxDegree = other.Degree()
	}
	coefficients := make([]*FieldElement, maxDegree+1)
	for i := 0; i <= maxDegree; i++ {
		coefficients[i] = p.Coefficient(i).Add(other.Coefficient(i))
	}
	return NewPolynomial(coefficients)
}

// Sub returns p - other.
func (p *Polynomial) Sub(other *Polynomial) (*Polynomial, error) {
	if !p.field.Equals(other.field) {
		return nil, fmt.Errorf("cannot subtract polynomials from different fields")
	}
	maxDegree := p.Degree()
	if other.Degree() > maxDegree {
		maxDegree = other.Degree()
	}
	coefficients := make([]*FieldElement, maxDegree+1)
	for i := 0; i <= maxDegree; i++ {
		coefficients[i] = p.Coefficient(i).Sub(other.Coefficient(i))
	}
	return NewPolynomial(coefficients)
}

// Mul returns p * other by schoolbook convolution. The operand degrees this
// module produces (quotient times scaling polynomial, vanishing products)
// stay far below the FFT crossover, so no fast multiplication path is kept.
func (p *Polynomial) Mul(other *Polynomial) (*Polynomial, error) {
	if !p.field.Equals(other.field) {
		return nil, fmt.Errorf("cannot multiply polynomials from different fields")
	}
	coefficients := make([]*FieldElement, p.Degree()+other.Degree()+1)
	for i := range coefficients {
		coefficients[i] = p.field.Zero()
	}
	for i, a := range p.coefficients {
		if a.IsZero() {
			continue
		}
		for j, b := range other.coefficients {
			coefficients[i+j] = coefficients[i+j].Add(a.Mul(b))
		}
	}
	return NewPolynomial(coefficients)
}

// MulScalar returns scalar * p.
func (p *Polynomial) MulScalar(scalar *FieldElement) (*Polynomial, error) {
	if !scalar.Field().Equals(p.field) {
		return nil, fmt.Errorf("cannot multiply by scalar from different field")
	}
	coefficients := make([]*FieldElement, len(p.coefficients))
	for i, coeff := range p.coefficients {
		coefficients[i] = coeff.Mul(scalar)
	}
	return NewPolynomial(coefficients)
}

// Div performs Euclidean long division, returning quotient and remainder.
func (p *Polynomial) Div(other *Polynomial) (*Polynomial, *Polynomial, error) {
	if !p.field.Equals(other.field) {
		return nil, nil, fmt.Errorf("cannot divide polynomials from different fields")
	}
	if other.Degree() == 0 && other.Coefficient(0).IsZero() {
		return nil, nil, fmt.Errorf("division by the zero polynomial")
	}
	if other.Degree() > p.Degree() {
		zero, err := NewPolynomial([]*FieldElement{p.field.Zero()})
		if err != nil {
			return nil, nil, err
		}
		return zero, p, nil
	}

	leadInv, err := other.LeadingCoefficient().Inv()
	if err != nil {
		return nil, nil, err
	}

	remainder := p.Coefficients()
	quotient := make([]*FieldElement, p.Degree()-other.Degree()+1)
	for i := range quotient {
		quotient[i] = p.field.Zero()
	}

	for len(remainder)-1 >= other.Degree() {
		shift := len(remainder) - 1 - other.Degree()
		factor := remainder[len(remainder)-1].Mul(leadInv)
		quotient[shift] = factor

		for j := 0; j <= other.Degree(); j++ {
			remainder[shift+j] = remainder[shift+j].Sub(factor.Mul(other.Coefficient(j)))
		}
		for len(remainder) > 1 && remainder[len(remainder)-1].IsZero() {
			remainder = remainder[:len(remainder)-1]
		}
		if len(remainder) == 1 && remainder[0].IsZero() {
			break
		}
	}

	quotientPoly, err := NewPolynomial(quotient)
	if err != nil {
		return nil, nil, err
	}
	remainderPoly, err := NewPolynomial(remainder)
	if err != nil {
		return nil, nil, err
	}
	return quotientPoly, remainderPoly, nil
}

// String renders the polynomial in descending-degree form, for error
// messages and debugging.
func (p *Polynomial) String() string {
	if p.Degree() == 0 {
		return p.coefficients[0].String()
	}
	var terms []string
	for i := p.Degree(); i >= 0; i-- {
		coeff := p.Coefficient(i)
		if coeff.IsZero() {
			continue
		}
		switch {
		case i == 0:
			terms = append(terms, coeff.String())
		case i == 1 && coeff.IsOne():
			terms = append(terms, "x")
		case i == 1:
			terms = append(terms, coeff.String()+"x")
		case coeff.IsOne():
			terms = append(terms, fmt.Sprintf("x^%d", i))
		default:
			terms = append(terms, fmt.Sprintf("%sx^%d", coeff.String(), i))
		}
	}
	if len(terms) == 0 {
		return "0"
	}
	return strings.Join(terms, " + ")
}

// deflate divides a monic polynomial (given as coefficients, constant first)
// by the linear factor (X - root) via synthetic division, assuming root is a
// genuine root so the division is exact.
func deflate(coeffs []*FieldElement, root *FieldElement) []*FieldElement {
	n := len(coeffs) - 1
	out := make([]*FieldElement, n)
	carry := coeffs[n]
	for i := n - 1; i >= 0; i-- {
		out[i] = carry
		carry = coeffs[i].Add(carry.Mul(root))
	}
	return out
}

// LagrangeInterpolation interpolates the given points into the unique
// polynomial of degree < len(points). Each basis numerator is obtained by
// deflating the shared vanishing polynomial by one root, and all basis
// denominators are inverted in a single batch.
func LagrangeInterpolation(points []Point, field *Field) (*Polynomial, error) {
	n := len(points)
	if n == 0 {
		return nil, fmt.Errorf("need at least one point for interpolation")
	}
	for i, point := range points {
		if !point.X.Field().Equals(field) || !point.Y.Field().Equals(field) {
			return nil, fmt.Errorf("point %d is from a different field", i)
		}
	}

	xs := make([]*FieldElement, n)
	for i, point := range points {
		xs[i] = point.X
	}
	vanishing := VanishingPoly(field, xs).Coefficients()

	// denominators[i] = Prod_{j != i} (x_i - x_j)
	denominators := make([]*FieldElement, n)
	for i := range points {
		prod := field.One()
		for j := range points {
			if i == j {
				continue
			}
			diff := points[i].X.Sub(points[j].X)
			if diff.IsZero() {
				return nil, fmt.Errorf("duplicate x-coordinates found")
			}
			prod = prod.Mul(diff)
		}
		denominators[i] = prod
	}
	denominatorsInv, err := field.BatchInversion(denominators)
	if err != nil {
		return nil, err
	}

	result := make([]*FieldElement, n)
	for i := range result {
		result[i] = field.Zero()
	}
	for i, point := range points {
		basis := deflate(vanishing, point.X)
		scale := point.Y.Mul(denominatorsInv[i])
		for t, c := range basis {
			result[t] = result[t].Add(c.Mul(scale))
		}
	}
	return NewPolynomial(result)
}
