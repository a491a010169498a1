package core

import "fmt"

// fftTransform computes b_j = Sum_i a_i * root^(i*j) for j = 0..n-1, where
// n = len(a) is a power of two and root has multiplicative order n. This is
// the textbook radix-2 Cooley-Tukey butterfly, used for both the forward
// evaluation and (via generatorInv) the inverse interpolation direction.
func fftTransform(a []*FieldElement, root *FieldElement) []*FieldElement {
	n := len(a)
	if n == 1 {
		return []*FieldElement{a[0]}
	}

	even := make([]*FieldElement, n/2)
	odd := make([]*FieldElement, n/2)
	for i := 0; i < n/2; i++ {
		even[i] = a[2*i]
		odd[i] = a[2*i+1]
	}

	rootSquared := root.Mul(root)
	evenResult := fftTransform(even, rootSquared)
	oddResult := fftTransform(odd, rootSquared)

	result := make([]*FieldElement, n)
	power := root.Field().One()
	for i := 0; i < n/2; i++ {
		t := power.Mul(oddResult[i])
		result[i] = evenResult[i].Add(t)
		result[i+n/2] = evenResult[i].Sub(t)
		power = power.Mul(root)
	}
	return result
}

// EvaluateFFT evaluates poly over the whole domain in O(N log N). Since
// f(o*w^j) = Sum_i (c_i*o^i) * w^(i*j), the evaluations are the forward NTT
// of the offset-scaled coefficient vector. Requires deg(poly) < Size.
func (d *Domain) EvaluateFFT(poly *Polynomial) ([]*FieldElement, error) {
	if poly.Degree() >= d.Size {
		return nil, fmt.Errorf("polynomial degree %d does not fit domain of size %d", poly.Degree(), d.Size)
	}
	coeffs := make([]*FieldElement, d.Size)
	offsetPow := d.field.One()
	for i := 0; i < d.Size; i++ {
		coeffs[i] = poly.Coefficient(i).Mul(offsetPow)
		offsetPow = offsetPow.Mul(d.Offset)
	}
	return fftTransform(coeffs, d.Generator), nil
}

// FFTInterpolate interpolates `values`, the evaluations of some polynomial
// h over the coset { offset * generator^i : i < len(values) }, into
// coefficient form, in O(k log k). generatorInv, offsetInv and sizeInv must
// be the precomputed inverses of generator, offset and len(values): callers
// that interpolate many cosets in one round should batch-invert those once
// and reuse them across calls (see core.Field.BatchInversion).
func FFTInterpolate(generator, generatorInv, offset, offsetInv, sizeInv *FieldElement, values []*FieldElement) (*Polynomial, error) {
	n := len(values)
	if !isPowerOfTwo(n) {
		return nil, fmt.Errorf("coset size must be a power of two, got %d", n)
	}
	if n == 1 {
		return NewPolynomial([]*FieldElement{values[0]})
	}

	field := values[0].Field()

	// f(offset*w^i) = values[i]; h(x) := f(offset*x) has h(w^i) = values[i],
	// so the values themselves are already h's evaluations on the bare subgroup.
	// Inverse NTT of those evaluations gives h's coefficients.
	hCoeffs := fftTransform(values, generatorInv)
	for i := range hCoeffs {
		hCoeffs[i] = hCoeffs[i].Mul(sizeInv)
	}

	// f(x) = h(x/offset), so f's coefficient i is h's coefficient i times offsetInv^i.
	coeffs := make([]*FieldElement, n)
	offsetInvPow := field.One()
	for i := 0; i < n; i++ {
		coeffs[i] = hCoeffs[i].Mul(offsetInvPow)
		offsetInvPow = offsetInvPow.Mul(offsetInv)
	}

	return NewPolynomial(coeffs)
}
