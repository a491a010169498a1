package core

import "fmt"

// BatchInversion inverts every element in one pass using Montgomery's trick:
// accumulate running products, invert the single final accumulator, then
// back-substitute. This is the batch inversion every round of FRI/STIR
// folding and verification is required to share, rather than inverting each
// coset offset, generator and denominator individually.
func (f *Field) BatchInversion(elements []*FieldElement) ([]*FieldElement, error) {
	n := len(elements)
	if n == 0 {
		return []*FieldElement{}, nil
	}
	if n == 1 {
		inv, err := elements[0].Inv()
		if err != nil {
			return nil, err
		}
		return []*FieldElement{inv}, nil
	}

	for i, elem := range elements {
		if elem.IsZero() {
			return nil, fmt.Errorf("cannot invert zero element at index %d", i)
		}
	}

	// acc[i] = elements[0] * elements[1] * ... * elements[i]
	acc := make([]*FieldElement, n)
	acc[0] = elements[0]
	for i := 1; i < n; i++ {
		acc[i] = acc[i-1].Mul(elements[i])
	}

	accInv, err := acc[n-1].Inv()
	if err != nil {
		return nil, fmt.Errorf("failed to invert accumulator: %w", err)
	}

	// elements[i]^-1 = acc[i-1] * acc[n-1]^-1 restricted to the suffix product.
	results := make([]*FieldElement, n)
	for i := n - 1; i > 0; i-- {
		results[i] = accInv.Mul(acc[i-1])
		accInv = accInv.Mul(elements[i])
	}
	results[0] = accInv

	return results, nil
}
