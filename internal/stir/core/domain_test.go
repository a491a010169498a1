package core

import "testing"

func elementSet(elements []*FieldElement) map[string]struct{} {
	set := make(map[string]struct{}, len(elements))
	for _, e := range elements {
		set[e.String()] = struct{}{}
	}
	return set
}

func intersects(a, b map[string]struct{}) bool {
	for k := range a {
		if _, ok := b[k]; ok {
			return true
		}
	}
	return false
}

// TestScaleOffsetNonOverlapping pins the cross-round disjointness invariant
// STIR's virtual oracle depends on: (L_0)^k is disjoint from L_1, and this
// must keep holding when ScaleOffset is chained across more than one round.
func TestScaleOffsetNonOverlapping(t *testing.T) {
	field := DefaultPrimeField
	foldingFactor := 16

	l0, err := NewStartingDomain(field, 64, 2)
	if err != nil {
		t.Fatalf("NewStartingDomain: %v", err)
	}

	l0k, err := l0.Scale(foldingFactor)
	if err != nil {
		t.Fatalf("l0.Scale: %v", err)
	}
	l1, err := l0.ScaleOffset(2)
	if err != nil {
		t.Fatalf("l0.ScaleOffset: %v", err)
	}
	l1k, err := l1.Scale(foldingFactor)
	if err != nil {
		t.Fatalf("l1.Scale: %v", err)
	}
	l2, err := l1.ScaleOffset(2)
	if err != nil {
		t.Fatalf("l1.ScaleOffset (round 2): %v", err)
	}

	if intersects(elementSet(l0k.Elements()), elementSet(l1.Elements())) {
		t.Error("(L_0)^k intersects L_1, disjointness invariant violated")
	}
	if intersects(elementSet(l1k.Elements()), elementSet(l2.Elements())) {
		t.Error("(L_1)^k intersects L_2, disjointness invariant violated across a second round")
	}
}

func TestDomainElementMatchesOffsetGeneratorPower(t *testing.T) {
	field := DefaultPrimeField
	d, err := NewDomain(field, 8, field.NewElementFromInt64(3))
	if err != nil {
		t.Fatalf("NewDomain: %v", err)
	}
	for i := 0; i < d.Size; i++ {
		want := d.Offset.Mul(d.Generator.Exp(bigInt(i)))
		if !d.Element(i).Equal(want) {
			t.Errorf("Element(%d) = %s, want %s", i, d.Element(i), want)
		}
	}
}

// TestEvaluateFFTMatchesNaive pins the forward NTT path the provers use
// against direct Horner evaluation, over a coset with a nontrivial offset.
func TestEvaluateFFTMatchesNaive(t *testing.T) {
	field := DefaultPrimeField
	d, err := NewDomain(field, 32, field.NewElementFromInt64(9))
	if err != nil {
		t.Fatalf("NewDomain: %v", err)
	}

	coeffs := make([]*FieldElement, 20)
	for i := range coeffs {
		coeffs[i] = field.NewElementFromInt64(int64(i*5 + 2))
	}
	poly, err := NewPolynomial(coeffs)
	if err != nil {
		t.Fatalf("NewPolynomial: %v", err)
	}

	naive := d.Evaluate(poly)
	fast, err := d.EvaluateFFT(poly)
	if err != nil {
		t.Fatalf("EvaluateFFT: %v", err)
	}
	for i := range naive {
		if !fast[i].Equal(naive[i]) {
			t.Errorf("EvaluateFFT[%d] = %s, naive = %s", i, fast[i], naive[i])
		}
	}
}

func TestEvaluateFFTRejectsOversizedPolynomial(t *testing.T) {
	field := DefaultPrimeField
	d, err := NewDomain(field, 8, field.One())
	if err != nil {
		t.Fatalf("NewDomain: %v", err)
	}
	coeffs := make([]*FieldElement, d.Size+1)
	for i := range coeffs {
		coeffs[i] = field.NewElementFromInt64(int64(i + 1))
	}
	poly, err := NewPolynomial(coeffs)
	if err != nil {
		t.Fatalf("NewPolynomial: %v", err)
	}
	if _, err := d.EvaluateFFT(poly); err == nil {
		t.Error("expected an error for a polynomial that does not fit the domain")
	}
}

func TestStackEvaluationsRoundTrip(t *testing.T) {
	field := DefaultPrimeField
	evals := make([]*FieldElement, 16)
	for i := range evals {
		evals[i] = field.NewElementFromInt64(int64(i))
	}
	stacked, err := StackEvaluations(evals, 4)
	if err != nil {
		t.Fatalf("StackEvaluations: %v", err)
	}
	if len(stacked) != 4 {
		t.Fatalf("stacked rows = %d, want 4", len(stacked))
	}
	for i, row := range stacked {
		for j, v := range row {
			want := evals[i+j*4]
			if !v.Equal(want) {
				t.Errorf("stacked[%d][%d] = %s, want %s", i, j, v, want)
			}
		}
	}
}
