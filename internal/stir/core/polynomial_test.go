package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestPolyFoldMatchesLagrangeOnCoset pins fold's defining identity: for any
// beta with beta^k = x, PolyFold(f, k, alpha).Eval(x) equals the Lagrange
// interpolant of {(beta*w_k^t, f(beta*w_k^t)) : t<k} evaluated at alpha.
func TestPolyFoldMatchesLagrangeOnCoset(t *testing.T) {
	field := DefaultPrimeField
	k := 8

	coeffs := make([]*FieldElement, 37)
	for i := range coeffs {
		coeffs[i] = field.NewElementFromInt64(int64(i*7 + 3))
	}
	f, err := NewPolynomial(coeffs)
	require.NoError(t, err)

	beta := field.NewElementFromInt64(5)
	alpha := field.NewElementFromInt64(11)
	x := beta.Exp(bigInt(k))

	wk, err := field.RootOfUnityOfOrder(uint64(k))
	require.NoError(t, err)

	points := make([]Point, k)
	cur := beta
	for tIdx := 0; tIdx < k; tIdx++ {
		points[tIdx] = Point{X: cur, Y: f.Eval(cur)}
		cur = cur.Mul(wk)
	}
	lagrange, err := NaiveInterpolation(field, points)
	require.NoError(t, err)
	want := lagrange.Eval(alpha)

	folded, err := PolyFold(f, k, alpha)
	require.NoError(t, err)
	got := folded.Eval(x)

	require.True(t, got.Equal(want), "PolyFold(f,%d,alpha).Eval(beta^k) = %s, want %s", k, got, want)
}

// TestPolyFoldRejectsNonPowerOfTwoFactor checks the configuration-error path.
func TestPolyFoldRejectsNonPowerOfTwoFactor(t *testing.T) {
	field := DefaultPrimeField
	f, err := NewPolynomialFromInt64(field, []int64{1, 2, 3})
	require.NoError(t, err)

	_, err = PolyFold(f, 3, field.NewElementFromInt64(1))
	require.Error(t, err)
}

// TestQuotientMatchesPolyQuotient pins the single-query quotient shortcut
// against the materialized-polynomial quotient it is meant to avoid
// computing in full each time.
func TestQuotientMatchesPolyQuotient(t *testing.T) {
	field := DefaultPrimeField

	answers := []Point{
		{X: field.NewElementFromInt64(1), Y: field.NewElementFromInt64(4)},
		{X: field.NewElementFromInt64(2), Y: field.NewElementFromInt64(9)},
		{X: field.NewElementFromInt64(3), Y: field.NewElementFromInt64(16)},
	}

	poly, err := NewPolynomialFromInt64(field, []int64{2, 0, 1, 1}) // 2 + x^2 + x^3
	require.NoError(t, err)

	points := []*FieldElement{answers[0].X, answers[1].X, answers[2].X}
	ans, err := NaiveInterpolation(field, answers)
	require.NoError(t, err)
	diff, err := poly.Sub(ans)
	require.NoError(t, err)

	quotientPoly, err := PolyQuotient(diff, points)
	require.NoError(t, err)

	evalPoint := field.NewElementFromInt64(99)
	want := quotientPoly.Eval(evalPoint)

	got, err := Quotient(field, poly.Eval(evalPoint), evalPoint, answers)
	require.NoError(t, err)

	require.True(t, got.Equal(want), "Quotient = %s, want %s", got, want)
}

// TestQuotientWithHintMatchesQuotient checks the amortized form used by the
// verifier's batch-inverted query loop agrees with the single-query formula.
func TestQuotientWithHintMatchesQuotient(t *testing.T) {
	field := DefaultPrimeField
	answers := []Point{
		{X: field.NewElementFromInt64(1), Y: field.NewElementFromInt64(10)},
		{X: field.NewElementFromInt64(2), Y: field.NewElementFromInt64(20)},
	}
	evalPoint := field.NewElementFromInt64(50)
	claimedEval := field.NewElementFromInt64(777)

	want, err := Quotient(field, claimedEval, evalPoint, answers)
	require.NoError(t, err)

	ans, err := NaiveInterpolation(field, answers)
	require.NoError(t, err)
	ansEval := ans.Eval(evalPoint)

	denom := field.One()
	for _, p := range answers {
		denom = denom.Mul(evalPoint.Sub(p.X))
	}
	denomInv, err := denom.Inv()
	require.NoError(t, err)

	got := QuotientWithHint(claimedEval, ansEval, evalPoint, denomInv)
	require.True(t, got.Equal(want))
}

// TestFFTInterpolateMatchesNaive checks the coset-FFT interpolation path
// reconstructs the same coefficients the Lagrange interpolation would, for a
// polynomial's evaluations over a full coset domain.
func TestFFTInterpolateMatchesNaive(t *testing.T) {
	field := DefaultPrimeField
	size := 16

	coeffs := make([]*FieldElement, size)
	for i := range coeffs {
		coeffs[i] = field.NewElementFromInt64(int64(i*3 + 1))
	}
	f, err := NewPolynomial(coeffs)
	require.NoError(t, err)

	offset := field.NewElementFromInt64(7)
	domain, err := NewDomain(field, size, offset)
	require.NoError(t, err)

	values := domain.Evaluate(f)

	points := make([]Point, size)
	elements := domain.Elements()
	for i := range elements {
		points[i] = Point{X: elements[i], Y: values[i]}
	}
	naive, err := NaiveInterpolation(field, points)
	require.NoError(t, err)

	interpolated, err := FFTInterpolate(domain.Generator, domain.GeneratorInv, domain.Offset, domain.OffsetInv, domain.SizeInv, values)
	require.NoError(t, err)

	for i := 0; i <= naive.Degree(); i++ {
		require.True(t, interpolated.Coefficient(i).Equal(naive.Coefficient(i)),
			"coefficient %d: FFTInterpolate = %s, naive = %s", i, interpolated.Coefficient(i), naive.Coefficient(i))
	}
}
