package core

import "fmt"

// BivariatePolynomial is the coefficient-matrix view Q(X,Y) of a univariate
// polynomial f, used to fold f by an arbitrary power-of-two factor: if
// Q[i][j] = f_{i*cols+j}, then f(X) = Q(X^cols, X).
type BivariatePolynomial struct {
	matrix [][]*FieldElement
	rows   int
	cols   int
	field  *Field
}

// ToCoefficientMatrix packs f's coefficients into a rows x cols matrix,
// row-major: matrix[i][j] = f_{i*cols+j}. rows*cols must be at least
// deg(f)+1; missing coefficients are treated as zero.
func ToCoefficientMatrix(f *Polynomial, rows, cols int) *BivariatePolynomial {
	field := f.Field()
	matrix := make([][]*FieldElement, rows)
	for i := 0; i < rows; i++ {
		matrix[i] = make([]*FieldElement, cols)
		for j := 0; j < cols; j++ {
			matrix[i][j] = f.Coefficient(i*cols + j)
		}
	}
	return &BivariatePolynomial{matrix: matrix, rows: rows, cols: cols, field: field}
}

// Evaluate computes Q(x, y) = Sum_{i,j} matrix[i][j] * x^i * y^j.
func (q *BivariatePolynomial) Evaluate(x, y *FieldElement) *FieldElement {
	result := q.field.Zero()
	xPower := q.field.One()
	for i := 0; i < q.rows; i++ {
		yPower := q.field.One()
		rowSum := q.field.Zero()
		for j := 0; j < q.cols; j++ {
			rowSum = rowSum.Add(q.matrix[i][j].Mul(yPower))
			yPower = yPower.Mul(y)
		}
		result = result.Add(rowSum.Mul(xPower))
		xPower = xPower.Mul(x)
	}
	return result
}

// FoldByCol returns g(Y) = Sum_{j<cols} alpha^j * col_j(Y), where col_j(Y) is
// the column-j slice of the matrix read as coefficients of Y. This is the
// polynomial fold used by FRI and STIR each round.
func (q *BivariatePolynomial) FoldByCol(alpha *FieldElement) (*Polynomial, error) {
	alphaPowers := make([]*FieldElement, q.cols)
	alphaPowers[0] = q.field.One()
	for j := 1; j < q.cols; j++ {
		alphaPowers[j] = alphaPowers[j-1].Mul(alpha)
	}

	coeffs := make([]*FieldElement, q.rows)
	for i := 0; i < q.rows; i++ {
		sum := q.field.Zero()
		for j := 0; j < q.cols; j++ {
			sum = sum.Add(q.matrix[i][j].Mul(alphaPowers[j]))
		}
		coeffs[i] = sum
	}
	return NewPolynomial(coeffs)
}

// PolyFold folds f by folding_factor at randomness alpha: builds the
// coefficient matrix of shape ceil((deg(f)+1)/k) x k and column-folds it.
// Equivalent, for any beta with beta^k = x, to Lagrange-interpolating f on
// the coset {beta*w_k^t : t<k} and evaluating the interpolant at alpha.
func PolyFold(f *Polynomial, foldingFactor int, alpha *FieldElement) (*Polynomial, error) {
	if !isPowerOfTwo(foldingFactor) {
		return nil, fmt.Errorf("folding factor %d must be a power of two", foldingFactor)
	}
	numCoeffs := f.Degree() + 1
	rows := (numCoeffs + foldingFactor - 1) / foldingFactor
	if rows == 0 {
		rows = 1
	}
	matrix := ToCoefficientMatrix(f, rows, foldingFactor)
	return matrix.FoldByCol(alpha)
}

// VanishingPoly returns the monic polynomial Prod_{s in points} (X - s).
func VanishingPoly(field *Field, points []*FieldElement) *Polynomial {
	result, _ := NewPolynomial([]*FieldElement{field.One()})
	for _, s := range points {
		linear, _ := NewPolynomial([]*FieldElement{s.Neg(), field.One()})
		result, _ = result.Mul(linear)
	}
	return result
}

// NaiveInterpolation interpolates the given (x, y) pairs into a polynomial
// via Lagrange interpolation.
func NaiveInterpolation(field *Field, points []Point) (*Polynomial, error) {
	return LagrangeInterpolation(points, field)
}

// PolyQuotient divides poly by the vanishing polynomial of points, asserting
// exact division (poly must vanish on every point).
func PolyQuotient(poly *Polynomial, points []*FieldElement) (*Polynomial, error) {
	vanishing := VanishingPoly(poly.Field(), points)
	quotient, remainder, err := poly.Div(vanishing)
	if err != nil {
		return nil, fmt.Errorf("quotient division failed: %w", err)
	}
	if remainder.Degree() != 0 || !remainder.Coefficient(0).IsZero() {
		return nil, fmt.Errorf("poly does not vanish exactly on the given point set")
	}
	return quotient, nil
}

// Quotient computes (claimedEval - ans(evaluationPoint)) / Prod_{(a,_) in answers} (evaluationPoint - a),
// where ans interpolates `answers`. Used by the verifier to check a single
// query against a virtual oracle without materializing the quotient polynomial.
func Quotient(field *Field, claimedEval, evaluationPoint *FieldElement, answers []Point) (*FieldElement, error) {
	ans, err := NaiveInterpolation(field, answers)
	if err != nil {
		return nil, fmt.Errorf("failed to interpolate answers: %w", err)
	}
	numerator := claimedEval.Sub(ans.Eval(evaluationPoint))

	denom := field.One()
	for _, p := range answers {
		diff := evaluationPoint.Sub(p.X)
		if diff.IsZero() {
			return nil, fmt.Errorf("evaluation point coincides with an interpolation point")
		}
		denom = denom.Mul(diff)
	}
	denomInv, err := denom.Inv()
	if err != nil {
		return nil, err
	}
	return numerator.Mul(denomInv), nil
}

// QuotientWithHint is the amortized form of Quotient: the caller supplies
// the already-interpolated ans(evaluationPoint) and the already-inverted
// denominator product, both typically produced by a single batch inversion
// shared across many queries in the same round.
func QuotientWithHint(claimedEval, ansEval, evaluationPoint *FieldElement, denomInvHint *FieldElement) *FieldElement {
	numerator := claimedEval.Sub(ansEval)
	return numerator.Mul(denomInvHint)
}
