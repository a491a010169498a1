package stir

import (
	"math/big"

	"github.com/stirproof/stir/internal/stir/core"
	"github.com/stirproof/stir/internal/stir/fiatshamir"
	"github.com/stirproof/stir/internal/stir/params"
)

// Verifier replays STIR's transcript and checks every Merkle opening,
// proof-of-work grind, and quotient-consistency constraint a Proof implies.
type Verifier struct {
	Schedule *params.STIRSchedule
	Field    *core.Field
	Hasher   core.Hasher
}

// NewVerifier builds a Verifier against the given schedule, field and Merkle
// hasher.
func NewVerifier(schedule *params.STIRSchedule, field *core.Field, hasher core.Hasher) *Verifier {
	return &Verifier{Schedule: schedule, Field: field, Hasher: hasher}
}

// virtualFunction describes the quotienting a round layered over the oracle
// it wraps: the comb randomness the quotient was scaled by, the polynomial
// interpolating the out-of-domain and query answers, and the set of points
// it was built to agree on.
type virtualFunction struct {
	combRandomness          *core.FieldElement
	interpolatingPolynomial *core.Polynomial
	quotientSet             []*core.FieldElement
}

// verificationState is the verifier's view of the function being folded
// this round. A nil virtual means the oracle is the original committed
// polynomial, queried directly; otherwise answers from the wrapped oracle
// must first pass through query() to recover this round's function value.
type verificationState struct {
	virtual           *virtualFunction
	domainGen         *core.FieldElement
	domainSize        int
	domainOffset      *core.FieldElement
	rootOfUnity       *core.FieldElement
	foldingRandomness *core.FieldElement
	numRound          int
}

// query turns a raw answer from the wrapped oracle into this round's
// function value at evaluationPoint. commonFactorInv and denomHint are
// precomputed, batch-inverted terms shared across a whole round's queries;
// ansEval is the interpolating polynomial's value at evaluationPoint.
func (vs *verificationState) query(field *core.Field, evaluationPoint, valueOfPrevOracle, commonFactorInv, denomHint, ansEval *core.FieldElement) *core.FieldElement {
	if vs.virtual == nil {
		return valueOfPrevOracle
	}

	quotientEvaluation := core.QuotientWithHint(valueOfPrevOracle, ansEval, evaluationPoint, denomHint)

	numTerms := len(vs.virtual.quotientSet)
	commonFactor := evaluationPoint.Mul(vs.virtual.combRandomness)
	var scaleFactor *core.FieldElement
	if !commonFactor.Equal(field.One()) {
		exp := big.NewInt(int64(numTerms + 1))
		scaleFactor = field.One().Sub(commonFactor.Exp(exp)).Mul(commonFactorInv)
	} else {
		scaleFactor = field.NewElementFromInt64(int64(numTerms + 1))
	}
	return quotientEvaluation.Mul(scaleFactor)
}

// foldedAnswer pairs a point of the folded domain (the current domain raised
// to the k-th power) with the value the oracle's opened answers fold to at
// that point.
type foldedAnswer struct {
	point *core.FieldElement
	value *core.FieldElement
}

// Verify checks proof against commitment, replaying the Fiat-Shamir
// transcript over channel exactly as Prove produced it.
func (v *Verifier) Verify(channel *fiatshamir.Channel, commitment *Commitment, proof *Proof) bool {
	sched := v.Schedule
	field := v.Field
	k := sched.Parameters.FoldingFactor
	numRounds := sched.NumRounds

	if proof.FinalPolynomial.Degree()+1 > sched.Parameters.StoppingDegree {
		return false
	}
	if len(proof.RoundProofs) != numRounds {
		return false
	}

	channel.Absorb(commitment.Root)
	foldingRandomness := channel.SqueezeFieldElement(field)

	domain, err := core.NewStartingDomain(field, sched.Parameters.StartingDegree, sched.Parameters.StartingRate)
	if err != nil {
		return false
	}

	state := &verificationState{
		virtual:           nil,
		domainGen:         domain.Generator,
		domainSize:        domain.Size,
		domainOffset:      domain.Offset,
		rootOfUnity:       domain.Generator,
		foldingRandomness: foldingRandomness,
		numRound:          0,
	}

	currentRoot := commitment.Root
	for i := range proof.RoundProofs {
		rp := &proof.RoundProofs[i]
		next, ok := v.round(channel, currentRoot, rp, state)
		if !ok {
			return false
		}
		state = next
		currentRoot = rp.GRoot
	}

	scalingFactor := state.domainSize / k
	finalRepetitions := sched.Repetitions[numRounds]
	finalIndexes, err := channel.DedupIndices(finalRepetitions, scalingFactor)
	if err != nil {
		return false
	}
	if !channel.GrindVerify(sched.PowBits[numRounds], proof.FinalPowNonce) {
		return false
	}

	if len(proof.FinalQueryAnswers) != len(finalIndexes) {
		return false
	}
	groups := make([]core.LeafGroup, len(proof.FinalQueryAnswers))
	for i, a := range proof.FinalQueryAnswers {
		groups[i] = a
	}
	if !core.VerifyMultiPath(v.Hasher, currentRoot, scalingFactor, finalIndexes, groups, proof.FinalMultiPath) {
		return false
	}

	foldedAnswers, ok := v.computeFoldedEvaluations(state, finalIndexes, proof.FinalQueryAnswers)
	if !ok {
		return false
	}
	for _, fa := range foldedAnswers {
		if !proof.FinalPolynomial.Eval(fa.point).Equal(fa.value) {
			return false
		}
	}
	return true
}

// round verifies one STIR round: the Merkle opening of the answers against
// the oracle this round wraps, their fold-and-quotient consistency with the
// ans/shake polynomials, and returns the state for the oracle this round
// commits to.
func (v *Verifier) round(channel *fiatshamir.Channel, prevRoot []byte, rp *RoundProof, state *verificationState) (*verificationState, bool) {
	sched := v.Schedule
	field := v.Field
	k := sched.Parameters.FoldingFactor

	channel.Absorb(rp.GRoot)
	oodRandomness := channel.SqueezeFieldElements(field, sched.OODSamples)
	if len(rp.Betas) != sched.OODSamples {
		return nil, false
	}
	channel.AbsorbFieldElements(rp.Betas)
	combRandomness := channel.SqueezeFieldElement(field)
	newFoldingRandomness := channel.SqueezeFieldElement(field)

	scalingFactor := state.domainSize / k
	numRepetitions := sched.Repetitions[state.numRound]
	stirIndexes, err := channel.DedupIndices(numRepetitions, scalingFactor)
	if err != nil {
		return nil, false
	}

	if !channel.GrindVerify(sched.PowBits[state.numRound], rp.PowNonce) {
		return nil, false
	}
	shakeRandomness := channel.SqueezeFieldElement(field)

	if len(rp.QueryAnswers) != len(stirIndexes) {
		return nil, false
	}
	groups := make([]core.LeafGroup, len(rp.QueryAnswers))
	for i, a := range rp.QueryAnswers {
		groups[i] = a
	}
	if !core.VerifyMultiPath(v.Hasher, prevRoot, scalingFactor, stirIndexes, groups, rp.MultiPath) {
		return nil, false
	}

	foldedAnswers, ok := v.computeFoldedEvaluations(state, stirIndexes, rp.QueryAnswers)
	if !ok {
		return nil, false
	}

	quotientPoints := make([]core.Point, 0, sched.OODSamples+len(foldedAnswers))
	for i, alpha := range oodRandomness {
		quotientPoints = append(quotientPoints, core.Point{X: alpha, Y: rp.Betas[i]})
	}
	for _, fa := range foldedAnswers {
		quotientPoints = append(quotientPoints, core.Point{X: fa.point, Y: fa.value})
	}

	ansEval := rp.AnsPolynomial.Eval(shakeRandomness)
	shakeEval := rp.ShakePolynomial.Eval(shakeRandomness)

	denoms := make([]*core.FieldElement, len(quotientPoints))
	for i, pt := range quotientPoints {
		denoms[i] = shakeRandomness.Sub(pt.X)
	}
	denomsInv, err := field.BatchInversion(denoms)
	if err != nil {
		return nil, false
	}
	sum := field.Zero()
	for i, pt := range quotientPoints {
		sum = sum.Add(ansEval.Sub(pt.Y).Mul(denomsInv[i]))
	}
	if !shakeEval.Equal(sum) {
		return nil, false
	}

	quotientSet := make([]*core.FieldElement, len(quotientPoints))
	for i, pt := range quotientPoints {
		quotientSet[i] = pt.X
	}

	next := &verificationState{
		virtual: &virtualFunction{
			combRandomness:          combRandomness,
			interpolatingPolynomial: rp.AnsPolynomial,
			quotientSet:             quotientSet,
		},
		domainGen:         state.domainGen.Mul(state.domainGen),
		domainSize:        state.domainSize / 2,
		domainOffset:      state.domainOffset.Mul(state.domainOffset).Mul(state.rootOfUnity),
		rootOfUnity:       state.rootOfUnity,
		foldingRandomness: newFoldingRandomness,
		numRound:          state.numRound + 1,
	}
	return next, true
}

// computeFoldedEvaluations is shared by round() and Verify()'s final check:
// given the oracle answers opened at indexes, it reconstructs this round's
// (possibly quotiented) function values on each index's folding coset and
// folds them at state.foldingRandomness, returning the coset's image under
// x -> x^k (a point of the current domain raised to the k-th power) and the
// value the fold must equal there.
func (v *Verifier) computeFoldedEvaluations(state *verificationState, indexes []int, oracleAnswers [][]*core.FieldElement) ([]foldedAnswer, bool) {
	if len(oracleAnswers) != len(indexes) {
		return nil, false
	}
	sched := v.Schedule
	field := v.Field
	k := sched.Parameters.FoldingFactor

	scalingFactor := state.domainSize / k
	generator := state.domainGen.Exp(big.NewInt(int64(scalingFactor)))

	cosetOffsets := make([]*core.FieldElement, len(indexes))
	for i, idx := range indexes {
		cosetOffsets[i] = state.domainOffset.Mul(state.domainGen.Exp(big.NewInt(int64(idx))))
	}

	scales := make([]*core.FieldElement, k)
	scales[0] = field.One()
	for j := 1; j < k; j++ {
		scales[j] = scales[j-1].Mul(generator)
	}

	querySets := make([][]*core.FieldElement, len(cosetOffsets))
	for i, offset := range cosetOffsets {
		set := make([]*core.FieldElement, k)
		for j := 0; j < k; j++ {
			set[j] = offset.Mul(scales[j])
		}
		querySets[i] = set
	}

	commonFactorScale := field.Zero()
	if state.virtual != nil {
		commonFactorScale = state.virtual.combRandomness
	}

	commonFactors := make([][]*core.FieldElement, len(querySets))
	denominators := make([][]*core.FieldElement, len(querySets))
	evaluationsOfAns := make([][]*core.FieldElement, len(querySets))
	for i, qs := range querySets {
		if len(oracleAnswers[i]) != k {
			return nil, false
		}
		cf := make([]*core.FieldElement, k)
		dn := make([]*core.FieldElement, k)
		ea := make([]*core.FieldElement, k)
		for j, x := range qs {
			cf[j] = field.One().Sub(commonFactorScale.Mul(x))
			if cf[j].IsZero() {
				// x*r == 1 takes query()'s closed-form |S|+1 branch, which
				// never reads this inverse; keep the batch inversion defined.
				cf[j] = field.One()
			}
			if state.virtual == nil {
				dn[j] = field.One()
				ea[j] = field.One()
			} else {
				prod := field.One()
				for _, s := range state.virtual.quotientSet {
					prod = prod.Mul(x.Sub(s))
				}
				dn[j] = prod
				ea[j] = state.virtual.interpolatingPolynomial.Eval(x)
			}
		}
		commonFactors[i] = cf
		denominators[i] = dn
		evaluationsOfAns[i] = ea
	}

	toInvert := make([]*core.FieldElement, 0, 2*len(querySets)*k+len(cosetOffsets)+2)
	for _, row := range commonFactors {
		toInvert = append(toInvert, row...)
	}
	for _, row := range denominators {
		toInvert = append(toInvert, row...)
	}
	toInvert = append(toInvert, cosetOffsets...)
	toInvert = append(toInvert, generator, field.NewElementFromInt64(int64(k)))

	inv, err := field.BatchInversion(toInvert)
	if err != nil {
		return nil, false
	}
	n := len(inv)
	sizeInv := inv[n-1]
	generatorInv := inv[n-2]
	cosetOffsetsInv := inv[n-2-len(cosetOffsets) : n-2]
	rest := inv[:n-2-len(cosetOffsets)]

	pos := 0
	commonFactorsInv := make([][]*core.FieldElement, len(querySets))
	for i := range querySets {
		commonFactorsInv[i] = rest[pos : pos+k]
		pos += k
	}
	denominatorsInv := make([][]*core.FieldElement, len(querySets))
	for i := range querySets {
		denominatorsInv[i] = rest[pos : pos+k]
		pos += k
	}

	scaledOffset := state.domainOffset.Exp(big.NewInt(int64(k)))

	results := make([]foldedAnswer, len(indexes))
	for i, idx := range indexes {
		stirRandomness := scaledOffset.Mul(state.domainGen.Exp(big.NewInt(int64(k * idx))))

		fAnswers := make([]*core.FieldElement, k)
		for j, x := range querySets[i] {
			fAnswers[j] = state.query(field, x, oracleAnswers[i][j], commonFactorsInv[i][j], denominatorsInv[i][j], evaluationsOfAns[i][j])
		}

		interp, err := core.FFTInterpolate(generator, generatorInv, cosetOffsets[i], cosetOffsetsInv[i], sizeInv, fAnswers)
		if err != nil {
			return nil, false
		}
		results[i] = foldedAnswer{point: stirRandomness, value: interp.Eval(state.foldingRandomness)}
	}
	return results, true
}
