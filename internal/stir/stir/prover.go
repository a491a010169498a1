package stir

import (
	"fmt"

	"github.com/stirproof/stir/internal/stir/core"
	"github.com/stirproof/stir/internal/stir/fiatshamir"
	"github.com/stirproof/stir/internal/stir/params"
)

// Prover runs both phases of STIR: Commit builds the oracle for a
// polynomial, Prove folds, out-of-domain-samples, and quotients it down to
// the final polynomial, round by round.
type Prover struct {
	Schedule *params.STIRSchedule
	Field    *core.Field
	Hasher   core.Hasher
}

// NewProver builds a Prover against the given schedule, field and Merkle
// hasher.
func NewProver(schedule *params.STIRSchedule, field *core.Field, hasher core.Hasher) *Prover {
	return &Prover{Schedule: schedule, Field: field, Hasher: hasher}
}

func leafGroups(rows [][]*core.FieldElement) []core.LeafGroup {
	groups := make([]core.LeafGroup, len(rows))
	for i, row := range rows {
		groups[i] = row
	}
	return groups
}

func newMerkleTree(hasher core.Hasher, rows [][]*core.FieldElement) (*core.MerkleTree, error) {
	return core.NewMerkleTree(hasher, leafGroups(rows))
}

// Commit evaluates poly over the starting domain, groups the evaluations
// into folding-factor-sized rows, and commits to them with a Merkle tree.
func (p *Prover) Commit(poly *core.Polynomial) (*Commitment, *Witness, error) {
	sched := p.Schedule
	if poly.Degree() >= sched.Parameters.StartingDegree {
		return nil, nil, fmt.Errorf("polynomial degree %d exceeds starting degree %d", poly.Degree(), sched.Parameters.StartingDegree)
	}

	domain, err := core.NewStartingDomain(p.Field, sched.Parameters.StartingDegree, sched.Parameters.StartingRate)
	if err != nil {
		return nil, nil, err
	}
	evals, err := domain.EvaluateFFT(poly)
	if err != nil {
		return nil, nil, err
	}
	stacked, err := core.StackEvaluations(evals, sched.Parameters.FoldingFactor)
	if err != nil {
		return nil, nil, err
	}
	tree, err := newMerkleTree(p.Hasher, stacked)
	if err != nil {
		return nil, nil, err
	}

	return &Commitment{Root: tree.Root()}, &Witness{
		Domain:      domain,
		Polynomial:  poly,
		Tree:        tree,
		FoldedEvals: stacked,
	}, nil
}

// extendedWitness is the prover's running state across rounds: unlike
// Witness, it also carries the folding randomness fixed for this round and
// the round index, since the degree/rate schedule is indexed by round.
type extendedWitness struct {
	domain            *core.Domain
	polynomial        *core.Polynomial
	tree              *core.MerkleTree
	foldedEvals       [][]*core.FieldElement
	numRound          int
	foldingRandomness *core.FieldElement
}

// Prove runs the full STIR round structure against the transcript,
// producing a Proof.
func (p *Prover) Prove(channel *fiatshamir.Channel, witness *Witness) (*Proof, error) {
	sched := p.Schedule
	k := sched.Parameters.FoldingFactor

	channel.Absorb(witness.Tree.Root())
	foldingRandomness := channel.SqueezeFieldElement(p.Field)

	w := &extendedWitness{
		domain:            witness.Domain,
		polynomial:        witness.Polynomial,
		tree:              witness.Tree,
		foldedEvals:       witness.FoldedEvals,
		numRound:          0,
		foldingRandomness: foldingRandomness,
	}

	roundProofs := make([]RoundProof, sched.NumRounds)
	for i := 0; i < sched.NumRounds; i++ {
		next, rp, err := p.round(channel, w)
		if err != nil {
			return nil, fmt.Errorf("round %d: %w", i, err)
		}
		w = next
		roundProofs[i] = *rp
	}

	finalPoly, err := core.PolyFold(w.polynomial, k, w.foldingRandomness)
	if err != nil {
		return nil, err
	}

	scalingFactor := w.domain.Size / k
	finalRepetitions := sched.Repetitions[sched.NumRounds]
	finalIndexes, err := channel.DedupIndices(finalRepetitions, scalingFactor)
	if err != nil {
		return nil, err
	}
	finalAnswers := make([][]*core.FieldElement, len(finalIndexes))
	for i, idx := range finalIndexes {
		finalAnswers[i] = w.foldedEvals[idx]
	}
	finalMultiPath, err := w.tree.MultiOpen(finalIndexes)
	if err != nil {
		return nil, err
	}

	finalNonce, err := channel.Grind(sched.PowBits[sched.NumRounds])
	if err != nil {
		return nil, err
	}

	return &Proof{
		RoundProofs:       roundProofs,
		FinalPolynomial:   finalPoly,
		FinalQueryAnswers: finalAnswers,
		FinalMultiPath:    finalMultiPath,
		FinalPowNonce:     finalNonce,
	}, nil
}

// round folds the current witness polynomial, commits to the new oracle,
// out-of-domain samples it, quotients the folded polynomial against those
// samples plus the opened query answers, and scales the quotient by the
// comb randomness power sum to produce the next round's witness polynomial.
func (p *Prover) round(channel *fiatshamir.Channel, w *extendedWitness) (*extendedWitness, *RoundProof, error) {
	sched := p.Schedule
	k := sched.Parameters.FoldingFactor
	field := p.Field

	gPoly, err := core.PolyFold(w.polynomial, k, w.foldingRandomness)
	if err != nil {
		return nil, nil, err
	}

	gDomain, err := w.domain.ScaleOffset(2)
	if err != nil {
		return nil, nil, err
	}
	gEvals, err := gDomain.EvaluateFFT(gPoly)
	if err != nil {
		return nil, nil, err
	}
	gFolded, err := core.StackEvaluations(gEvals, k)
	if err != nil {
		return nil, nil, err
	}
	gTree, err := newMerkleTree(p.Hasher, gFolded)
	if err != nil {
		return nil, nil, err
	}
	gRoot := gTree.Root()
	channel.Absorb(gRoot)

	oodPoints := channel.SqueezeFieldElements(field, sched.OODSamples)
	betas := make([]*core.FieldElement, len(oodPoints))
	for i, x := range oodPoints {
		betas[i] = gPoly.Eval(x)
	}
	channel.AbsorbFieldElements(betas)

	combRandomness := channel.SqueezeFieldElement(field)
	nextFoldingRandomness := channel.SqueezeFieldElement(field)

	scalingFactor := w.domain.Size / k
	repetitions := sched.Repetitions[w.numRound]
	stirIndexes, err := channel.DedupIndices(repetitions, scalingFactor)
	if err != nil {
		return nil, nil, err
	}

	nonce, err := channel.Grind(sched.PowBits[w.numRound])
	if err != nil {
		return nil, nil, err
	}
	// Squeezed for transcript alignment with the verifier's shake-consistency
	// check; the prover never needs the value itself since it holds ansPolynomial
	// and gPoly's coefficients directly.
	channel.SqueezeFieldElement(field)

	queryAnswers := make([][]*core.FieldElement, len(stirIndexes))
	for i, idx := range stirIndexes {
		queryAnswers[i] = w.foldedEvals[idx]
	}
	multiPath, err := w.tree.MultiOpen(stirIndexes)
	if err != nil {
		return nil, nil, err
	}

	scaledDomain, err := w.domain.Scale(k)
	if err != nil {
		return nil, nil, err
	}
	stirPoints := make([]*core.FieldElement, len(stirIndexes))
	for i, idx := range stirIndexes {
		stirPoints[i] = scaledDomain.Element(idx)
	}

	quotientPoints := make([]core.Point, 0, len(oodPoints)+len(stirPoints))
	for i, x := range oodPoints {
		quotientPoints = append(quotientPoints, core.Point{X: x, Y: betas[i]})
	}
	for _, x := range stirPoints {
		quotientPoints = append(quotientPoints, core.Point{X: x, Y: gPoly.Eval(x)})
	}
	quotientSet := make([]*core.FieldElement, len(quotientPoints))
	for i, pt := range quotientPoints {
		quotientSet[i] = pt.X
	}

	ansPolynomial, err := core.NaiveInterpolation(field, quotientPoints)
	if err != nil {
		return nil, nil, err
	}

	shakePolynomial, err := core.NewPolynomial([]*core.FieldElement{field.Zero()})
	if err != nil {
		return nil, nil, err
	}
	for _, pt := range quotientPoints {
		constY, err := core.NewPolynomial([]*core.FieldElement{pt.Y})
		if err != nil {
			return nil, nil, err
		}
		numerator, err := ansPolynomial.Sub(constY)
		if err != nil {
			return nil, nil, err
		}
		denom, err := core.NewPolynomial([]*core.FieldElement{pt.X.Neg(), field.One()})
		if err != nil {
			return nil, nil, err
		}
		term, _, err := numerator.Div(denom)
		if err != nil {
			return nil, nil, err
		}
		shakePolynomial, err = shakePolynomial.Add(term)
		if err != nil {
			return nil, nil, err
		}
	}

	vanishing := core.VanishingPoly(field, quotientSet)
	numerator, err := gPoly.Sub(ansPolynomial)
	if err != nil {
		return nil, nil, err
	}
	quotientPolynomial, _, err := numerator.Div(vanishing)
	if err != nil {
		return nil, nil, err
	}

	scalingCoeffs := make([]*core.FieldElement, len(quotientSet)+1)
	power := field.One()
	for i := range scalingCoeffs {
		scalingCoeffs[i] = power
		power = power.Mul(combRandomness)
	}
	scalingPolynomial, err := core.NewPolynomial(scalingCoeffs)
	if err != nil {
		return nil, nil, err
	}

	witnessPolynomial, err := quotientPolynomial.Mul(scalingPolynomial)
	if err != nil {
		return nil, nil, err
	}

	next := &extendedWitness{
		domain:            gDomain,
		polynomial:        witnessPolynomial,
		tree:              gTree,
		foldedEvals:       gFolded,
		numRound:          w.numRound + 1,
		foldingRandomness: nextFoldingRandomness,
	}
	rp := &RoundProof{
		GRoot:           gRoot,
		Betas:           betas,
		QueryAnswers:    queryAnswers,
		MultiPath:       multiPath,
		AnsPolynomial:   ansPolynomial,
		ShakePolynomial: shakePolynomial,
		PowNonce:        nonce,
	}
	return next, rp, nil
}
