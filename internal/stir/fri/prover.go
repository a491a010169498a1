package fri

import (
	"fmt"
	"math/big"

	"github.com/stirproof/stir/internal/stir/core"
	"github.com/stirproof/stir/internal/stir/fiatshamir"
	"github.com/stirproof/stir/internal/stir/params"
)

// Prover runs both phases of FRI: Commit builds the oracle for a polynomial,
// Prove folds it down to the final polynomial and answers the query phase.
type Prover struct {
	Schedule *params.FRISchedule
	Field    *core.Field
	Hasher   core.Hasher
}

// NewProver builds a Prover against the given schedule, field and Merkle
// hasher.
func NewProver(schedule *params.FRISchedule, field *core.Field, hasher core.Hasher) *Prover {
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

// Prove runs the round-by-round folding and query phase against the
// transcript, producing a Proof.
func (p *Prover) Prove(channel *fiatshamir.Channel, witness *Witness) (*Proof, error) {
	sched := p.Schedule
	k := sched.Parameters.FoldingFactor

	channel.Absorb(witness.Tree.Root())
	foldingRandomness := channel.SqueezeFieldElement(p.Field)

	domain := witness.Domain
	poly := witness.Polynomial
	trees := []*core.MerkleTree{witness.Tree}
	foldedEvalsHistory := [][][]*core.FieldElement{witness.FoldedEvals}
	var commitments [][]byte

	for round := 0; round < sched.NumRounds; round++ {
		g, err := core.PolyFold(poly, k, foldingRandomness)
		if err != nil {
			return nil, fmt.Errorf("round %d fold: %w", round, err)
		}

		prevEvals := foldedEvalsHistory[len(foldedEvalsHistory)-1]
		numGroups := domain.Size / k

		// The coset at leaf j is (offset*w^j) * <w^numGroups>: its offset
		// walks the domain elements, its generator is the order-k power
		// w^numGroups, independent of the domain offset.
		cosetOffsets := make([]*core.FieldElement, numGroups)
		current := domain.Offset
		for j := 0; j < numGroups; j++ {
			cosetOffsets[j] = current
			current = current.Mul(domain.Generator)
		}
		generator := domain.Generator.Exp(big.NewInt(int64(numGroups)))
		batch := append(append([]*core.FieldElement{}, cosetOffsets...), generator)
		inv, err := p.Field.BatchInversion(batch)
		if err != nil {
			return nil, fmt.Errorf("round %d batch inversion: %w", round, err)
		}
		cosetOffsetsInv := inv[:numGroups]
		generatorInv := inv[numGroups]
		sizeInv, err := p.Field.NewElementFromInt64(int64(k)).Inv()
		if err != nil {
			return nil, err
		}

		gEvaluations := make([]*core.FieldElement, numGroups)
		for j := 0; j < numGroups; j++ {
			interp, err := core.FFTInterpolate(generator, generatorInv, cosetOffsets[j], cosetOffsetsInv[j], sizeInv, prevEvals[j])
			if err != nil {
				return nil, fmt.Errorf("round %d coset interpolate %d: %w", round, j, err)
			}
			gEvaluations[j] = interp.Eval(foldingRandomness)
		}

		newDomain, err := domain.Scale(k)
		if err != nil {
			return nil, err
		}
		gFolded, err := core.StackEvaluations(gEvaluations, k)
		if err != nil {
			return nil, err
		}
		gTree, err := newMerkleTree(p.Hasher, gFolded)
		if err != nil {
			return nil, err
		}
		gRoot := gTree.Root()
		channel.Absorb(gRoot)
		foldingRandomness = channel.SqueezeFieldElement(p.Field)

		commitments = append(commitments, gRoot)
		trees = append(trees, gTree)
		foldedEvalsHistory = append(foldedEvalsHistory, gFolded)

		domain = newDomain
		poly = g
	}

	finalPoly, err := core.PolyFold(poly, k, foldingRandomness)
	if err != nil {
		return nil, err
	}

	foldedEvalsLen := witness.Domain.Size / k
	queryIndexes, err := channel.DedupIndices(sched.Repetitions, foldedEvalsLen)
	if err != nil {
		return nil, err
	}

	roundProofs := make([]RoundProof, sched.NumRounds+1)
	for round := 0; round <= sched.NumRounds; round++ {
		evals := foldedEvalsHistory[round]
		answers := make([][]*core.FieldElement, len(queryIndexes))
		for i, idx := range queryIndexes {
			answers[i] = evals[idx]
		}
		multipath, err := trees[round].MultiOpen(queryIndexes)
		if err != nil {
			return nil, err
		}
		roundProofs[round] = RoundProof{QueryAnswers: answers, MultiPath: multipath}

		if round == sched.NumRounds {
			break
		}
		foldedEvalsLen /= k
		reduced := make([]int, len(queryIndexes))
		for i, idx := range queryIndexes {
			reduced[i] = idx % foldedEvalsLen
		}
		queryIndexes = core.DedupSortInts(reduced)
	}

	nonce, err := channel.Grind(sched.PowBits)
	if err != nil {
		return nil, err
	}

	return &Proof{
		Commitments:     commitments,
		RoundProofs:     roundProofs,
		FinalPolynomial: finalPoly,
		PowNonce:        nonce,
	}, nil
}
