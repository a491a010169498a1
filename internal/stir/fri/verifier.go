package fri

import (
	"math/big"
	"sort"

	"github.com/stirproof/stir/internal/stir/core"
	"github.com/stirproof/stir/internal/stir/fiatshamir"
	"github.com/stirproof/stir/internal/stir/params"
)

// Verifier replays the transcript a Proof claims to come from and checks
// every Merkle opening and fold-consistency constraint it implies.
type Verifier struct {
	Schedule *params.FRISchedule
	Field    *core.Field
	Hasher   core.Hasher
}

// NewVerifier builds a Verifier against the given schedule, field and Merkle
// hasher.
func NewVerifier(schedule *params.FRISchedule, field *core.Field, hasher core.Hasher) *Verifier {
	return &Verifier{Schedule: schedule, Field: field, Hasher: hasher}
}

type indexedQuery struct {
	index    int
	checking int
}

// Verify checks proof against commitment, replaying the Fiat-Shamir
// transcript over channel exactly as Prove produced it.
func (v *Verifier) Verify(channel *fiatshamir.Channel, commitment *Commitment, proof *Proof) bool {
	sched := v.Schedule
	k := sched.Parameters.FoldingFactor
	numRounds := sched.NumRounds

	if proof.FinalPolynomial.Degree()+1 > sched.Parameters.StoppingDegree {
		return false
	}
	if len(proof.Commitments) != numRounds || len(proof.RoundProofs) != numRounds+1 {
		return false
	}

	channel.Absorb(commitment.Root)
	foldingRandomness := make([]*core.FieldElement, numRounds+1)
	foldingRandomness[0] = channel.SqueezeFieldElement(v.Field)
	for i, root := range proof.Commitments {
		channel.Absorb(root)
		foldingRandomness[i+1] = channel.SqueezeFieldElement(v.Field)
	}

	roots := make([][]byte, numRounds+1)
	roots[0] = commitment.Root
	copy(roots[1:], proof.Commitments)

	startDomain, err := core.NewStartingDomain(v.Field, sched.Parameters.StartingDegree, sched.Parameters.StartingRate)
	if err != nil {
		return false
	}

	foldedEvalsLen := startDomain.Size / k
	rawIndexes, err := channel.DedupIndices(sched.Repetitions, foldedEvalsLen)
	if err != nil {
		return false
	}
	if !channel.GrindVerify(sched.PowBits, proof.PowNonce) {
		return false
	}

	pairs := make([]indexedQuery, len(rawIndexes))
	for i, idx := range rawIndexes {
		pairs[i] = indexedQuery{index: idx, checking: 0}
	}

	domain := startDomain
	var carryFolded []*core.FieldElement

	for round := 0; round <= numRounds; round++ {
		idxs := make([]int, len(pairs))
		for i, p := range pairs {
			idxs[i] = p.index
		}

		rp := proof.RoundProofs[round]
		if len(rp.QueryAnswers) != len(idxs) {
			return false
		}
		groups := make([]core.LeafGroup, len(rp.QueryAnswers))
		for i, a := range rp.QueryAnswers {
			groups[i] = a
		}
		if !core.VerifyMultiPath(v.Hasher, roots[round], domain.Size/k, idxs, groups, rp.MultiPath) {
			return false
		}

		if carryFolded != nil {
			for i, p := range pairs {
				if p.checking >= len(rp.QueryAnswers[i]) {
					return false
				}
				if !rp.QueryAnswers[i][p.checking].Equal(carryFolded[i]) {
					return false
				}
			}
		}

		numGroups := domain.Size / k
		cosetOffsets := make([]*core.FieldElement, len(idxs))
		for i, idx := range idxs {
			cosetOffsets[i] = domain.Element(idx)
		}
		generator := domain.Generator.Exp(big.NewInt(int64(numGroups)))

		batch := append(append([]*core.FieldElement{}, cosetOffsets...), generator, v.Field.NewElementFromInt64(int64(k)))
		inv, err := v.Field.BatchInversion(batch)
		if err != nil {
			return false
		}
		cosetOffsetsInv := inv[:len(cosetOffsets)]
		generatorInv := inv[len(cosetOffsets)]
		sizeInv := inv[len(cosetOffsets)+1]

		folded := make([]*core.FieldElement, len(idxs))
		for i := range idxs {
			interp, err := core.FFTInterpolate(generator, generatorInv, cosetOffsets[i], cosetOffsetsInv[i], sizeInv, rp.QueryAnswers[i])
			if err != nil {
				return false
			}
			folded[i] = interp.Eval(foldingRandomness[round])
		}

		nextDomain, err := domain.Scale(k)
		if err != nil {
			return false
		}
		nextLen := numGroups / k

		// Indexes that collide after reduction keep the last colliding
		// entry's folded value and leaf slot.
		seen := make(map[int]*core.FieldElement, len(idxs))
		checking := make(map[int]int, len(idxs))
		var buckets []int
		for i, idx := range idxs {
			bucket := idx % nextLen
			if _, ok := seen[bucket]; !ok {
				buckets = append(buckets, bucket)
			}
			seen[bucket] = folded[i]
			checking[bucket] = idx / nextLen
		}
		sort.Ints(buckets)

		nextPairs := make([]indexedQuery, len(buckets))
		nextFolded := make([]*core.FieldElement, len(buckets))
		for i, bucket := range buckets {
			nextPairs[i] = indexedQuery{index: bucket, checking: checking[bucket]}
			nextFolded[i] = seen[bucket]
		}

		pairs = nextPairs
		carryFolded = nextFolded
		domain = nextDomain
	}

	finalLen := domain.Size / k
	for i, p := range pairs {
		point := domain.Element(p.index + p.checking*finalLen)
		if !proof.FinalPolynomial.Eval(point).Equal(carryFolded[i]) {
			return false
		}
	}
	return true
}
