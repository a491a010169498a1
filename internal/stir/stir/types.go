// Package stir implements STIR: a low-degree test that, like FRI, folds a
// committed polynomial each round, but additionally out-of-domain samples
// the folded polynomial and quotients it against those samples before
// committing to the next round's oracle. It runs the same number of rounds
// as plain FRI, but each round's rate improves, so fewer queries (and a
// smaller proof) are needed for a target soundness level.
package stir

import "github.com/stirproof/stir/internal/stir/core"

// Witness is what Commit produces: the starting domain, the committed
// polynomial, its Merkle tree, and the domain evaluations grouped into
// folding-factor-sized rows.
type Witness struct {
	Domain      *core.Domain
	Polynomial  *core.Polynomial
	Tree        *core.MerkleTree
	FoldedEvals [][]*core.FieldElement
}

// Commitment is the single root handed to the verifier out-of-band.
type Commitment struct {
	Root []byte
}

// RoundProof is one STIR round's transcript contribution: the next oracle's
// root, the out-of-domain answers, the opened query answers against the
// previous oracle, the interpolating ("ans") polynomial the quotient is
// taken against, the shake-consistency polynomial, and that round's
// proof-of-work nonce.
type RoundProof struct {
	GRoot           []byte
	Betas           []*core.FieldElement
	QueryAnswers    [][]*core.FieldElement
	MultiPath       *core.MultiPath
	AnsPolynomial   *core.Polynomial
	ShakePolynomial *core.Polynomial
	PowNonce        *uint64
}

// Proof is the full non-interactive STIR transcript: one RoundProof per
// round, the final low-degree polynomial, the query answers against the
// final round's oracle, and the final round's proof-of-work nonce.
type Proof struct {
	RoundProofs       []RoundProof
	FinalPolynomial   *core.Polynomial
	FinalQueryAnswers [][]*core.FieldElement
	FinalMultiPath    *core.MultiPath
	FinalPowNonce     *uint64
}
