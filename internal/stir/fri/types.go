// Package fri implements the original FRI low-degree test: round-by-round
// polynomial folding committed to a Merkle-oracle chain, queried after every
// folding randomness has been fixed by the Fiat-Shamir transcript.
package fri

import "github.com/stirproof/stir/internal/stir/core"

// Witness is what Commit produces for the prover to hold onto: the starting
// domain, the polynomial itself, its Merkle tree, and the domain evaluations
// already grouped into folding-factor-sized rows (the shape every Merkle leaf
// and every per-round coset interpolation is built from).
type Witness struct {
	Domain      *core.Domain
	Polynomial  *core.Polynomial
	Tree        *core.MerkleTree
	FoldedEvals [][]*core.FieldElement
}

// Commitment is the single root the verifier is handed out-of-band.
type Commitment struct {
	Root []byte
}

// RoundProof is one round's opening: the raw leaf groups at the queried
// indices plus the shared multi-proof authenticating them against that
// round's root.
type RoundProof struct {
	QueryAnswers [][]*core.FieldElement
	MultiPath    *core.MultiPath
}

// Proof is the full non-interactive transcript output: a root per
// intermediate round, one RoundProof per round (including the initial
// commitment's own round), the final low-degree polynomial, and the
// proof-of-work nonce.
type Proof struct {
	Commitments     [][]byte
	RoundProofs     []RoundProof
	FinalPolynomial *core.Polynomial
	PowNonce        *uint64
}
