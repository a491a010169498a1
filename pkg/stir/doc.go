// Package stir provides a low-degree test (LDT) suite: two
// Fiat-Shamir-transformed, Merkle-committed interactive oracle proofs that a
// committed evaluation vector is close to the evaluations of a bounded-degree
// polynomial over a smooth multiplicative coset of a prime field.
//
// Two protocols are implemented:
//
//   - FRI, the original commit-fold-commit low-degree test.
//   - STIR, which folds, out-of-domain samples, and quotients each round,
//     reaching a target soundness level with fewer queries than plain FRI
//     over the same number of rounds.
//
// # Quick start
//
//	params := stir.DefaultParameters().WithFoldingFactor(16)
//	s, err := stir.NewSTIR(params)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	poly, err := stir.RandomPolynomial(s.Field(), params.StartingDegree-1)
//	if err != nil {
//		log.Fatal(err)
//	}
//	commitment, proof, err := s.ProveRoundTrip(poly)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	ok := s.VerifyProof(commitment, proof)
//
// # Architecture
//
//   - pkg/stir/: public API (this package) — parameter builders, error
//     kinds, and thin prover/verifier constructors.
//   - internal/stir/core: field, domain, polynomial and Merkle primitives.
//   - internal/stir/fiatshamir: the non-interactive transcript.
//   - internal/stir/params: FRI/STIR schedule derivation.
//   - internal/stir/fri, internal/stir/stir: the two protocols.
//   - internal/stir/serialize: canonical proof/commitment encodings.
//
// Implementation details under internal/ can change without breaking this
// package's API.
package stir
