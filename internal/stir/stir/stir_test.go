package stir

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stirproof/stir/internal/stir/core"
	"github.com/stirproof/stir/internal/stir/fiatshamir"
	"github.com/stirproof/stir/internal/stir/params"
)

// smallSTIRParams mirrors fri.smallFRIParams's sizing rationale: two
// quotient-and-fold rounds, no proof-of-work grinding, fast enough to run
// on every commit.
func smallSTIRParams() *params.Parameters {
	return params.DefaultParameters().
		WithSecurityLevel(12).
		WithProtocolSecurityLevel(12).
		WithDegreeBounds(1<<8, 1<<2).
		WithFoldingFactor(4).
		WithStartingRate(2)
}

// withPoWSTIRParams forces every round's pow_bits to 8.
func withPoWSTIRParams() *params.Parameters {
	return smallSTIRParams().WithSecurityLevel(20)
}

func buildSTIR(t *testing.T, p *params.Parameters) (*Prover, *Verifier, *core.Field) {
	t.Helper()
	field := core.DefaultPrimeField
	schedule, err := params.NewSTIRSchedule(p)
	require.NoError(t, err)
	hasher, err := core.NewHasher(field, p.HashFunction)
	require.NoError(t, err)
	return NewProver(schedule, field, hasher), NewVerifier(schedule, field, hasher), field
}

func randomPoly(t *testing.T, field *core.Field, degree int) *core.Polynomial {
	t.Helper()
	coeffs := make([]*core.FieldElement, degree+1)
	for i := range coeffs {
		fe, err := field.RandomElement()
		require.NoError(t, err)
		coeffs[i] = fe
	}
	poly, err := core.NewPolynomial(coeffs)
	require.NoError(t, err)
	return poly
}

func proveSTIR(t *testing.T, prover *Prover, field *core.Field, p *params.Parameters) (*Commitment, *Proof) {
	t.Helper()
	poly := randomPoly(t, field, p.StartingDegree-1)
	commitment, witness, err := prover.Commit(poly)
	require.NoError(t, err)
	proof, err := prover.Prove(fiatshamir.NewChannel(), witness)
	require.NoError(t, err)
	return commitment, proof
}

func TestSTIRRoundTripAccepts(t *testing.T) {
	p := smallSTIRParams()
	prover, verifier, field := buildSTIR(t, p)
	commitment, proof := proveSTIR(t, prover, field, p)

	require.True(t, verifier.Verify(fiatshamir.NewChannel(), commitment, proof))
}

func TestSTIRTamperingRejects(t *testing.T) {
	p := smallSTIRParams()
	prover, verifier, field := buildSTIR(t, p)

	cases := map[string]func(proof *Proof){
		"final polynomial coefficient": func(proof *Proof) {
			coeffs := proof.FinalPolynomial.Coefficients()
			coeffs[0] = coeffs[0].Add(field.One())
			tampered, err := core.NewPolynomial(coeffs)
			require.NoError(t, err)
			proof.FinalPolynomial = tampered
		},
		"round oracle root": func(proof *Proof) {
			proof.RoundProofs[0].GRoot[0] ^= 0xFF
		},
		"out-of-domain beta (shake inconsistency)": func(proof *Proof) {
			proof.RoundProofs[0].Betas[0] = proof.RoundProofs[0].Betas[0].Add(field.One())
		},
		"query answer leaf": func(proof *Proof) {
			proof.RoundProofs[0].QueryAnswers[0][0] = proof.RoundProofs[0].QueryAnswers[0][0].Add(field.One())
		},
		"multipath sibling": func(proof *Proof) {
			proof.RoundProofs[0].MultiPath.Nodes[0].Hash[0] ^= 0xFF
		},
		"final query leaf": func(proof *Proof) {
			proof.FinalQueryAnswers[0][0] = proof.FinalQueryAnswers[0][0].Add(field.One())
		},
	}

	for name, tamper := range cases {
		t.Run(name, func(t *testing.T) {
			commitment, proof := proveSTIR(t, prover, field, p)
			require.True(t, verifier.Verify(fiatshamir.NewChannel(), commitment, proof), "untampered proof must verify first")
			tamper(proof)
			require.False(t, verifier.Verify(fiatshamir.NewChannel(), commitment, proof), "tampering %s should reject", name)
		})
	}
}

// TestSTIRPowNonceRequiredWhenBitsPositive checks that a missing round pow
// nonce rejects whenever that round's schedule entry demands positive
// proof-of-work bits.
func TestSTIRPowNonceRequiredWhenBitsPositive(t *testing.T) {
	p := withPoWSTIRParams()
	prover, verifier, field := buildSTIR(t, p)
	require.Greater(t, prover.Schedule.PowBits[0], 0, "test setup must force grinding")

	commitment, proof := proveSTIR(t, prover, field, p)
	require.True(t, verifier.Verify(fiatshamir.NewChannel(), commitment, proof))

	proof.RoundProofs[0].PowNonce = nil
	require.False(t, verifier.Verify(fiatshamir.NewChannel(), commitment, proof))
}

// TestSTIRRejectsFinalPolynomialAtStoppingDegreeBoundary mirrors the FRI
// boundary case: deg(final_polynomial) == stopping_degree must reject.
func TestSTIRRejectsFinalPolynomialAtStoppingDegreeBoundary(t *testing.T) {
	p := smallSTIRParams()
	prover, verifier, field := buildSTIR(t, p)
	commitment, proof := proveSTIR(t, prover, field, p)
	require.True(t, verifier.Verify(fiatshamir.NewChannel(), commitment, proof))

	coeffs := make([]*core.FieldElement, p.StoppingDegree+1)
	for i := range coeffs {
		coeffs[i] = field.NewElementFromInt64(int64(i + 1))
	}
	overDegree, err := core.NewPolynomial(coeffs)
	require.NoError(t, err)
	proof.FinalPolynomial = overDegree

	require.False(t, verifier.Verify(fiatshamir.NewChannel(), commitment, proof))
}

// TestSTIRDegenerateSmallCase exercises a minimal one-round schedule.
func TestSTIRDegenerateSmallCase(t *testing.T) {
	p := params.DefaultParameters().
		WithSecurityLevel(8).
		WithProtocolSecurityLevel(8).
		WithDegreeBounds(1<<4, 1<<2).
		WithFoldingFactor(1 << 1).
		WithStartingRate(2)
	prover, verifier, field := buildSTIR(t, p)
	commitment, proof := proveSTIR(t, prover, field, p)
	require.True(t, verifier.Verify(fiatshamir.NewChannel(), commitment, proof))
}
