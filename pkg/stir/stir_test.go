package stir

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func smallParameters() *Parameters {
	return DefaultParameters().
		WithSecurityLevel(12).
		WithProtocolSecurityLevel(12).
		WithDegreeBounds(1<<8, 1<<2).
		WithFoldingFactor(4).
		WithStartingRate(2)
}

// TestFRIPublicRoundTrip exercises the public API end to end: derive a FRI
// instance, commit and prove a random polynomial, serialize both sides, and
// verify the decoded forms.
func TestFRIPublicRoundTrip(t *testing.T) {
	p := smallParameters()
	f, err := NewFRI(p)
	require.NoError(t, err)

	poly, err := RandomPolynomial(f.Field(), p.StartingDegree-1)
	require.NoError(t, err)

	commitment, proof, err := f.ProveRoundTrip(poly)
	require.NoError(t, err)
	require.True(t, f.VerifyProof(commitment, proof))

	commitmentBytes, err := commitment.MarshalBinary()
	require.NoError(t, err)
	proofBytes, err := proof.MarshalBinary()
	require.NoError(t, err)

	decodedCommitment, err := DecodeFRICommitment(commitmentBytes)
	require.NoError(t, err)
	decodedProof, err := DecodeFRIProof(proofBytes, f.Field())
	require.NoError(t, err)

	require.True(t, f.VerifyProof(decodedCommitment, decodedProof))
}

// TestSTIRPublicRoundTrip mirrors TestFRIPublicRoundTrip for STIR.
func TestSTIRPublicRoundTrip(t *testing.T) {
	p := smallParameters()
	s, err := NewSTIR(p)
	require.NoError(t, err)

	poly, err := RandomPolynomial(s.Field(), p.StartingDegree-1)
	require.NoError(t, err)

	commitment, proof, err := s.ProveRoundTrip(poly)
	require.NoError(t, err)
	require.True(t, s.VerifyProof(commitment, proof))

	commitmentBytes, err := commitment.MarshalBinary()
	require.NoError(t, err)
	proofBytes, err := proof.MarshalBinary()
	require.NoError(t, err)

	decodedCommitment, err := DecodeSTIRCommitment(commitmentBytes)
	require.NoError(t, err)
	decodedProof, err := DecodeSTIRProof(proofBytes, s.Field())
	require.NoError(t, err)

	require.True(t, s.VerifyProof(decodedCommitment, decodedProof))
}

func TestDecodeFRIProofRejectsMalformedBytesAsError(t *testing.T) {
	_, err := DecodeFRIProof([]byte{1, 2, 3}, DefaultField())
	require.Error(t, err)
	var stirErr *Error
	require.ErrorAs(t, err, &stirErr)
	require.Equal(t, ErrProofMalformed, stirErr.Code)
}

func TestNewFRIRejectsInvalidParameters(t *testing.T) {
	p := smallParameters().WithFoldingFactor(3)
	_, err := NewFRI(p)
	require.Error(t, err)
	var stirErr *Error
	require.ErrorAs(t, err, &stirErr)
	require.Equal(t, ErrInvalidParameters, stirErr.Code)
}

func TestCommitRejectsPolynomialAtOrAboveStartingDegree(t *testing.T) {
	p := smallParameters()
	f, err := NewFRI(p)
	require.NoError(t, err)

	poly, err := RandomPolynomial(f.Field(), p.StartingDegree)
	require.NoError(t, err)
	_, _, err = f.Prover.Commit(poly)
	require.Error(t, err)
}
