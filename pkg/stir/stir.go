package stir

import (
	"fmt"

	"github.com/stirproof/stir/internal/stir/core"
	"github.com/stirproof/stir/internal/stir/fiatshamir"
	"github.com/stirproof/stir/internal/stir/fri"
	"github.com/stirproof/stir/internal/stir/params"
	"github.com/stirproof/stir/internal/stir/stir"
)

// FRI bundles the matched prover/verifier pair and the schedule they were
// derived from, so callers do not have to thread field/hasher/schedule
// through every call by hand.
type FRI struct {
	Schedule *params.FRISchedule
	Prover   *fri.Prover
	Verifier *fri.Verifier
	field    *core.Field
}

// Field returns the prime field this FRI instance runs over.
func (f *FRI) Field() *Field { return f.field }

// NewFRI derives a FRI schedule from p and builds a matched prover/verifier
// pair over the module's default field and p's configured hash function.
func NewFRI(p *Parameters) (*FRI, error) {
	return NewFRIWithField(p, core.DefaultPrimeField)
}

// NewFRIWithField is NewFRI parameterized over an explicit field, for
// callers that need a field other than the module default.
func NewFRIWithField(p *Parameters, field *Field) (*FRI, error) {
	schedule, err := params.NewFRISchedule(p)
	if err != nil {
		return nil, invalidParameters("%v", err)
	}
	hasher, err := core.NewHasher(field, p.HashFunction)
	if err != nil {
		return nil, invalidParameters("%v", err)
	}
	return &FRI{
		Schedule: schedule,
		Prover:   fri.NewProver(schedule, field, hasher),
		Verifier: fri.NewVerifier(schedule, field, hasher),
		field:    field,
	}, nil
}

// ProveRoundTrip runs the full commit-prove sequence for poly over a fresh
// transcript and returns the commitment and proof, ready to serialize.
func (f *FRI) ProveRoundTrip(poly *Polynomial) (*fri.Commitment, *fri.Proof, error) {
	commitment, witness, err := f.Prover.Commit(poly)
	if err != nil {
		return nil, nil, fmt.Errorf("commit: %w", err)
	}
	proof, err := f.Prover.Prove(fiatshamir.NewChannel(), witness)
	if err != nil {
		return nil, nil, fmt.Errorf("prove: %w", err)
	}
	return commitment, proof, nil
}

// VerifyProof replays the transcript against commitment and proof,
// returning true only if every round's Merkle opening, fold consistency,
// final-degree bound and proof-of-work check pass.
func (f *FRI) VerifyProof(commitment *fri.Commitment, proof *fri.Proof) bool {
	return f.Verifier.Verify(fiatshamir.NewChannel(), commitment, proof)
}

// STIR bundles the matched prover/verifier pair and the schedule they were
// derived from.
type STIR struct {
	Schedule *params.STIRSchedule
	Prover   *stir.Prover
	Verifier *stir.Verifier
	field    *core.Field
}

// Field returns the prime field this STIR instance runs over.
func (s *STIR) Field() *Field { return s.field }

// NewSTIR derives a STIR schedule from p and builds a matched prover/verifier
// pair over the module's default field and p's configured hash function.
func NewSTIR(p *Parameters) (*STIR, error) {
	return NewSTIRWithField(p, core.DefaultPrimeField)
}

// NewSTIRWithField is NewSTIR parameterized over an explicit field.
func NewSTIRWithField(p *Parameters, field *Field) (*STIR, error) {
	schedule, err := params.NewSTIRSchedule(p)
	if err != nil {
		return nil, invalidParameters("%v", err)
	}
	hasher, err := core.NewHasher(field, p.HashFunction)
	if err != nil {
		return nil, invalidParameters("%v", err)
	}
	return &STIR{
		Schedule: schedule,
		Prover:   stir.NewProver(schedule, field, hasher),
		Verifier: stir.NewVerifier(schedule, field, hasher),
		field:    field,
	}, nil
}

// ProveRoundTrip runs the full commit-prove sequence for poly over a fresh
// transcript and returns the commitment and proof, ready to serialize.
func (s *STIR) ProveRoundTrip(poly *Polynomial) (*stir.Commitment, *stir.Proof, error) {
	commitment, witness, err := s.Prover.Commit(poly)
	if err != nil {
		return nil, nil, fmt.Errorf("commit: %w", err)
	}
	proof, err := s.Prover.Prove(fiatshamir.NewChannel(), witness)
	if err != nil {
		return nil, nil, fmt.Errorf("prove: %w", err)
	}
	return commitment, proof, nil
}

// VerifyProof replays the transcript against commitment and proof.
func (s *STIR) VerifyProof(commitment *stir.Commitment, proof *stir.Proof) bool {
	return s.Verifier.Verify(fiatshamir.NewChannel(), commitment, proof)
}

// DecodeFRICommitment and DecodeFRIProof expose internal/stir/fri's
// canonical decoders, wrapping decode failures as ErrProofMalformed.
func DecodeFRICommitment(data []byte) (*fri.Commitment, error) {
	c, err := fri.DecodeCommitment(data)
	if err != nil {
		return nil, proofMalformed(err)
	}
	return c, nil
}

// DecodeFRIProof decodes a proof encoded by (*fri.Proof).MarshalBinary.
func DecodeFRIProof(data []byte, field *Field) (*fri.Proof, error) {
	p, err := fri.DecodeProof(data, field)
	if err != nil {
		return nil, proofMalformed(err)
	}
	return p, nil
}

// DecodeSTIRCommitment decodes a commitment encoded by
// (*stir.Commitment).MarshalBinary.
func DecodeSTIRCommitment(data []byte) (*stir.Commitment, error) {
	c, err := stir.DecodeCommitment(data)
	if err != nil {
		return nil, proofMalformed(err)
	}
	return c, nil
}

// DecodeSTIRProof decodes a proof encoded by (*stir.Proof).MarshalBinary.
func DecodeSTIRProof(data []byte, field *Field) (*stir.Proof, error) {
	p, err := stir.DecodeProof(data, field)
	if err != nil {
		return nil, proofMalformed(err)
	}
	return p, nil
}
