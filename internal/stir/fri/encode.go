package fri

import (
	"bytes"
	"fmt"

	"github.com/stirproof/stir/internal/stir/core"
	"github.com/stirproof/stir/internal/stir/serialize"
)

// MarshalBinary encodes the commitment root in canonical form.
func (c *Commitment) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	if err := serialize.WriteBytes(&buf, c.Root); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeCommitment decodes a Commitment written by MarshalBinary.
func DecodeCommitment(data []byte) (*Commitment, error) {
	root, err := serialize.ReadBytes(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode fri commitment: %w", err)
	}
	return &Commitment{Root: root}, nil
}

func writeRoundProof(buf *bytes.Buffer, rp *RoundProof) error {
	if err := serialize.WriteLeafGroups(buf, rp.QueryAnswers); err != nil {
		return err
	}
	return serialize.WriteMultiPath(buf, rp.MultiPath)
}

func readRoundProof(r *bytes.Reader, field *core.Field) (*RoundProof, error) {
	answers, err := serialize.ReadLeafGroups(r, field)
	if err != nil {
		return nil, err
	}
	mp, err := serialize.ReadMultiPath(r)
	if err != nil {
		return nil, err
	}
	return &RoundProof{QueryAnswers: answers, MultiPath: mp}, nil
}

// MarshalBinary encodes the full proof: the per-round Merkle roots, one
// RoundProof per round (including the initial commitment's own round), the
// final low-degree polynomial, and the proof-of-work nonce.
func (p *Proof) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	if err := serialize.WriteUint32(&buf, uint32(len(p.Commitments))); err != nil {
		return nil, err
	}
	for _, root := range p.Commitments {
		if err := serialize.WriteBytes(&buf, root); err != nil {
			return nil, err
		}
	}
	if err := serialize.WriteUint32(&buf, uint32(len(p.RoundProofs))); err != nil {
		return nil, err
	}
	for i := range p.RoundProofs {
		if err := writeRoundProof(&buf, &p.RoundProofs[i]); err != nil {
			return nil, err
		}
	}
	if err := serialize.WritePolynomial(&buf, p.FinalPolynomial); err != nil {
		return nil, err
	}
	if err := serialize.WriteOptionalNonce(&buf, p.PowNonce); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeProof decodes a Proof written by MarshalBinary. field is required
// to reconstruct field elements from their canonical fixed-width form; a
// truncated or malformed buffer is a proof-malformed error, never a panic.
func DecodeProof(data []byte, field *core.Field) (*Proof, error) {
	r := bytes.NewReader(data)

	numCommitments, err := serialize.ReadUint32(r)
	if err != nil {
		return nil, fmt.Errorf("decode fri proof: %w", err)
	}
	commitments := make([][]byte, numCommitments)
	for i := range commitments {
		commitments[i], err = serialize.ReadBytes(r)
		if err != nil {
			return nil, fmt.Errorf("decode fri proof commitment %d: %w", i, err)
		}
	}

	numRounds, err := serialize.ReadUint32(r)
	if err != nil {
		return nil, fmt.Errorf("decode fri proof: %w", err)
	}
	roundProofs := make([]RoundProof, numRounds)
	for i := range roundProofs {
		rp, err := readRoundProof(r, field)
		if err != nil {
			return nil, fmt.Errorf("decode fri proof round %d: %w", i, err)
		}
		roundProofs[i] = *rp
	}

	finalPoly, err := serialize.ReadPolynomial(r, field)
	if err != nil {
		return nil, fmt.Errorf("decode fri proof final polynomial: %w", err)
	}
	nonce, err := serialize.ReadOptionalNonce(r)
	if err != nil {
		return nil, fmt.Errorf("decode fri proof pow nonce: %w", err)
	}

	return &Proof{
		Commitments:     commitments,
		RoundProofs:     roundProofs,
		FinalPolynomial: finalPoly,
		PowNonce:        nonce,
	}, nil
}
