package stir

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
		return nil, fmt.Errorf("decode stir commitment: %w", err)
	}
	return &Commitment{Root: root}, nil
}

func writeRoundProof(buf *bytes.Buffer, rp *RoundProof) error {
	if err := serialize.WriteBytes(buf, rp.GRoot); err != nil {
		return err
	}
	if err := serialize.WriteFieldElements(buf, rp.Betas); err != nil {
		return err
	}
	if err := serialize.WriteLeafGroups(buf, rp.QueryAnswers); err != nil {
		return err
	}
	if err := serialize.WriteMultiPath(buf, rp.MultiPath); err != nil {
		return err
	}
	if err := serialize.WritePolynomial(buf, rp.AnsPolynomial); err != nil {
		return err
	}
	if err := serialize.WritePolynomial(buf, rp.ShakePolynomial); err != nil {
		return err
	}
	return serialize.WriteOptionalNonce(buf, rp.PowNonce)
}

func readRoundProof(r *bytes.Reader, field *core.Field) (*RoundProof, error) {
	gRoot, err := serialize.ReadBytes(r)
	if err != nil {
		return nil, err
	}
	betas, err := serialize.ReadFieldElements(r, field)
	if err != nil {
		return nil, err
	}
	answers, err := serialize.ReadLeafGroups(r, field)
	if err != nil {
		return nil, err
	}
	mp, err := serialize.ReadMultiPath(r)
	if err != nil {
		return nil, err
	}
	ans, err := serialize.ReadPolynomial(r, field)
	if err != nil {
		return nil, err
	}
	shake, err := serialize.ReadPolynomial(r, field)
	if err != nil {
		return nil, err
	}
	nonce, err := serialize.ReadOptionalNonce(r)
	if err != nil {
		return nil, err
	}
	return &RoundProof{
		GRoot:           gRoot,
		Betas:           betas,
		QueryAnswers:    answers,
		MultiPath:       mp,
		AnsPolynomial:   ans,
		ShakePolynomial: shake,
		PowNonce:        nonce,
	}, nil
}

// MarshalBinary encodes the full STIR proof: one RoundProof per round, the
// final low-degree polynomial, the final-round query answers and multipath,
// and the final round's proof-of-work nonce.
func (p *Proof) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
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
	if err := serialize.WriteLeafGroups(&buf, p.FinalQueryAnswers); err != nil {
		return nil, err
	}
	if err := serialize.WriteMultiPath(&buf, p.FinalMultiPath); err != nil {
		return nil, err
	}
	if err := serialize.WriteOptionalNonce(&buf, p.FinalPowNonce); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeProof decodes a Proof written by MarshalBinary. field reconstructs
// field elements from their canonical fixed-width form; a truncated or
// malformed buffer is a proof-malformed error, never a panic.
func DecodeProof(data []byte, field *core.Field) (*Proof, error) {
	r := bytes.NewReader(data)

	numRounds, err := serialize.ReadUint32(r)
	if err != nil {
		return nil, fmt.Errorf("decode stir proof: %w", err)
	}
	roundProofs := make([]RoundProof, numRounds)
	for i := range roundProofs {
		rp, err := readRoundProof(r, field)
		if err != nil {
			return nil, fmt.Errorf("decode stir proof round %d: %w", i, err)
		}
		roundProofs[i] = *rp
	}

	finalPoly, err := serialize.ReadPolynomial(r, field)
	if err != nil {
		return nil, fmt.Errorf("decode stir proof final polynomial: %w", err)
	}
	finalAnswers, err := serialize.ReadLeafGroups(r, field)
	if err != nil {
		return nil, fmt.Errorf("decode stir proof final answers: %w", err)
	}
	finalMultiPath, err := serialize.ReadMultiPath(r)
	if err != nil {
		return nil, fmt.Errorf("decode stir proof final multipath: %w", err)
	}
	finalNonce, err := serialize.ReadOptionalNonce(r)
	if err != nil {
		return nil, fmt.Errorf("decode stir proof final pow nonce: %w", err)
	}

	return &Proof{
		RoundProofs:       roundProofs,
		FinalPolynomial:   finalPoly,
		FinalQueryAnswers: finalAnswers,
		FinalMultiPath:    finalMultiPath,
		FinalPowNonce:     finalNonce,
	}, nil
}
