// Package serialize provides the canonical, deterministic binary encodings
// for the values a Fiat-Shamir transcript absorbs and a proof carries: field
// elements, Merkle roots and multi-open proofs, dense polynomial
// coefficient vectors, and optional proof-of-work nonces. Every encoder
// writes explicit length prefixes rather than relying on reflection, so the
// byte layout stays fixed across releases.
package serialize

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/stirproof/stir/internal/stir/core"
)

// WriteBytes writes a uint32 length prefix followed by data.
func WriteBytes(w io.Writer, data []byte) error {
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(data)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err := w.Write(data)
	return err
}

// ReadBytes reads a length-prefixed byte slice written by WriteBytes.
func ReadBytes(r io.Reader) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, fmt.Errorf("read length prefix: %w", err)
	}
	n := binary.LittleEndian.Uint32(lenBuf[:])
	data := make([]byte, n)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, fmt.Errorf("read %d bytes: %w", n, err)
	}
	return data, nil
}

// WriteUint32 writes a fixed-width little-endian uint32.
func WriteUint32(w io.Writer, v uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

// ReadUint32 reads a fixed-width little-endian uint32.
func ReadUint32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

// WriteFieldElement writes a field element in its canonical fixed-width
// little-endian form, length-prefixed so the reader does not need to know
// the field's byte length in advance.
func WriteFieldElement(w io.Writer, fe *core.FieldElement) error {
	return WriteBytes(w, fe.FixedLEBytes())
}

// ReadFieldElement reads a field element written by WriteFieldElement,
// reducing it modulo field's modulus.
func ReadFieldElement(r io.Reader, field *core.Field) (*core.FieldElement, error) {
	data, err := ReadBytes(r)
	if err != nil {
		return nil, err
	}
	return field.FieldElementFromLEBytes(data), nil
}

// WriteFieldElements writes a count-prefixed sequence of field elements.
func WriteFieldElements(w io.Writer, elements []*core.FieldElement) error {
	if err := WriteUint32(w, uint32(len(elements))); err != nil {
		return err
	}
	for _, fe := range elements {
		if err := WriteFieldElement(w, fe); err != nil {
			return err
		}
	}
	return nil
}

// ReadFieldElements reads a sequence written by WriteFieldElements.
func ReadFieldElements(r io.Reader, field *core.Field) ([]*core.FieldElement, error) {
	n, err := ReadUint32(r)
	if err != nil {
		return nil, err
	}
	out := make([]*core.FieldElement, n)
	for i := range out {
		out[i], err = ReadFieldElement(r, field)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// WritePolynomial writes a dense polynomial as its count-prefixed
// coefficient vector, constant term first.
func WritePolynomial(w io.Writer, poly *core.Polynomial) error {
	return WriteFieldElements(w, poly.Coefficients())
}

// ReadPolynomial reads a polynomial written by WritePolynomial.
func ReadPolynomial(r io.Reader, field *core.Field) (*core.Polynomial, error) {
	coeffs, err := ReadFieldElements(r, field)
	if err != nil {
		return nil, err
	}
	return core.NewPolynomial(coeffs)
}

// WriteLeafGroup writes one Merkle leaf (a folding-factor-sized vector of
// field elements) as a count-prefixed sequence.
func WriteLeafGroup(w io.Writer, leaf core.LeafGroup) error {
	return WriteFieldElements(w, leaf)
}

// ReadLeafGroup reads a leaf group written by WriteLeafGroup.
func ReadLeafGroup(r io.Reader, field *core.Field) (core.LeafGroup, error) {
	elems, err := ReadFieldElements(r, field)
	if err != nil {
		return nil, err
	}
	return core.LeafGroup(elems), nil
}

// WriteLeafGroups writes a count-prefixed sequence of leaf groups.
func WriteLeafGroups(w io.Writer, groups [][]*core.FieldElement) error {
	if err := WriteUint32(w, uint32(len(groups))); err != nil {
		return err
	}
	for _, g := range groups {
		if err := WriteLeafGroup(w, g); err != nil {
			return err
		}
	}
	return nil
}

// ReadLeafGroups reads a sequence written by WriteLeafGroups.
func ReadLeafGroups(r io.Reader, field *core.Field) ([][]*core.FieldElement, error) {
	n, err := ReadUint32(r)
	if err != nil {
		return nil, err
	}
	out := make([][]*core.FieldElement, n)
	for i := range out {
		g, err := ReadLeafGroup(r, field)
		if err != nil {
			return nil, err
		}
		out[i] = g
	}
	return out, nil
}

// WriteMultiPath writes a Merkle multi-open proof: a count-prefixed list of
// (level, index, digest) authentication nodes.
func WriteMultiPath(w io.Writer, mp *core.MultiPath) error {
	if err := WriteUint32(w, uint32(len(mp.Nodes))); err != nil {
		return err
	}
	for _, n := range mp.Nodes {
		if err := WriteUint32(w, uint32(n.Level)); err != nil {
			return err
		}
		if err := WriteUint32(w, uint32(n.Index)); err != nil {
			return err
		}
		if err := WriteBytes(w, n.Hash); err != nil {
			return err
		}
	}
	return nil
}

// ReadMultiPath reads a multi-open proof written by WriteMultiPath.
func ReadMultiPath(r io.Reader) (*core.MultiPath, error) {
	count, err := ReadUint32(r)
	if err != nil {
		return nil, err
	}
	nodes := make([]core.AuthNode, count)
	for i := range nodes {
		level, err := ReadUint32(r)
		if err != nil {
			return nil, err
		}
		index, err := ReadUint32(r)
		if err != nil {
			return nil, err
		}
		hash, err := ReadBytes(r)
		if err != nil {
			return nil, err
		}
		nodes[i] = core.AuthNode{Level: int(level), Index: int(index), Hash: hash}
	}
	return &core.MultiPath{Nodes: nodes}, nil
}

// WriteOptionalNonce writes an Option<usize>-shaped proof-of-work nonce: a
// presence byte followed by the 8-byte little-endian value when present.
func WriteOptionalNonce(w io.Writer, nonce *uint64) error {
	if nonce == nil {
		_, err := w.Write([]byte{0})
		return err
	}
	if _, err := w.Write([]byte{1}); err != nil {
		return err
	}
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], *nonce)
	_, err := w.Write(buf[:])
	return err
}

// ReadOptionalNonce reads a nonce written by WriteOptionalNonce.
func ReadOptionalNonce(r io.Reader) (*uint64, error) {
	var present [1]byte
	if _, err := io.ReadFull(r, present[:]); err != nil {
		return nil, err
	}
	if present[0] == 0 {
		return nil, nil
	}
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, err
	}
	v := binary.LittleEndian.Uint64(buf[:])
	return &v, nil
}
