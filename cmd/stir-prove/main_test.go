package main

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"
)

func smallArgs(extra ...string) []string {
	args := []string{
		"-security-level", "12",
		"-protocol-security-level", "12",
		"-initial-degree", "8",
		"-final-degree", "2",
		"-rate", "2",
		"-folding-factor", "4",
	}
	return append(args, extra...)
}

func TestRunRejectsNonPowerOfTwoFoldingFactor(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"-folding-factor", "3"}, &stdout, &stderr)
	if code != 2 {
		t.Fatalf("exit code = %d, want 2", code)
	}
}

func TestRunRejectsUnknownProtocol(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(smallArgs("-protocol", "basefold"), &stdout, &stderr)
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
}

func TestRunRejectsUnparsableFlags(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"-rate", "two"}, &stdout, &stderr)
	if code != 2 {
		t.Fatalf("exit code = %d, want 2", code)
	}
}

// readEnvelopeHeader pulls apart the tag-plus-two-blobs framing run writes,
// enough to check the output is well-formed without re-verifying the proof
// (pkg/stir's tests own that).
func readEnvelopeHeader(t *testing.T, r io.Reader) (byte, []byte, []byte) {
	t.Helper()
	tag := make([]byte, 1)
	if _, err := io.ReadFull(r, tag); err != nil {
		t.Fatalf("read protocol tag: %v", err)
	}
	readBlob := func() []byte {
		var lenBuf [4]byte
		if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
			t.Fatalf("read length prefix: %v", err)
		}
		data := make([]byte, binary.LittleEndian.Uint32(lenBuf[:]))
		if _, err := io.ReadFull(r, data); err != nil {
			t.Fatalf("read blob: %v", err)
		}
		return data
	}
	commitment := readBlob()
	proof := readBlob()
	return tag[0], commitment, proof
}

func TestRunEmitsFRIEnvelope(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(smallArgs("-protocol", "fri"), &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code = %d, want 0 (stderr: %s)", code, stderr.String())
	}
	tag, commitment, proof := readEnvelopeHeader(t, &stdout)
	if tag != 0 {
		t.Errorf("protocol tag = %d, want 0 for fri", tag)
	}
	if len(commitment) == 0 || len(proof) == 0 {
		t.Error("envelope blobs must be non-empty")
	}
}

func TestRunEmitsSTIREnvelope(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(smallArgs("-protocol", "stir"), &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code = %d, want 0 (stderr: %s)", code, stderr.String())
	}
	tag, commitment, proof := readEnvelopeHeader(t, &stdout)
	if tag != 1 {
		t.Errorf("protocol tag = %d, want 1 for stir", tag)
	}
	if len(commitment) == 0 || len(proof) == 0 {
		t.Error("envelope blobs must be non-empty")
	}
}
