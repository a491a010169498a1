// Command stir-verify checks a serialized FRI or STIR proof produced by
// stir-prove against a commitment, using the same security parameters.
package main

import (
	"bufio"
	"encoding/binary"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/stirproof/stir/internal/stir/fiatshamir"
	"github.com/stirproof/stir/pkg/stir"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stderr))
}

func run(args []string, stdin io.Reader, stderr io.Writer) int {
	log := zerolog.New(stderr).With().Timestamp().Logger()

	fs := flag.NewFlagSet("stir-verify", flag.ContinueOnError)
	securityLevel := fs.Int("security-level", 128, "target security level in bits")
	protocolSecurityLevel := fs.Int("protocol-security-level", 106, "protocol-only security level in bits")
	initialDegree := fs.Int("initial-degree", 20, "log2 of the starting degree")
	finalDegree := fs.Int("final-degree", 6, "log2 of the stopping degree")
	rate := fs.Int("rate", 1, "log2 of the starting inverse rate")
	foldingFactor := fs.Int("folding-factor", 16, "folding factor, a power of two")
	hashFunc := fs.String("hash", "sha3", "Merkle hash: sha3 or blake2b")
	in := fs.String("in", "", "input file holding the serialized proof (default stdin)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if !fiatshamir.IsPowerOfTwo(*foldingFactor) {
		log.Error().Int("folding_factor", *foldingFactor).Msg("folding factor must be a power of two")
		return 2
	}

	params := stir.DefaultParameters().
		WithSecurityLevel(*securityLevel).
		WithProtocolSecurityLevel(*protocolSecurityLevel).
		WithDegreeBounds(1<<uint(*initialDegree), 1<<uint(*finalDegree)).
		WithFoldingFactor(*foldingFactor).
		WithStartingRate(*rate).
		WithHashFunction(*hashFunc)

	r := stdin
	if *in != "" {
		file, err := os.Open(*in)
		if err != nil {
			log.Error().Err(err).Msg("open input file")
			return 1
		}
		defer file.Close()
		r = file
	}

	protocolTag, commitmentBytes, proofBytes, err := readEnvelope(r)
	if err != nil {
		log.Error().Err(err).Msg("read proof envelope")
		return 1
	}

	start := time.Now()
	accepted, err := verify(params, protocolTag, commitmentBytes, proofBytes, log)
	if err != nil {
		log.Error().Err(err).Msg("verification failed to run")
		return 1
	}

	log.Info().
		Bool("accepted", accepted).
		Dur("elapsed", time.Since(start)).
		Int64("hash_invocations", stir.HashCounterGet()).
		Msg("verification complete")

	if !accepted {
		return 1
	}
	return 0
}

func verify(params *stir.Parameters, protocolTag byte, commitmentBytes, proofBytes []byte, log zerolog.Logger) (bool, error) {
	switch protocolTag {
	case 0:
		f, err := stir.NewFRI(params)
		if err != nil {
			return false, err
		}
		log.Info().Str("protocol", "fri").Str("schedule", f.Schedule.String()).Msg("derived schedule")
		commitment, err := stir.DecodeFRICommitment(commitmentBytes)
		if err != nil {
			return false, err
		}
		proof, err := stir.DecodeFRIProof(proofBytes, f.Field())
		if err != nil {
			return false, err
		}
		return f.VerifyProof(commitment, proof), nil
	case 1:
		s, err := stir.NewSTIR(params)
		if err != nil {
			return false, err
		}
		log.Info().Str("protocol", "stir").Str("schedule", s.Schedule.String()).Msg("derived schedule")
		commitment, err := stir.DecodeSTIRCommitment(commitmentBytes)
		if err != nil {
			return false, err
		}
		proof, err := stir.DecodeSTIRProof(proofBytes, s.Field())
		if err != nil {
			return false, err
		}
		return s.VerifyProof(commitment, proof), nil
	default:
		return false, fmt.Errorf("unknown protocol tag %d in proof envelope", protocolTag)
	}
}

// readEnvelope reverses the framing stir-prove writes: a one-byte protocol
// tag followed by two length-prefixed binary blobs.
func readEnvelope(r io.Reader) (protocolTag byte, commitment, proof []byte, err error) {
	buffered := bufio.NewReader(r)

	tagBuf := make([]byte, 1)
	if _, err := io.ReadFull(buffered, tagBuf); err != nil {
		return 0, nil, nil, fmt.Errorf("read protocol tag: %w", err)
	}

	commitment, err = readLengthPrefixed(buffered)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("read commitment: %w", err)
	}
	proof, err = readLengthPrefixed(buffered)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("read proof: %w", err)
	}
	return tagBuf[0], commitment, proof, nil
}

func readLengthPrefixed(r io.Reader) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	n := binary.LittleEndian.Uint32(lenBuf[:])
	data := make([]byte, n)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, err
	}
	return data, nil
}
