// Command stir-prove commits to a polynomial and emits a serialized FRI or
// STIR proof for the requested security parameters.
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
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout io.Writer, stderr io.Writer) int {
	log := zerolog.New(stderr).With().Timestamp().Logger()

	fs := flag.NewFlagSet("stir-prove", flag.ContinueOnError)
	protocol := fs.String("protocol", "stir", "protocol to run: fri or stir")
	securityLevel := fs.Int("security-level", 128, "target security level in bits")
	protocolSecurityLevel := fs.Int("protocol-security-level", 106, "protocol-only security level in bits")
	initialDegree := fs.Int("initial-degree", 20, "log2 of the starting degree")
	finalDegree := fs.Int("final-degree", 6, "log2 of the stopping degree")
	rate := fs.Int("rate", 1, "log2 of the starting inverse rate")
	foldingFactor := fs.Int("folding-factor", 16, "folding factor, a power of two")
	hashFunc := fs.String("hash", "sha3", "Merkle hash: sha3 or blake2b")
	seed := fs.Int64("seed", 1, "seed recorded in the startup log (informational only; the test polynomial is sampled with crypto/rand)")
	out := fs.String("out", "", "output file for the serialized proof (default stdout)")
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

	log.Info().
		Str("protocol", *protocol).
		Int("security_level", *securityLevel).
		Int("protocol_security_level", *protocolSecurityLevel).
		Int("initial_degree_log2", *initialDegree).
		Int("final_degree_log2", *finalDegree).
		Int("rate_log2", *rate).
		Int("folding_factor", *foldingFactor).
		Int("folding_factor_log2", fiatshamir.Log2(*foldingFactor)).
		Str("hash", *hashFunc).
		Int64("seed", *seed).
		Msg("starting prover")

	start := time.Now()
	var err error
	switch *protocol {
	case "fri":
		err = proveFRI(params, log, stdout, *out)
	case "stir":
		err = proveSTIR(params, log, stdout, *out)
	default:
		err = fmt.Errorf("unknown protocol %q, must be fri or stir", *protocol)
	}
	if err != nil {
		log.Error().Err(err).Msg("proof generation failed")
		return 1
	}
	log.Info().Dur("elapsed", time.Since(start)).Int64("hash_invocations", stir.HashCounterGet()).Msg("proof generated")
	return 0
}

func proveFRI(params *stir.Parameters, log zerolog.Logger, stdout io.Writer, outPath string) error {
	f, err := stir.NewFRI(params)
	if err != nil {
		return err
	}
	log.Info().Str("schedule", f.Schedule.String()).Msg("derived schedule")

	poly, err := stir.RandomPolynomial(f.Field(), params.StartingDegree-1)
	if err != nil {
		return err
	}
	commitment, proof, err := f.ProveRoundTrip(poly)
	if err != nil {
		return err
	}
	return writeEnvelope(stdout, outPath, 0, commitment, proof)
}

func proveSTIR(params *stir.Parameters, log zerolog.Logger, stdout io.Writer, outPath string) error {
	s, err := stir.NewSTIR(params)
	if err != nil {
		return err
	}
	log.Info().Str("schedule", s.Schedule.String()).Msg("derived schedule")

	poly, err := stir.RandomPolynomial(s.Field(), params.StartingDegree-1)
	if err != nil {
		return err
	}
	commitment, proof, err := s.ProveRoundTrip(poly)
	if err != nil {
		return err
	}
	return writeEnvelope(stdout, outPath, 1, commitment, proof)
}

// writeEnvelope wraps a commitment+proof pair in the tiny framing
// stir-verify expects: a one-byte protocol tag (0=fri, 1=stir) followed by
// two length-prefixed binary blobs.
type binaryMarshaler interface {
	MarshalBinary() ([]byte, error)
}

func writeEnvelope(stdout io.Writer, outPath string, protocolTag byte, commitment, proof binaryMarshaler) error {
	w := stdout
	if outPath != "" {
		file, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer file.Close()
		w = file
	}
	buffered := bufio.NewWriter(w)
	defer buffered.Flush()

	if _, err := buffered.Write([]byte{protocolTag}); err != nil {
		return err
	}
	commitmentBytes, err := commitment.MarshalBinary()
	if err != nil {
		return fmt.Errorf("marshal commitment: %w", err)
	}
	if err := writeLengthPrefixed(buffered, commitmentBytes); err != nil {
		return err
	}
	proofBytes, err := proof.MarshalBinary()
	if err != nil {
		return fmt.Errorf("marshal proof: %w", err)
	}
	return writeLengthPrefixed(buffered, proofBytes)
}

func writeLengthPrefixed(w io.Writer, data []byte) error {
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(data)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err := w.Write(data)
	return err
}
