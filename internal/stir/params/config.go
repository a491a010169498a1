// Package params derives the per-round FRI and STIR schedules (round count,
// degrees, rates, repetitions, proof-of-work bits) from a target security
// level, and carries the ambient configuration (hash choice) the rest of the
// module is parameterized over.
package params

import (
	"fmt"
	"math"
)

// SoundnessType selects which conjectured or provable soundness bound the
// repetition and proof-of-work-bit formulas use.
type SoundnessType int

const (
	// Conjecture assumes the stronger, unproven list-decoding soundness bound.
	Conjecture SoundnessType = iota
	// Provable uses the weaker bound with a proof.
	Provable
)

func (s SoundnessType) String() string {
	if s == Provable {
		return "Provable"
	}
	return "Conjecture"
}

// Parameters is the base configuration common to both FRI and STIR: a target
// security level, the degree bounds the test operates between, the folding
// factor, the starting rate, and the soundness regime.
type Parameters struct {
	SecurityLevel         int
	ProtocolSecurityLevel int
	StartingDegree        int
	StoppingDegree        int
	FoldingFactor         int
	StartingRate          int
	SoundnessType         SoundnessType

	// HashFunction selects the Merkle hash: "sha3" or "blake2b".
	HashFunction string
}

// DefaultParameters returns a representative full-size configuration: 128-bit
// target security (106-bit protocol security), degrees 2^20 down to 2^6,
// folding factor 16, starting rate 1, sha3 Merkle hashing.
func DefaultParameters() *Parameters {
	return &Parameters{
		SecurityLevel:         128,
		ProtocolSecurityLevel: 106,
		StartingDegree:        1 << 20,
		StoppingDegree:        1 << 6,
		FoldingFactor:         16,
		StartingRate:          1,
		SoundnessType:         Conjecture,
		HashFunction:          "sha3",
	}
}

// Validate checks the preconditions the schedule derivation and domain
// construction both rely on.
func (p *Parameters) Validate() error {
	if p.SecurityLevel <= 0 || p.ProtocolSecurityLevel <= 0 {
		return fmt.Errorf("security levels must be positive")
	}
	if !isPowerOfTwo(p.StartingDegree) {
		return fmt.Errorf("starting degree %d must be a power of two", p.StartingDegree)
	}
	if !isPowerOfTwo(p.StoppingDegree) {
		return fmt.Errorf("stopping degree %d must be a power of two", p.StoppingDegree)
	}
	if !isPowerOfTwo(p.FoldingFactor) || p.FoldingFactor < 2 {
		return fmt.Errorf("folding factor %d must be a power of two, at least 2", p.FoldingFactor)
	}
	if p.StoppingDegree > p.StartingDegree {
		return fmt.Errorf("stopping degree %d must not exceed starting degree %d", p.StoppingDegree, p.StartingDegree)
	}
	if p.StartingRate <= 0 {
		return fmt.Errorf("starting rate must be positive")
	}
	switch p.HashFunction {
	case "sha3", "blake2b":
	default:
		return fmt.Errorf("hash function must be 'sha3' or 'blake2b', got %q", p.HashFunction)
	}
	return nil
}

// WithSecurityLevel sets the overall targeted security level.
func (p *Parameters) WithSecurityLevel(level int) *Parameters {
	p.SecurityLevel = level
	return p
}

// WithProtocolSecurityLevel sets the protocol-only security level (excludes
// the grinding budget the caller layers on top).
func (p *Parameters) WithProtocolSecurityLevel(level int) *Parameters {
	p.ProtocolSecurityLevel = level
	return p
}

// WithDegreeBounds sets the starting and stopping degrees.
func (p *Parameters) WithDegreeBounds(starting, stopping int) *Parameters {
	p.StartingDegree = starting
	p.StoppingDegree = stopping
	return p
}

// WithFoldingFactor sets the per-round folding factor.
func (p *Parameters) WithFoldingFactor(k int) *Parameters {
	p.FoldingFactor = k
	return p
}

// WithStartingRate sets the starting log-inverse-rate.
func (p *Parameters) WithStartingRate(rate int) *Parameters {
	p.StartingRate = rate
	return p
}

// WithSoundnessType sets the soundness regime.
func (p *Parameters) WithSoundnessType(t SoundnessType) *Parameters {
	p.SoundnessType = t
	return p
}

// WithHashFunction sets the Merkle hash choice. The Fiat-Shamir sponge is
// not affected by it.
func (p *Parameters) WithHashFunction(hashFunc string) *Parameters {
	p.HashFunction = hashFunc
	return p
}

// Clone returns an independent copy of p.
func (p *Parameters) Clone() *Parameters {
	clone := *p
	return &clone
}

// repetitions is the number of query repetitions needed at a given
// log-inverse-rate to hit the protocol security level.
func (p *Parameters) repetitions(logInvRate int) int {
	constant := 1
	if p.SoundnessType == Provable {
		constant = 2
	}
	return int(math.Ceil(float64(constant*p.ProtocolSecurityLevel) / float64(logInvRate)))
}

// powBits is the proof-of-work grinding depth needed to make up the gap
// between the security achieved by querying alone and the target security
// level, at a given log-inverse-rate.
func (p *Parameters) powBits(logInvRate int) int {
	repetitions := p.repetitions(logInvRate)
	scalingFactor := 1.0
	if p.SoundnessType == Provable {
		scalingFactor = 2.0
	}
	achieved := (float64(logInvRate) / scalingFactor) * float64(repetitions)
	remaining := float64(p.SecurityLevel) - achieved
	if remaining <= 0 {
		return 0
	}
	return int(math.Ceil(remaining))
}

// degreeSchedule divides StartingDegree by FoldingFactor until it reaches
// StoppingDegree or below, then drops the final entry and the final round:
// a convention both FRI and STIR preserve exactly rather than a bug to fix.
func (p *Parameters) degreeSchedule() (degrees []int, numRounds int, err error) {
	d := p.StartingDegree
	degrees = []int{d}
	for d > p.StoppingDegree {
		if d%p.FoldingFactor != 0 {
			return nil, 0, fmt.Errorf("degree %d not divisible by folding factor %d", d, p.FoldingFactor)
		}
		d /= p.FoldingFactor
		degrees = append(degrees, d)
		numRounds++
	}
	numRounds--
	if numRounds < 0 {
		return nil, 0, fmt.Errorf("starting degree %d must exceed stopping degree %d", p.StartingDegree, p.StoppingDegree)
	}
	degrees = degrees[:len(degrees)-1]
	return degrees, numRounds, nil
}

func isPowerOfTwo(n int) bool { return n > 0 && (n&(n-1)) == 0 }

func log2(n int) int {
	result := 0
	for n > 1 {
		n >>= 1
		result++
	}
	return result
}

// FRISchedule is the derived per-round plan FRI runs against: a single rate
// and repetition count held constant across rounds, plus one PoW bit count.
type FRISchedule struct {
	Parameters  *Parameters
	NumRounds   int
	Degrees     []int
	Repetitions int
	PowBits     int
}

// NewFRISchedule derives the FRI schedule from the base parameters.
func NewFRISchedule(p *Parameters) (*FRISchedule, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	degrees, numRounds, err := p.degreeSchedule()
	if err != nil {
		return nil, err
	}
	return &FRISchedule{
		Parameters:  p,
		NumRounds:   numRounds,
		Degrees:     degrees,
		Repetitions: p.repetitions(p.StartingRate),
		PowBits:     p.powBits(p.StartingRate),
	}, nil
}

// STIRSchedule is the derived per-round plan STIR runs against: rates,
// repetitions and PoW bits each grow one entry per round (length
// NumRounds+1, the final round included), plus a fixed OOD sample count.
type STIRSchedule struct {
	Parameters  *Parameters
	NumRounds   int
	Degrees     []int
	Rates       []int
	Repetitions []int
	PowBits     []int
	OODSamples  int
}

// NewSTIRSchedule derives the STIR schedule from the base parameters.
func NewSTIRSchedule(p *Parameters) (*STIRSchedule, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	degrees, numRounds, err := p.degreeSchedule()
	if err != nil {
		return nil, err
	}

	logFolding := log2(p.FoldingFactor)
	rates := make([]int, numRounds+1)
	rates[0] = p.StartingRate
	for i := 1; i <= numRounds; i++ {
		rates[i] = p.StartingRate + i*(logFolding-1)
	}

	powBits := make([]int, numRounds+1)
	repetitions := make([]int, numRounds+1)
	for i, rate := range rates {
		powBits[i] = p.powBits(rate)
		repetitions[i] = p.repetitions(rate)
	}
	// The final round's repetition count is not capped: only intermediate
	// rounds need reps bounded by how many cosets that round's degree has.
	for i := 0; i < numRounds; i++ {
		if cap := degrees[i] / p.FoldingFactor; repetitions[i] > cap {
			repetitions[i] = cap
		}
	}

	return &STIRSchedule{
		Parameters:  p,
		NumRounds:   numRounds,
		Degrees:     degrees,
		Rates:       rates,
		Repetitions: repetitions,
		PowBits:     powBits,
		OODSamples:  2,
	}, nil
}

// String renders a human-readable summary, matching the driver's startup log.
func (s *FRISchedule) String() string {
	return fmt.Sprintf(
		"Targeting %d-bits of security - protocol running at %d-bits - soundness: %s\n"+
			"Starting degree: 2^%d, stopping_degree: 2^%d\n"+
			"Starting rate: 2^-%d, folding_factor: %d\n"+
			"Number of rounds: %d\nPoW bits: %d\nRepetitions: %d\n",
		s.Parameters.SecurityLevel, s.Parameters.ProtocolSecurityLevel, s.Parameters.SoundnessType,
		log2(s.Parameters.StartingDegree), log2(s.Parameters.StoppingDegree),
		s.Parameters.StartingRate, s.Parameters.FoldingFactor,
		s.NumRounds, s.PowBits, s.Repetitions,
	)
}

// String renders a human-readable summary, matching the driver's startup log.
func (s *STIRSchedule) String() string {
	return fmt.Sprintf(
		"Targeting %d-bits of security - protocol running at %d-bits - soundness: %s\n"+
			"Starting degree: 2^%d, stopping_degree: 2^%d\n"+
			"Starting rate: 2^-%d, folding_factor: %d\n"+
			"Number of rounds: %d. OOD samples: %d\nRates: %v\nPoW bits: %v\nRepetitions: %v\n",
		s.Parameters.SecurityLevel, s.Parameters.ProtocolSecurityLevel, s.Parameters.SoundnessType,
		log2(s.Parameters.StartingDegree), log2(s.Parameters.StoppingDegree),
		s.Parameters.StartingRate, s.Parameters.FoldingFactor,
		s.NumRounds, s.OODSamples, s.Rates, s.PowBits, s.Repetitions,
	)
}
