package fiatshamir

import (
	"math/big"
	"testing"

	"github.com/stirproof/stir/internal/stir/core"
)

func TestNewChannel(t *testing.T) {
	ch := NewChannel()
	if ch == nil {
		t.Fatal("NewChannel returned nil")
	}
}

func TestChannelAbsorbChangesState(t *testing.T) {
	ch := NewChannel()
	before := ch.SqueezeBytes(32)

	ch2 := NewChannel()
	ch2.Absorb([]byte("test data"))
	after := ch2.SqueezeBytes(32)

	if string(before) == string(after) {
		t.Error("absorbing data should change squeezed output")
	}
}

func TestChannelSqueezeBytesLength(t *testing.T) {
	ch := NewChannel()
	for _, n := range []int{0, 1, 4, 8, 32, 100} {
		out := ch.SqueezeBytes(n)
		if len(out) != n {
			t.Errorf("SqueezeBytes(%d) returned %d bytes", n, len(out))
		}
	}
}

func TestChannelSqueezeBitsMSBFirst(t *testing.T) {
	ch := NewChannel()
	ch.Absorb([]byte("seed"))

	ch1 := ch.Clone()
	bits := ch1.SqueezeBits(16)
	if len(bits) != 16 {
		t.Fatalf("expected 16 bits, got %d", len(bits))
	}

	ch2 := ch.Clone()
	raw := ch2.SqueezeBytes(2)
	for i := 0; i < 8; i++ {
		expected := (raw[0]>>uint(7-i))&1 == 1
		if bits[i] != expected {
			t.Errorf("bit %d: expected MSB-first bit %v, got %v", i, expected, bits[i])
		}
	}
}

func TestChannelSqueezeFieldElement(t *testing.T) {
	field, err := core.NewField(big.NewInt(101))
	if err != nil {
		t.Fatalf("failed to create field: %v", err)
	}

	ch := NewChannel()
	elem := ch.SqueezeFieldElement(field)
	if elem == nil {
		t.Fatal("SqueezeFieldElement returned nil")
	}
	if elem.Big().Cmp(big.NewInt(0)) < 0 || elem.Big().Cmp(big.NewInt(101)) >= 0 {
		t.Errorf("field element %v out of bounds", elem.Big())
	}
}

func TestChannelSqueezeFieldElements(t *testing.T) {
	field, err := core.NewField(big.NewInt(101))
	if err != nil {
		t.Fatalf("failed to create field: %v", err)
	}

	ch := NewChannel()
	elements := ch.SqueezeFieldElements(field, 5)
	if len(elements) != 5 {
		t.Fatalf("expected 5 elements, got %d", len(elements))
	}
}

func TestChannelSqueezeIndexRequiresPowerOfTwo(t *testing.T) {
	ch := NewChannel()
	if _, err := ch.SqueezeIndex(3); err == nil {
		t.Error("expected error for non-power-of-two range")
	}
	idx, err := ch.SqueezeIndex(64)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idx < 0 || idx >= 64 {
		t.Errorf("index %d out of range [0, 64)", idx)
	}
}

func TestChannelDedupIndices(t *testing.T) {
	ch := NewChannel()
	indices, err := ch.DedupIndices(20, 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(indices) > 8 {
		t.Errorf("expected at most 8 distinct indices, got %d", len(indices))
	}
	for i := 1; i < len(indices); i++ {
		if indices[i] <= indices[i-1] {
			t.Errorf("expected strictly increasing sorted indices, got %v", indices)
		}
	}
}

func TestChannelDeterminism(t *testing.T) {
	ch1 := NewChannel()
	ch2 := NewChannel()

	data := []byte("test data")
	ch1.Absorb(data)
	ch2.Absorb(data)

	out1 := ch1.SqueezeBytes(32)
	out2 := ch2.SqueezeBytes(32)
	if string(out1) != string(out2) {
		t.Error("channels with identical inputs should squeeze identical output")
	}
}

func TestChannelCloneIndependence(t *testing.T) {
	ch := NewChannel()
	ch.Absorb([]byte("shared prefix"))

	clone := ch.Clone()
	clone.Absorb([]byte("only in clone"))

	cloneOut := clone.SqueezeBytes(16)
	originalOut := ch.SqueezeBytes(16)
	if string(cloneOut) == string(originalOut) {
		t.Error("mutating a clone must not affect the original channel")
	}
}

func TestChannelSqueezeAdvancesState(t *testing.T) {
	ch := NewChannel()
	ch.Absorb([]byte("seed"))

	first := ch.SqueezeBytes(16)
	second := ch.SqueezeBytes(16)
	if string(first) == string(second) {
		t.Error("successive squeezes must not repeat output")
	}
}

func TestGrindAndVerify(t *testing.T) {
	ch := NewChannel()
	ch.Absorb([]byte("round root"))

	nonce, err := ch.Grind(8)
	if err != nil {
		t.Fatalf("grind failed: %v", err)
	}
	if nonce == nil {
		t.Fatal("expected a nonce for positive pow bits")
	}

	verifyCh := NewChannel()
	verifyCh.Absorb([]byte("round root"))
	if !verifyCh.GrindVerify(8, nonce) {
		t.Error("GrindVerify should accept the nonce the prover found")
	}
}

func TestGrindVerifyRejectsWrongNonce(t *testing.T) {
	ch := NewChannel()
	ch.Absorb([]byte("round root"))
	nonce, err := ch.Grind(8)
	if err != nil {
		t.Fatalf("grind failed: %v", err)
	}

	wrong := *nonce + 1
	verifyCh := NewChannel()
	verifyCh.Absorb([]byte("round root"))
	if verifyCh.GrindVerify(8, &wrong) {
		t.Error("GrindVerify should reject an unrelated nonce")
	}
}

func TestGrindZeroBitsEmitsNoNonce(t *testing.T) {
	ch := NewChannel()
	nonce, err := ch.Grind(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if nonce != nil {
		t.Error("zero pow bits should not emit a nonce")
	}
}

func TestGrindVerifyRejectsMissingNonceWhenRequired(t *testing.T) {
	ch := NewChannel()
	if ch.GrindVerify(8, nil) {
		t.Error("GrindVerify must reject a nil nonce when bits > 0")
	}
}

func TestGrindRejectsExcessiveBits(t *testing.T) {
	ch := NewChannel()
	if _, err := ch.Grind(64); err == nil {
		t.Error("expected an error for proof-of-work bits above the maximum")
	}
}

func TestAbsorbFieldElementRoundTrip(t *testing.T) {
	field, err := core.NewField(big.NewInt(101))
	if err != nil {
		t.Fatalf("failed to create field: %v", err)
	}
	elem := field.NewElementFromInt64(42)

	ch1 := NewChannel()
	ch1.AbsorbFieldElement(elem)

	ch2 := NewChannel()
	ch2.Absorb(elem.FixedLEBytes())

	if string(ch1.SqueezeBytes(16)) != string(ch2.SqueezeBytes(16)) {
		t.Error("AbsorbFieldElement should absorb exactly the element's fixed-width bytes")
	}
}

func BenchmarkChannelAbsorb(b *testing.B) {
	ch := NewChannel()
	data := []byte("benchmark data")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ch.Absorb(data)
	}
}

func BenchmarkChannelSqueezeBytes(b *testing.B) {
	ch := NewChannel()
	ch.Absorb([]byte("seed"))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ch.SqueezeBytes(32)
	}
}

func BenchmarkGrind8Bits(b *testing.B) {
	for i := 0; i < b.N; i++ {
		ch := NewChannel()
		ch.Absorb([]byte("round root"))
		ch.Grind(8)
	}
}
