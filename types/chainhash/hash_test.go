package chainhash

import "testing"

func TestDoubleHashConsistency(t *testing.T) {
	data := []byte("bitmark")
	h1 := DoubleHashH(data)
	h2 := DoubleHashH(data)
	if h1 != h2 {
		t.Fatalf("DoubleHashH is not deterministic: %v != %v", h1, h2)
	}

	b := DoubleHashB(data)
	if Hash(h1) != *(*Hash)(b[:32]) {
		t.Fatalf("DoubleHashB and DoubleHashH disagree")
	}
}

func TestSetBytesWrongLength(t *testing.T) {
	var h Hash
	if err := h.SetBytes([]byte{1, 2, 3}); err == nil {
		t.Fatalf("expected error for wrong length")
	}
}

func TestIsEqual(t *testing.T) {
	a := HashH([]byte("a"))
	b := HashH([]byte("a"))
	c := HashH([]byte("b"))
	if !a.IsEqual(&b) {
		t.Fatalf("expected equal hashes")
	}
	if a.IsEqual(&c) {
		t.Fatalf("expected unequal hashes")
	}
}
