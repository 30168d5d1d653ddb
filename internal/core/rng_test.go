package core

import "testing"

func TestRNGDeterministic(t *testing.T) {
	a := NewRNG(42)
	b := NewRNG(42)
	for i := 0; i < 100; i++ {
		if a.Next() != b.Next() {
			t.Fatalf("streams diverged at %d", i)
		}
	}
}

func TestRNGZeroSeed(t *testing.T) {
	r := NewRNG(0)
	if r.Next() == 0 {
		t.Error("zero seed should be replaced by a non-zero default")
	}
}

func TestRNGFloatRange(t *testing.T) {
	r := NewRNG(7)
	for i := 0; i < 1000; i++ {
		f := r.Float()
		if f < 0 || f >= 1 {
			t.Fatalf("Float() = %v, outside [0, 1)", f)
		}
		v := r.Range(0.3, 0.8)
		if v < 0.3 || v >= 0.8 {
			t.Fatalf("Range() = %v, outside [0.3, 0.8)", v)
		}
	}
}

func TestRNGWeighted(t *testing.T) {
	r := NewRNG(99)
	counts := make([]int, 3)
	for i := 0; i < 3000; i++ {
		counts[r.Weighted([]float64{0, 1, 3})]++
	}
	if counts[0] != 0 {
		t.Errorf("zero weight picked %d times", counts[0])
	}
	if counts[2] <= counts[1] {
		t.Errorf("heavier weight should be picked more often: %v", counts)
	}
	if r.Weighted([]float64{0, -1}) != 0 {
		t.Error("all non-positive weights should return 0")
	}
}

func TestMixSeedOffsets(t *testing.T) {
	base := MixSeed(42, 0)
	if base != MixSeed(42, 0) {
		t.Error("MixSeed should be deterministic")
	}
	if base == MixSeed(42, 1) {
		t.Error("different offsets should give different seeds")
	}
	if base == MixSeed(43, 0) {
		t.Error("different seeds should give different results")
	}
}

func TestHashCell(t *testing.T) {
	h := HashCell(1, 10, 3, 0)
	if h != HashCell(1, 10, 3, 0) {
		t.Error("HashCell should be deterministic")
	}
	if h == HashCell(1, 10, 3, 1) {
		t.Error("salt should change the roll")
	}
	if h < 0 || h >= 1 {
		t.Errorf("HashCell() = %v, outside [0, 1)", h)
	}
}
